package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/config"
	"greenearth/backend/internal/models"
)

var (
	// ErrInsufficientBalance is returned when a donor cannot cover a donation
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidDonor        = errors.New("invalid donor address")
	ErrPledgeNotFound      = errors.New("pledge not found or already settled")
	ErrInvalidTxID         = errors.New("invalid transaction id")
)

// PledgeStore persists pledges
type PledgeStore interface {
	CreatePledge(ctx context.Context, pledge *models.Pledge) error
	GetPledge(ctx context.Context, pledgeID string) (*models.Pledge, error)
	ListPledgesByDonor(ctx context.Context, address string, limit, offset int) ([]models.Pledge, error)
	GetPledgeTotals(ctx context.Context) (*models.PledgeTotals, error)
	AttachPledgeTx(ctx context.Context, pledgeID, txID string) (*models.Pledge, error)
	GetPledgesAwaitingConfirmation(ctx context.Context, limit int) ([]models.Pledge, error)
	UpdatePledgeStatus(ctx context.Context, pledgeID string, status models.PledgeStatus, txID *string) error
}

// DonationService handles donation quotes and pledges
type DonationService struct {
	cfg    *config.Config
	store  PledgeStore
	logger *zap.Logger
	now    func() time.Time
}

// NewDonationService creates a new donation service
func NewDonationService(cfg *config.Config, store PledgeStore, logger *zap.Logger) *DonationService {
	return &DonationService{
		cfg:    cfg,
		store:  store,
		logger: logger.Named("donation"),
		now:    time.Now,
	}
}

// Quote holds the validated projection for a donation amount
type Quote struct {
	AmountSTX float64 `json:"amountStx"`
	Formatted string  `json:"formatted"`
	Impact    Impact  `json:"impact"`
}

// BalanceShortfall describes why a donor cannot afford a donation
type BalanceShortfall struct {
	Available string // grouped STX
}

func (b *BalanceShortfall) Error() string {
	return fmt.Sprintf("Insufficient balance. You have %s STX available.", b.Available)
}

func (b *BalanceShortfall) Unwrap() error { return ErrInsufficientBalance }

// Quote validates amount and projects its impact. When balance holds an
// account balances payload, the donor's STX balance must cover the amount.
func (s *DonationService) Quote(amount float64, balance json.RawMessage) (*Quote, error) {
	if err := ValidateDonationAmount(amount); err != nil {
		return nil, err
	}

	if len(balance) > 0 {
		if err := checkAffordable(amount, balance); err != nil {
			return nil, err
		}
	}

	return &Quote{
		AmountSTX: amount,
		Formatted: FormatSTX(amount),
		Impact:    CalculateImpact(amount),
	}, nil
}

// checkAffordable compares amount against the donor's STX balance
func checkAffordable(amount float64, balance json.RawMessage) error {
	available, err := STXBalance(balance)
	if err != nil {
		return err
	}
	if decimal.NewFromFloat(amount).GreaterThan(available) {
		return &BalanceShortfall{Available: groupThousands(available)}
	}
	return nil
}

// STXBalance extracts stx.balance (micro-STX) from an account balances
// payload, in STX. A missing balance counts as zero.
func STXBalance(balance json.RawMessage) (decimal.Decimal, error) {
	var payload struct {
		STX struct {
			Balance string `json:"balance"`
		} `json:"stx"`
	}
	if err := json.Unmarshal(balance, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balance: %w", err)
	}
	return MicroToSTX(payload.STX.Balance)
}

// FormatBalance renders the STX balance of a balances payload, e.g. "1,234.5 STX"
func FormatBalance(balance json.RawMessage) (string, error) {
	available, err := STXBalance(balance)
	if err != nil {
		return "", err
	}
	return groupThousands(available) + " STX", nil
}

// PledgeRequest is the input for CreatePledge
type PledgeRequest struct {
	DonorAddress string
	AmountSTX    float64
	Balance      json.RawMessage // optional balances payload for the donor
}

// PledgeReceipt is a stored pledge plus the donor-facing message
type PledgeReceipt struct {
	Pledge  *models.Pledge
	Message string
}

// CreatePledge validates and records a donation pledge
func (s *DonationService) CreatePledge(ctx context.Context, req PledgeRequest) (*PledgeReceipt, error) {
	if !hiro.IsStacksAddress(req.DonorAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDonor, req.DonorAddress)
	}

	quote, err := s.Quote(req.AmountSTX, req.Balance)
	if err != nil {
		return nil, err
	}

	pledge := &models.Pledge{
		PledgeID:            uuid.NewString(),
		DonorAddress:        req.DonorAddress,
		AmountSTX:           quote.AmountSTX,
		Trees:               quote.Impact.Trees,
		PlasticKg:           quote.Impact.PlasticKg,
		CO2Lbs:              quote.Impact.CO2Lbs,
		MarineLifeProtected: quote.Impact.MarineLifeProtected,
		Status:              models.PledgeStatusPending,
		CreatedAt:           s.now().UTC(),
	}

	if err := s.store.CreatePledge(ctx, pledge); err != nil {
		return nil, fmt.Errorf("failed to store pledge: %w", err)
	}

	s.logger.Info("Pledge recorded",
		zap.String("pledge_id", pledge.PledgeID),
		zap.String("donor", pledge.DonorAddress),
		zap.Float64("amount_stx", pledge.AmountSTX))

	return &PledgeReceipt{
		Pledge: pledge,
		Message: fmt.Sprintf(
			"Thank you! Your %s STX donation will plant %d trees and remove %skg of ocean plastic.",
			decimal.NewFromFloat(quote.AmountSTX).String(),
			quote.Impact.Trees,
			decimal.NewFromFloat(quote.Impact.PlasticKg).String(),
		),
	}, nil
}

// GetPledge returns a pledge or nil when it does not exist
func (s *DonationService) GetPledge(ctx context.Context, pledgeID string) (*models.Pledge, error) {
	return s.store.GetPledge(ctx, pledgeID)
}

// ListPledges returns pledges made from an address
func (s *DonationService) ListPledges(ctx context.Context, address string, limit, offset int) ([]models.Pledge, error) {
	return s.store.ListPledgesByDonor(ctx, address, limit, offset)
}

// AttachTransaction links the broadcast transfer to a pending pledge
func (s *DonationService) AttachTransaction(ctx context.Context, pledgeID, txID string) (*models.Pledge, error) {
	if !isTxID(txID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, txID)
	}
	pledge, err := s.store.AttachPledgeTx(ctx, pledgeID, txID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPledgeNotFound
		}
		return nil, fmt.Errorf("failed to attach transaction: %w", err)
	}

	s.logger.Info("Transaction attached to pledge",
		zap.String("pledge_id", pledgeID),
		zap.String("tx_id", txID))

	return pledge, nil
}

// PendingSettlements returns pledges whose transfer has not been settled yet
func (s *DonationService) PendingSettlements(ctx context.Context, limit int) ([]models.Pledge, error) {
	return s.store.GetPledgesAwaitingConfirmation(ctx, limit)
}

// Settle records the final status of a pledge's transfer
func (s *DonationService) Settle(ctx context.Context, pledge *models.Pledge, status models.PledgeStatus) error {
	if err := s.store.UpdatePledgeStatus(ctx, pledge.PledgeID, status, pledge.TxID); err != nil {
		return fmt.Errorf("failed to settle pledge %s: %w", pledge.PledgeID, err)
	}
	s.logger.Info("Pledge settled",
		zap.String("pledge_id", pledge.PledgeID),
		zap.String("status", string(status)))
	return nil
}

// CampaignTotals returns the aggregate of recorded pledges
func (s *DonationService) CampaignTotals(ctx context.Context) (*models.PledgeTotals, error) {
	return s.store.GetPledgeTotals(ctx)
}

// PaymentURI builds the wallet URI for a donation to the campaign contract
func (s *DonationService) PaymentURI(amount float64) (string, error) {
	if err := ValidateDonationAmount(amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("stacks:%s.%s?amount=%d",
		s.cfg.Contract.Address, s.cfg.Contract.Name, STXToMicro(amount)), nil
}

// PaymentQR renders the donation URI as a PNG QR code of size pixels
func (s *DonationService) PaymentQR(amount float64, size int) ([]byte, error) {
	uri, err := s.PaymentURI(amount)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
