package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/models"
	"greenearth/backend/internal/service"
)

// Settlements is the pledge bookkeeping the confirmer drives
type Settlements interface {
	PendingSettlements(ctx context.Context, limit int) ([]models.Pledge, error)
	Settle(ctx context.Context, pledge *models.Pledge, status models.PledgeStatus) error
}

// PledgeConfirmer settles pledges once their transfer transaction is final
type PledgeConfirmer struct {
	upstream    Upstream
	settlements Settlements
	interval    time.Duration
	logger      *zap.Logger
}

// NewPledgeConfirmer creates a confirmer polling every interval
func NewPledgeConfirmer(upstream Upstream, settlements Settlements, interval time.Duration, logger *zap.Logger) *PledgeConfirmer {
	return &PledgeConfirmer{
		upstream:    upstream,
		settlements: settlements,
		interval:    interval,
		logger:      logger.Named("confirmer"),
	}
}

// Run polls until ctx is cancelled
func (c *PledgeConfirmer) Run(ctx context.Context) {
	c.logger.Info("Pledge confirmer started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Pledge confirmer stopping")
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

// poll executes one confirmation cycle and returns how many pledges settled
func (c *PledgeConfirmer) poll(ctx context.Context) int {
	if !c.upstream.IsConfigured() {
		return 0
	}

	pledges, err := c.settlements.PendingSettlements(ctx, ConfirmBatchSize)
	if err != nil {
		c.logger.Error("Failed to list pending settlements", zap.Error(err))
		return 0
	}

	settled := 0
	for i := range pledges {
		select {
		case <-ctx.Done():
			return settled
		default:
		}
		if c.handlePledge(ctx, &pledges[i]) {
			settled++
		}
	}
	return settled
}

// handlePledge checks one transaction and reports whether the pledge settled
func (c *PledgeConfirmer) handlePledge(ctx context.Context, pledge *models.Pledge) bool {
	if pledge.TxID == nil {
		return false
	}
	logger := c.logger.With(zap.String("pledge_id", pledge.PledgeID), zap.String("tx_id", *pledge.TxID))

	txCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	body, err := c.upstream.GetTransaction(txCtx, *pledge.TxID)
	if err != nil {
		// Freshly broadcast transactions may not be indexed yet
		if hiro.IsNotFound(err) {
			logger.Debug("Transaction not indexed yet")
			return false
		}
		logger.Warn("Failed to fetch transaction", zap.Error(err))
		return false
	}

	var tx struct {
		TxStatus string `json:"tx_status"`
	}
	if err := json.Unmarshal(body, &tx); err != nil {
		logger.Warn("Unexpected transaction payload", zap.Error(err))
		return false
	}

	status, final := service.SettlementStatus(tx.TxStatus)
	if !final {
		return false
	}
	if err := c.settlements.Settle(ctx, pledge, status); err != nil {
		logger.Error("Failed to settle pledge", zap.Error(err))
		return false
	}
	return true
}
