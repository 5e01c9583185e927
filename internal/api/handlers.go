package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/campaign"
	"greenearth/backend/internal/config"
	"greenearth/backend/internal/service"
	"greenearth/backend/internal/wallet"
	"greenearth/backend/internal/worker"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Query limits for list endpoints
const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// QR code image bounds in pixels
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// Upstream is the Hiro API client used by the handlers
type Upstream interface {
	IsConfigured() bool
	GetBalances(ctx context.Context, address string) (json.RawMessage, error)
	GetAccountTransactions(ctx context.Context, address string, limit int) (json.RawMessage, error)
	GetTransaction(ctx context.Context, txID string) (json.RawMessage, error)
	GetContractEvents(ctx context.Context, address, name string, limit int) (json.RawMessage, error)
	GetNetworkBlockTimes(ctx context.Context) (json.RawMessage, error)
	ProbeAuth(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	cfg       *config.Config
	hiro      Upstream
	donations *service.DonationService
	campaigns *campaign.Store
	wallets   *wallet.Registry
	monitor   *worker.StatusMonitor
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	cfg *config.Config,
	upstream Upstream,
	donations *service.DonationService,
	campaigns *campaign.Store,
	wallets *wallet.Registry,
	monitor *worker.StatusMonitor,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		hiro:      upstream,
		donations: donations,
		campaigns: campaigns,
		wallets:   wallets,
		monitor:   monitor,
		logger:    logger,
	}
}

// ==================== Health Check ====================

// HandleHealth returns service health status
//
// @Summary  Health check
// @Tags     system
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Router   /health [get]
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	respondJSON(w, http.StatusOK, response)
}

// ==================== Status & Config ====================

// HandleGetStatus handles GET /api/status
//
// @Summary  Upstream API status
// @Tags     system
// @Produce  json
// @Success  200  {object}  StatusResponse
// @Router   /api/status [get]
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statusResponse(h.currentStatus()))
}

// HandleCheckStatus handles POST /api/status/check
// Runs a probe now instead of waiting for the next tick
//
// @Summary  Re-check upstream API status
// @Tags     system
// @Produce  json
// @Success  200  {object}  StatusResponse
// @Router   /api/status/check [post]
func (h *Handler) HandleCheckStatus(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		respondError(w, http.StatusServiceUnavailable, "Status monitor not running", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.statusResponse(h.monitor.CheckNow(r.Context())))
}

func (h *Handler) currentStatus() worker.APIStatus {
	if h.monitor == nil {
		return worker.APIStatus{State: worker.APIStateChecking}
	}
	return h.monitor.Status()
}

func (h *Handler) statusResponse(status worker.APIStatus) StatusResponse {
	return StatusResponse{
		API:            status,
		Configured:     h.cfg.Hiro.IsConfigured(),
		KeyFormatValid: config.ValidateAPIKey(h.cfg.Hiro.APIKey),
	}
}

// HandleGetConfig handles GET /api/config
//
// @Summary  Public client configuration
// @Tags     system
// @Produce  json
// @Success  200  {object}  ConfigResponse
// @Router   /api/config [get]
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	display := h.cfg.Stacks.Display()
	respondJSON(w, http.StatusOK, ConfigResponse{
		AppName:     h.cfg.App.Name,
		AppIcon:     h.cfg.App.Icon,
		Environment: h.cfg.App.Environment,
		Network: NetworkInfo{
			Network:     h.cfg.Stacks.Network,
			Name:        display.Name,
			ExplorerURL: display.ExplorerURL,
			APIURL:      h.cfg.Stacks.APIURL,
		},
		Contract: ContractInfo{
			Address: h.cfg.Contract.Address,
			Name:    h.cfg.Contract.Name,
		},
		HiroConfigured: h.cfg.Hiro.IsConfigured(),
		KeyFormatValid: config.ValidateAPIKey(h.cfg.Hiro.APIKey),
	})
}

// ==================== Impact & Donations ====================

// HandleGetImpact handles GET /api/impact?amount=X
//
// @Summary  Estimate donation impact
// @Tags     donations
// @Produce  json
// @Param    amount  query     number  true  "Donation in STX"
// @Success  200     {object}  service.Quote
// @Failure  400     {object}  ErrorResponse
// @Router   /api/impact [get]
func (h *Handler) HandleGetImpact(w http.ResponseWriter, r *http.Request) {
	amount, ok := parseAmount(w, r.URL.Query().Get("amount"))
	if !ok {
		return
	}
	quote, err := h.donations.Quote(amount, nil)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// HandleQuoteDonation handles POST /api/donations/quote
// Checks the donor can afford the amount when an address is given
//
// @Summary  Quote a donation
// @Tags     donations
// @Accept   json
// @Produce  json
// @Param    request  body      QuoteRequest  true  "Amount and optional donor"
// @Success  200      {object}  service.Quote
// @Failure  400      {object}  ErrorResponse
// @Router   /api/donations/quote [post]
func (h *Handler) HandleQuoteDonation(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	balance, ok := h.donorBalance(w, r, req.Address)
	if !ok {
		return
	}

	quote, err := h.donations.Quote(req.Amount, balance)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// HandleCreatePledge handles POST /api/donations
//
// @Summary  Record a donation pledge
// @Tags     donations
// @Accept   json
// @Produce  json
// @Param    request  body      CreatePledgeRequest  true  "Donor and amount"
// @Success  201      {object}  CreatePledgeResponse
// @Failure  400      {object}  ErrorResponse
// @Router   /api/donations [post]
func (h *Handler) HandleCreatePledge(w http.ResponseWriter, r *http.Request) {
	var req CreatePledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if !hiro.IsStacksAddress(req.DonorAddress) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return
	}

	balance, ok := h.donorBalance(w, r, req.DonorAddress)
	if !ok {
		return
	}

	receipt, err := h.donations.CreatePledge(r.Context(), service.PledgeRequest{
		DonorAddress: req.DonorAddress,
		AmountSTX:    req.AmountSTX,
		Balance:      balance,
	})
	switch {
	case errors.Is(err, service.ErrAmountNotPositive),
		errors.Is(err, service.ErrAmountTooLarge),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInvalidDonor):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		h.logger.Error("Failed to create pledge",
			zap.String("donor", req.DonorAddress),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create pledge", err)
		return
	}

	uri, err := h.donations.PaymentURI(receipt.Pledge.AmountSTX)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build payment URI", err)
		return
	}

	respondJSON(w, http.StatusCreated, CreatePledgeResponse{
		Pledge:     toPledgeResponse(receipt.Pledge),
		Message:    receipt.Message,
		PaymentURI: uri,
	})
}

// HandleGetPledge handles GET /api/donations/{pledgeId}
//
// @Summary  Get a pledge
// @Tags     donations
// @Produce  json
// @Param    pledgeId  path      string  true  "Pledge ID"
// @Success  200       {object}  PledgeResponse
// @Failure  404       {object}  ErrorResponse
// @Router   /api/donations/{pledgeId} [get]
func (h *Handler) HandleGetPledge(w http.ResponseWriter, r *http.Request) {
	pledgeID := mux.Vars(r)["pledgeId"]

	pledge, err := h.donations.GetPledge(r.Context(), pledgeID)
	if err != nil {
		h.logger.Error("Failed to get pledge",
			zap.String("pledge_id", pledgeID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get pledge", err)
		return
	}
	if pledge == nil {
		respondError(w, http.StatusNotFound, "Pledge not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, toPledgeResponse(pledge))
}

// HandleListPledges handles GET /api/donations?address=&limit=&offset=
//
// @Summary  List pledges of a donor
// @Tags     donations
// @Produce  json
// @Param    address  query     string  true   "Donor address"
// @Param    limit    query     int     false  "Page size (max 50)"
// @Param    offset   query     int     false  "Offset"
// @Success  200      {object}  ListPledgesResponse
// @Failure  400      {object}  ErrorResponse
// @Router   /api/donations [get]
func (h *Handler) HandleListPledges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	address := query.Get("address")
	if !hiro.IsStacksAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid offset", nil)
			return
		}
		offset = n
	}

	pledges, err := h.donations.ListPledges(r.Context(), address, parseLimit(query.Get("limit")), offset)
	if err != nil {
		h.logger.Error("Failed to list pledges",
			zap.String("address", address),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list pledges", err)
		return
	}

	response := ListPledgesResponse{
		Address: address,
		Pledges: make([]PledgeResponse, 0, len(pledges)),
	}
	for i := range pledges {
		response.Pledges = append(response.Pledges, toPledgeResponse(&pledges[i]))
	}
	respondJSON(w, http.StatusOK, response)
}

// HandleAttachTransaction handles POST /api/donations/{pledgeId}/tx
//
// @Summary  Attach the transfer transaction to a pledge
// @Tags     donations
// @Accept   json
// @Produce  json
// @Param    pledgeId  path      string           true  "Pledge ID"
// @Param    request   body      AttachTxRequest  true  "Transaction ID"
// @Success  200       {object}  PledgeResponse
// @Failure  400       {object}  ErrorResponse
// @Failure  404       {object}  ErrorResponse
// @Router   /api/donations/{pledgeId}/tx [post]
func (h *Handler) HandleAttachTransaction(w http.ResponseWriter, r *http.Request) {
	pledgeID := mux.Vars(r)["pledgeId"]

	var req AttachTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pledge, err := h.donations.AttachTransaction(r.Context(), pledgeID, req.TxID)
	switch {
	case errors.Is(err, service.ErrInvalidTxID):
		respondError(w, http.StatusBadRequest, "Invalid transaction ID", nil)
		return
	case errors.Is(err, service.ErrPledgeNotFound):
		respondError(w, http.StatusNotFound, "Pledge not found or already settled", nil)
		return
	case err != nil:
		h.logger.Error("Failed to attach transaction",
			zap.String("pledge_id", pledgeID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to attach transaction", err)
		return
	}

	respondJSON(w, http.StatusOK, toPledgeResponse(pledge))
}

// HandlePaymentQR handles GET /api/donations/qr?amount=X&size=N
//
// @Summary  Payment QR code
// @Tags     donations
// @Produce  png
// @Param    amount  query  number  true   "Donation in STX"
// @Param    size    query  int     false  "Image size in pixels"
// @Success  200
// @Failure  400     {object}  ErrorResponse
// @Router   /api/donations/qr [get]
func (h *Handler) HandlePaymentQR(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	amount, ok := parseAmount(w, query.Get("amount"))
	if !ok {
		return
	}

	size := DefaultQRSize
	if raw := query.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < MinQRSize || n > MaxQRSize {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", MinQRSize, MaxQRSize), nil)
			return
		}
		size = n
	}

	png, err := h.donations.PaymentQR(amount, size)
	if err != nil {
		if errors.Is(err, service.ErrAmountNotPositive) || errors.Is(err, service.ErrAmountTooLarge) {
			respondError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.logger.Error("Failed to render QR code", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to render QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// donorBalance fetches the balances payload of address for affordability
// checks. It returns nil without error when no check is possible.
func (h *Handler) donorBalance(w http.ResponseWriter, r *http.Request, address string) (json.RawMessage, bool) {
	if address == "" || !h.hiro.IsConfigured() {
		return nil, true
	}
	if !hiro.IsStacksAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return nil, false
	}

	balance, err := h.hiro.GetBalances(r.Context(), address)
	if err != nil {
		h.respondUpstreamError(w, "balance", err, balanceMessages)
		return nil, false
	}
	return balance, true
}

// ==================== Campaign ====================

// HandleGetCampaign handles GET /api/campaign
//
// @Summary  Campaign content and live totals
// @Tags     campaign
// @Produce  json
// @Success  200  {object}  CampaignResponse
// @Router   /api/campaign [get]
func (h *Handler) HandleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c := h.campaigns.Get()

	totals, err := h.donations.CampaignTotals(r.Context())
	if err != nil {
		h.logger.Error("Failed to get campaign totals", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get campaign totals", err)
		return
	}

	progress := 0.0
	if c.GoalSTX > 0 {
		progress = math.Min(100, math.Round(totals.TotalSTX/c.GoalSTX*10000)/100)
	}

	respondJSON(w, http.StatusOK, CampaignResponse{
		Campaign: c,
		Totals: CampaignTotals{
			RaisedSTX:       totals.TotalSTX,
			Donors:          totals.Donors,
			Pledges:         totals.Pledges,
			ProgressPercent: progress,
		},
	})
}

// ==================== Helper Functions ====================

// parseLimit reads a page size: missing, invalid or non-positive values
// fall back to DefaultLimit, larger values are capped at MaxLimit
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func parseAmount(w http.ResponseWriter, raw string) (float64, bool) {
	if raw == "" {
		respondError(w, http.StatusBadRequest, "amount is required", nil)
		return 0, false
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid amount", err)
		return 0, false
	}
	return amount, true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but can't send response since headers already written
		fmt.Printf("Failed to encode JSON response: %v\n", err)
	}
}

// respondRaw sends an upstream JSON body unchanged
func respondRaw(w http.ResponseWriter, statusCode int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// respondError sends an error response. err, when set, is reported as detail.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Message = fmt.Sprintf("%s: %v", message, err)
	}
	respondJSON(w, statusCode, response)
}
