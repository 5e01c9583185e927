package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"greenearth/backend/internal/blockchain/hiro"
	"greenearth/backend/internal/service"
)

const errNotConfigured = "Hiro API key not configured"

// upstreamMessages are the per-route texts for upstream failures. Empty
// fields fall through to the generic "Hiro API error" text.
type upstreamMessages struct {
	unauthorized string
	forbidden    string
	notFound     string
	fallback     string // non-HTTP failures without a message
}

var (
	balanceMessages = upstreamMessages{
		unauthorized: "Invalid API key - Check your Hiro Platform API key",
		forbidden:    "API key access denied - Check permissions",
		notFound:     "Address not found or invalid",
		fallback:     "Failed to fetch balance",
	}
	transactionsMessages = upstreamMessages{
		unauthorized: balanceMessages.unauthorized,
		forbidden:    balanceMessages.forbidden,
		fallback:     "Failed to fetch transactions",
	}
	transactionMessages = upstreamMessages{
		unauthorized: balanceMessages.unauthorized,
		forbidden:    balanceMessages.forbidden,
		fallback:     "Failed to fetch transaction",
	}
	eventsMessages = upstreamMessages{
		unauthorized: balanceMessages.unauthorized,
		forbidden:    balanceMessages.forbidden,
		fallback:     "Failed to fetch contract events",
	}
	networkMessages = upstreamMessages{
		unauthorized: "Invalid API key",
		forbidden:    "API key access denied",
		fallback:     "Failed to fetch network info",
	}
)

// ==================== Hiro Proxy ====================

// HandleGetBalance handles GET /api/hiro/balance/{address}
//
// @Summary  Account balances
// @Tags     hiro
// @Produce  json
// @Param    address  path  string  true  "Stacks address (ST... or SP...)"
// @Success  200
// @Failure  400  {object}  ErrorResponse
// @Failure  401  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/hiro/balance/{address} [get]
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	if !hiro.IsStacksAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return
	}
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	body, err := h.hiro.GetBalances(r.Context(), address)
	if err != nil {
		h.respondUpstreamError(w, "balance", err, balanceMessages)
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// HandleGetTransactions handles GET /api/hiro/transactions/{id}
// An ST/SP id lists the address's transactions; anything else is looked up
// as a transaction id.
//
// @Summary  Address transactions or a single transaction
// @Tags     hiro
// @Produce  json
// @Param    id     path   string  true   "Stacks address or transaction id"
// @Param    limit  query  int     false  "Page size (default 20, max 50)"
// @Success  200
// @Failure  400  {object}  ErrorResponse
// @Router   /api/hiro/transactions/{id} [get]
func (h *Handler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !hiro.IsStacksAddress(id) {
		h.getTransaction(w, r, id)
		return
	}
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	body, err := h.hiro.GetAccountTransactions(r.Context(), id, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.respondUpstreamError(w, "transactions", err, transactionsMessages)
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// HandleGetTransaction handles GET /api/hiro/transaction/{txId}
//
// @Summary  Single transaction
// @Tags     hiro
// @Produce  json
// @Param    txId  path  string  true  "Transaction id"
// @Success  200
// @Failure  400  {object}  ErrorResponse
// @Router   /api/hiro/transaction/{txId} [get]
func (h *Handler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	h.getTransaction(w, r, mux.Vars(r)["txId"])
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request, txID string) {
	if strings.TrimSpace(txID) == "" {
		respondError(w, http.StatusBadRequest, "Transaction ID is required", nil)
		return
	}
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	body, err := h.hiro.GetTransaction(r.Context(), txID)
	if err != nil {
		h.respondUpstreamError(w, "transaction", err, transactionMessages)
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// HandleGetContractEvents handles GET /api/hiro/contract/{address}/{name}/events
//
// @Summary  Contract events
// @Tags     hiro
// @Produce  json
// @Param    address  path   string  true   "Contract deployer address"
// @Param    name     path   string  true   "Contract name"
// @Param    limit    query  int     false  "Page size (default 20, max 50)"
// @Success  200
// @Failure  400  {object}  ErrorResponse
// @Router   /api/hiro/contract/{address}/{name}/events [get]
func (h *Handler) HandleGetContractEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address, name := vars["address"], vars["name"]
	if !hiro.IsStacksAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return
	}
	if strings.TrimSpace(name) == "" {
		respondError(w, http.StatusBadRequest, "Contract name is required", nil)
		return
	}
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	body, err := h.hiro.GetContractEvents(r.Context(), address, name, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.respondUpstreamError(w, "contract events", err, eventsMessages)
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// HandleGetNetwork handles GET /api/hiro/network
//
// @Summary  Network block times
// @Tags     hiro
// @Produce  json
// @Success  200
// @Failure  400  {object}  ErrorResponse
// @Failure  500  {object}  ErrorResponse
// @Router   /api/hiro/network [get]
func (h *Handler) HandleGetNetwork(w http.ResponseWriter, r *http.Request) {
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	body, err := h.hiro.GetNetworkBlockTimes(r.Context())
	if err != nil {
		h.respondUpstreamError(w, "network", err, networkMessages)
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		h.logger.Warn("Unexpected network info payload")
		respondError(w, http.StatusInternalServerError, "Invalid API response", nil)
		return
	}
	respondRaw(w, http.StatusOK, body)
}

// HandleTestAuth handles GET /api/hiro/test-auth
// Verifies the configured key is accepted upstream
//
// @Summary  Verify the API key upstream
// @Tags     hiro
// @Produce  json
// @Success  200  {object}  AuthTestResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  401  {object}  AuthErrorResponse
// @Failure  403  {object}  AuthErrorResponse
// @Failure  429  {object}  AuthErrorResponse
// @Router   /api/hiro/test-auth [get]
func (h *Handler) HandleTestAuth(w http.ResponseWriter, r *http.Request) {
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	if err := h.hiro.ProbeAuth(r.Context()); err != nil {
		status, message := hiro.AuthFailure(err)
		h.logger.Warn("API key authentication failed",
			zap.Int("status", status),
			zap.Error(err))
		respondJSON(w, status, AuthErrorResponse{Error: message, Authenticated: false})
		return
	}

	respondJSON(w, http.StatusOK, AuthTestResponse{
		Message:       "API key authenticated successfully",
		Authenticated: true,
		TestAddress:   hiro.TestAddress,
		ResponseValid: true,
	})
}

// ==================== Dashboard ====================

// HandleGetDashboard handles GET /api/dashboard/{address}
// Fetches balance and recent transactions concurrently
//
// @Summary  Donor dashboard
// @Tags     hiro
// @Produce  json
// @Param    address  path      string  true  "Stacks address"
// @Success  200      {object}  DashboardResponse
// @Failure  400      {object}  ErrorResponse
// @Router   /api/dashboard/{address} [get]
func (h *Handler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	if !hiro.IsStacksAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid Stacks address", nil)
		return
	}
	if !h.hiro.IsConfigured() {
		respondError(w, http.StatusBadRequest, errNotConfigured, nil)
		return
	}

	var balance, txs json.RawMessage
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		balance, err = h.hiro.GetBalances(ctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = h.hiro.GetAccountTransactions(ctx, address, parseLimit(r.URL.Query().Get("limit")))
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondUpstreamError(w, "dashboard", err, balanceMessages)
		return
	}

	formatted, err := service.FormatBalance(balance)
	if err != nil {
		h.logger.Warn("Unexpected balance payload", zap.String("address", address), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Invalid API response", nil)
		return
	}

	respondJSON(w, http.StatusOK, DashboardResponse{
		Address:      address,
		Balance:      balance,
		Transactions: txs,
		STXBalance:   formatted,
	})
}

// respondUpstreamError maps a Hiro client error to the route's response
func (h *Handler) respondUpstreamError(w http.ResponseWriter, route string, err error, msgs upstreamMessages) {
	status := hiro.StatusCode(err)
	h.logger.Warn("Hiro request failed",
		zap.String("route", route),
		zap.Int("status", status),
		zap.Error(err))

	switch {
	case status == http.StatusUnauthorized && msgs.unauthorized != "":
		respondError(w, status, msgs.unauthorized, nil)
	case status == http.StatusForbidden && msgs.forbidden != "":
		respondError(w, status, msgs.forbidden, nil)
	case status == http.StatusNotFound && msgs.notFound != "":
		respondError(w, status, msgs.notFound, nil)
	case status != 0:
		respondError(w, status, err.Error(), nil)
	default:
		message := err.Error()
		if message == "" {
			message = msgs.fallback
		}
		respondError(w, http.StatusInternalServerError, message, nil)
	}
}
