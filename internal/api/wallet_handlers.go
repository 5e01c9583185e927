package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"greenearth/backend/internal/wallet"
)

// ==================== Wallet Sessions ====================

// HandleGetWallet handles GET /api/wallet/{clientId}
// Restores or completes the client's session and returns its state
//
// @Summary  Wallet session state
// @Tags     wallet
// @Produce  json
// @Param    clientId  path      string  true  "Browser client id (UUID)"
// @Success  200       {object}  wallet.Snapshot
// @Failure  400       {object}  ErrorResponse
// @Router   /api/wallet/{clientId} [get]
func (h *Handler) HandleGetWallet(w http.ResponseWriter, r *http.Request) {
	provider, release, ok := h.walletProvider(w, r)
	if !ok {
		return
	}
	defer release()
	if err := provider.Init(r.Context()); err != nil {
		h.respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, provider.Snapshot())
}

// HandleConnectWallet handles POST /api/wallet/{clientId}/connect
// The body is the user data returned by the wallet
//
// @Summary  Connect a wallet
// @Tags     wallet
// @Accept   json
// @Produce  json
// @Param    clientId  path      string           true  "Browser client id (UUID)"
// @Param    request   body      wallet.UserData  true  "Wallet user data"
// @Success  200       {object}  wallet.Snapshot
// @Failure  409       {object}  ErrorResponse
// @Router   /api/wallet/{clientId}/connect [post]
func (h *Handler) HandleConnectWallet(w http.ResponseWriter, r *http.Request) {
	provider, release, ok := h.walletProvider(w, r)
	if !ok {
		return
	}
	defer release()

	var payload wallet.UserData
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := provider.Connect(r.Context(), payload); err != nil {
		h.respondWalletError(w, err)
		return
	}
	if err := provider.CompleteSignIn(r.Context()); err != nil {
		h.respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, provider.Snapshot())
}

// HandleClearWalletError handles POST /api/wallet/{clientId}/clear-error
//
// @Summary  Clear a failed sign-in
// @Tags     wallet
// @Produce  json
// @Param    clientId  path      string  true  "Browser client id (UUID)"
// @Success  200       {object}  wallet.Snapshot
// @Failure  409       {object}  ErrorResponse
// @Router   /api/wallet/{clientId}/clear-error [post]
func (h *Handler) HandleClearWalletError(w http.ResponseWriter, r *http.Request) {
	provider, release, ok := h.walletProvider(w, r)
	if !ok {
		return
	}
	defer release()
	if err := provider.ClearError(); err != nil {
		h.respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, provider.Snapshot())
}

// HandleDisconnectWallet handles DELETE /api/wallet/{clientId}
//
// @Summary  Disconnect the wallet
// @Tags     wallet
// @Produce  json
// @Param    clientId  path      string  true  "Browser client id (UUID)"
// @Success  200       {object}  wallet.Snapshot
// @Router   /api/wallet/{clientId} [delete]
func (h *Handler) HandleDisconnectWallet(w http.ResponseWriter, r *http.Request) {
	provider, release, ok := h.walletProvider(w, r)
	if !ok {
		return
	}
	defer release()
	if err := provider.Disconnect(r.Context()); err != nil {
		h.respondWalletError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, provider.Snapshot())
}

// HandleClearWalletSession handles POST /api/wallet/{clientId}/clear
// Removes every stored trace of the session
//
// @Summary  Clear all wallet session data
// @Tags     wallet
// @Produce  json
// @Param    clientId  path      string  true  "Browser client id (UUID)"
// @Success  200       {object}  wallet.Snapshot
// @Router   /api/wallet/{clientId}/clear [post]
func (h *Handler) HandleClearWalletSession(w http.ResponseWriter, r *http.Request) {
	provider, release, ok := h.walletProvider(w, r)
	if !ok {
		return
	}
	defer release()
	if err := provider.ClearSession(r.Context()); err != nil {
		h.logger.Error("Failed to clear wallet session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to clear wallet session", err)
		return
	}
	respondJSON(w, http.StatusOK, provider.Snapshot())
}

// walletProvider resolves the provider of the path's client id. The caller
// must invoke release once the request is done with it.
func (h *Handler) walletProvider(w http.ResponseWriter, r *http.Request) (*wallet.Provider, func(), bool) {
	clientID := mux.Vars(r)["clientId"]
	if _, err := uuid.Parse(clientID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client id", nil)
		return nil, nil, false
	}
	provider := h.wallets.Get(clientID)
	return provider, func() { h.wallets.Release(clientID, provider) }, true
}

func (h *Handler) respondWalletError(w http.ResponseWriter, err error) {
	if errors.Is(err, wallet.ErrInvalidTransition) {
		respondError(w, http.StatusConflict, err.Error(), nil)
		return
	}
	h.logger.Error("Wallet operation failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, err.Error(), nil)
}
