package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"greenearth/backend/internal/config"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// SetupRouter creates and configures the HTTP router
func SetupRouter(handler *Handler, cfg *config.Config, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware. Routes also accept OPTIONS so preflight reaches corsMiddleware.
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware(cfg.Server.CORSAllowedOrigin))
	router.Use(recoveryMiddleware(logger))

	// Health check endpoint
	router.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet, http.MethodOptions)

	// API documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api").Subrouter()

	// Status and public configuration
	api.HandleFunc("/status", handler.HandleGetStatus).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/status/check", handler.HandleCheckStatus).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/config", handler.HandleGetConfig).Methods(http.MethodGet, http.MethodOptions)

	// Impact and campaign
	api.HandleFunc("/impact", handler.HandleGetImpact).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/campaign", handler.HandleGetCampaign).Methods(http.MethodGet, http.MethodOptions)

	// Hiro proxy
	hiroRoutes := api.PathPrefix("/hiro").Subrouter()
	hiroRoutes.HandleFunc("/balance/{address}", handler.HandleGetBalance).Methods(http.MethodGet, http.MethodOptions)
	hiroRoutes.HandleFunc("/transactions/{id}", handler.HandleGetTransactions).Methods(http.MethodGet, http.MethodOptions)
	hiroRoutes.HandleFunc("/transaction/{txId}", handler.HandleGetTransaction).Methods(http.MethodGet, http.MethodOptions)
	hiroRoutes.HandleFunc("/contract/{address}/{name}/events", handler.HandleGetContractEvents).Methods(http.MethodGet, http.MethodOptions)
	hiroRoutes.HandleFunc("/network", handler.HandleGetNetwork).Methods(http.MethodGet, http.MethodOptions)
	hiroRoutes.HandleFunc("/test-auth", handler.HandleTestAuth).Methods(http.MethodGet, http.MethodOptions)

	api.HandleFunc("/dashboard/{address}", handler.HandleGetDashboard).Methods(http.MethodGet, http.MethodOptions)

	// Donations. Fixed paths are registered before {pledgeId}.
	api.HandleFunc("/donations/qr", handler.HandlePaymentQR).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/donations/quote", handler.HandleQuoteDonation).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/donations", handler.HandleCreatePledge).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/donations", handler.HandleListPledges).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/donations/{pledgeId}", handler.HandleGetPledge).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/donations/{pledgeId}/tx", handler.HandleAttachTransaction).Methods(http.MethodPost, http.MethodOptions)

	// Wallet sessions
	api.HandleFunc("/wallet/{clientId}", handler.HandleGetWallet).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/wallet/{clientId}", handler.HandleDisconnectWallet).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/wallet/{clientId}/connect", handler.HandleConnectWallet).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/wallet/{clientId}/clear-error", handler.HandleClearWalletError).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/wallet/{clientId}/clear", handler.HandleClearWalletSession).Methods(http.MethodPost, http.MethodOptions)

	return router
}

// ==================== Middleware ====================

// loggingMiddleware logs HTTP requests and tags each with a request id
func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("HTTP request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers for the configured origin
func corsMiddleware(allowedOrigin string) mux.MiddlewareFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics and logs them
func recoveryMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"Internal server error","message":"An unexpected error occurred"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
