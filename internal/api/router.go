/**
 * @description
 * This file sets up the HTTP router for the transfer-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies the
 * authentication and rate-limiting middleware.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tizlion/transfer-service/internal/app"
)

// TransferRoutes creates and returns the router for the transfer service.
func TransferRoutes(h *TransferHandlers, authSecret string, limiter *app.RedisRateLimiter, ratePerMinute int) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Everything under /api requires a service token and counts against the
	// caller's rate limit.
	r.Route("/api", func(r chi.Router) {
		r.Use(ServiceAuthMiddleware(authSecret))
		r.Use(RateLimitMiddleware(limiter, ratePerMinute))

		// Bank directory
		r.Get("/banks", h.ListBanksHandler)
		r.Get("/banks/resolve-name", h.FindBankHandler)
		r.Post("/bank/resolve", h.ResolveAccountHandler)

		// Gateway recipients
		r.Post("/transfer-recipients", h.CreateRecipientHandler)
		r.Get("/transfer-recipients", h.ListGatewayRecipientsHandler)
		r.Get("/transfer-recipients/{code}", h.FetchGatewayRecipientHandler)

		// Balance
		r.Get("/balance", h.GetBalanceHandler)
		r.Get("/balance/ledger", h.GetBalanceLedgerHandler)

		// Transfers
		r.Post("/transfers", h.InitiateTransferHandler)
		r.Post("/transfers/send", h.SendMoneyHandler)
		r.Post("/transfers/finalize", h.FinalizeTransferHandler)
		r.Get("/transfers", h.ListGatewayTransfersHandler)
		r.Get("/transfers/history", h.ListTransferHistoryHandler)
		r.Get("/transfers/history/{id}", h.GetTransferHistoryItemHandler)
		r.Get("/transfers/verify/{reference}", h.VerifyTransferHandler)
		r.Get("/transfers/{code}", h.FetchGatewayTransferHandler)

		// Inbound transactions
		r.Get("/transactions", h.ListTransactionsHandler)
		r.Get("/transactions/verify/{reference}", h.VerifyTransactionHandler)
		r.Get("/transactions/{id}", h.FetchTransactionHandler)

		// Saved recipients
		r.Get("/recipients/saved", h.ListSavedRecipientsHandler)
		r.Delete("/recipients/saved/{id}", h.DeleteSavedRecipientHandler)
	})

	return r
}
