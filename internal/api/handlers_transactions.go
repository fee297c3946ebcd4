package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

// ListTransactionsHandler relays a page of inbound payment events from the
// gateway.
func (h *TransferHandlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	opts := paystackclient.ListTransactionsOptions{
		ListOptions: listOptionsFromQuery(r),
		Status:      strings.TrimSpace(r.URL.Query().Get("status")),
		From:        strings.TrimSpace(r.URL.Query().Get("from")),
		To:          strings.TrimSpace(r.URL.Query().Get("to")),
	}

	page, err := h.service.ListGatewayTransactions(r.Context(), opts)
	if err != nil {
		log.Printf("level=warn component=api endpoint=list_transactions outcome=failed err=%v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// VerifyTransactionHandler re-checks an inbound payment by reference. This is
// the authoritative read: webhook payloads are never trusted without it.
func (h *TransferHandlers) VerifyTransactionHandler(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(chi.URLParam(r, "reference"))
	if reference == "" {
		writeError(w, http.StatusBadRequest, "Reference is required")
		return
	}

	txn, err := h.service.VerifyGatewayTransaction(r.Context(), reference)
	if err != nil {
		log.Printf("level=warn component=api endpoint=verify_transaction outcome=failed reference=%s err=%v", reference, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transaction verified", txn)
}

// FetchTransactionHandler reads one inbound payment by its numeric gateway id.
func (h *TransferHandlers) FetchTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	txn, err := h.service.FetchGatewayTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transaction retrieved", txn)
}
