package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

// savedRecipientResponse exposes a saved destination with the account number
// masked to its last four digits.
type savedRecipientResponse struct {
	ID            string `json:"id"`
	RecipientCode string `json:"recipient_code"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	BankName      string `json:"bank_name"`
	Currency      string `json:"currency"`
}

func buildSavedRecipientResponse(recipient *domain.SavedRecipient) savedRecipientResponse {
	return savedRecipientResponse{
		ID:            recipient.ID.String(),
		RecipientCode: recipient.RecipientCode,
		AccountName:   recipient.AccountName,
		AccountNumber: recipient.MaskedAccountNumber(),
		BankCode:      recipient.BankCode,
		BankName:      recipient.BankName,
		Currency:      recipient.Currency,
	}
}

// ListBanksHandler returns the bank directory for a currency.
func (h *TransferHandlers) ListBanksHandler(w http.ResponseWriter, r *http.Request) {
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))

	banks, err := h.service.ListBanks(r.Context(), currency)
	if err != nil {
		log.Printf("level=warn component=api endpoint=list_banks outcome=failed currency=%s err=%v", currency, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Banks retrieved", banks)
}

// FindBankHandler resolves a bank name, alias, or code fragment to a single
// directory entry.
func (h *TransferHandlers) FindBankHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))

	bank, err := h.service.FindBank(r.Context(), currency, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Bank resolved", bank)
}

// ResolveAccountHandler confirms a destination account and returns the
// registered account holder name.
func (h *TransferHandlers) ResolveAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountNumber string `json:"account_number"`
		BankCode      string `json:"bank_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !isAccountNumber(req.AccountNumber) {
		writeError(w, http.StatusBadRequest, "Account number must be 10 digits")
		return
	}
	if !isBankCode(req.BankCode) {
		writeError(w, http.StatusBadRequest, "Invalid bank code")
		return
	}

	resolved, err := h.service.ResolveAccount(r.Context(), req.AccountNumber, req.BankCode)
	if err != nil {
		log.Printf("level=warn component=api endpoint=resolve_account outcome=failed bank_code=%s err=%v", req.BankCode, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Account resolved", resolved)
}

// CreateRecipientHandler registers a transfer recipient at the gateway.
func (h *TransferHandlers) CreateRecipientHandler(w http.ResponseWriter, r *http.Request) {
	var req paystackclient.CreateRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Recipient name is required")
		return
	}
	if !isAccountNumber(req.AccountNumber) {
		writeError(w, http.StatusBadRequest, "Account number must be 10 digits")
		return
	}
	if !isBankCode(req.BankCode) {
		writeError(w, http.StatusBadRequest, "Invalid bank code")
		return
	}

	recipient, err := h.service.CreateGatewayRecipient(r.Context(), req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_recipient outcome=failed bank_code=%s err=%v", req.BankCode, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "Recipient created", recipient)
}

// ListGatewayRecipientsHandler relays the gateway's recipient listing.
func (h *TransferHandlers) ListGatewayRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListGatewayRecipients(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// FetchGatewayRecipientHandler reads one recipient from the gateway.
func (h *TransferHandlers) FetchGatewayRecipientHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "Recipient code is required")
		return
	}

	recipient, err := h.service.FetchGatewayRecipient(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Recipient retrieved", recipient)
}

// GetBalanceHandler returns the gateway account balances.
func (h *TransferHandlers) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.GetBalance(r.Context())
	if err != nil {
		log.Printf("level=warn component=api endpoint=get_balance outcome=failed err=%v", err)
		writeServiceError(w, err)
		return
	}

	type balanceResponse struct {
		Currency       string `json:"currency"`
		Balance        int64  `json:"balance"`
		BalanceDisplay string `json:"balance_display"`
	}
	items := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, balanceResponse{
			Currency:       b.Currency,
			Balance:        b.Balance,
			BalanceDisplay: domain.FormatKobo(b.Balance),
		})
	}
	writeData(w, http.StatusOK, "Balances retrieved", items)
}

// GetBalanceLedgerHandler relays a page of gateway balance movements.
func (h *TransferHandlers) GetBalanceLedgerHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.GetBalanceLedger(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ListSavedRecipientsHandler returns the owner's saved destinations.
func (h *TransferHandlers) ListSavedRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromQuery(w, r)
	if !ok {
		return
	}

	recipients, err := h.service.ListSavedRecipients(r.Context(), ownerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_saved_recipients outcome=failed owner_id=%s err=%v", ownerID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve saved recipients")
		return
	}

	items := make([]savedRecipientResponse, 0, len(recipients))
	for i := range recipients {
		items = append(items, buildSavedRecipientResponse(&recipients[i]))
	}
	writeData(w, http.StatusOK, "Saved recipients retrieved", items)
}

// DeleteSavedRecipientHandler removes one of the owner's saved destinations.
func (h *TransferHandlers) DeleteSavedRecipientHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromQuery(w, r)
	if !ok {
		return
	}

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient ID")
		return
	}

	if err := h.service.DeleteSavedRecipient(r.Context(), ownerID, recipientID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Saved recipient removed", nil)
}
