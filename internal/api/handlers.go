/**
 * @description
 * This file contains the HTTP handlers for the transfer-service's core payout
 * endpoints. Handlers parse incoming requests, call the application service,
 * and write responses in the gateway envelope shape {status, message, data} so
 * callers see one consistent contract whether an answer came from this service
 * or was relayed from Paystack.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 * - pkg/paystackclient: For the gateway error taxonomy.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/app"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/internal/store"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

// TransferHandlers holds the application service that handlers will use.
type TransferHandlers struct {
	service *app.Service
}

// NewTransferHandlers creates a new instance of TransferHandlers.
func NewTransferHandlers(service *app.Service) *TransferHandlers {
	return &TransferHandlers{service: service}
}

// apiResponse is the envelope every endpoint answers with. It mirrors the
// gateway's own response shape.
type apiResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// transferResponse is the wire shape for a ledger transfer. Amounts are in
// kobo with a pre-formatted display string alongside.
type transferResponse struct {
	TransferID    string  `json:"transfer_id"`
	Reference     string  `json:"reference"`
	Status        string  `json:"status"`
	RequiresOTP   bool    `json:"requires_otp,omitempty"`
	TransferCode  *string `json:"transfer_code,omitempty"`
	Amount        int64   `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	Currency      string  `json:"currency"`
	AccountName   string  `json:"account_name,omitempty"`
	AccountNumber string  `json:"account_number,omitempty"`
	BankName      string  `json:"bank_name,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

func buildTransferResponse(transfer *domain.Transfer, requiresOTP bool) transferResponse {
	resp := transferResponse{
		Reference:     transfer.Reference,
		Status:        transfer.Status,
		RequiresOTP:   requiresOTP,
		TransferCode:  transfer.TransferCode,
		Amount:        transfer.Amount,
		AmountDisplay: domain.FormatKobo(transfer.Amount),
		Currency:      transfer.Currency,
		AccountName:   transfer.AccountName,
		AccountNumber: transfer.AccountNumber,
		BankName:      transfer.BankName,
		Reason:        transfer.Reason,
		FailureReason: transfer.FailureReason,
	}
	if transfer.ID != uuid.Nil {
		resp.TransferID = transfer.ID.String()
	}
	if !transfer.CreatedAt.IsZero() {
		resp.CreatedAt = transfer.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// SendMoneyHandler drives the full payout flow from raw destination details.
func (h *TransferHandlers) SendMoneyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"owner_id"`
		domain.SendMoneyRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=send_money outcome=reject reason=invalid_json err=%v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_id")
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

	log.Printf("level=info component=api endpoint=send_money outcome=accepted owner_id=%s bank_code=%s amount=%.2f", ownerID, req.BankCode, req.Amount)

	result, err := h.service.SendMoney(r.Context(), ownerID, req.SendMoneyRequest)
	if err != nil {
		log.Printf("level=warn component=api endpoint=send_money outcome=failed owner_id=%s err=%v", ownerID, err)
		writeServiceError(w, err)
		return
	}

	message := "Transfer initiated"
	if result.RequiresOTP {
		message = "Transfer requires OTP finalization"
	}
	writeData(w, http.StatusCreated, message, buildTransferResponse(result.Transfer, result.RequiresOTP))
}

// InitiateTransferHandler starts a payout against a known recipient code.
func (h *TransferHandlers) InitiateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"owner_id"`
		domain.InitiateTransferRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=initiate_transfer outcome=reject reason=invalid_json err=%v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_id")
		return
	}
	if strings.TrimSpace(req.RecipientCode) == "" {
		writeError(w, http.StatusBadRequest, "recipient_code is required")
		return
	}

	log.Printf("level=info component=api endpoint=initiate_transfer outcome=accepted owner_id=%s recipient=%s amount=%.2f", ownerID, req.RecipientCode, req.Amount)

	result, err := h.service.InitiateTransfer(r.Context(), ownerID, req.InitiateTransferRequest)
	if err != nil {
		log.Printf("level=warn component=api endpoint=initiate_transfer outcome=failed owner_id=%s err=%v", ownerID, err)
		writeServiceError(w, err)
		return
	}

	message := "Transfer initiated"
	if result.RequiresOTP {
		message = "Transfer requires OTP finalization"
	}
	writeData(w, http.StatusCreated, message, buildTransferResponse(result.Transfer, result.RequiresOTP))
}

// FinalizeTransferHandler submits the OTP for a transfer awaiting one.
func (h *TransferHandlers) FinalizeTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"owner_id"`
		domain.FinalizeTransferRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_id")
		return
	}
	if strings.TrimSpace(req.TransferCode) == "" || strings.TrimSpace(req.OTP) == "" {
		writeError(w, http.StatusBadRequest, "transfer_code and otp are required")
		return
	}

	transfer, err := h.service.FinalizeTransfer(r.Context(), ownerID, req.FinalizeTransferRequest)
	if err != nil {
		log.Printf("level=warn component=api endpoint=finalize_transfer outcome=failed owner_id=%s transfer_code=%s err=%v", ownerID, req.TransferCode, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transfer finalized", buildTransferResponse(transfer, false))
}

// VerifyTransferHandler re-checks a transfer at the gateway by reference and
// returns the reconciled view.
func (h *TransferHandlers) VerifyTransferHandler(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(chi.URLParam(r, "reference"))
	if reference == "" {
		writeError(w, http.StatusBadRequest, "Reference is required")
		return
	}

	transfer, err := h.service.VerifyTransfer(r.Context(), reference)
	if err != nil {
		log.Printf("level=warn component=api endpoint=verify_transfer outcome=failed reference=%s err=%v", reference, err)
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transfer verified", buildTransferResponse(transfer, transfer.RequiresOTP()))
}

// ListTransferHistoryHandler returns a page of the owner's ledger rows.
func (h *TransferHandlers) ListTransferHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromQuery(w, r)
	if !ok {
		return
	}

	limit, err := parseOptionalPositiveInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := parseOptionalPositiveInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	transfers, err := h.service.ListTransfers(r.Context(), ownerID, limit, offset)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transfer_history outcome=failed owner_id=%s err=%v", ownerID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve transfer history")
		return
	}

	items := make([]transferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, buildTransferResponse(&transfers[i], false))
	}
	writeData(w, http.StatusOK, "Transfer history retrieved", items)
}

// GetTransferHistoryItemHandler returns a single ledger row by id.
func (h *TransferHandlers) GetTransferHistoryItemHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromQuery(w, r)
	if !ok {
		return
	}

	transferID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transfer ID")
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), ownerID, transferID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transfer retrieved", buildTransferResponse(transfer, transfer.RequiresOTP()))
}

// ListGatewayTransfersHandler relays the gateway's own transfer listing,
// which may include transfers initiated outside this service.
func (h *TransferHandlers) ListGatewayTransfersHandler(w http.ResponseWriter, r *http.Request) {
	opts := paystackclient.ListTransfersOptions{
		ListOptions: listOptionsFromQuery(r),
		From:        strings.TrimSpace(r.URL.Query().Get("from")),
		To:          strings.TrimSpace(r.URL.Query().Get("to")),
	}

	page, err := h.service.ListGatewayTransfers(r.Context(), opts)
	if err != nil {
		log.Printf("level=warn component=api endpoint=list_gateway_transfers outcome=failed err=%v", err)
		writeServiceError(w, err)
		return
	}

	// The page is already the full gateway envelope; relay it untouched.
	writeJSON(w, http.StatusOK, page)
}

// FetchGatewayTransferHandler reads one transfer from the gateway by id or code.
func (h *TransferHandlers) FetchGatewayTransferHandler(w http.ResponseWriter, r *http.Request) {
	idOrCode := strings.TrimSpace(chi.URLParam(r, "code"))
	if idOrCode == "" {
		writeError(w, http.StatusBadRequest, "Transfer id or code is required")
		return
	}

	transfer, err := h.service.FetchGatewayTransfer(r.Context(), idOrCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Transfer retrieved", transfer)
}

// ownerIDFromQuery parses the owner_id query parameter, writing the error
// response itself when the value is missing or malformed.
func ownerIDFromQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return uuid.Nil, false
	}
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_id")
		return uuid.Nil, false
	}
	return ownerID, true
}

func listOptionsFromQuery(r *http.Request) paystackclient.ListOptions {
	perPage, err := parseOptionalPositiveInt(r.URL.Query().Get("perPage"), 0)
	if err != nil {
		perPage = 0
	}
	page, err := parseOptionalPositiveInt(r.URL.Query().Get("page"), 0)
	if err != nil {
		page = 0
	}
	return paystackclient.ListOptions{PerPage: perPage, Page: page}
}

func parseOptionalPositiveInt(raw string, defaultValue int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("must be >= 0")
	}
	return value, nil
}

func isAccountNumber(value string) bool {
	if len(value) != 10 {
		return false
	}
	return isDigits(value)
}

func isBankCode(value string) bool {
	if len(value) < 3 || len(value) > 6 {
		return false
	}
	return isDigits(value)
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

// writeServiceError translates a service-layer error into the envelope, using
// the gateway error taxonomy when one applies. The raw remote body rides
// along as data so callers lose nothing.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	case errors.Is(err, store.ErrDuplicateReference):
		writeError(w, http.StatusConflict, "A transfer with this reference already exists")
		return
	case errors.Is(err, store.ErrTransferNotFound):
		writeError(w, http.StatusNotFound, "Transfer not found")
		return
	case errors.Is(err, store.ErrRecipientNotFound):
		writeError(w, http.StatusNotFound, "Recipient not found")
		return
	case errors.Is(err, app.ErrBankNotFound):
		writeError(w, http.StatusNotFound, "Bank not found")
		return
	}

	if apiErr, ok := paystackclient.AsAPIError(err); ok {
		status := http.StatusInternalServerError
		switch apiErr.Kind {
		case paystackclient.ErrorKindClient, paystackclient.ErrorKindServer:
			status = apiErr.StatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
		case paystackclient.ErrorKindConfiguration:
			status = http.StatusUnauthorized
		case paystackclient.ErrorKindNetwork, paystackclient.ErrorKindParse:
			status = http.StatusBadGateway
		case paystackclient.ErrorKindDomain:
			status = http.StatusBadRequest
		}
		resp := apiResponse{Status: false, Message: apiErr.Message}
		if len(apiErr.Response) > 0 {
			resp.Data = json.RawMessage(apiErr.Response)
		}
		writeJSON(w, status, resp)
		return
	}

	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// writeJSON is a helper for writing JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps a successful payload in the response envelope.
func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, apiResponse{Status: true, Message: message, Data: data})
}

// writeError is a helper for writing envelope-shaped error responses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Status: false, Message: message})
}
