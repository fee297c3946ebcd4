package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/app"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/internal/store"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
	"github.com/tizlion/transfer-service/pkg/rabbitmq"
)

type apiRepoStub struct {
	store.Repository

	created             *domain.Transfer
	updates             []store.UpdateTransferStatusParams
	transferByReference *domain.Transfer
}

func (s *apiRepoStub) CreateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	s.created = transfer
	return nil
}

func (s *apiRepoStub) UpdateTransferStatus(ctx context.Context, transferID uuid.UUID, params store.UpdateTransferStatusParams) error {
	s.updates = append(s.updates, params)
	return nil
}

func (s *apiRepoStub) FindRecipientByAccount(ctx context.Context, ownerID uuid.UUID, accountNumber, bankCode string) (*domain.SavedRecipient, error) {
	return nil, store.ErrRecipientNotFound
}

func (s *apiRepoStub) SaveRecipient(ctx context.Context, recipient *domain.SavedRecipient) (*domain.SavedRecipient, error) {
	return recipient, nil
}

func (s *apiRepoStub) FindTransferByReference(ctx context.Context, reference string) (*domain.Transfer, error) {
	if s.transferByReference == nil {
		return nil, store.ErrTransferNotFound
	}
	return s.transferByReference, nil
}

type apiPublisherStub struct{}

func (apiPublisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (apiPublisherStub) PublishTransferStatusEvent(ctx context.Context, event domain.TransferStatusEvent) error {
	return nil
}

func (apiPublisherStub) PublishTransactionVerifiedEvent(ctx context.Context, event domain.TransactionVerifiedEvent) error {
	return nil
}

func (apiPublisherStub) Close() {}

// fakeGateway captures what the service sent to the remote while answering
// with canned Paystack envelopes.
type fakeGateway struct {
	initiateBody map[string]interface{}
}

func newTestAPI(t *testing.T) (http.Handler, *apiRepoStub, *fakeGateway) {
	t.Helper()

	repo := &apiRepoStub{}
	fake := &fakeGateway{}

	mux := http.NewServeMux()
	mux.HandleFunc("/bank", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Banks retrieved","data":[
			{"name":"Guaranty Trust Bank","slug":"gtbank","code":"058","currency":"NGN"},
			{"name":"Zenith Bank","slug":"zenith-bank","code":"057","currency":"NGN"}
		],"meta":{"total":2,"perPage":100,"page":1,"pageCount":1}}`)
	})
	mux.HandleFunc("/bank/resolve", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Account number resolved","data":{"account_number":"0123456789","account_name":"ADA LOVELACE","bank_id":9}}`)
	})
	mux.HandleFunc("/transferrecipient", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Transfer recipient created successfully","data":{"id":28,"recipient_code":"RCP_api1","type":"nuban","name":"ADA LOVELACE","currency":"NGN","details":{"account_number":"0123456789","account_name":"ADA LOVELACE","bank_code":"058","bank_name":"Guaranty Trust Bank"}}}`)
	})
	mux.HandleFunc("/transfer", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			fmt.Fprint(w, `{"status":true,"message":"Transfers retrieved","data":[],"meta":{"total":0,"perPage":50,"page":1,"pageCount":0}}`)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fake.initiateBody = body
		fmt.Fprintf(w, `{"status":true,"message":"Transfer has been queued","data":{"id":7001,"amount":%v,"currency":"NGN","reference":%q,"status":"pending","transfer_code":"TRF_api1"}}`,
			body["amount"], body["reference"])
	})
	mux.HandleFunc("/transfer/verify/", func(w http.ResponseWriter, r *http.Request) {
		reference := strings.TrimPrefix(r.URL.Path, "/transfer/verify/")
		fmt.Fprintf(w, `{"status":true,"message":"Transfer retrieved","data":{"id":7002,"amount":10000,"currency":"NGN","reference":%q,"status":"success","transfer_code":"TRF_ver1"}}`, reference)
	})
	mux.HandleFunc("/balance", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"Balances retrieved","data":[{"currency":"NGN","balance":12000000}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := paystackclient.NewClient(srv.URL, "sk_test_api_handlers")
	var publisher rabbitmq.Publisher = apiPublisherStub{}
	service := app.NewService(repo, client, publisher, nil, "NGN", "")
	router := TransferRoutes(NewTransferHandlers(service), testAuthSecret, nil, 0)
	return router, repo, fake
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+mintServiceToken(t, testAuthSecret, "orchestrator"))
	return req
}

type decodedEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) decodedEnvelope {
	t.Helper()
	var resp decodedEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected envelope body, got %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealthEndpoint_OpenWithoutToken(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAPI_RejectsRequestsWithoutToken(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/balance", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestSendMoneyEndpoint_CreatesTransfer(t *testing.T) {
	router, repo, fake := newTestAPI(t)

	body := fmt.Sprintf(`{"owner_id":%q,"amount":2500,"account_number":"0123456789","bank_code":"058"}`, uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/transfers/send", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Status {
		t.Fatalf("expected status true, got %s", rec.Body.String())
	}

	var transfer transferResponse
	if err := json.Unmarshal(resp.Data, &transfer); err != nil {
		t.Fatalf("failed to decode transfer payload: %v", err)
	}
	if len(transfer.Reference) != 8 {
		t.Fatalf("expected generated 8-character reference, got %q", transfer.Reference)
	}
	if transfer.Amount != 250000 {
		t.Fatalf("expected amount converted to kobo, got %d", transfer.Amount)
	}
	if transfer.AmountDisplay != "₦2,500.00" {
		t.Fatalf("expected formatted amount, got %q", transfer.AmountDisplay)
	}
	if transfer.Status != domain.TransferStatusPending {
		t.Fatalf("expected pending status, got %q", transfer.Status)
	}

	if repo.created == nil || repo.created.Reference != transfer.Reference {
		t.Fatalf("expected ledger row under the same reference, got %+v", repo.created)
	}
	if fake.initiateBody["source"] != "balance" {
		t.Fatalf("expected source=balance on the wire, got %v", fake.initiateBody["source"])
	}
	if fake.initiateBody["reference"] != transfer.Reference {
		t.Fatalf("expected wire reference %q, got %v", transfer.Reference, fake.initiateBody["reference"])
	}
}

func TestSendMoneyEndpoint_RejectsBadAccountNumber(t *testing.T) {
	router, repo, _ := newTestAPI(t)

	body := fmt.Sprintf(`{"owner_id":%q,"amount":2500,"account_number":"12345","bank_code":"058"}`, uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/transfers/send", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Message != "Account number must be 10 digits" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if repo.created != nil {
		t.Fatal("expected no ledger row for rejected request")
	}
}

func TestSendMoneyEndpoint_RejectsInvalidOwnerID(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/transfers/send",
		`{"owner_id":"not-a-uuid","amount":2500,"account_number":"0123456789","bank_code":"058"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFinalizeTransferEndpoint_RequiresFields(t *testing.T) {
	router, _, _ := newTestAPI(t)

	body := fmt.Sprintf(`{"owner_id":%q,"transfer_code":"TRF_x","otp":""}`, uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/transfers/finalize", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing otp, got %d", rec.Code)
	}
}

func TestVerifyTransferEndpoint_ReturnsRemoteView(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/transfers/verify/EXTREF01", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	var transfer transferResponse
	if err := json.Unmarshal(resp.Data, &transfer); err != nil {
		t.Fatalf("failed to decode transfer payload: %v", err)
	}
	if transfer.Reference != "EXTREF01" || transfer.Status != domain.TransferStatusSuccess {
		t.Fatalf("expected remote view of EXTREF01, got %+v", transfer)
	}
}

func TestGetBalanceEndpoint_FormatsAmounts(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/balance", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	var balances []struct {
		Currency       string `json:"currency"`
		Balance        int64  `json:"balance"`
		BalanceDisplay string `json:"balance_display"`
	}
	if err := json.Unmarshal(resp.Data, &balances); err != nil {
		t.Fatalf("failed to decode balances: %v", err)
	}
	if len(balances) != 1 || balances[0].BalanceDisplay != "₦120,000.00" {
		t.Fatalf("unexpected balances payload: %+v", balances)
	}
}

func TestListBanksEndpoint_ReturnsDirectory(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/banks", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	var banks []domain.Bank
	if err := json.Unmarshal(resp.Data, &banks); err != nil {
		t.Fatalf("failed to decode banks: %v", err)
	}
	if len(banks) != 2 || banks[0].Code != "058" {
		t.Fatalf("unexpected bank directory: %+v", banks)
	}
}

func TestFetchTransactionEndpoint_RejectsNonNumericID(t *testing.T) {
	router, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/transactions/not-a-number", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWriteServiceError_MapsErrorTaxonomy(t *testing.T) {
	rawBody := `{"status":false,"message":"Transfer not found"}`
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"configuration error", &paystackclient.APIError{Kind: paystackclient.ErrorKindConfiguration, Message: "secret key not configured"}, http.StatusUnauthorized},
		{"network error", &paystackclient.APIError{Kind: paystackclient.ErrorKindNetwork, Message: "network error during API call"}, http.StatusBadGateway},
		{"parse error", &paystackclient.APIError{Kind: paystackclient.ErrorKindParse, Message: "invalid JSON response", StatusCode: 200}, http.StatusBadGateway},
		{"domain rejection", &paystackclient.APIError{Kind: paystackclient.ErrorKindDomain, Message: "Your balance is not enough"}, http.StatusBadRequest},
		{"remote 404", &paystackclient.APIError{Kind: paystackclient.ErrorKindClient, Message: "Transfer not found", StatusCode: 404, Response: json.RawMessage(rawBody)}, http.StatusNotFound},
		{"remote 503", &paystackclient.APIError{Kind: paystackclient.ErrorKindServer, Message: "Server error 503", StatusCode: 503}, http.StatusServiceUnavailable},
		{"duplicate reference", store.ErrDuplicateReference, http.StatusConflict},
		{"invalid amount", app.ErrInvalidAmount, http.StatusBadRequest},
		{"missing transfer", store.ErrTransferNotFound, http.StatusNotFound},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.wantStatus, rec.Code)
		}
		resp := decodeEnvelope(t, rec)
		if resp.Status {
			t.Fatalf("%s: expected status false", tc.name)
		}
	}

	// The raw remote body must ride along for relayed gateway errors.
	rec := httptest.NewRecorder()
	writeServiceError(rec, &paystackclient.APIError{Kind: paystackclient.ErrorKindClient, Message: "Transfer not found", StatusCode: 404, Response: json.RawMessage(rawBody)})
	resp := decodeEnvelope(t, rec)
	if string(resp.Data) != rawBody {
		t.Fatalf("expected raw remote body as data, got %s", resp.Data)
	}
}
