/**
 * @description
 * This file contains the core business logic for the transfer-service. The `Service`
 * struct orchestrates outbound payouts end to end, coordinating between the database
 * repository, the Paystack gateway client, and the message broker.
 *
 * Key features:
 * - Implements the transfer lifecycle: initiate -> (optional OTP) -> finalize -> terminal.
 * - Writes the ledger row before the gateway is contacted, so a reference can
 *   never be submitted twice and an ambiguous failure stays reconcilable.
 * - Reuses gateway recipients per destination account instead of re-creating them.
 * - Publishes events to RabbitMQ for asynchronous processing by other services.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/paystackclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/internal/store"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
	"github.com/tizlion/transfer-service/pkg/rabbitmq"
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// Gateway is the slice of the Paystack client the service depends on. A
// narrow interface keeps the business logic testable without HTTP fixtures.
type Gateway interface {
	ListBanks(ctx context.Context, currency string) ([]paystackclient.Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolvedAccount, error)
	CreateRecipient(ctx context.Context, req paystackclient.CreateRecipientRequest) (*paystackclient.Recipient, error)
	ListRecipients(ctx context.Context, opts paystackclient.ListOptions) (*paystackclient.RecipientPage, error)
	FetchRecipient(ctx context.Context, recipientCode string) (*paystackclient.Recipient, error)
	GetBalance(ctx context.Context) ([]paystackclient.Balance, error)
	GetBalanceLedger(ctx context.Context, opts paystackclient.ListOptions) (*paystackclient.LedgerPage, error)
	InitiateTransfer(ctx context.Context, req paystackclient.InitiateTransferRequest) (*paystackclient.Transfer, error)
	FinalizeTransfer(ctx context.Context, transferCode, otp string) (*paystackclient.Transfer, error)
	ListTransfers(ctx context.Context, opts paystackclient.ListTransfersOptions) (*paystackclient.TransferPage, error)
	FetchTransfer(ctx context.Context, idOrCode string) (*paystackclient.Transfer, error)
	VerifyTransfer(ctx context.Context, reference string) (*paystackclient.Transfer, error)
	ListTransactions(ctx context.Context, opts paystackclient.ListTransactionsOptions) (*paystackclient.TransactionPage, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystackclient.Transaction, error)
	FetchTransaction(ctx context.Context, id int64) (*paystackclient.Transaction, error)
}

// Service provides the core business logic for transfers.
type Service struct {
	repo            store.Repository
	gateway         Gateway
	eventProducer   rabbitmq.Publisher
	bankCache       *store.RedisBankCache
	defaultCurrency string
	defaultReason   string
}

// NewService creates a new transfer service instance. bankCache may be nil;
// bank listings then always hit the gateway.
func NewService(repo store.Repository, gateway Gateway, producer rabbitmq.Publisher, bankCache *store.RedisBankCache, defaultCurrency, defaultReason string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = "NGN"
	}
	if defaultReason == "" {
		defaultReason = "Transfer via TizLion AI"
	}
	return &Service{
		repo:            repo,
		gateway:         gateway,
		eventProducer:   producer,
		bankCache:       bankCache,
		defaultCurrency: defaultCurrency,
		defaultReason:   defaultReason,
	}
}

// NewTransferReference generates a short, upper-cased reference for a new
// transfer. References are assigned before the first network call and never
// regenerated for the same transfer.
func NewTransferReference() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// ListBanks returns the bank directory for a currency, served from the cache
// when possible.
func (s *Service) ListBanks(ctx context.Context, currency string) ([]domain.Bank, error) {
	if currency == "" {
		currency = s.defaultCurrency
	}
	if cached := s.bankCache.GetBanks(ctx, currency); len(cached) > 0 {
		return cached, nil
	}

	gwBanks, err := s.gateway.ListBanks(ctx, currency)
	if err != nil {
		return nil, err
	}
	banks := make([]domain.Bank, 0, len(gwBanks))
	for _, b := range gwBanks {
		banks = append(banks, domain.Bank{Name: b.Name, Code: b.Code, Slug: b.Slug})
	}
	s.bankCache.SetBanks(ctx, currency, banks)
	return banks, nil
}

// ResolveAccount confirms that a destination account exists and returns the
// registered account holder name.
func (s *Service) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystackclient.ResolvedAccount, error) {
	return s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
}

// SendMoney drives the full payout flow: resolve the destination account,
// reuse or create the gateway recipient, then initiate the transfer.
func (s *Service) SendMoney(ctx context.Context, ownerID uuid.UUID, req domain.SendMoneyRequest) (*domain.SendMoneyResult, error) {
	amountKobo := domain.ToKobo(req.Amount)
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}

	resolved, err := s.gateway.ResolveAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	recipient, err := s.ensureRecipient(ctx, ownerID, resolved.AccountName, req.AccountNumber, req.BankCode)
	if err != nil {
		return nil, err
	}

	return s.runTransfer(ctx, transferParams{
		OwnerID:       ownerID,
		RecipientCode: recipient.RecipientCode,
		AccountName:   recipient.AccountName,
		AccountNumber: recipient.AccountNumber,
		BankCode:      recipient.BankCode,
		BankName:      recipient.BankName,
		AmountKobo:    amountKobo,
		Reason:        req.Reason,
		Reference:     req.Reference,
	})
}

// InitiateTransfer starts a payout against an already-known gateway recipient
// code, fetching the stored destination details from the gateway.
func (s *Service) InitiateTransfer(ctx context.Context, ownerID uuid.UUID, req domain.InitiateTransferRequest) (*domain.SendMoneyResult, error) {
	amountKobo := domain.ToKobo(req.Amount)
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}

	gwRecipient, err := s.gateway.FetchRecipient(ctx, req.RecipientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipient: %w", err)
	}

	return s.runTransfer(ctx, transferParams{
		OwnerID:       ownerID,
		RecipientCode: gwRecipient.RecipientCode,
		AccountName:   gwRecipient.Name,
		AccountNumber: gwRecipient.Details.AccountNumber,
		BankCode:      gwRecipient.Details.BankCode,
		BankName:      gwRecipient.Details.BankName,
		AmountKobo:    amountKobo,
		Reason:        req.Reason,
		Reference:     req.Reference,
	})
}

// FinalizeTransfer submits the OTP for a transfer parked in awaiting_otp.
// The gateway decides whether a resent (transfer_code, otp) pair is accepted;
// no duplicate suppression happens locally.
func (s *Service) FinalizeTransfer(ctx context.Context, ownerID uuid.UUID, req domain.FinalizeTransferRequest) (*domain.Transfer, error) {
	transfer, err := s.repo.FindTransferByCode(ctx, req.TransferCode)
	if err != nil {
		return nil, err
	}
	if transfer.OwnerID != ownerID {
		return nil, store.ErrTransferNotFound
	}

	gwTransfer, err := s.gateway.FinalizeTransfer(ctx, req.TransferCode, req.OTP)
	if err != nil {
		// A rejected OTP leaves the transfer awaiting_otp both remotely and
		// locally; an indeterminate failure leaves it for the reconciler.
		log.Printf("level=warn component=transfer_service msg=\"finalize failed\" transfer_code=%s err=%v", req.TransferCode, err)
		return nil, err
	}

	if err := s.applyGatewayTransfer(ctx, transfer, gwTransfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// VerifyTransfer re-reads a transfer from the gateway by reference and
// reconciles the local ledger row with the remote status. The remote view is
// authoritative.
func (s *Service) VerifyTransfer(ctx context.Context, reference string) (*domain.Transfer, error) {
	gwTransfer, err := s.gateway.VerifyTransfer(ctx, reference)
	if err != nil {
		return nil, err
	}

	transfer, err := s.repo.FindTransferByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, store.ErrTransferNotFound) {
			// No local row; surface the remote view without persisting it.
			status, mapErr := domain.TransferStatusFromGateway(gwTransfer.Status)
			if mapErr != nil {
				return nil, mapErr
			}
			return &domain.Transfer{
				Reference:    gwTransfer.Reference,
				TransferCode: optionalString(gwTransfer.TransferCode),
				GatewayID:    optionalInt64(gwTransfer.ID),
				Amount:       gwTransfer.Amount,
				Currency:     gwTransfer.Currency,
				Reason:       gwTransfer.Reason,
				Status:       status,
			}, nil
		}
		return nil, err
	}

	if err := s.applyGatewayTransfer(ctx, transfer, gwTransfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// GetTransfer returns one of the owner's ledger rows.
func (s *Service) GetTransfer(ctx context.Context, ownerID, transferID uuid.UUID) (*domain.Transfer, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.OwnerID != ownerID {
		return nil, store.ErrTransferNotFound
	}
	return transfer, nil
}

// ListTransfers returns a page of the owner's ledger rows, newest first.
func (s *Service) ListTransfers(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Transfer, error) {
	return s.repo.ListTransfersByOwner(ctx, ownerID, limit, offset)
}

// ListSavedRecipients returns the owner's saved gateway recipients.
func (s *Service) ListSavedRecipients(ctx context.Context, ownerID uuid.UUID) ([]domain.SavedRecipient, error) {
	return s.repo.ListRecipientsByOwner(ctx, ownerID)
}

// DeleteSavedRecipient removes one of the owner's saved recipients.
func (s *Service) DeleteSavedRecipient(ctx context.Context, ownerID, recipientID uuid.UUID) error {
	deleted, err := s.repo.DeleteRecipient(ctx, ownerID, recipientID)
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrRecipientNotFound
	}
	return nil
}

// GetBalance returns the gateway account balances.
func (s *Service) GetBalance(ctx context.Context) ([]paystackclient.Balance, error) {
	return s.gateway.GetBalance(ctx)
}

// GetBalanceLedger returns a page of gateway balance movements.
func (s *Service) GetBalanceLedger(ctx context.Context, opts paystackclient.ListOptions) (*paystackclient.LedgerPage, error) {
	return s.gateway.GetBalanceLedger(ctx, opts)
}

// ListGatewayTransfers returns the gateway's own transfer listing, which may
// include transfers initiated outside this service.
func (s *Service) ListGatewayTransfers(ctx context.Context, opts paystackclient.ListTransfersOptions) (*paystackclient.TransferPage, error) {
	return s.gateway.ListTransfers(ctx, opts)
}

// FetchGatewayTransfer reads a single transfer from the gateway by id or code.
func (s *Service) FetchGatewayTransfer(ctx context.Context, idOrCode string) (*paystackclient.Transfer, error) {
	return s.gateway.FetchTransfer(ctx, idOrCode)
}

// CreateGatewayRecipient registers a recipient at the gateway without tying
// it to a saved destination.
func (s *Service) CreateGatewayRecipient(ctx context.Context, req paystackclient.CreateRecipientRequest) (*paystackclient.Recipient, error) {
	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}
	return s.gateway.CreateRecipient(ctx, req)
}

// ListGatewayRecipients returns the gateway's recipient listing.
func (s *Service) ListGatewayRecipients(ctx context.Context, opts paystackclient.ListOptions) (*paystackclient.RecipientPage, error) {
	return s.gateway.ListRecipients(ctx, opts)
}

// FetchGatewayRecipient reads a single recipient from the gateway.
func (s *Service) FetchGatewayRecipient(ctx context.Context, recipientCode string) (*paystackclient.Recipient, error) {
	return s.gateway.FetchRecipient(ctx, recipientCode)
}

// ListGatewayTransactions returns a page of inbound payment events.
func (s *Service) ListGatewayTransactions(ctx context.Context, opts paystackclient.ListTransactionsOptions) (*paystackclient.TransactionPage, error) {
	return s.gateway.ListTransactions(ctx, opts)
}

// VerifyGatewayTransaction re-checks an inbound payment by reference.
func (s *Service) VerifyGatewayTransaction(ctx context.Context, reference string) (*paystackclient.Transaction, error) {
	return s.gateway.VerifyTransaction(ctx, reference)
}

// FetchGatewayTransaction reads a single inbound payment by gateway id.
func (s *Service) FetchGatewayTransaction(ctx context.Context, id int64) (*paystackclient.Transaction, error) {
	return s.gateway.FetchTransaction(ctx, id)
}

// HandleChargeSuccess re-verifies an inbound charge notification against the
// gateway and, when confirmed, announces it to downstream consumers. Webhook
// payloads are never trusted directly.
func (s *Service) HandleChargeSuccess(ctx context.Context, event domain.ChargeSuccessEvent) error {
	txn, err := s.gateway.VerifyTransaction(ctx, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to verify transaction %s: %w", event.Reference, err)
	}
	if txn.Status != "success" {
		log.Printf("level=info component=transfer_service msg=\"charge notification not successful on verification; dropping\" reference=%s status=%s", event.Reference, txn.Status)
		return nil
	}

	verified := domain.TransactionVerifiedEvent{
		EventID:       uuid.NewString(),
		EventType:     "transaction.verified",
		Reference:     txn.Reference,
		GatewayID:     txn.ID,
		Amount:        txn.Amount,
		AmountDisplay: domain.FormatKobo(txn.Amount),
		Currency:      txn.Currency,
		Channel:       txn.Channel,
		Status:        txn.Status,
		OccurredAt:    time.Now().UTC(),
	}
	if !txn.PaidAt.IsZero() {
		verified.PaidAt = txn.PaidAt.Format(time.RFC3339)
	}
	if err := s.eventProducer.PublishTransactionVerifiedEvent(ctx, verified); err != nil {
		return fmt.Errorf("failed to publish verified transaction %s: %w", txn.Reference, err)
	}
	log.Printf("level=info component=transfer_service msg=\"inbound charge verified\" reference=%s amount=%d channel=%s", txn.Reference, txn.Amount, txn.Channel)
	return nil
}

// transferParams carries everything needed to write the ledger row and call
// the gateway.
type transferParams struct {
	OwnerID       uuid.UUID
	RecipientCode string
	AccountName   string
	AccountNumber string
	BankCode      string
	BankName      string
	AmountKobo    int64
	Reason        string
	Reference     string
}

// runTransfer writes the ledger row, initiates the transfer at the gateway,
// and reconciles the row with the response.
//
// The insert happens first: the unique reference index makes a resubmitted
// reference fail locally, and an ambiguous gateway failure leaves a row the
// reconciler can later settle via verify. The reference is never regenerated.
func (s *Service) runTransfer(ctx context.Context, params transferParams) (*domain.SendMoneyResult, error) {
	reference := strings.TrimSpace(params.Reference)
	if reference == "" {
		reference = NewTransferReference()
	}
	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		reason = fmt.Sprintf("%s to %s", s.defaultReason, params.AccountName)
	}
	bankName := params.BankName
	if bankName == "" {
		bankName = s.bankNameForCode(ctx, params.BankCode)
	}

	transfer := &domain.Transfer{
		ID:            uuid.New(),
		OwnerID:       params.OwnerID,
		Reference:     reference,
		RecipientCode: params.RecipientCode,
		AccountName:   params.AccountName,
		AccountNumber: params.AccountNumber,
		BankCode:      params.BankCode,
		BankName:      bankName,
		Amount:        params.AmountKobo,
		Currency:      s.defaultCurrency,
		Reason:        reason,
		Status:        domain.TransferStatusInitiated,
	}
	if err := s.repo.CreateTransfer(ctx, transfer); err != nil {
		return nil, err
	}

	gwTransfer, err := s.gateway.InitiateTransfer(ctx, paystackclient.InitiateTransferRequest{
		Amount:    params.AmountKobo,
		Recipient: params.RecipientCode,
		Reason:    reason,
		Currency:  s.defaultCurrency,
		Reference: reference,
	})
	if err != nil {
		if paystackclient.IsIndeterminate(err) {
			// The gateway may have accepted the transfer even though the
			// response was lost. The row stays non-terminal under its
			// original reference until verify settles it. Initiating again
			// with a fresh reference here could double-pay.
			log.Printf("level=warn component=transfer_service msg=\"initiate outcome unknown; leaving transfer for reconciliation\" reference=%s err=%v", reference, err)
			return nil, err
		}
		failure := err.Error()
		if apiErr, ok := paystackclient.AsAPIError(err); ok {
			failure = apiErr.Message
		}
		if updateErr := s.repo.UpdateTransferStatus(ctx, transfer.ID, store.UpdateTransferStatusParams{
			Status:        domain.TransferStatusFailed,
			FailureReason: &failure,
		}); updateErr != nil {
			log.Printf("level=error component=transfer_service msg=\"failed to record transfer failure\" reference=%s err=%v", reference, updateErr)
		} else {
			transfer.Status = domain.TransferStatusFailed
			transfer.FailureReason = &failure
			s.publishTransferEvent(ctx, transfer)
		}
		return nil, err
	}

	if err := s.applyGatewayTransfer(ctx, transfer, gwTransfer); err != nil {
		return nil, err
	}

	return &domain.SendMoneyResult{
		Transfer:    transfer,
		RequiresOTP: transfer.RequiresOTP(),
	}, nil
}

// ensureRecipient returns a saved recipient for the destination account,
// creating the gateway recipient on first use.
func (s *Service) ensureRecipient(ctx context.Context, ownerID uuid.UUID, accountName, accountNumber, bankCode string) (*domain.SavedRecipient, error) {
	existing, err := s.repo.FindRecipientByAccount(ctx, ownerID, accountNumber, bankCode)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrRecipientNotFound) {
		return nil, fmt.Errorf("failed to look up saved recipient: %w", err)
	}

	gwRecipient, err := s.gateway.CreateRecipient(ctx, paystackclient.CreateRecipientRequest{
		Name:          accountName,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
		Currency:      s.defaultCurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer recipient: %w", err)
	}

	recipient := &domain.SavedRecipient{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		RecipientCode: gwRecipient.RecipientCode,
		AccountName:   accountName,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
		BankName:      s.bankNameForCode(ctx, bankCode),
		Currency:      s.defaultCurrency,
	}
	if _, err := s.repo.SaveRecipient(ctx, recipient); err != nil {
		// The gateway recipient exists; losing the local cache row only costs
		// a duplicate creation next time.
		log.Printf("level=warn component=transfer_service msg=\"failed to save recipient locally\" recipient_code=%s err=%v", gwRecipient.RecipientCode, err)
	}
	return recipient, nil
}

// applyGatewayTransfer maps the gateway's view onto the ledger row, persists
// the change, and publishes a status event when the status moved.
func (s *Service) applyGatewayTransfer(ctx context.Context, transfer *domain.Transfer, gwTransfer *paystackclient.Transfer) error {
	status, err := domain.TransferStatusFromGateway(gwTransfer.Status)
	if err != nil {
		// Keep the row non-terminal so the reconciler keeps watching it; an
		// unknown status must not strand or falsely settle real money.
		log.Printf("level=warn component=transfer_service msg=\"unmapped gateway status; treating as pending\" reference=%s gateway_status=%s", transfer.Reference, gwTransfer.Status)
		status = domain.TransferStatusPending
	}

	changed := transfer.Status != status
	params := store.UpdateTransferStatusParams{
		Status:       status,
		TransferCode: optionalString(gwTransfer.TransferCode),
		GatewayID:    optionalInt64(gwTransfer.ID),
	}
	if err := s.repo.UpdateTransferStatus(ctx, transfer.ID, params); err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.Reference, err)
	}

	transfer.Status = status
	if gwTransfer.TransferCode != "" {
		transfer.TransferCode = &gwTransfer.TransferCode
	}
	if gwTransfer.ID != 0 {
		gatewayID := gwTransfer.ID
		transfer.GatewayID = &gatewayID
	}
	if changed {
		s.publishTransferEvent(ctx, transfer)
	}
	return nil
}

// publishTransferEvent announces a ledger status change. Publishing is best
// effort; the ledger row is the source of truth.
func (s *Service) publishTransferEvent(ctx context.Context, transfer *domain.Transfer) {
	event := domain.TransferStatusEvent{
		EventID:       uuid.NewString(),
		EventType:     fmt.Sprintf("transfer.status.%s", transfer.Status),
		Reference:     transfer.Reference,
		OwnerID:       transfer.OwnerID.String(),
		Status:        transfer.Status,
		Amount:        transfer.Amount,
		AmountDisplay: domain.FormatKobo(transfer.Amount),
		Currency:      transfer.Currency,
		AccountName:   transfer.AccountName,
		BankName:      transfer.BankName,
		Reason:        transfer.Reason,
		OccurredAt:    time.Now().UTC(),
	}
	if transfer.TransferCode != nil {
		event.TransferCode = *transfer.TransferCode
	}
	if transfer.FailureReason != nil {
		event.FailureReason = *transfer.FailureReason
	}
	if err := s.eventProducer.PublishTransferStatusEvent(ctx, event); err != nil {
		log.Printf("level=warn component=transfer_service msg=\"failed to publish transfer status event\" reference=%s status=%s err=%v", transfer.Reference, transfer.Status, err)
	}
}

// bankNameForCode resolves a bank code to its display name, best effort.
func (s *Service) bankNameForCode(ctx context.Context, bankCode string) string {
	banks, err := s.ListBanks(ctx, s.defaultCurrency)
	if err != nil {
		log.Printf("level=warn component=transfer_service msg=\"bank directory unavailable for name lookup\" bank_code=%s err=%v", bankCode, err)
		return ""
	}
	for _, bank := range banks {
		if bank.Code == bankCode {
			return bank.Name
		}
	}
	return ""
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func optionalInt64(value int64) *int64 {
	if value == 0 {
		return nil
	}
	return &value
}
