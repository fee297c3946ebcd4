package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/internal/store"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

type reconcileRepoStub struct {
	store.Repository

	unsettled       []domain.Transfer
	listedOlderThan time.Duration
	listedLimit     int

	statusUpdates []store.UpdateTransferStatusParams
}

func (s *reconcileRepoStub) ListUnsettledTransfers(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transfer, error) {
	s.listedOlderThan = olderThan
	s.listedLimit = limit
	return s.unsettled, nil
}

func (s *reconcileRepoStub) UpdateTransferStatus(ctx context.Context, transferID uuid.UUID, params store.UpdateTransferStatusParams) error {
	s.statusUpdates = append(s.statusUpdates, params)
	return nil
}

func TestReconcileUnsettledTransfers_SettlesMovedRows(t *testing.T) {
	repo := &reconcileRepoStub{
		unsettled: []domain.Transfer{
			{ID: uuid.New(), OwnerID: uuid.New(), Reference: "MOVED001", Status: domain.TransferStatusPending},
			{ID: uuid.New(), OwnerID: uuid.New(), Reference: "STUCK001", Status: domain.TransferStatusPending},
		},
	}
	gateway := &gatewayStub{
		verifyByReference: map[string]*paystackclient.Transfer{
			"MOVED001": {ID: 11, Status: "success", TransferCode: "TRF_M"},
			"STUCK001": {ID: 12, Status: "pending", TransferCode: "TRF_S"},
		},
	}
	publisher := &publisherStub{}
	service := NewService(repo, gateway, publisher, nil, "NGN", "")

	updated, err := service.ReconcileUnsettledTransfers(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected one settled row, got %d", updated)
	}
	if repo.listedLimit != defaultReconcileLimit {
		t.Fatalf("expected default limit %d, got %d", defaultReconcileLimit, repo.listedLimit)
	}
	if repo.listedOlderThan != reconcileEligibilityAge {
		t.Fatalf("expected eligibility age %v, got %v", reconcileEligibilityAge, repo.listedOlderThan)
	}
	if len(repo.statusUpdates) != 2 {
		t.Fatalf("expected both rows refreshed, got %d updates", len(repo.statusUpdates))
	}
	if len(publisher.statusEvents) != 1 || publisher.statusEvents[0].Reference != "MOVED001" {
		t.Fatalf("expected one settlement event for MOVED001, got %+v", publisher.statusEvents)
	}
}

func TestReconcileUnsettledTransfers_ClosesOrphanedRows(t *testing.T) {
	repo := &reconcileRepoStub{
		unsettled: []domain.Transfer{
			{ID: uuid.New(), OwnerID: uuid.New(), Reference: "ORPHAN01", Status: domain.TransferStatusInitiated},
		},
	}
	// The stub gateway answers 404 for any reference it was not told about,
	// which is the orphan case: the initiate never landed remotely.
	gateway := &gatewayStub{}
	publisher := &publisherStub{}
	service := NewService(repo, gateway, publisher, nil, "NGN", "")

	updated, err := service.ReconcileUnsettledTransfers(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected orphaned row to be closed, got %d updates", updated)
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0].Status != domain.TransferStatusFailed {
		t.Fatalf("expected failed status update, got %+v", repo.statusUpdates)
	}
	if repo.statusUpdates[0].FailureReason == nil || *repo.statusUpdates[0].FailureReason != "gateway has no record of this reference" {
		t.Fatalf("expected orphan failure reason, got %+v", repo.statusUpdates[0].FailureReason)
	}
	if len(publisher.statusEvents) != 1 || publisher.statusEvents[0].Status != domain.TransferStatusFailed {
		t.Fatalf("expected failed event, got %+v", publisher.statusEvents)
	}
}

func TestReconcileUnsettledTransfers_KeepsRowsOnTransientFailures(t *testing.T) {
	repo := &reconcileRepoStub{
		unsettled: []domain.Transfer{
			{ID: uuid.New(), OwnerID: uuid.New(), Reference: "WAIT0001", Status: domain.TransferStatusPending},
		},
	}
	gateway := &gatewayStub{
		verifyErrs: map[string]error{
			"WAIT0001": &paystackclient.APIError{Kind: paystackclient.ErrorKindServer, Message: "Server error 503", StatusCode: http.StatusServiceUnavailable},
		},
	}
	publisher := &publisherStub{}
	service := NewService(repo, gateway, publisher, nil, "NGN", "")

	updated, err := service.ReconcileUnsettledTransfers(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected no rows touched during gateway outage, got %d", updated)
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("expected no status updates, got %+v", repo.statusUpdates)
	}
	if len(publisher.statusEvents) != 0 {
		t.Fatalf("expected no events, got %+v", publisher.statusEvents)
	}
}

func TestReconcileUnsettledTransfers_EmptyLedgerSkipsGateway(t *testing.T) {
	repo := &reconcileRepoStub{}
	gateway := &gatewayStub{}
	service := NewService(repo, gateway, &publisherStub{}, nil, "NGN", "")

	updated, err := service.ReconcileUnsettledTransfers(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected nothing to reconcile, got %d", updated)
	}
	if gateway.verifyCalls != 0 {
		t.Fatalf("expected no gateway calls for empty ledger, got %d", gateway.verifyCalls)
	}
}
