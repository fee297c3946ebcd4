package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/internal/store"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

const (
	defaultReconcileLimit = 100
	// Rows younger than this are skipped: the in-flight request that created
	// them may still be running.
	reconcileEligibilityAge = 2 * time.Minute
)

// ReconcileUnsettledTransfers re-verifies every non-terminal ledger row
// against the gateway and settles the ones whose remote status has moved.
// This is what closes the loop on ambiguous initiate failures: the row keeps
// its original reference and the gateway's answer for that reference decides
// whether money actually moved. Returns the number of rows updated.
func (s *Service) ReconcileUnsettledTransfers(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultReconcileLimit
	}

	transfers, err := s.repo.ListUnsettledTransfers(ctx, reconcileEligibilityAge, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsettled transfers: %w", err)
	}
	if len(transfers) == 0 {
		return 0, nil
	}

	updated := 0
	for i := range transfers {
		transfer := &transfers[i]
		previous := transfer.Status

		gwTransfer, err := s.gateway.VerifyTransfer(ctx, transfer.Reference)
		if err != nil {
			if apiErr, ok := paystackclient.AsAPIError(err); ok && apiErr.Kind == paystackclient.ErrorKindClient && apiErr.StatusCode == http.StatusNotFound {
				// The gateway has no transfer under this reference, so the
				// original initiate never landed. Safe to close the row.
				failure := "gateway has no record of this reference"
				if updateErr := s.repo.UpdateTransferStatus(ctx, transfer.ID, store.UpdateTransferStatusParams{
					Status:        domain.TransferStatusFailed,
					FailureReason: &failure,
				}); updateErr != nil {
					log.Printf("level=error component=reconciler msg=\"failed to close orphaned transfer\" reference=%s err=%v", transfer.Reference, updateErr)
					continue
				}
				transfer.Status = domain.TransferStatusFailed
				transfer.FailureReason = &failure
				s.publishTransferEvent(ctx, transfer)
				updated++
				continue
			}
			log.Printf("level=warn component=reconciler msg=\"verification failed; will retry next run\" reference=%s err=%v", transfer.Reference, err)
			continue
		}

		if err := s.applyGatewayTransfer(ctx, transfer, gwTransfer); err != nil {
			log.Printf("level=warn component=reconciler msg=\"failed to apply gateway status\" reference=%s err=%v", transfer.Reference, err)
			continue
		}
		if transfer.Status != previous {
			log.Printf("level=info component=reconciler msg=\"transfer settled\" reference=%s from=%s to=%s", transfer.Reference, previous, transfer.Status)
			updated++
		}
	}

	log.Printf("level=info component=reconciler msg=\"reconcile pass complete\" examined=%d updated=%d", len(transfers), updated)
	return updated, nil
}
