/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the transfer-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation and handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tizlion/transfer-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Transfer ledger methods
	CreateTransfer(ctx context.Context, transfer *domain.Transfer) error
	UpdateTransferStatus(ctx context.Context, transferID uuid.UUID, params UpdateTransferStatusParams) error
	FindTransferByID(ctx context.Context, transferID uuid.UUID) (*domain.Transfer, error)
	FindTransferByReference(ctx context.Context, reference string) (*domain.Transfer, error)
	FindTransferByCode(ctx context.Context, transferCode string) (*domain.Transfer, error)
	ListTransfersByOwner(ctx context.Context, ownerID uuid.UUID, limit int, offset int) ([]domain.Transfer, error)
	// ListUnsettledTransfers returns non-terminal transfers untouched for at
	// least olderThan, oldest first, for the reconciliation loop.
	ListUnsettledTransfers(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transfer, error)

	// Saved recipient methods
	SaveRecipient(ctx context.Context, recipient *domain.SavedRecipient) (*domain.SavedRecipient, error)
	FindRecipientByAccount(ctx context.Context, ownerID uuid.UUID, accountNumber string, bankCode string) (*domain.SavedRecipient, error)
	ListRecipientsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.SavedRecipient, error)
	DeleteRecipient(ctx context.Context, ownerID uuid.UUID, recipientID uuid.UUID) (bool, error)
}

// UpdateTransferStatusParams carries the mutable fields of a transfer row.
// Nil pointers leave the existing column value untouched.
type UpdateTransferStatusParams struct {
	Status        string
	TransferCode  *string
	GatewayID     *int64
	FailureReason *string
}
