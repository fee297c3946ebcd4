/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * for the transfer ledger and saved gateway recipients.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tizlion/transfer-service/internal/domain"
)

var (
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrDuplicateReference = errors.New("transfer reference already exists")
	ErrRecipientNotFound  = errors.New("saved recipient not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateTransfer inserts a new ledger row. The row is written before the
// gateway is contacted, so the unique index on `reference` rejects a reused
// reference locally, before any money can move twice.
func (r *PostgresRepository) CreateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (
			id, owner_id, reference, transfer_code, gateway_id, recipient_code,
			account_name, account_number, bank_code, bank_name,
			amount, currency, reason, status, failure_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		transfer.ID, transfer.OwnerID, transfer.Reference, transfer.TransferCode, transfer.GatewayID,
		transfer.RecipientCode, transfer.AccountName, transfer.AccountNumber, transfer.BankCode, transfer.BankName,
		transfer.Amount, transfer.Currency, transfer.Reason, transfer.Status, transfer.FailureReason,
	).Scan(&transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// UpdateTransferStatus updates a transfer's status and any gateway-assigned
// fields that became known. Nil params leave existing values in place.
func (r *PostgresRepository) UpdateTransferStatus(ctx context.Context, transferID uuid.UUID, params UpdateTransferStatusParams) error {
	query := `
		UPDATE transfers
		SET status = $2,
		    transfer_code = COALESCE($3, transfer_code),
		    gateway_id = COALESCE($4, gateway_id),
		    failure_reason = COALESCE($5, failure_reason),
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, transferID, params.Status, params.TransferCode, params.GatewayID, params.FailureReason)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

// FindTransferByID retrieves a transfer ledger row by its primary key.
func (r *PostgresRepository) FindTransferByID(ctx context.Context, transferID uuid.UUID) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `
		SELECT id, owner_id, reference, transfer_code, gateway_id, recipient_code,
		       account_name, account_number, bank_code, bank_name,
		       amount, currency, reason, status, failure_reason, created_at, updated_at
		FROM transfers
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, transferID).Scan(
		&transfer.ID, &transfer.OwnerID, &transfer.Reference, &transfer.TransferCode, &transfer.GatewayID,
		&transfer.RecipientCode, &transfer.AccountName, &transfer.AccountNumber, &transfer.BankCode, &transfer.BankName,
		&transfer.Amount, &transfer.Currency, &transfer.Reason, &transfer.Status, &transfer.FailureReason,
		&transfer.CreatedAt, &transfer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindTransferByReference retrieves a transfer ledger row by its caller-assigned reference.
func (r *PostgresRepository) FindTransferByReference(ctx context.Context, reference string) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `
		SELECT id, owner_id, reference, transfer_code, gateway_id, recipient_code,
		       account_name, account_number, bank_code, bank_name,
		       amount, currency, reason, status, failure_reason, created_at, updated_at
		FROM transfers
		WHERE reference = $1
	`
	err := r.db.QueryRow(ctx, query, reference).Scan(
		&transfer.ID, &transfer.OwnerID, &transfer.Reference, &transfer.TransferCode, &transfer.GatewayID,
		&transfer.RecipientCode, &transfer.AccountName, &transfer.AccountNumber, &transfer.BankCode, &transfer.BankName,
		&transfer.Amount, &transfer.Currency, &transfer.Reason, &transfer.Status, &transfer.FailureReason,
		&transfer.CreatedAt, &transfer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindTransferByCode retrieves a transfer ledger row by its gateway-assigned transfer code.
func (r *PostgresRepository) FindTransferByCode(ctx context.Context, transferCode string) (*domain.Transfer, error) {
	var transfer domain.Transfer
	query := `
		SELECT id, owner_id, reference, transfer_code, gateway_id, recipient_code,
		       account_name, account_number, bank_code, bank_name,
		       amount, currency, reason, status, failure_reason, created_at, updated_at
		FROM transfers
		WHERE transfer_code = $1
	`
	err := r.db.QueryRow(ctx, query, transferCode).Scan(
		&transfer.ID, &transfer.OwnerID, &transfer.Reference, &transfer.TransferCode, &transfer.GatewayID,
		&transfer.RecipientCode, &transfer.AccountName, &transfer.AccountNumber, &transfer.BankCode, &transfer.BankName,
		&transfer.Amount, &transfer.Currency, &transfer.Reason, &transfer.Status, &transfer.FailureReason,
		&transfer.CreatedAt, &transfer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// ListTransfersByOwner retrieves a page of an owner's transfers, newest first.
func (r *PostgresRepository) ListTransfersByOwner(ctx context.Context, ownerID uuid.UUID, limit int, offset int) ([]domain.Transfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, owner_id, reference, transfer_code, gateway_id, recipient_code,
		       account_name, account_number, bank_code, bank_name,
		       amount, currency, reason, status, failure_reason, created_at, updated_at
		FROM transfers
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var transfer domain.Transfer
		if err := rows.Scan(
			&transfer.ID, &transfer.OwnerID, &transfer.Reference, &transfer.TransferCode, &transfer.GatewayID,
			&transfer.RecipientCode, &transfer.AccountName, &transfer.AccountNumber, &transfer.BankCode, &transfer.BankName,
			&transfer.Amount, &transfer.Currency, &transfer.Reason, &transfer.Status, &transfer.FailureReason,
			&transfer.CreatedAt, &transfer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}

// ListUnsettledTransfers retrieves non-terminal transfers that have not been
// touched for at least olderThan. Oldest rows come first so the reconciler
// works through the backlog in order.
func (r *PostgresRepository) ListUnsettledTransfers(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, owner_id, reference, transfer_code, gateway_id, recipient_code,
		       account_name, account_number, bank_code, bank_name,
		       amount, currency, reason, status, failure_reason, created_at, updated_at
		FROM transfers
		WHERE status IN ('initiated', 'awaiting_otp', 'pending')
		  AND updated_at < NOW() - ($1 * INTERVAL '1 second')
		ORDER BY updated_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, int64(olderThan.Seconds()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var transfer domain.Transfer
		if err := rows.Scan(
			&transfer.ID, &transfer.OwnerID, &transfer.Reference, &transfer.TransferCode, &transfer.GatewayID,
			&transfer.RecipientCode, &transfer.AccountName, &transfer.AccountNumber, &transfer.BankCode, &transfer.BankName,
			&transfer.Amount, &transfer.Currency, &transfer.Reason, &transfer.Status, &transfer.FailureReason,
			&transfer.CreatedAt, &transfer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}

// SaveRecipient inserts a saved recipient or refreshes the stored account
// details when the (owner, recipient_code) pair already exists.
func (r *PostgresRepository) SaveRecipient(ctx context.Context, recipient *domain.SavedRecipient) (*domain.SavedRecipient, error) {
	query := `
		INSERT INTO saved_recipients (
			id, owner_id, recipient_code, account_name, account_number,
			bank_code, bank_name, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, recipient_code) DO UPDATE
		SET account_name = EXCLUDED.account_name,
		    account_number = EXCLUDED.account_number,
		    bank_code = EXCLUDED.bank_code,
		    bank_name = EXCLUDED.bank_name,
		    currency = EXCLUDED.currency,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		recipient.ID, recipient.OwnerID, recipient.RecipientCode, recipient.AccountName, recipient.AccountNumber,
		recipient.BankCode, recipient.BankName, recipient.Currency,
	).Scan(&recipient.ID, &recipient.CreatedAt, &recipient.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return recipient, nil
}

// FindRecipientByAccount looks up a previously saved recipient for an owner by
// destination account, so repeat transfers reuse the gateway recipient code.
func (r *PostgresRepository) FindRecipientByAccount(ctx context.Context, ownerID uuid.UUID, accountNumber string, bankCode string) (*domain.SavedRecipient, error) {
	var recipient domain.SavedRecipient
	query := `
		SELECT id, owner_id, recipient_code, account_name, account_number,
		       bank_code, bank_name, currency, created_at, updated_at
		FROM saved_recipients
		WHERE owner_id = $1 AND account_number = $2 AND bank_code = $3
	`
	err := r.db.QueryRow(ctx, query, ownerID, accountNumber, bankCode).Scan(
		&recipient.ID, &recipient.OwnerID, &recipient.RecipientCode, &recipient.AccountName, &recipient.AccountNumber,
		&recipient.BankCode, &recipient.BankName, &recipient.Currency, &recipient.CreatedAt, &recipient.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return &recipient, nil
}

// ListRecipientsByOwner retrieves all of an owner's saved recipients, newest first.
func (r *PostgresRepository) ListRecipientsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.SavedRecipient, error) {
	query := `
		SELECT id, owner_id, recipient_code, account_name, account_number,
		       bank_code, bank_name, currency, created_at, updated_at
		FROM saved_recipients
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []domain.SavedRecipient
	for rows.Next() {
		var recipient domain.SavedRecipient
		if err := rows.Scan(
			&recipient.ID, &recipient.OwnerID, &recipient.RecipientCode, &recipient.AccountName, &recipient.AccountNumber,
			&recipient.BankCode, &recipient.BankName, &recipient.Currency, &recipient.CreatedAt, &recipient.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recipients = append(recipients, recipient)
	}
	return recipients, rows.Err()
}

// DeleteRecipient removes an owner's saved recipient. Returns false when no
// matching row existed.
func (r *PostgresRepository) DeleteRecipient(ctx context.Context, ownerID uuid.UUID, recipientID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM saved_recipients WHERE id = $1 AND owner_id = $2`, recipientID, ownerID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
