/**
 * @description
 * This file defines the core domain models for the transfer-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (kobo), which avoids floating-point inaccuracies with financial data.
 * - The `reference` on a Transfer is assigned locally before the first network
 *   call and is never regenerated, so the gateway can deduplicate resubmissions.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Transfer ledger statuses. The ledger row is created as `initiated` before the
// gateway is contacted; every later status is derived from the gateway's view.
const (
	TransferStatusInitiated   = "initiated"
	TransferStatusAwaitingOTP = "awaiting_otp"
	TransferStatusPending     = "pending"
	TransferStatusSuccess     = "success"
	TransferStatusFailed      = "failed"
	TransferStatusReversed    = "reversed"
)

// Transfer represents the local ledger record for one outbound payout.
// This struct maps directly to the `transfers` table in the database.
type Transfer struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Reference     string    `json:"reference"`
	TransferCode  *string   `json:"transfer_code,omitempty"`
	GatewayID     *int64    `json:"gateway_id,omitempty"`
	RecipientCode string    `json:"recipient_code"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	BankCode      string    `json:"bank_code"`
	BankName      string    `json:"bank_name"`
	Amount        int64     `json:"amount"` // in kobo
	Currency      string    `json:"currency"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RequiresOTP reports whether the transfer is parked waiting for an OTP
// finalization step.
func (t *Transfer) RequiresOTP() bool {
	return t.Status == TransferStatusAwaitingOTP
}

// TransferStateKind enumerates the caller-visible lifecycle states of a
// gateway transfer.
type TransferStateKind string

const (
	TransferStatePending     TransferStateKind = TransferStatusPending
	TransferStateAwaitingOTP TransferStateKind = TransferStatusAwaitingOTP
	TransferStateSuccess     TransferStateKind = TransferStatusSuccess
	TransferStateFailed      TransferStateKind = TransferStatusFailed
	TransferStateReversed    TransferStateKind = TransferStatusReversed
)

// TransferState is the decoded lifecycle state of one gateway transfer.
// TransferCode is populated while an OTP finalization is outstanding;
// FailureReason is populated when the gateway reports the payout failed.
type TransferState struct {
	Kind          TransferStateKind `json:"kind"`
	TransferCode  string            `json:"transfer_code,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

// IsTerminal reports whether the state can no longer change.
func (s TransferState) IsTerminal() bool {
	return IsTerminalTransferStatus(string(s.Kind))
}

// TransferStateFromStatus decodes a raw gateway transfer status into a
// TransferState, attaching the payload that matters for that state. Unknown
// statuses are surfaced as errors rather than being silently coerced, so an
// upstream contract change cannot corrupt the ledger.
func TransferStateFromStatus(status, transferCode, failureReason string) (TransferState, error) {
	switch status {
	case "otp":
		return TransferState{Kind: TransferStateAwaitingOTP, TransferCode: transferCode}, nil
	case "pending", "queued", "processing", "received":
		return TransferState{Kind: TransferStatePending}, nil
	case "success":
		return TransferState{Kind: TransferStateSuccess}, nil
	case "failed", "abandoned", "rejected", "blocked":
		return TransferState{Kind: TransferStateFailed, FailureReason: failureReason}, nil
	case "reversed":
		return TransferState{Kind: TransferStateReversed}, nil
	default:
		return TransferState{}, fmt.Errorf("unrecognized gateway transfer status %q", status)
	}
}

// TransferStatusFromGateway maps a raw gateway transfer status onto the local
// ledger vocabulary.
func TransferStatusFromGateway(status string) (string, error) {
	state, err := TransferStateFromStatus(status, "", "")
	if err != nil {
		return "", err
	}
	return string(state.Kind), nil
}

// IsTerminalTransferStatus reports whether a ledger status can no longer change.
func IsTerminalTransferStatus(status string) bool {
	switch status {
	case TransferStatusSuccess, TransferStatusFailed, TransferStatusReversed:
		return true
	default:
		return false
	}
}

// SendMoneyRequest is the DTO for the full send flow: resolve the account,
// reuse or create a gateway recipient, then initiate the transfer.
type SendMoneyRequest struct {
	AccountNumber string  `json:"account_number"`
	BankCode      string  `json:"bank_code"`
	Amount        float64 `json:"amount"` // in naira; converted to kobo at this boundary
	Reason        string  `json:"reason"`
	Reference     string  `json:"reference,omitempty"`
}

// InitiateTransferRequest is the DTO for initiating a transfer against an
// already-known recipient code.
type InitiateTransferRequest struct {
	RecipientCode string  `json:"recipient_code"`
	Amount        float64 `json:"amount"` // in naira
	Reason        string  `json:"reason"`
	Reference     string  `json:"reference,omitempty"`
}

// FinalizeTransferRequest is the DTO for submitting the OTP that releases a
// transfer parked in `awaiting_otp`.
type FinalizeTransferRequest struct {
	TransferCode string `json:"transfer_code"`
	OTP          string `json:"otp"`
}

// SendMoneyResult is returned by the send flow. RequiresOTP tells the caller
// whether a finalize step is still needed before the gateway will process the
// payout.
type SendMoneyResult struct {
	Transfer    *Transfer `json:"transfer"`
	RequiresOTP bool      `json:"requires_otp"`
}
