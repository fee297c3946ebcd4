package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bank is one entry in the gateway's bank directory for a currency.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Slug string `json:"slug,omitempty"`
}

// SavedRecipient represents a gateway recipient the service has already
// created, keyed locally so repeat transfers to the same account reuse the
// recipient code instead of creating duplicates.
// Maps to the `saved_recipients` table.
type SavedRecipient struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	RecipientCode string    `json:"recipient_code"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"-"` // full number kept for dedupe, masked for display
	BankCode      string    `json:"bank_code"`
	BankName      string    `json:"bank_name"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MaskedAccountNumber hides all but the last four digits of the stored
// account number.
func (r *SavedRecipient) MaskedAccountNumber() string {
	if len(r.AccountNumber) <= 4 {
		return r.AccountNumber
	}
	return strings.Repeat("*", len(r.AccountNumber)-4) + r.AccountNumber[len(r.AccountNumber)-4:]
}
