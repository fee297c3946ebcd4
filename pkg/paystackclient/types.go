/**
 * @description
 * Wire types for the Paystack API. Every response arrives wrapped in the
 * conventional {status, message, data} envelope; paginated list endpoints add
 * a meta block alongside data. Amounts are always integer kobo on the wire.
 *
 * @dependencies
 * - encoding/json, net/url, strconv, time: Standard Go libraries.
 */
package paystackclient

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// DefaultPerPage is applied to list requests that do not set a page size.
const DefaultPerPage = 50

// envelope is the response wrapper every Paystack endpoint uses.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

// ListMeta carries the pagination metadata of list endpoints.
type ListMeta struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	PerPage   int `json:"perPage"`
	Page      int `json:"page"`
	PageCount int `json:"pageCount"`
}

// Bank is one entry of the bank list for a currency.
type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	Longcode string `json:"longcode"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
}

// ResolvedAccount is the result of a bank account resolution.
type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int64  `json:"bank_id"`
}

// RecipientDetails holds the bank account behind a transfer recipient.
type RecipientDetails struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code"`
	BankName      string `json:"bank_name"`
}

// Recipient is a gateway-registered transfer destination.
type Recipient struct {
	ID            int64            `json:"id"`
	RecipientCode string           `json:"recipient_code"`
	Type          string           `json:"type"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Currency      string           `json:"currency"`
	Active        bool             `json:"active"`
	Details       RecipientDetails `json:"details"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// TransferRecipient is the recipient field of a transfer. The gateway encodes
// it as a bare integer id on initiation and as a full object on fetch/list,
// so both forms must decode.
type TransferRecipient struct {
	ID            int64            `json:"id"`
	RecipientCode string           `json:"recipient_code"`
	Name          string           `json:"name"`
	Details       RecipientDetails `json:"details"`
}

func (r *TransferRecipient) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] != '{' {
		return json.Unmarshal(b, &r.ID)
	}
	type plain TransferRecipient
	return json.Unmarshal(b, (*plain)(r))
}

// Transfer is a money movement tracked by the gateway.
type Transfer struct {
	ID           int64              `json:"id"`
	Amount       int64              `json:"amount"` // in kobo
	Currency     string             `json:"currency"`
	Reason       string             `json:"reason"`
	Reference    string             `json:"reference"`
	Source       string             `json:"source"`
	Status       string             `json:"status"`
	TransferCode string             `json:"transfer_code"`
	Recipient    *TransferRecipient `json:"recipient,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Transaction is an inbound payment event recorded by the gateway. List and
// verify endpoints disagree on timestamp key casing, so both are accepted.
type Transaction struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	Amount          int64     `json:"amount"` // in kobo
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	Channel         string    `json:"channel"`
	GatewayResponse string    `json:"gateway_response"`
	PaidAt          time.Time `json:"paid_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		PaidAtAlt    *time.Time `json:"paidAt"`
		CreatedAtAlt *time.Time `json:"createdAt"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if t.PaidAt.IsZero() && aux.PaidAtAlt != nil {
		t.PaidAt = *aux.PaidAtAlt
	}
	if t.CreatedAt.IsZero() && aux.CreatedAtAlt != nil {
		t.CreatedAt = *aux.CreatedAtAlt
	}
	return nil
}

// Balance is the available balance for one currency.
type Balance struct {
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"` // in kobo
}

// LedgerEntry is one movement in the balance ledger.
type LedgerEntry struct {
	Balance    int64     `json:"balance"`    // in kobo
	Difference int64     `json:"difference"` // in kobo, signed
	Currency   string    `json:"currency"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateRecipientRequest is the payload for registering a transfer recipient.
// Type defaults to "nuban" and Currency to "NGN" when left empty.
type CreateRecipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
	Description   string `json:"description,omitempty"`
}

// InitiateTransferRequest is the payload for starting a transfer. Source is
// always forced to "balance" by the client; Reference is the caller-assigned
// deduplication key and is omitted from the wire when empty.
type InitiateTransferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"` // in kobo
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
	Currency  string `json:"currency"`
	Reference string `json:"reference,omitempty"`
}

type finalizeTransferRequest struct {
	TransferCode string `json:"transfer_code"`
	OTP          string `json:"otp"`
}

// ListOptions paginates list endpoints. The gateway expects both values as
// decimal strings; non-positive values fall back to perPage 50, page 1.
type ListOptions struct {
	PerPage int
	Page    int
}

func (o ListOptions) values() url.Values {
	perPage := o.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := o.Page
	if page <= 0 {
		page = 1
	}
	v := url.Values{}
	v.Set("perPage", strconv.Itoa(perPage))
	v.Set("page", strconv.Itoa(page))
	return v
}

// ListTransfersOptions adds the transfer list date filters.
type ListTransfersOptions struct {
	ListOptions
	From string // e.g. 2026-01-01, passed through untouched
	To   string
}

func (o ListTransfersOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.From != "" {
		v.Set("from", o.From)
	}
	if o.To != "" {
		v.Set("to", o.To)
	}
	return v
}

// ListTransactionsOptions adds the transaction list filters.
type ListTransactionsOptions struct {
	ListOptions
	Status string
	From   string
	To     string
}

func (o ListTransactionsOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.From != "" {
		v.Set("from", o.From)
	}
	if o.To != "" {
		v.Set("to", o.To)
	}
	return v
}

// RecipientPage is the full envelope of a recipient listing.
type RecipientPage struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    []Recipient `json:"data"`
	Meta    ListMeta    `json:"meta"`
}

// LedgerPage is the full envelope of a balance ledger listing.
type LedgerPage struct {
	Status  bool          `json:"status"`
	Message string        `json:"message"`
	Data    []LedgerEntry `json:"data"`
	Meta    ListMeta      `json:"meta"`
}

// TransferPage is the full envelope of a transfer listing.
type TransferPage struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    []Transfer `json:"data"`
	Meta    ListMeta   `json:"meta"`
}

// TransactionPage is the full envelope of a transaction listing.
type TransactionPage struct {
	Status  bool          `json:"status"`
	Message string        `json:"message"`
	Data    []Transaction `json:"data"`
	Meta    ListMeta      `json:"meta"`
}
