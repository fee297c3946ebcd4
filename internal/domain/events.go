package domain

import "time"

// TransferStatusEvent is the message published whenever a transfer ledger row
// changes status. Downstream consumers (notifications, analytics) key off
// EventType, which follows the pattern "transfer.status.<status>".
type TransferStatusEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Reference     string    `json:"reference"`
	TransferCode  string    `json:"transfer_code,omitempty"`
	OwnerID       string    `json:"owner_id"`
	Status        string    `json:"status"`
	Amount        int64     `json:"amount"` // in kobo
	AmountDisplay string    `json:"amount_display"`
	Currency      string    `json:"currency"`
	AccountName   string    `json:"account_name"`
	BankName      string    `json:"bank_name"`
	Reason        string    `json:"reason"`
	FailureReason string    `json:"failure_reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TransactionVerifiedEvent is published after an inbound charge notification
// has been re-verified against the gateway, confirming the money actually
// arrived.
type TransactionVerifiedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Reference     string    `json:"reference"`
	GatewayID     int64     `json:"gateway_id"`
	Amount        int64     `json:"amount"` // in kobo
	AmountDisplay string    `json:"amount_display"`
	Currency      string    `json:"currency"`
	Channel       string    `json:"channel"`
	Status        string    `json:"status"`
	PaidAt        string    `json:"paid_at,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ChargeSuccessEvent is the inbound payload consumed from the webhook
// gateway's queue. Only the reference is trusted; everything else is
// re-verified against the gateway before any downstream event is emitted.
type ChargeSuccessEvent struct {
	Reference string `json:"reference"`
}
