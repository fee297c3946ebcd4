package domain

import "testing"

func TestTransferStatusFromGateway(t *testing.T) {
	cases := []struct {
		gateway string
		want    string
	}{
		{"otp", TransferStatusAwaitingOTP},
		{"pending", TransferStatusPending},
		{"queued", TransferStatusPending},
		{"processing", TransferStatusPending},
		{"received", TransferStatusPending},
		{"success", TransferStatusSuccess},
		{"failed", TransferStatusFailed},
		{"abandoned", TransferStatusFailed},
		{"rejected", TransferStatusFailed},
		{"blocked", TransferStatusFailed},
		{"reversed", TransferStatusReversed},
	}
	for _, tc := range cases {
		got, err := TransferStatusFromGateway(tc.gateway)
		if err != nil {
			t.Fatalf("status %q: expected nil error, got %v", tc.gateway, err)
		}
		if got != tc.want {
			t.Fatalf("status %q: expected %q, got %q", tc.gateway, tc.want, got)
		}
	}
}

func TestTransferStatusFromGateway_RejectsUnknownStatus(t *testing.T) {
	if _, err := TransferStatusFromGateway("definitely_new_status"); err == nil {
		t.Fatal("expected error for unknown gateway status, got nil")
	}
}

func TestTransferStateFromStatus_CarriesStatePayloads(t *testing.T) {
	state, err := TransferStateFromStatus("otp", "TRF_abc", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if state.Kind != TransferStateAwaitingOTP || state.TransferCode != "TRF_abc" {
		t.Fatalf("expected awaiting_otp carrying the transfer code, got %+v", state)
	}
	if state.IsTerminal() {
		t.Fatal("expected awaiting_otp to be non-terminal")
	}

	state, err = TransferStateFromStatus("failed", "TRF_abc", "insufficient balance")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if state.Kind != TransferStateFailed || state.FailureReason != "insufficient balance" {
		t.Fatalf("expected failed carrying the reason, got %+v", state)
	}
	if !state.IsTerminal() {
		t.Fatal("expected failed to be terminal")
	}
}

func TestTransferStateFromStatus_RejectsUnknownStatus(t *testing.T) {
	if _, err := TransferStateFromStatus("definitely_new_status", "TRF_abc", ""); err == nil {
		t.Fatal("expected error for unknown gateway status, got nil")
	}
}

func TestIsTerminalTransferStatus(t *testing.T) {
	terminal := []string{TransferStatusSuccess, TransferStatusFailed, TransferStatusReversed}
	for _, s := range terminal {
		if !IsTerminalTransferStatus(s) {
			t.Fatalf("expected %q to be terminal", s)
		}
	}
	open := []string{TransferStatusInitiated, TransferStatusAwaitingOTP, TransferStatusPending}
	for _, s := range open {
		if IsTerminalTransferStatus(s) {
			t.Fatalf("expected %q to be non-terminal", s)
		}
	}
}

func TestTransferRequiresOTP(t *testing.T) {
	tr := &Transfer{Status: TransferStatusAwaitingOTP}
	if !tr.RequiresOTP() {
		t.Fatal("expected awaiting_otp transfer to require OTP")
	}
	tr.Status = TransferStatusPending
	if tr.RequiresOTP() {
		t.Fatal("expected pending transfer to not require OTP")
	}
}

func TestSavedRecipientMaskedAccountNumber(t *testing.T) {
	r := &SavedRecipient{AccountNumber: "0123456789"}
	if got := r.MaskedAccountNumber(); got != "******6789" {
		t.Fatalf("expected ******6789, got %q", got)
	}
	short := &SavedRecipient{AccountNumber: "123"}
	if got := short.MaskedAccountNumber(); got != "123" {
		t.Fatalf("expected short numbers to pass through, got %q", got)
	}
}
