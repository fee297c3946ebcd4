/**
 * @description
 * Script to verify a Paystack transfer by its reference from a shell.
 * This is the manual escape hatch for stuck payouts: when a transfer's
 * outcome is unclear (timeout, crash mid-initiate, support ticket), run
 * this against the original reference to get the gateway's authoritative
 * answer without touching the database.
 *
 * Usage:
 *   go run verify-paystack-transfer.go <reference>
 *
 * Example:
 *   go run verify-paystack-transfer.go A1B2C3D4
 *
 * Exit codes:
 *   0 - transfer settled successfully
 *   1 - transfer failed, was reversed, or the gateway has no record of it
 *   2 - outcome still indeterminate (non-terminal status or gateway unreachable)
 *
 * @dependencies
 * - Environment variables: PAYSTACK_SECRET_KEY, PAYSTACK_BASE_URL
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: go run verify-paystack-transfer.go <reference>")
		fmt.Println("Example: go run verify-paystack-transfer.go A1B2C3D4")
		os.Exit(2)
	}

	reference := os.Args[1]

	// Load environment variables from a .env file if one exists.
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	secretKey := os.Getenv("PAYSTACK_SECRET_KEY")
	baseURL := os.Getenv("PAYSTACK_BASE_URL")

	if secretKey == "" {
		log.Fatal("PAYSTACK_SECRET_KEY environment variable is required")
	}

	if baseURL == "" {
		baseURL = "https://api.paystack.co"
		fmt.Println("Using default Paystack URL:", baseURL)
	}

	client := paystackclient.NewClient(baseURL, secretKey)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Verifying transfer with reference: %s\n", reference)
	transfer, err := client.VerifyTransfer(ctx, reference)
	if err != nil {
		if apiErr, ok := paystackclient.AsAPIError(err); ok && apiErr.Kind == paystackclient.ErrorKindClient && apiErr.StatusCode == http.StatusNotFound {
			fmt.Printf("Gateway has no record of reference %s.\n", reference)
			fmt.Println("If a ledger row exists for it, the initiate request never reached Paystack and the row can be closed as failed.")
			os.Exit(1)
		}
		fmt.Printf("Could not determine the transfer's outcome: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Transfer Details:\n")
	fmt.Printf("  Reference:     %s\n", transfer.Reference)
	fmt.Printf("  Transfer Code: %s\n", transfer.TransferCode)
	fmt.Printf("  Gateway ID:    %d\n", transfer.ID)
	fmt.Printf("  Amount:        %s %s\n", domain.FormatKobo(transfer.Amount), transfer.Currency)
	fmt.Printf("  Reason:        %s\n", transfer.Reason)
	if transfer.Recipient != nil {
		fmt.Printf("  Recipient:     %s\n", transfer.Recipient.Name)
	}
	fmt.Printf("  Gateway Status: %s\n", transfer.Status)

	state, err := domain.TransferStateFromStatus(transfer.Status, transfer.TransferCode, "")
	if err != nil {
		fmt.Printf("Gateway reported a status this service does not recognize: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("  Ledger State:   %s\n", state.Kind)

	switch {
	case state.Kind == domain.TransferStateSuccess:
		fmt.Println("The payout settled. A ledger row stuck before `success` can be reconciled to it.")
		os.Exit(0)
	case state.IsTerminal():
		fmt.Println("The payout did not go through. The funds were not (or are no longer) debited.")
		os.Exit(1)
	case state.Kind == domain.TransferStateAwaitingOTP:
		fmt.Printf("The payout is parked waiting for an OTP finalization of %s.\n", state.TransferCode)
		os.Exit(2)
	default:
		fmt.Println("The payout is still in flight. Re-run later or let the reconciler settle it.")
		os.Exit(2)
	}
}
