/**
 * @description
 * Transfer operations: initiate, finalize (OTP), list, fetch, and verify.
 *
 * The reference on InitiateTransferRequest is the caller's deduplication key.
 * It must be assigned before the first call and must never be regenerated for
 * a retried or resumed transfer: if initiation fails without a decisive
 * answer (network, 5xx, unparseable response), the caller re-queries the same
 * reference with VerifyTransfer before deciding whether to resubmit.
 */
package paystackclient

import (
	"context"
	"fmt"
)

// InitiateTransfer starts a transfer from the integration balance to a
// registered recipient. The returned status may be "otp", in which case the
// transfer is pending until FinalizeTransfer is called with the passcode
// delivered out-of-band.
func (c *Client) InitiateTransfer(ctx context.Context, req InitiateTransferRequest) (*Transfer, error) {
	req.Source = "balance"
	if req.Currency == "" {
		req.Currency = "NGN"
	}

	env, err := c.execute(ctx, "POST", "/transfer", nil, req)
	if err != nil {
		return nil, err
	}

	var transfer Transfer
	if err := decodeData(env, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// FinalizeTransfer submits the OTP for a transfer in the "otp" state. The
// remote decides idempotency: resending after finalization returns either the
// same terminal payload or a rejection, and both are surfaced untouched.
func (c *Client) FinalizeTransfer(ctx context.Context, transferCode, otp string) (*Transfer, error) {
	body := finalizeTransferRequest{
		TransferCode: transferCode,
		OTP:          otp,
	}

	env, err := c.execute(ctx, "POST", "/transfer/finalize_transfer", nil, body)
	if err != nil {
		return nil, err
	}

	var transfer Transfer
	if err := decodeData(env, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListTransfers returns one page of transfers along with the pagination
// metadata.
func (c *Client) ListTransfers(ctx context.Context, opts ListTransfersOptions) (*TransferPage, error) {
	env, err := c.execute(ctx, "GET", "/transfer", opts.values(), nil)
	if err != nil {
		return nil, err
	}

	page := &TransferPage{Status: env.Status, Message: env.Message}
	if err := decodeData(env, &page.Data); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &page.Meta); err != nil {
		return nil, err
	}
	return page, nil
}

// FetchTransfer returns the details of a single transfer by its
// gateway-assigned code.
func (c *Client) FetchTransfer(ctx context.Context, transferCode string) (*Transfer, error) {
	env, err := c.execute(ctx, "GET", fmt.Sprintf("/transfer/%s", transferCode), nil, nil)
	if err != nil {
		return nil, err
	}

	var transfer Transfer
	if err := decodeData(env, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// VerifyTransfer looks a transfer up by its caller-assigned reference. This
// is a pure read usable at any time to reconcile local state with the remote
// system of record.
func (c *Client) VerifyTransfer(ctx context.Context, reference string) (*Transfer, error) {
	env, err := c.execute(ctx, "GET", fmt.Sprintf("/transfer/verify/%s", reference), nil, nil)
	if err != nil {
		return nil, err
	}

	var transfer Transfer
	if err := decodeData(env, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}
