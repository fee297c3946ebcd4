package paystackclient

import (
	"context"
	"fmt"
)

// CreateRecipient registers a transfer recipient with the gateway. The
// gateway assigns a recipient_code used for all subsequent transfers to that
// account; it does not deduplicate, so creating the same account twice yields
// two codes.
func (c *Client) CreateRecipient(ctx context.Context, req CreateRecipientRequest) (*Recipient, error) {
	if req.Type == "" {
		req.Type = "nuban"
	}
	if req.Currency == "" {
		req.Currency = "NGN"
	}

	env, err := c.execute(ctx, "POST", "/transferrecipient", nil, req)
	if err != nil {
		return nil, err
	}

	var recipient Recipient
	if err := decodeData(env, &recipient); err != nil {
		return nil, err
	}
	return &recipient, nil
}

// ListRecipients returns one page of transfer recipients along with the
// pagination metadata.
func (c *Client) ListRecipients(ctx context.Context, opts ListOptions) (*RecipientPage, error) {
	env, err := c.execute(ctx, "GET", "/transferrecipient", opts.values(), nil)
	if err != nil {
		return nil, err
	}

	page := &RecipientPage{Status: env.Status, Message: env.Message}
	if err := decodeData(env, &page.Data); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &page.Meta); err != nil {
		return nil, err
	}
	return page, nil
}

// FetchRecipient returns the details of a single transfer recipient.
func (c *Client) FetchRecipient(ctx context.Context, recipientCode string) (*Recipient, error) {
	env, err := c.execute(ctx, "GET", fmt.Sprintf("/transferrecipient/%s", recipientCode), nil, nil)
	if err != nil {
		return nil, err
	}

	var recipient Recipient
	if err := decodeData(env, &recipient); err != nil {
		return nil, err
	}
	return &recipient, nil
}
