package paystackclient

import (
	"context"
	"fmt"
	"strconv"
)

// ListTransactions returns one page of inbound payment transactions along
// with the pagination metadata.
func (c *Client) ListTransactions(ctx context.Context, opts ListTransactionsOptions) (*TransactionPage, error) {
	env, err := c.execute(ctx, "GET", "/transaction", opts.values(), nil)
	if err != nil {
		return nil, err
	}

	page := &TransactionPage{Status: env.Status, Message: env.Message}
	if err := decodeData(env, &page.Data); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &page.Meta); err != nil {
		return nil, err
	}
	return page, nil
}

// VerifyTransaction looks a transaction up by its reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	env, err := c.execute(ctx, "GET", fmt.Sprintf("/transaction/verify/%s", reference), nil, nil)
	if err != nil {
		return nil, err
	}

	var transaction Transaction
	if err := decodeData(env, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// FetchTransaction returns the details of a single transaction by its
// gateway-assigned numeric id.
func (c *Client) FetchTransaction(ctx context.Context, id int64) (*Transaction, error) {
	env, err := c.execute(ctx, "GET", "/transaction/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return nil, err
	}

	var transaction Transaction
	if err := decodeData(env, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}
