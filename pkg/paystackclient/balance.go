package paystackclient

import "context"

// GetBalance returns the available balance per currency.
func (c *Client) GetBalance(ctx context.Context) ([]Balance, error) {
	env, err := c.execute(ctx, "GET", "/balance", nil, nil)
	if err != nil {
		return nil, err
	}

	var balances []Balance
	if err := decodeData(env, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// GetBalanceLedger returns one page of balance movements along with the
// pagination metadata.
func (c *Client) GetBalanceLedger(ctx context.Context, opts ListOptions) (*LedgerPage, error) {
	env, err := c.execute(ctx, "GET", "/balance/ledger", opts.values(), nil)
	if err != nil {
		return nil, err
	}

	page := &LedgerPage{Status: env.Status, Message: env.Message}
	if err := decodeData(env, &page.Data); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &page.Meta); err != nil {
		return nil, err
	}
	return page, nil
}
