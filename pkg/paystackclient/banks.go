package paystackclient

import (
	"context"
	"net/url"
)

// ListBanks fetches the banks available for a currency. The list is immutable
// per currency and safe for callers to cache for the lifetime of a session.
func (c *Client) ListBanks(ctx context.Context, currency string) ([]Bank, error) {
	if currency == "" {
		currency = "NGN"
	}
	query := url.Values{}
	query.Set("currency", currency)

	env, err := c.execute(ctx, "GET", "/bank", query, nil)
	if err != nil {
		return nil, err
	}

	var banks []Bank
	if err := decodeData(env, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// ResolveAccount looks up the account name behind an account number and bank
// code.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolvedAccount, error) {
	query := url.Values{}
	query.Set("account_number", accountNumber)
	query.Set("bank_code", bankCode)

	env, err := c.execute(ctx, "GET", "/bank/resolve", query, nil)
	if err != nil {
		return nil, err
	}

	var account ResolvedAccount
	if err := decodeData(env, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
