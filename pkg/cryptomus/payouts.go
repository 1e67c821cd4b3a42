package cryptomus

import (
	"context"

	"github.com/shopspring/decimal"
)

// CreatePayoutParams describes a withdrawal dispatch to a publisher wallet.
type CreatePayoutParams struct {
	OrderID    string
	Amount     decimal.Decimal
	Currency   string
	Network    string
	ToCurrency string
	Address    string
}

// Payout is the normalized payout state returned by the provider.
type Payout struct {
	UUID    string `json:"uuid"`
	OrderID string `json:"order_id"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
	Address string `json:"address"`
	Network string `json:"network"`
	TxID    string `json:"txid"`
}

type createPayoutRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	Address     string `json:"address"`
	Network     string `json:"network"`
	ToCurrency  string `json:"to_currency,omitempty"`
	URLCallback string `json:"url_callback,omitempty"`
	IsSubtract  bool   `json:"is_subtract"`
}

// CreatePayout dispatches funds to an external address. Payouts sign with the
// payout API key, not the payment key. An insufficient merchant balance comes
// back wrapped around ErrInsufficientFunds.
func (c *Client) CreatePayout(ctx context.Context, params CreatePayoutParams) (*Payout, error) {
	req := createPayoutRequest{
		Amount:     params.Amount.StringFixed(2),
		Currency:   params.Currency,
		OrderID:    params.OrderID,
		Address:    params.Address,
		Network:    params.Network,
		ToCurrency: params.ToCurrency,
		IsSubtract: true,
	}

	var result Payout
	if err := c.post(ctx, "/payout", c.payoutKey, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckPayoutStatus fetches the current provider state for a payout uuid.
func (c *Client) CheckPayoutStatus(ctx context.Context, uuid string) (*Payout, error) {
	var result Payout
	if err := c.post(ctx, "/payout/info", c.payoutKey, map[string]string{"uuid": uuid}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
