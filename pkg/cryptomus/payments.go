package cryptomus

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentParams describes a single-use crypto invoice request.
type CreatePaymentParams struct {
	OrderID    string
	Amount     decimal.Decimal
	Currency   string
	Network    string
	ToCurrency string
}

// Payment is the normalized provisioning result copied onto the order row.
type Payment struct {
	UUID          string
	OrderID       string
	Amount        string
	PaymentStatus string
	URL           string
	Address       string
	AddressQRCode string
	PayerAmount   *decimal.Decimal
	PayerCurrency string
	Network       string
	TxID          string
	ExpiredAt     *time.Time
}

type createPaymentRequest struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	OrderID           string `json:"order_id"`
	Network           string `json:"network,omitempty"`
	ToCurrency        string `json:"to_currency,omitempty"`
	URLCallback       string `json:"url_callback,omitempty"`
	URLSuccess        string `json:"url_success,omitempty"`
	URLReturn         string `json:"url_return,omitempty"`
	Lifetime          string `json:"lifetime"`
	IsPaymentMultiple bool   `json:"is_payment_multiple"`
}

type paymentResult struct {
	UUID          string           `json:"uuid"`
	OrderID       string           `json:"order_id"`
	Amount        string           `json:"amount"`
	PaymentStatus string           `json:"payment_status"`
	URL           string           `json:"url"`
	Address       string           `json:"address"`
	AddressQRCode string           `json:"address_qr_code"`
	PayerAmount   *decimal.Decimal `json:"payer_amount"`
	PayerCurrency string           `json:"payer_currency"`
	Network       string           `json:"network"`
	TxID          string           `json:"txid"`
	ExpiredAt     *unixTime        `json:"expired_at"`
}

func (r paymentResult) toPayment() *Payment {
	p := &Payment{
		UUID:          r.UUID,
		OrderID:       r.OrderID,
		Amount:        r.Amount,
		PaymentStatus: r.PaymentStatus,
		URL:           r.URL,
		Address:       r.Address,
		AddressQRCode: r.AddressQRCode,
		PayerAmount:   r.PayerAmount,
		PayerCurrency: r.PayerCurrency,
		Network:       r.Network,
		TxID:          r.TxID,
	}
	if r.ExpiredAt != nil && !r.ExpiredAt.IsZero() {
		t := r.ExpiredAt.Time
		p.ExpiredAt = &t
	}
	return p
}

// CreatePayment provisions a payment address and hosted checkout URL. The
// invoice is single use and expires after the configured lifetime.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*Payment, error) {
	req := createPaymentRequest{
		Amount:            params.Amount.StringFixed(2),
		Currency:          params.Currency,
		OrderID:           params.OrderID,
		Network:           params.Network,
		ToCurrency:        params.ToCurrency,
		URLCallback:       c.callbackURL,
		URLSuccess:        c.successURL,
		URLReturn:         c.returnURL,
		Lifetime:          c.paymentLifetime,
		IsPaymentMultiple: false,
	}

	var result paymentResult
	if err := c.post(ctx, "/payment", c.paymentKey, req, &result); err != nil {
		return nil, err
	}
	return result.toPayment(), nil
}

// CheckPaymentStatus fetches the current provider state for a payment uuid.
func (c *Client) CheckPaymentStatus(ctx context.Context, uuid string) (*Payment, error) {
	var result paymentResult
	if err := c.post(ctx, "/payment/info", c.paymentKey, map[string]string{"uuid": uuid}, &result); err != nil {
		return nil, err
	}
	return result.toPayment(), nil
}
