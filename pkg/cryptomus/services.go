package cryptomus

import "context"

// Service is one network/currency pair the gateway can accept.
type Service struct {
	Network     string       `json:"network"`
	Currency    string       `json:"currency"`
	IsAvailable bool         `json:"is_available"`
	Limit       ServiceLimit `json:"limit"`
	Commission  Commission   `json:"commission"`
}

// ServiceLimit is the provider's min/max accepted amount for a service.
type ServiceLimit struct {
	MinAmount string `json:"min_amount"`
	MaxAmount string `json:"max_amount"`
}

// Commission is the provider's fee structure for a service.
type Commission struct {
	FeeAmount string `json:"fee_amount"`
	Percent   string `json:"percent"`
}

// ListServices returns the payment services currently accepting funds.
// Unavailable networks are filtered out before they reach buyers.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var all []Service
	if err := c.post(ctx, "/payment/services", c.paymentKey, map[string]string{}, &all); err != nil {
		return nil, err
	}

	available := make([]Service, 0, len(all))
	for _, svc := range all {
		if svc.IsAvailable {
			available = append(available, svc)
		}
	}
	return available, nil
}
