package enums

import "fmt"

// PaymentType selects how an order is paid at creation time.
type PaymentType string

const (
	// PaymentTypePayoneer is a manual payment where the buyer supplies an
	// external transaction reference up front.
	PaymentTypePayoneer PaymentType = "payoneer"
	// PaymentTypeCryptomus provisions a crypto payment through the gateway.
	PaymentTypeCryptomus PaymentType = "cryptomus"
)

var validPaymentTypes = []PaymentType{
	PaymentTypePayoneer,
	PaymentTypeCryptomus,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
