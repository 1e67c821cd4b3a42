package enums

import "strings"

// PaymentStatus is the normalized gateway payment state recorded on an order.
// It is independent of OrderStatus; settlement never keys off it directly.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// NormalizeGatewayStatus maps a raw provider callback status onto the
// recorded payment state. Unknown provider statuses fall back to pending so
// a new provider state never drops a callback.
func NormalizeGatewayStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid":
		return PaymentStatusCompleted
	case "check":
		return PaymentStatusUnpaid
	case "canceled", "cancelled":
		return PaymentStatusRejected
	default:
		return PaymentStatusPending
	}
}
