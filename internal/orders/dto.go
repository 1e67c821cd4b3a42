package orders

import (
	"github.com/google/uuid"

	"github.com/crective/ggp-backend/pkg/enums"
	"github.com/crective/ggp-backend/pkg/pagination"
)

// CreateOrderInput carries everything needed to place an order. The manual
// path (payoneer) supplies TransactionID; the cryptomus path supplies the
// crypto network and target currency instead.
type CreateOrderInput struct {
	BuyerID     uuid.UUID
	ProductIDs  []uuid.UUID
	PaymentType enums.PaymentType
	BackupEmail string

	// Manual payment reference.
	TransactionID string

	// Crypto payment parameters.
	Network    string
	ToCurrency string

	Notes             *string
	File              *string
	ContentProvidedBy *string
	Anchor            *string
	AnchorLink        *string
	WordLimit         *int
}

// ListParams filters and paginates order listings. BuyerID scopes the listing
// to one buyer's orders; zero means the admin-wide view.
type ListParams struct {
	pagination.Params
	BuyerID     uuid.UUID
	Status      enums.OrderStatus
	PaymentType enums.PaymentType
}

// sortColumns whitelists the exposed sort names against real columns.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"orderNumber": "order_number",
	"totalAmount": "total_amount",
	"orderStatus": "order_status",
}

// SortColumn resolves the requested sort field to a column, falling back to
// created_at for anything off the whitelist.
func SortColumn(field string) string {
	if col, ok := sortColumns[field]; ok {
		return col
	}
	return pagination.DefaultSortField
}
