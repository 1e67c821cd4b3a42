package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem is the immutable product snapshot embedded on an order.
// Later edits to the catalog never change what the buyer agreed to pay or
// what the publisher earns.
type OrderLineItem struct {
	ProductID      uuid.UUID       `json:"productId"`
	PublisherID    uuid.UUID       `json:"publisherId"`
	SiteName       string          `json:"siteName"`
	WebsiteURL     string          `json:"websiteUrl"`
	Price          decimal.Decimal `json:"price"`
	AdjustedPrice  decimal.Decimal `json:"adjustedPrice"`
	Category       string          `json:"category,omitempty"`
	Niche          string          `json:"niche,omitempty"`
	TurnAroundTime string          `json:"turnAroundTime,omitempty"`
	Language       string          `json:"language,omitempty"`
	Currency       string          `json:"currency,omitempty"`
}

// OrderLineItems is stored as a jsonb column via the gorm json serializer.
type OrderLineItems []OrderLineItem
