package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crective/ggp-backend/pkg/enums"
)

// WalletEntry is the append-only audit row behind every wallet mutation.
// The unique (order_id, type) index makes a second credit for the same
// approval fail at the database even if application guards are bypassed.
type WalletEntry struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID             `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_wallet_entries_order_type"`
	PublisherID  uuid.UUID             `gorm:"column:publisher_id;type:uuid;not null;index"`
	Type         enums.WalletEntryType `gorm:"column:type;type:text;not null;uniqueIndex:idx_wallet_entries_order_type"`
	Amount       decimal.Decimal       `gorm:"column:amount;type:numeric(18,2);not null"`
	BalanceAfter decimal.Decimal       `gorm:"column:balance_after;type:numeric(18,2);not null"`
	Actor        string                `gorm:"column:actor;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
