package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crective/ggp-backend/pkg/enums"
)

// Invoice is the billing record paired 1:1 with an order. It references the
// order by order number rather than a foreign key, matching how invoices are
// surfaced to buyers.
type Invoice struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber         string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	OrderNumber           string              `gorm:"column:order_number;not null;index"`
	Amount                int64               `gorm:"column:amount;not null"`
	Currency              string              `gorm:"column:currency;not null;default:'USD'"`
	Status                enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PublisherName         *string             `gorm:"column:publisher_name"`
	PublisherApprovalDate *time.Time          `gorm:"column:publisher_approval_date"`
	RejectionReason       *string             `gorm:"column:rejection_reason"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
