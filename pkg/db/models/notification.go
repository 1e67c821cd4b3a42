package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crective/ggp-backend/pkg/enums"
)

// Notification records each outbound order email. Sends are best effort, so
// the row is the only durable trace when the mail provider drops a message.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Recipient   string                 `gorm:"column:recipient;not null;index"`
	Subject     string                 `gorm:"column:subject;not null"`
	Body        string                 `gorm:"column:body;not null"`
	Kind        enums.NotificationKind `gorm:"column:kind;type:text;not null"`
	OrderNumber *int64                 `gorm:"column:order_number"`
	Delivered   bool                   `gorm:"column:delivered;not null;default:false"`
	SentAt      *time.Time             `gorm:"column:sent_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
