package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a publisher's guest-post listing. The order subsystem reads it
// only to build line-item snapshots; pricing changes here never retro-apply.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID    uuid.UUID       `gorm:"column:publisher_id;type:uuid;not null;index"`
	SiteName       string          `gorm:"column:site_name;not null"`
	WebsiteURL     string          `gorm:"column:website_url;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null"`
	AdjustedPrice  decimal.Decimal `gorm:"column:adjusted_price;type:numeric(18,2);not null"`
	Category       string          `gorm:"column:category"`
	Niche          string          `gorm:"column:niche"`
	TurnAroundTime string          `gorm:"column:turn_around_time"`
	Language       string          `gorm:"column:language"`
	Currency       string          `gorm:"column:currency;not null;default:'USD'"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
