package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crective/ggp-backend/pkg/enums"
)

// User represents a marketplace account. Publishers accumulate earnings in
// WalletBalance; the order subsystem only ever credits it, never debits.
type User struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName     string          `gorm:"column:first_name;not null"`
	LastName      string          `gorm:"column:last_name;not null"`
	Role          enums.Role      `gorm:"column:role;type:text;not null;default:'user'"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(18,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the user's first and last name for display and invoices.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
