package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crective/ggp-backend/pkg/enums"
	"github.com/crective/ggp-backend/pkg/types"
)

// Order is the root settlement entity. Products are embedded as an immutable
// jsonb snapshot taken at creation; TotalAmount is frozen at the same moment.
type Order struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64                `gorm:"column:order_number;not null;uniqueIndex"`
	BuyerID     uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	Products    types.OrderLineItems `gorm:"column:products;type:jsonb;serializer:json;not null"`
	TotalAmount int64                `gorm:"column:total_amount;not null"`
	PaymentType enums.PaymentType    `gorm:"column:payment_type;type:text;not null"`
	OrderStatus enums.OrderStatus    `gorm:"column:order_status;type:text;not null;default:'pending';index"`

	HandledBy       *string `gorm:"column:handled_by"`
	RejectionReason *string `gorm:"column:rejection_reason"`

	SubmissionURL     *string    `gorm:"column:submission_url"`
	SubmissionDetails *string    `gorm:"column:submission_details"`
	SubmissionDate    *time.Time `gorm:"column:submission_date"`

	// Gateway fields, populated only on the cryptomus payment path.
	GatewayUUID   *string             `gorm:"column:gateway_uuid;index"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	TxID          *string             `gorm:"column:txid"`
	Address       *string             `gorm:"column:address"`
	AddressQRCode *string             `gorm:"column:address_qr_code"`
	PayerAmount   *decimal.Decimal    `gorm:"column:payer_amount;type:numeric(18,8)"`
	PayerCurrency *string             `gorm:"column:payer_currency"`
	PaymentURL    *string             `gorm:"column:payment_url"`
	Network       *string             `gorm:"column:network"`
	ToCurrency    *string             `gorm:"column:to_currency"`
	ExpiredAt     *time.Time          `gorm:"column:expired_at"`

	BackupEmail       string  `gorm:"column:backup_email;not null"`
	Notes             *string `gorm:"column:notes"`
	File              *string `gorm:"column:file"`
	ContentProvidedBy *string `gorm:"column:content_provided_by"`
	Anchor            *string `gorm:"column:anchor"`
	AnchorLink        *string `gorm:"column:anchor_link"`
	WordLimit         *int    `gorm:"column:word_limit"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
