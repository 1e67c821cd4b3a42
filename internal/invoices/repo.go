package invoices

import (
	"context"

	"gorm.io/gorm"

	"github.com/crective/ggp-backend/pkg/db/models"
)

// Repository manages persistence for order invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error)
	UpdateByOrderNumber(ctx context.Context, orderNumber string, updates map[string]any) error
	DeleteByOrderNumbers(ctx context.Context, orderNumbers []string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoices repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateByOrderNumber applies the column updates to the order's invoice.
// Settlement transitions call this inside the same transaction as the order
// status write so the pair can never diverge.
func (r *repository) UpdateByOrderNumber(ctx context.Context, orderNumber string, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("order_number = ?", orderNumber).
		Updates(updates).Error
}

func (r *repository) DeleteByOrderNumbers(ctx context.Context, orderNumbers []string) error {
	if len(orderNumbers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("order_number IN ?", orderNumbers).
		Delete(&models.Invoice{}).Error
}
