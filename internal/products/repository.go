package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/pkg/db/models"
)

// Repository exposes the catalog reads the order subsystem performs.
type Repository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByIDs resolves the listed products in one query. Callers compare the
// result count against the request to detect missing ids.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
