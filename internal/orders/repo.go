package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
)

// Repository manages order persistence. Listing queries run the filter twice,
// once for the page and once for the total count, under the same predicates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)
	List(ctx context.Context, params ListParams) ([]models.Order, int64, error)
	ListByPublisher(ctx context.Context, publisherID uuid.UUID, params ListParams) ([]models.Order, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateByGatewayUUID(ctx context.Context, gatewayUUID string, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Order, int64, error) {
	params.Params = params.Normalize()
	params.SortField = SortColumn(params.SortField)
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByPublisher returns paid orders whose product snapshot names the
// publisher. The snapshot is matched textually on the serialized publisherId
// so the query stays portable across postgres and the sqlite test driver.
func (r *repository) ListByPublisher(ctx context.Context, publisherID uuid.UUID, params ListParams) ([]models.Order, int64, error) {
	params.Params = params.Normalize()
	params.SortField = SortColumn(params.SortField)
	pattern := "%\"publisherId\":\"" + publisherID.String() + "\"%"
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("CAST(products AS TEXT) LIKE ?", pattern).
		Where("payment_status = ?", enums.PaymentStatusCompleted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateByGatewayUUID applies updates to the order provisioned under the
// gateway uuid and reports how many rows matched. Zero rows is not an error;
// webhook reconciliation treats it as a late or unknown callback.
func (r *repository) UpdateByGatewayUUID(ctx context.Context, gatewayUUID string, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_uuid = ?", gatewayUUID).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{}).Error
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Order{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) applyFilters(query *gorm.DB, params ListParams) *gorm.DB {
	if params.BuyerID != uuid.Nil {
		query = query.Where("buyer_id = ?", params.BuyerID)
	}
	if params.Status != "" {
		query = query.Where("order_status = ?", params.Status)
	}
	if params.PaymentType != "" {
		query = query.Where("payment_type = ?", params.PaymentType)
	}
	if params.Query != "" {
		pattern := "%" + strings.ToLower(params.Query) + "%"
		query = query.Where(
			"CAST(order_number AS TEXT) LIKE ? OR LOWER(backup_email) LIKE ? OR CAST(total_amount AS TEXT) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return query
}
