package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
)

// Service records and reads wallet audit entries. Writers rebind with WithTx
// so an entry always commits with the balance change that produced it.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordEntryInput) (*models.WalletEntry, error)
	EarningsHistory(ctx context.Context, publisherID uuid.UUID) ([]models.WalletEntry, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a wallet entry requires.
// Amount is signed: credits positive, withdrawals negative.
type RecordEntryInput struct {
	OrderID      uuid.UUID
	PublisherID  uuid.UUID
	Type         enums.WalletEntryType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Actor        string
}

// NewService wires a wallet ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordEntryInput) (*models.WalletEntry, error) {
	if input.OrderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	if input.PublisherID == uuid.Nil {
		return nil, fmt.Errorf("publisher id is required")
	}
	if input.Type == "" {
		return nil, fmt.Errorf("wallet entry type is required")
	}

	entry := &models.WalletEntry{
		OrderID:      input.OrderID,
		PublisherID:  input.PublisherID,
		Type:         input.Type,
		Amount:       input.Amount,
		BalanceAfter: input.BalanceAfter,
		Actor:        input.Actor,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) EarningsHistory(ctx context.Context, publisherID uuid.UUID) ([]models.WalletEntry, error) {
	if publisherID == uuid.Nil {
		return nil, fmt.Errorf("publisher id is required")
	}
	return s.repo.ListByPublisherID(ctx, publisherID)
}
