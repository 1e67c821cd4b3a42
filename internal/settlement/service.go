package settlement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/internal/invoices"
	"github.com/crective/ggp-backend/internal/ledger"
	"github.com/crective/ggp-backend/internal/notifications"
	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/internal/users"
	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/metrics"
)

// Distinguished per-item failure reasons surfaced by the bulk operations.
const (
	reasonNoProduct        = "No product found in the order"
	reasonNoPublisherID    = "Publisher ID not found"
	reasonInvalidAmount    = "Invalid adjusted price"
	reasonPublisherMissing = "Publisher not found"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BulkOutcome reports one order's result from a bulk settlement call.
type BulkOutcome struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
}

const (
	// BulkStatusSuccess marks an order whose transition committed.
	BulkStatusSuccess = "success"
	// BulkStatusFailed marks an order whose transition rolled back.
	BulkStatusFailed = "failed"
)

// Service drives the settlement state machine. Wallet credits always commit
// in the same transaction as the status write that earns them.
type Service interface {
	Accept(ctx context.Context, actor string, orderID uuid.UUID) (string, error)
	Reject(ctx context.Context, actor string, orderID uuid.UUID, reason string) (string, error)
	Submit(ctx context.Context, actor string, orderID uuid.UUID, url, details string) (string, error)
	BulkAccept(ctx context.Context, actor string, orderIDs []uuid.UUID) ([]BulkOutcome, error)
	BulkReject(ctx context.Context, actor string, orderIDs []uuid.UUID, reason string) ([]BulkOutcome, error)
}

type service struct {
	orders   orders.Repository
	invoices invoices.Repository
	users    users.Repository
	ledger   ledger.Service
	tx       txRunner
	notifier notifications.Service
	metrics  *metrics.OrderMetrics
	logger   *logger.Logger
}

// NewService wires the settlement engine.
func NewService(
	orderRepo orders.Repository,
	invoiceRepo invoices.Repository,
	userRepo users.Repository,
	ledgerSvc ledger.Service,
	tx txRunner,
	notifier notifications.Service,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:   orderRepo,
		invoices: invoiceRepo,
		users:    userRepo,
		ledger:   ledgerSvc,
		tx:       tx,
		notifier: notifier,
		metrics:  orderMetrics,
		logger:   logg,
	}, nil
}

func (s *service) Accept(ctx context.Context, actor string, orderID uuid.UUID) (string, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		s.incSettlement("accept", "error")
		return "", err
	}
	if err := guardPending(order); err != nil {
		s.incSettlement("accept", "conflict")
		return "", err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.creditAndApprove(ctx, tx, order, actor)
	})
	if err != nil {
		s.incSettlement("accept", "error")
		return "", err
	}

	s.incSettlement("accept", "success")
	s.notifier.NotifyStatusChange(ctx, notifications.StatusChangeInput{
		Recipient:   order.BackupEmail,
		OrderNumber: order.OrderNumber,
		Status:      enums.OrderStatusApproved,
	})
	return fmt.Sprintf("Order #%d approved and publisher wallet credited", order.OrderNumber), nil
}

func (s *service) Reject(ctx context.Context, actor string, orderID uuid.UUID, reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		s.incSettlement("reject", "error")
		return "", pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		s.incSettlement("reject", "error")
		return "", err
	}
	if err := guardPending(order); err != nil {
		s.incSettlement("reject", "conflict")
		return "", err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.rejectInTx(ctx, tx, order, actor, reason)
	})
	if err != nil {
		s.incSettlement("reject", "error")
		return "", err
	}

	s.incSettlement("reject", "success")
	s.notifier.NotifyStatusChange(ctx, notifications.StatusChangeInput{
		Recipient:   order.BackupEmail,
		OrderNumber: order.OrderNumber,
		Status:      enums.OrderStatusRejected,
		Extras:      notifications.StatusExtras{RejectionReason: reason},
	})
	return fmt.Sprintf("Order #%d rejected", order.OrderNumber), nil
}

func (s *service) Submit(ctx context.Context, actor string, orderID uuid.UUID, url, details string) (string, error) {
	url = strings.TrimSpace(url)
	details = strings.TrimSpace(details)
	if url == "" || details == "" {
		s.incSettlement("submit", "error")
		return "", pkgerrors.New(pkgerrors.CodeValidation, "submission url and details are required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		s.incSettlement("submit", "error")
		return "", err
	}
	// Submission is allowed straight from pending or after an approval.
	if order.OrderStatus != enums.OrderStatusPending && order.OrderStatus != enums.OrderStatusApproved {
		s.incSettlement("submit", "conflict")
		return "", pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot be submitted from status %s", order.OrderStatus))
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Update(ctx, order.ID, map[string]any{
			"order_status":       enums.OrderStatusSubmitted,
			"handled_by":         actor,
			"submission_url":     url,
			"submission_details": details,
			"submission_date":    now,
		}); err != nil {
			return err
		}
		return s.invoices.WithTx(tx).UpdateByOrderNumber(ctx, orderNumberKey(order), map[string]any{
			"status": enums.InvoiceStatusSubmitted,
		})
	})
	if err != nil {
		s.incSettlement("submit", "error")
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
	}

	s.incSettlement("submit", "success")
	s.notifier.NotifyStatusChange(ctx, notifications.StatusChangeInput{
		Recipient:   order.BackupEmail,
		OrderNumber: order.OrderNumber,
		Status:      enums.OrderStatusSubmitted,
		Extras:      notifications.StatusExtras{SubmissionDetails: details, SubmissionURL: url},
	})
	return fmt.Sprintf("Order #%d submitted", order.OrderNumber), nil
}

func (s *service) BulkAccept(ctx context.Context, actor string, orderIDs []uuid.UUID) ([]BulkOutcome, error) {
	loaded, err := s.loadAll(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(orderIDs))
	for _, id := range orderIDs {
		order := loaded[id]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := guardPending(order); err != nil {
				return err
			}
			return s.creditAndApprove(ctx, tx, order, actor)
		})
		if err != nil {
			s.incSettlement("bulk_accept", "failed")
			outcomes = append(outcomes, BulkOutcome{OrderID: id, Status: BulkStatusFailed, Reason: failureReason(err)})
			continue
		}
		s.incSettlement("bulk_accept", "success")
		outcomes = append(outcomes, BulkOutcome{OrderID: id, Status: BulkStatusSuccess})
		s.notifier.NotifyStatusChange(ctx, notifications.StatusChangeInput{
			Recipient:   order.BackupEmail,
			OrderNumber: order.OrderNumber,
			Status:      enums.OrderStatusApproved,
		})
	}
	return outcomes, nil
}

func (s *service) BulkReject(ctx context.Context, actor string, orderIDs []uuid.UUID, reason string) ([]BulkOutcome, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	loaded, err := s.loadAll(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(orderIDs))
	for _, id := range orderIDs {
		order := loaded[id]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := guardPending(order); err != nil {
				return err
			}
			return s.rejectInTx(ctx, tx, order, actor, reason)
		})
		if err != nil {
			s.incSettlement("bulk_reject", "failed")
			outcomes = append(outcomes, BulkOutcome{OrderID: id, Status: BulkStatusFailed, Reason: failureReason(err)})
			continue
		}
		s.incSettlement("bulk_reject", "success")
		outcomes = append(outcomes, BulkOutcome{OrderID: id, Status: BulkStatusSuccess})
		s.notifier.NotifyStatusChange(ctx, notifications.StatusChangeInput{
			Recipient:   order.BackupEmail,
			OrderNumber: order.OrderNumber,
			Status:      enums.OrderStatusRejected,
			Extras:      notifications.StatusExtras{RejectionReason: reason},
		})
	}
	return outcomes, nil
}

// creditAndApprove performs the wallet credit and the approval writes under
// one transaction. The publisher row is locked so concurrent approvals for
// the same publisher serialize, and the wallet entry's unique index blocks a
// second credit for the same order.
func (s *service) creditAndApprove(ctx context.Context, tx *gorm.DB, order *models.Order, actor string) error {
	publisherID, amount, err := settlementLineItem(order)
	if err != nil {
		return err
	}

	userRepo := s.users.WithTx(tx)
	publisher, err := userRepo.FindByIDForUpdate(ctx, publisherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, reasonPublisherMissing)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load publisher")
	}

	newBalance := publisher.WalletBalance.Add(amount).Round(2)
	if err := userRepo.UpdateWalletBalance(ctx, publisher.ID, newBalance); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
	}

	if _, err := s.ledger.WithTx(tx).Record(ctx, ledger.RecordEntryInput{
		OrderID:      order.ID,
		PublisherID:  publisher.ID,
		Type:         enums.WalletEntryTypeOrderCredit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Actor:        actor,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "record wallet credit")
	}

	if err := s.orders.WithTx(tx).Update(ctx, order.ID, map[string]any{
		"order_status": enums.OrderStatusApproved,
		"handled_by":   actor,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve order")
	}

	publisherName := publisher.FullName()
	return s.invoices.WithTx(tx).UpdateByOrderNumber(ctx, orderNumberKey(order), map[string]any{
		"status":                  enums.InvoiceStatusApproved,
		"publisher_name":          publisherName,
		"publisher_approval_date": time.Now().UTC(),
	})
}

func (s *service) rejectInTx(ctx context.Context, tx *gorm.DB, order *models.Order, actor, reason string) error {
	if err := s.orders.WithTx(tx).Update(ctx, order.ID, map[string]any{
		"order_status":     enums.OrderStatusRejected,
		"handled_by":       actor,
		"rejection_reason": reason,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject order")
	}
	return s.invoices.WithTx(tx).UpdateByOrderNumber(ctx, orderNumberKey(order), map[string]any{
		"status":           enums.InvoiceStatusRejected,
		"rejection_reason": reason,
	})
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// loadAll resolves every order up front; a single missing id fails the whole
// bulk call before any transition runs.
func (s *service) loadAll(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*models.Order, error) {
	if len(orderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}
	found, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	byID := make(map[uuid.UUID]*models.Order, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	var missing []string
	for _, id := range orderIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "orders not found").
			WithDetails(map[string]any{"missingOrderIds": missing})
	}
	return byID, nil
}

func (s *service) incSettlement(action, outcome string) {
	if s.metrics != nil {
		s.metrics.IncSettlement(action, outcome)
	}
}

func guardPending(order *models.Order) error {
	if order.OrderStatus != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is already %s", order.OrderStatus))
	}
	return nil
}

// settlementLineItem extracts the publisher and payout amount from the
// order's first snapshot line item.
func settlementLineItem(order *models.Order) (uuid.UUID, decimal.Decimal, error) {
	if len(order.Products) == 0 {
		return uuid.Nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, reasonNoProduct)
	}
	item := order.Products[0]
	if item.PublisherID == uuid.Nil {
		return uuid.Nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, reasonNoPublisherID)
	}
	if !item.AdjustedPrice.IsPositive() {
		return uuid.Nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, reasonInvalidAmount)
	}
	return item.PublisherID, item.AdjustedPrice, nil
}

func failureReason(err error) string {
	if coded := pkgerrors.As(err); coded != nil {
		return coded.Message()
	}
	return err.Error()
}

func orderNumberKey(order *models.Order) string {
	return strconv.FormatInt(order.OrderNumber, 10)
}
