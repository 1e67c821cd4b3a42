package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/internal/invoices"
	"github.com/crective/ggp-backend/internal/notifications"
	"github.com/crective/ggp-backend/internal/products"
	"github.com/crective/ggp-backend/internal/users"
	"github.com/crective/ggp-backend/pkg/config"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/db"
	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/metrics"
	"github.com/crective/ggp-backend/pkg/pagination"
	"github.com/crective/ggp-backend/pkg/types"
)

// contentProvidedByPublisher marks the path where the publisher writes the
// article; word-limit surcharges apply only here.
const contentProvidedByPublisher = "publisher"

// wordLimitSurcharges maps the offered word counts to their flat surcharge.
var wordLimitSurcharges = map[int]int64{
	650: 20,
	750: 30,
	850: 40,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentGateway provisions crypto invoices at order creation.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, params cryptomus.CreatePaymentParams) (*cryptomus.Payment, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Invoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params ListParams) (pagination.Page[models.Order], error)
	ListByPublisher(ctx context.Context, publisherID uuid.UUID, params ListParams) (pagination.Page[models.Order], error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, rawIDs []string) (int64, error)
}

type service struct {
	repo     Repository
	invoices invoices.Repository
	users    users.Repository
	products products.Repository
	tx       txRunner
	gateway  PaymentGateway
	notifier notifications.Service
	metrics  *metrics.OrderMetrics
	logger   *logger.Logger
	cfg      config.OrdersConfig
}

// NewService wires the order lifecycle service. The gateway may be nil when
// the crypto path is disabled; creating a cryptomus order then fails cleanly.
func NewService(
	repo Repository,
	invoiceRepo invoices.Repository,
	userRepo users.Repository,
	productRepo products.Repository,
	tx txRunner,
	gateway PaymentGateway,
	notifier notifications.Service,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
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
		repo:     repo,
		invoices: invoiceRepo,
		users:    userRepo,
		products: productRepo,
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		metrics:  orderMetrics,
		logger:   logg,
		cfg:      cfg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	buyer, err := s.users.FindByID(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	catalog, err := s.products.FindByIDs(ctx, input.ProductIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if missing := missingProductIDs(input.ProductIDs, catalog); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "products not found").
			WithDetails(map[string]any{"missingProductIds": missing})
	}

	publisherID := catalog[0].PublisherID
	for _, product := range catalog {
		if product.PublisherID != publisherID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "all products in an order must belong to the same publisher")
		}
	}

	items := s.snapshotLineItems(catalog)
	totalAmount := computeTotal(items, input)

	order := &models.Order{
		OrderNumber:       newOrderNumber(),
		BuyerID:           buyer.ID,
		Products:          items,
		TotalAmount:       totalAmount,
		PaymentType:       input.PaymentType,
		OrderStatus:       enums.OrderStatusPending,
		BackupEmail:       input.BackupEmail,
		Notes:             input.Notes,
		File:              input.File,
		ContentProvidedBy: input.ContentProvidedBy,
		Anchor:            input.Anchor,
		AnchorLink:        input.AnchorLink,
		WordLimit:         input.WordLimit,
	}

	switch input.PaymentType {
	case enums.PaymentTypePayoneer:
		txid := input.TransactionID
		order.TxID = &txid
		order.PaymentStatus = enums.PaymentStatusCompleted
	case enums.PaymentTypeCryptomus:
		if err := s.provisionPayment(ctx, order, input); err != nil {
			return nil, err
		}
	}

	invoice := &models.Invoice{
		InvoiceNumber: newInvoiceNumber(),
		OrderNumber:   strconv.FormatInt(order.OrderNumber, 10),
		Amount:        order.TotalAmount,
		Currency:      "USD",
		Status:        enums.InvoiceStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			if !db.IsUniqueViolation(err, "order_number") {
				return err
			}
			order.OrderNumber = newOrderNumber()
			invoice.OrderNumber = strconv.FormatInt(order.OrderNumber, 10)
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
		}
		return s.invoices.WithTx(tx).Create(ctx, invoice)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.notifyCreated(ctx, order, buyer, publisherID)
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Invoice resolves the order's invoice through the order-number key both rows
// share.
func (s *service) Invoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoices.FindByOrderNumber(ctx, strconv.FormatInt(order.OrderNumber, 10))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.Page[models.Order], error) {
	orders, total, err := s.repo.List(ctx, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return pagination.NewPage(orders, total, params.Params), nil
}

func (s *service) ListByPublisher(ctx context.Context, publisherID uuid.UUID, params ListParams) (pagination.Page[models.Order], error) {
	if publisherID == uuid.Nil {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation, "publisher id required")
	}
	orders, total, err := s.repo.ListByPublisher(ctx, publisherID, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list publisher orders")
	}
	return pagination.NewPage(orders, total, params.Params), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	s.notifier.NotifyOrderDeleted(ctx, order.BackupEmail, order.OrderNumber)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, order.ID); err != nil {
			return err
		}
		return s.invoices.WithTx(tx).DeleteByOrderNumbers(ctx, []string{strconv.FormatInt(order.OrderNumber, 10)})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) BulkDelete(ctx context.Context, rawIDs []string) (int64, error) {
	if len(rawIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order ids required")
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	var parseErrs error
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			parseErrs = multierr.Append(parseErrs, fmt.Errorf("invalid order id %q", raw))
			continue
		}
		ids = append(ids, id)
	}
	if parseErrs != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErrs, "malformed order ids")
	}

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	if missing := missingOrderIDs(ids, found); len(missing) > 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "orders not found").
			WithDetails(map[string]any{"missingOrderIds": missing})
	}

	orderNumbers := make([]string, 0, len(found))
	for _, order := range found {
		orderNumbers = append(orderNumbers, strconv.FormatInt(order.OrderNumber, 10))
	}

	var deleted int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		count, err := s.repo.WithTx(tx).DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		deleted = count
		return s.invoices.WithTx(tx).DeleteByOrderNumbers(ctx, orderNumbers)
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk delete orders")
	}
	return deleted, nil
}

// provisionPayment creates the gateway invoice before anything is persisted.
// A gateway failure aborts the whole create so no half-provisioned order row
// ever exists.
func (s *service) provisionPayment(ctx context.Context, order *models.Order, input CreateOrderInput) error {
	if s.gateway == nil {
		return pkgerrors.New(pkgerrors.CodeGateway, "crypto payments are not configured")
	}

	start := time.Now()
	payment, err := s.gateway.CreatePayment(ctx, cryptomus.CreatePaymentParams{
		OrderID:    strconv.FormatInt(order.OrderNumber, 10),
		Amount:     decimal.NewFromInt(order.TotalAmount),
		Currency:   "USD",
		Network:    input.Network,
		ToCurrency: input.ToCurrency,
	})
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ObserveGatewayCall("create_payment", outcome, time.Since(start))
	}
	if err != nil {
		return err
	}

	order.GatewayUUID = &payment.UUID
	order.PaymentStatus = enums.NormalizeGatewayStatus(payment.PaymentStatus)
	order.ExpiredAt = payment.ExpiredAt
	order.PayerAmount = payment.PayerAmount
	if payment.URL != "" {
		order.PaymentURL = &payment.URL
	}
	if payment.Address != "" {
		order.Address = &payment.Address
	}
	if payment.AddressQRCode != "" {
		order.AddressQRCode = &payment.AddressQRCode
	}
	if payment.PayerCurrency != "" {
		order.PayerCurrency = &payment.PayerCurrency
	}
	if payment.Network != "" {
		order.Network = &payment.Network
	}
	if payment.TxID != "" {
		order.TxID = &payment.TxID
	}
	if input.ToCurrency != "" {
		order.ToCurrency = &input.ToCurrency
	}
	return nil
}

func (s *service) snapshotLineItems(catalog []models.Product) types.OrderLineItems {
	items := make(types.OrderLineItems, 0, len(catalog))
	for _, product := range catalog {
		adjusted := product.AdjustedPrice
		if adjusted.IsZero() {
			rate := decimal.NewFromFloat(s.cfg.CommissionRate)
			adjusted = product.Price.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
		}
		items = append(items, types.OrderLineItem{
			ProductID:      product.ID,
			PublisherID:    product.PublisherID,
			SiteName:       product.SiteName,
			WebsiteURL:     product.WebsiteURL,
			Price:          product.Price,
			AdjustedPrice:  adjusted,
			Category:       product.Category,
			Niche:          product.Niche,
			TurnAroundTime: product.TurnAroundTime,
			Language:       product.Language,
			Currency:       product.Currency,
		})
	}
	return items
}

func (s *service) notifyCreated(ctx context.Context, order *models.Order, buyer *models.User, publisherID uuid.UUID) {
	staff, err := s.users.ListStaffEmails(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing staff emails", err)
	}
	if publisher, err := s.users.FindByID(ctx, publisherID); err == nil {
		staff = append(staff, publisher.Email)
	} else {
		s.logger.Error(ctx, "loading publisher for notification", err)
	}

	s.notifier.NotifyOrderCreated(ctx, notifications.OrderCreatedInput{
		Recipient:   order.BackupEmail,
		Name:        buyer.FullName(),
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		StaffEmails: staff,
	})
}

func validateCreateInput(input CreateOrderInput) error {
	if input.BuyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.ProductIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one product is required")
	}
	if !input.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
	}
	if strings.TrimSpace(input.BackupEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "backup email required")
	}
	switch input.PaymentType {
	case enums.PaymentTypePayoneer:
		if strings.TrimSpace(input.TransactionID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required for manual payments")
		}
	case enums.PaymentTypeCryptomus:
		if strings.TrimSpace(input.Network) == "" || strings.TrimSpace(input.ToCurrency) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "network and target currency required for crypto payments")
		}
	}
	return nil
}

// computeTotal sums the snapshot's adjusted prices, adds the word-limit
// surcharge on the publisher-content path, and floors to whole dollars.
func computeTotal(items types.OrderLineItems, input CreateOrderInput) int64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.AdjustedPrice)
	}
	if input.ContentProvidedBy != nil && *input.ContentProvidedBy == contentProvidedByPublisher && input.WordLimit != nil {
		if surcharge, ok := wordLimitSurcharges[*input.WordLimit]; ok {
			sum = sum.Add(decimal.NewFromInt(surcharge))
		}
	}
	return sum.Floor().IntPart()
}

func missingProductIDs(requested []uuid.UUID, found []models.Product) []string {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, product := range found {
		present[product.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}

func missingOrderIDs(requested []uuid.UUID, found []models.Order) []string {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, order := range found {
		present[order.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}
