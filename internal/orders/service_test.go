package orders

import (
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/internal/invoices"
	"github.com/crective/ggp-backend/internal/notifications"
	"github.com/crective/ggp-backend/internal/users"
	"github.com/crective/ggp-backend/pkg/config"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

type stubOrderRepo struct {
	Repository
	created   []*models.Order
	orders    map[uuid.UUID]*models.Order
	deleted   []uuid.UUID
	createErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(_ context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = append(s.created, order)
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, id := range ids {
		if order, ok := s.orders[id]; ok {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.orders, id)
	return nil
}

func (s *stubOrderRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := s.orders[id]; ok {
			delete(s.orders, id)
			s.deleted = append(s.deleted, id)
			count++
		}
	}
	return count, nil
}

type stubInvoiceRepo struct {
	invoices.Repository
	created        []*models.Invoice
	deletedNumbers []string
}

func (s *stubInvoiceRepo) WithTx(*gorm.DB) invoices.Repository { return s }

func (s *stubInvoiceRepo) Create(_ context.Context, invoice *models.Invoice) error {
	s.created = append(s.created, invoice)
	return nil
}

func (s *stubInvoiceRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Invoice, error) {
	for _, invoice := range s.created {
		if invoice.OrderNumber == orderNumber {
			return invoice, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubInvoiceRepo) DeleteByOrderNumbers(_ context.Context, numbers []string) error {
	s.deletedNumbers = append(s.deletedNumbers, numbers...)
	return nil
}

type stubUserRepo struct {
	users.Repository
	users map[uuid.UUID]*models.User
	staff []string
}

func (s *stubUserRepo) WithTx(*gorm.DB) users.Repository { return s }

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) ListStaffEmails(context.Context) ([]string, error) {
	return s.staff, nil
}

type stubProductRepo struct {
	products []models.Product
}

func (s *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, product := range s.products {
		for _, id := range ids {
			if product.ID == id {
				out = append(out, product)
			}
		}
	}
	return out, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGateway struct {
	payment *cryptomus.Payment
	err     error
	params  []cryptomus.CreatePaymentParams
}

func (s *stubGateway) CreatePayment(_ context.Context, params cryptomus.CreatePaymentParams) (*cryptomus.Payment, error) {
	s.params = append(s.params, params)
	if s.err != nil {
		return nil, s.err
	}
	return s.payment, nil
}

type stubNotifier struct {
	statusChanges []notifications.StatusChangeInput
	created       []notifications.OrderCreatedInput
	deleted       []int64
}

func (s *stubNotifier) NotifyStatusChange(_ context.Context, input notifications.StatusChangeInput) {
	s.statusChanges = append(s.statusChanges, input)
}

func (s *stubNotifier) NotifyOrderCreated(_ context.Context, input notifications.OrderCreatedInput) {
	s.created = append(s.created, input)
}

func (s *stubNotifier) NotifyOrderDeleted(_ context.Context, _ string, orderNumber int64) {
	s.deleted = append(s.deleted, orderNumber)
}

type serviceFixture struct {
	svc      Service
	repo     *stubOrderRepo
	invoices *stubInvoiceRepo
	users    *stubUserRepo
	products *stubProductRepo
	gateway  *stubGateway
	notifier *stubNotifier

	buyer     *models.User
	publisher *models.User
	catalog   []models.Product
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	buyer := &models.User{ID: uuid.New(), Email: "buyer@example.com", FirstName: "Blake", LastName: "Ng"}
	publisher := &models.User{ID: uuid.New(), Email: "pub@example.com", FirstName: "Pat", Role: enums.RolePublisher}

	catalog := []models.Product{
		{
			ID:            uuid.New(),
			PublisherID:   publisher.ID,
			SiteName:      "techdaily",
			WebsiteURL:    "https://techdaily.example",
			Price:         decimal.NewFromInt(30),
			AdjustedPrice: decimal.RequireFromString("40.50"),
			Currency:      "USD",
		},
		{
			ID:            uuid.New(),
			PublisherID:   publisher.ID,
			SiteName:      "devblog",
			WebsiteURL:    "https://devblog.example",
			Price:         decimal.NewFromInt(50),
			AdjustedPrice: decimal.RequireFromString("60.25"),
			Currency:      "USD",
		},
	}

	f := &serviceFixture{
		repo:      newStubOrderRepo(),
		invoices:  &stubInvoiceRepo{},
		users:     &stubUserRepo{users: map[uuid.UUID]*models.User{buyer.ID: buyer, publisher.ID: publisher}, staff: []string{"admin@example.com"}},
		products:  &stubProductRepo{products: catalog},
		gateway:   &stubGateway{},
		notifier:  &stubNotifier{},
		buyer:     buyer,
		publisher: publisher,
		catalog:   catalog,
	}

	svc, err := NewService(
		f.repo, f.invoices, f.users, f.products, stubTx{}, f.gateway, f.notifier,
		nil, logger.New(logger.Options{Output: io.Discard}), config.OrdersConfig{CommissionRate: 0.10},
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *serviceFixture) createInput() CreateOrderInput {
	return CreateOrderInput{
		BuyerID:       f.buyer.ID,
		ProductIDs:    []uuid.UUID{f.catalog[0].ID, f.catalog[1].ID},
		PaymentType:   enums.PaymentTypePayoneer,
		BackupEmail:   "backup@example.com",
		TransactionID: "PAYREF-123",
	}
}

func TestCreateManualReferenceOrder(t *testing.T) {
	f := newServiceFixture(t)

	order, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	// 40.50 + 60.25 floors to 100.
	require.EqualValues(t, 100, order.TotalAmount)
	require.Equal(t, enums.OrderStatusPending, order.OrderStatus)
	require.Equal(t, enums.PaymentStatusCompleted, order.PaymentStatus)
	require.NotNil(t, order.TxID)
	require.Equal(t, "PAYREF-123", *order.TxID)
	require.Len(t, order.Products, 2)
	require.NotZero(t, order.OrderNumber)

	require.Len(t, f.invoices.created, 1)
	require.EqualValues(t, 100, f.invoices.created[0].Amount)
	require.Regexp(t, `^INV-[0-9A-F]{8}$`, f.invoices.created[0].InvoiceNumber)

	require.Len(t, f.notifier.created, 1)
	require.Equal(t, "backup@example.com", f.notifier.created[0].Recipient)
	require.Contains(t, f.notifier.created[0].StaffEmails, "admin@example.com")
	require.Contains(t, f.notifier.created[0].StaffEmails, "pub@example.com")
}

func TestInvoiceResolvedThroughOrderNumber(t *testing.T) {
	f := newServiceFixture(t)

	order, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	invoice, err := f.svc.Invoice(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, strconv.FormatInt(order.OrderNumber, 10), invoice.OrderNumber)
	require.EqualValues(t, order.TotalAmount, invoice.Amount)

	_, err = f.svc.Invoice(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateMissingProductFailsFast(t *testing.T) {
	f := newServiceFixture(t)
	input := f.createInput()
	input.ProductIDs = append(input.ProductIDs, uuid.New())

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	require.Empty(t, f.repo.created, "nothing persisted on missing products")
	require.Empty(t, f.invoices.created)
}

func TestCreateRejectsMixedPublishers(t *testing.T) {
	f := newServiceFixture(t)
	other := models.Product{
		ID:            uuid.New(),
		PublisherID:   uuid.New(),
		SiteName:      "elsewhere",
		Price:         decimal.NewFromInt(10),
		AdjustedPrice: decimal.NewFromInt(15),
	}
	f.products.products = append(f.products.products, other)

	input := f.createInput()
	input.ProductIDs = append(input.ProductIDs, other.ID)

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateManualRequiresTransactionID(t *testing.T) {
	f := newServiceFixture(t)
	input := f.createInput()
	input.TransactionID = "  "

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateCryptoOrderCopiesGatewayFields(t *testing.T) {
	f := newServiceFixture(t)
	payer := decimal.RequireFromString("0.0031")
	f.gateway.payment = &cryptomus.Payment{
		UUID:          "8d4f3e70-2d03-4b2f-8f3f-abc123",
		PaymentStatus: "check",
		URL:           "https://pay.cryptomus.com/pay/8d4f3e70",
		Address:       "0xdeadbeef",
		AddressQRCode: "data:image/png;base64,AAAA",
		PayerAmount:   &payer,
		PayerCurrency: "ETH",
		Network:       "eth",
	}

	input := f.createInput()
	input.PaymentType = enums.PaymentTypeCryptomus
	input.TransactionID = ""
	input.Network = "eth"
	input.ToCurrency = "ETH"

	order, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, order.GatewayUUID)
	require.Equal(t, "8d4f3e70-2d03-4b2f-8f3f-abc123", *order.GatewayUUID)
	require.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	require.Equal(t, "https://pay.cryptomus.com/pay/8d4f3e70", *order.PaymentURL)
	require.Equal(t, "0xdeadbeef", *order.Address)
	require.Equal(t, "ETH", *order.PayerCurrency)
	require.Equal(t, "ETH", *order.ToCurrency)

	require.Len(t, f.gateway.params, 1)
	require.Equal(t, "eth", f.gateway.params[0].Network)
	require.True(t, f.gateway.params[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestCreateGatewayFailureAbortsOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.err = pkgerrors.New(pkgerrors.CodeGateway, "amount too small")

	input := f.createInput()
	input.PaymentType = enums.PaymentTypeCryptomus
	input.TransactionID = ""
	input.Network = "eth"
	input.ToCurrency = "ETH"

	_, err := f.svc.Create(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeGateway, pkgerrors.As(err).Code())
	require.Empty(t, f.repo.created, "gateway failure must leave no order behind")
	require.Empty(t, f.invoices.created)
}

func TestCreateAppliesWordLimitSurcharge(t *testing.T) {
	f := newServiceFixture(t)
	provider := "publisher"
	limit := 750

	input := f.createInput()
	input.ContentProvidedBy = &provider
	input.WordLimit = &limit

	order, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	// floor(100.75) + 30 surcharge.
	require.EqualValues(t, 130, order.TotalAmount)
}

func TestDeleteNotifiesThenRemovesOrderAndInvoice(t *testing.T) {
	f := newServiceFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), order.ID))

	require.Contains(t, f.notifier.deleted, order.OrderNumber)
	require.Contains(t, f.repo.deleted, order.ID)
	require.Len(t, f.invoices.deletedNumbers, 1)
}

func TestBulkDeleteRejectsMalformedIDs(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.BulkDelete(context.Background(), []string{"not-a-uuid", uuid.NewString(), "also-bad"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Contains(t, err.Error(), "not-a-uuid")
	require.Contains(t, err.Error(), "also-bad")
}

func TestBulkDeleteIsAllOrNothingOnMissing(t *testing.T) {
	f := newServiceFixture(t)
	order, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	_, err = f.svc.BulkDelete(context.Background(), []string{order.ID.String(), uuid.NewString()})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	require.Empty(t, f.repo.deleted, "no deletes when any id is missing")
}

func TestBulkDeleteRemovesOrdersAndInvoices(t *testing.T) {
	f := newServiceFixture(t)
	first, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), f.createInput())
	require.NoError(t, err)

	deleted, err := f.svc.BulkDelete(context.Background(), []string{first.ID.String(), second.ID.String()})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
	require.Len(t, f.invoices.deletedNumbers, 2)
}

func TestGetUnknownOrder(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
