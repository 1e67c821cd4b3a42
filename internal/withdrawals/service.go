package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crective/ggp-backend/internal/ledger"
	"github.com/crective/ggp-backend/internal/users"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PayoutGateway dispatches crypto payouts for approved withdrawals.
type PayoutGateway interface {
	CreatePayout(ctx context.Context, params cryptomus.CreatePayoutParams) (*cryptomus.Payout, error)
}

// PayoutInput describes an admin-approved withdrawal dispatch.
type PayoutInput struct {
	PublisherID uuid.UUID
	Amount      decimal.Decimal
	Address     string
	Network     string
	ToCurrency  string
	Actor       string
}

// PayoutResult reports the dispatched payout and the publisher's new balance.
type PayoutResult struct {
	PayoutUUID string          `json:"payoutUuid"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// Service pays out publisher earnings. The wallet debit commits only after
// the provider accepts the payout, and a provider-side insufficient-funds
// response is soft: the wallet stays untouched and the request can be retried
// once the merchant balance is topped up.
type Service interface {
	Payout(ctx context.Context, input PayoutInput) (*PayoutResult, error)
}

type service struct {
	users   users.Repository
	ledger  ledger.Service
	tx      txRunner
	gateway PayoutGateway
	logger  *logger.Logger
}

// NewService wires the withdrawal service.
func NewService(userRepo users.Repository, ledgerSvc ledger.Service, tx txRunner, gateway PayoutGateway, logg *logger.Logger) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payout gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{users: userRepo, ledger: ledgerSvc, tx: tx, gateway: gateway, logger: logg}, nil
}

func (s *service) Payout(ctx context.Context, input PayoutInput) (*PayoutResult, error) {
	if input.PublisherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "publisher id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}
	if strings.TrimSpace(input.Address) == "" || strings.TrimSpace(input.Network) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout address and network required")
	}

	publisher, err := s.users.FindByID(ctx, input.PublisherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "publisher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load publisher")
	}
	if publisher.WalletBalance.LessThan(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal exceeds wallet balance")
	}

	payout, err := s.gateway.CreatePayout(ctx, cryptomus.CreatePayoutParams{
		OrderID:    fmt.Sprintf("wd-%s-%d", publisher.ID, time.Now().Unix()),
		Amount:     input.Amount,
		Currency:   "USD",
		Network:    input.Network,
		ToCurrency: input.ToCurrency,
		Address:    input.Address,
	})
	if err != nil {
		if errors.Is(err, cryptomus.ErrInsufficientFunds) {
			s.logger.Warn(ctx, "payout deferred, merchant balance too low")
		}
		return nil, err
	}

	var newBalance decimal.Decimal
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		locked, err := userRepo.FindByIDForUpdate(ctx, publisher.ID)
		if err != nil {
			return err
		}
		newBalance = locked.WalletBalance.Sub(input.Amount).Round(2)
		if newBalance.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeConflict, "wallet balance changed during payout")
		}
		if err := userRepo.UpdateWalletBalance(ctx, locked.ID, newBalance); err != nil {
			return err
		}
		// Withdrawals have no backing order; a fresh uuid keys the audit row
		// under the (order_id, type) uniqueness rule.
		_, err = s.ledger.WithTx(tx).Record(ctx, ledger.RecordEntryInput{
			OrderID:      uuid.New(),
			PublisherID:  locked.ID,
			Type:         enums.WalletEntryTypeWithdrawal,
			Amount:       input.Amount.Neg(),
			BalanceAfter: newBalance,
			Actor:        input.Actor,
		})
		return err
	})
	if err != nil {
		// The provider already accepted the payout; the debit failing after
		// that is an operator-attention situation, not a silent retry.
		s.logger.Error(ctx, "payout dispatched but wallet debit failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet debit")
	}

	return &PayoutResult{PayoutUUID: payout.UUID, NewBalance: newBalance}, nil
}
