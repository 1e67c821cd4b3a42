package cryptomus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/metrics"
)

// callbackPayload is the subset of the provider callback the reconciler acts
// on. Everything else in the body participates only in signature checking.
type callbackPayload struct {
	UUID    string `json:"uuid"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	TxID    string `json:"txid"`
}

// Service reconciles provider callbacks onto order payment state. It never
// moves orderStatus; settlement approval stays a human decision.
type Service interface {
	HandleCallback(ctx context.Context, rawBody []byte) (int64, error)
}

type service struct {
	orders     orders.Repository
	paymentKey string
	metrics    *metrics.OrderMetrics
	logger     *logger.Logger
}

// NewService wires the callback reconciler with the merchant payment key used
// to verify signatures.
func NewService(orderRepo orders.Repository, paymentKey string, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if paymentKey == "" {
		return nil, fmt.Errorf("payment key required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orderRepo, paymentKey: paymentKey, metrics: orderMetrics, logger: logg}, nil
}

// HandleCallback verifies the provider signature, normalizes the reported
// status, and applies it by gateway uuid. The update-by-filter shape makes
// replays idempotent: the same callback lands on the same row with the same
// values. An unknown uuid updates nothing and is not an error, so provider
// retries for deleted orders never see a failure response.
func (s *service) HandleCallback(ctx context.Context, rawBody []byte) (int64, error) {
	if !cryptomus.VerifyWebhookSign(rawBody, s.paymentKey) {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}

	var payload callbackPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed callback body")
	}
	if payload.UUID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "callback is missing the payment uuid")
	}

	status := enums.NormalizeGatewayStatus(payload.Status)
	updates := map[string]any{"payment_status": status}
	if payload.TxID != "" {
		updates["txid"] = payload.TxID
	}

	updated, err := s.orders.UpdateByGatewayUUID(ctx, payload.UUID, updates)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply callback")
	}

	if s.metrics != nil {
		s.metrics.IncWebhook(string(status))
	}
	if updated == 0 {
		s.logger.Warn(ctx, fmt.Sprintf("callback for unknown payment uuid %s", payload.UUID))
	}
	return updated, nil
}
