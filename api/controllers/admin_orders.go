package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crective/ggp-backend/api/responses"
	"github.com/crective/ggp-backend/api/validators"
	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/internal/settlement"
	"github.com/crective/ggp-backend/internal/withdrawals"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

// AdminListOrders lists every order, optionally filtered by buyer, status,
// payment type, or a free-text query.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("buyerId"), 64); raw != "" {
			buyerID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, invalidQueryUUID("buyerId", raw))
				return
			}
			params.BuyerID = buyerID
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// DeleteOrder removes an order and its invoice, notifying the buyer first.
func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Order deleted successfully"})
	}
}

type bulkOrderIDsRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,max=100"`
}

// BulkDeleteOrders removes a batch of orders. The batch is all or nothing:
// one malformed or unknown id fails the whole request.
func BulkDeleteOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkOrderIDsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deleted, err := svc.BulkDelete(r.Context(), req.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": deleted})
	}
}

type bulkSettleRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,max=100"`
}

// BulkAcceptOrders approves a batch of pending orders, reporting a per-order
// outcome instead of failing the whole batch on the first bad order.
func BulkAcceptOrders(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkSettleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcomes, err := svc.BulkAccept(r.Context(), actorLabel(r), req.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"results": outcomes})
	}
}

type bulkRejectRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,max=100"`
	Reason   string      `json:"reason" validate:"required"`
}

// BulkRejectOrders declines a batch of pending orders with a shared reason.
func BulkRejectOrders(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcomes, err := svc.BulkReject(r.Context(), actorLabel(r), req.OrderIDs, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"results": outcomes})
	}
}

type payoutRequest struct {
	PublisherID uuid.UUID       `json:"publisherId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Address     string          `json:"address" validate:"required"`
	Network     string          `json:"network" validate:"required"`
	ToCurrency  string          `json:"toCurrency,omitempty"`
}

// CreatePayout dispatches a crypto payout of publisher earnings and debits
// the wallet once the provider accepts it.
func CreatePayout(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Payout(r.Context(), withdrawals.PayoutInput{
			PublisherID: req.PublisherID,
			Amount:      req.Amount,
			Address:     validators.SanitizeString(req.Address, 128),
			Network:     validators.SanitizeString(req.Network, 32),
			ToCurrency:  validators.SanitizeString(req.ToCurrency, 16),
			Actor:       actorLabel(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func invalidQueryUUID(field, value string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").
		WithDetails(map[string]any{"field": field, "value": value})
}
