package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crective/ggp-backend/api/middleware"
	"github.com/crective/ggp-backend/api/responses"
	"github.com/crective/ggp-backend/api/validators"
	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/internal/settlement"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/pagination"
)

type createOrderRequest struct {
	ProductIDs        []uuid.UUID `json:"productIds" validate:"required,min=1"`
	PaymentType       string      `json:"paymentType" validate:"required"`
	BackupEmail       string      `json:"backupEmail" validate:"required,email"`
	TransactionID     string      `json:"transactionId,omitempty"`
	Network           string      `json:"network,omitempty"`
	ToCurrency        string      `json:"toCurrency,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	File              *string     `json:"file,omitempty"`
	ContentProvidedBy *string     `json:"contentProvidedBy,omitempty"`
	Anchor            *string     `json:"anchor,omitempty"`
	AnchorLink        *string     `json:"anchorLink,omitempty"`
	WordLimit         *int        `json:"wordLimit,omitempty"`
}

// CreateOrder places an order for the authenticated buyer.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentType, err := enums.ParsePaymentType(req.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			BuyerID:           buyerID,
			ProductIDs:        req.ProductIDs,
			PaymentType:       paymentType,
			BackupEmail:       validators.SanitizeString(req.BackupEmail, 320),
			TransactionID:     validators.SanitizeString(req.TransactionID, 128),
			Network:           validators.SanitizeString(req.Network, 32),
			ToCurrency:        validators.SanitizeString(req.ToCurrency, 16),
			Notes:             req.Notes,
			File:              req.File,
			ContentProvidedBy: req.ContentProvidedBy,
			Anchor:            req.Anchor,
			AnchorLink:        req.AnchorLink,
			WordLimit:         req.WordLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the authenticated buyer's orders.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.BuyerID = buyerID

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetOrder returns one order by id.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// GetOrderInvoice returns the invoice issued for an order.
func GetOrderInvoice(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Invoice(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// ListPublisherOrders returns the paid orders assigned to the authenticated
// publisher.
func ListPublisherOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publisherID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByPublisher(r.Context(), publisherID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AcceptOrder approves a pending order and credits the publisher wallet.
func AcceptOrder(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Accept(r.Context(), actorLabel(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": msg})
	}
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectOrder declines a pending order with a mandatory reason.
func RejectOrder(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rejectOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Reject(r.Context(), actorLabel(r), orderID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": msg})
	}
}

type submitOrderRequest struct {
	SubmissionURL     string `json:"submissionUrl" validate:"required,url"`
	SubmissionDetails string `json:"submissionDetails" validate:"required"`
}

// SubmitOrder records the publisher's delivered work.
func SubmitOrder(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req submitOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Submit(r.Context(), actorLabel(r), orderID, req.SubmissionURL, req.SubmissionDetails)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": msg})
	}
}

func listParamsFromQuery(r *http.Request) (orders.ListParams, error) {
	page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, 1<<30)
	if err != nil {
		return orders.ListParams{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return orders.ListParams{}, err
	}

	query := r.URL.Query()
	params := orders.ListParams{
		Params: pagination.Params{
			Page:      page,
			Limit:     limit,
			SortField: validators.SanitizeString(query.Get("sort"), 32),
			SortDesc:  query.Get("order") != "asc",
			Query:     validators.SanitizeString(query.Get("q"), 128),
		},
	}

	if raw := validators.SanitizeString(query.Get("status"), 32); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = status
	}
	if raw := validators.SanitizeString(query.Get("paymentType"), 32); raw != "" {
		paymentType, err := enums.ParsePaymentType(raw)
		if err != nil {
			return orders.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type filter")
		}
		params.PaymentType = paymentType
	}
	return params, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]any{"value": raw})
	}
	return id, nil
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return id, nil
}

// actorLabel identifies who performed a settlement action; the email reads
// better than a bare uuid in handled_by and in the wallet ledger.
func actorLabel(r *http.Request) string {
	if email := middleware.UserEmailFromContext(r.Context()); email != "" {
		return email
	}
	return middleware.UserIDFromContext(r.Context())
}
