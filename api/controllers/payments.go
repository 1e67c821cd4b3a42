package controllers

import (
	"net/http"

	"github.com/crective/ggp-backend/api/responses"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

// ListPaymentServices proxies the provider's available currency and network
// combinations so the checkout form can be populated.
func ListPaymentServices(gateway *cryptomus.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured"))
			return
		}
		services, err := gateway.ListServices(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, services)
	}
}
