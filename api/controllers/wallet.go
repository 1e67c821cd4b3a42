package controllers

import (
	"net/http"

	"github.com/crective/ggp-backend/api/responses"
	"github.com/crective/ggp-backend/internal/ledger"
	"github.com/crective/ggp-backend/pkg/logger"
)

// PublisherWalletEntries returns the authenticated publisher's wallet history,
// credits and withdrawals in chronological order.
func PublisherWalletEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publisherID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.EarningsHistory(r.Context(), publisherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
