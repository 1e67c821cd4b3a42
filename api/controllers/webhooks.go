package controllers

import (
	"io"
	"net/http"

	"github.com/crective/ggp-backend/api/responses"
	cryptomuswebhook "github.com/crective/ggp-backend/internal/webhooks/cryptomus"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

const maxCallbackBody = 64 << 10

// CryptomusCallback receives payment status callbacks from the provider.
// The raw body is passed through untouched; the signature covers the exact
// bytes the provider sent.
func CryptomusCallback(svc cryptomuswebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read callback body"))
			return
		}

		if _, err := svc.HandleCallback(r.Context(), rawBody); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "ok"})
	}
}
