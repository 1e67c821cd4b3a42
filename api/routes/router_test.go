package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crective/ggp-backend/pkg/config"
	"github.com/crective/ggp-backend/pkg/logger"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "ggp-test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestHealthLive(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "test", w.Header().Get("X-GGP-Env"))
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/orders"},
		{http.MethodGet, "/v1/orders"},
		{http.MethodPost, "/v1/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427/accept"},
		{http.MethodGet, "/v1/orders/1b4e28ba-2fa1-11d2-883f-0016d3cca427/invoice"},
		{http.MethodGet, "/v1/publisher/wallet"},
		{http.MethodGet, "/admin/v1/orders"},
		{http.MethodPost, "/admin/v1/withdrawals/payout"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
