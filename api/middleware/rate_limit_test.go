package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	count int64
	limit int64
	err   error
}

func (s *stubLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.count++
	return s.count <= s.limit, s.count, nil
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	limiter := &stubLimiter{limit: 2}
	calls := 0
	handler := RateLimit("callback", limiter, 2, time.Minute, nil)(okHandler(&calls))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/orders/cryptomus-callback", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/orders/cryptomus-callback", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, 2, calls)
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	calls := 0
	handler := RateLimit("callback", limiter, 2, time.Minute, nil)(okHandler(&calls))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/orders/cryptomus-callback", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, calls)
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	calls := 0
	handler := RateLimit("callback", nil, 2, time.Minute, nil)(okHandler(&calls))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/orders/cryptomus-callback", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, calls)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	require.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.4")
	require.Equal(t, "198.51.100.4", clientIP(req))

	req.Header.Del("X-Real-IP")
	require.Equal(t, "10.0.0.1", clientIP(req))
}
