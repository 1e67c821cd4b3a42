package cryptomus

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/enums"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

const testPaymentKey = "payment-key-123"

type stubOrderRepo struct {
	orders.Repository
	rows    int64
	calls   []appliedUpdate
	lastErr error
}

type appliedUpdate struct {
	gatewayUUID string
	updates     map[string]any
}

func (s *stubOrderRepo) UpdateByGatewayUUID(_ context.Context, gatewayUUID string, updates map[string]any) (int64, error) {
	s.calls = append(s.calls, appliedUpdate{gatewayUUID: gatewayUUID, updates: updates})
	return s.rows, s.lastErr
}

func newTestService(t *testing.T, repo *stubOrderRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testPaymentKey, nil, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

// signedBody appends a valid provider signature to the serialized payload.
func signedBody(t *testing.T, payload string) []byte {
	t.Helper()
	sign := cryptomus.Sign([]byte(payload), testPaymentKey)
	return []byte(payload[:len(payload)-1] + fmt.Sprintf(`,"sign":"%s"}`, sign))
}

func TestHandleCallbackPaidSetsPaymentStatusOnly(t *testing.T) {
	repo := &stubOrderRepo{rows: 1}
	svc := newTestService(t, repo)

	body := signedBody(t, `{"uuid":"pay-uuid-1","order_id":"8120045","status":"paid","txid":"0xabc"}`)

	updated, err := svc.HandleCallback(context.Background(), body)
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)

	require.Len(t, repo.calls, 1)
	require.Equal(t, "pay-uuid-1", repo.calls[0].gatewayUUID)
	require.Equal(t, enums.PaymentStatusCompleted, repo.calls[0].updates["payment_status"])
	require.Equal(t, "0xabc", repo.calls[0].updates["txid"])
	require.NotContains(t, repo.calls[0].updates, "order_status", "reconciliation never touches order status")
}

func TestHandleCallbackStatusMapping(t *testing.T) {
	cases := []struct {
		provider string
		want     enums.PaymentStatus
	}{
		{"paid", enums.PaymentStatusCompleted},
		{"check", enums.PaymentStatusUnpaid},
		{"canceled", enums.PaymentStatusRejected},
		{"cancelled", enums.PaymentStatusRejected},
		{"wrong_amount", enums.PaymentStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			repo := &stubOrderRepo{rows: 1}
			svc := newTestService(t, repo)

			body := signedBody(t, fmt.Sprintf(`{"uuid":"u1","status":"%s"}`, tc.provider))
			_, err := svc.HandleCallback(context.Background(), body)
			require.NoError(t, err)
			require.Equal(t, tc.want, repo.calls[0].updates["payment_status"])
		})
	}
}

func TestHandleCallbackRejectsBadSignature(t *testing.T) {
	repo := &stubOrderRepo{rows: 1}
	svc := newTestService(t, repo)

	body := []byte(`{"uuid":"pay-uuid-1","status":"paid","sign":"deadbeef"}`)

	_, err := svc.HandleCallback(context.Background(), body)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Empty(t, repo.calls, "no state touched on a bad signature")
}

func TestHandleCallbackRejectsMissingSignature(t *testing.T) {
	repo := &stubOrderRepo{rows: 1}
	svc := newTestService(t, repo)

	_, err := svc.HandleCallback(context.Background(), []byte(`{"uuid":"pay-uuid-1","status":"paid"}`))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestHandleCallbackUnknownUUIDIsNotAnError(t *testing.T) {
	repo := &stubOrderRepo{rows: 0}
	svc := newTestService(t, repo)

	body := signedBody(t, `{"uuid":"gone-uuid","status":"paid"}`)

	updated, err := svc.HandleCallback(context.Background(), body)
	require.NoError(t, err)
	require.Zero(t, updated)
}

func TestHandleCallbackReplayIsIdempotent(t *testing.T) {
	repo := &stubOrderRepo{rows: 1}
	svc := newTestService(t, repo)

	body := signedBody(t, `{"uuid":"pay-uuid-1","status":"paid","txid":"0xabc"}`)

	for i := 0; i < 2; i++ {
		updated, err := svc.HandleCallback(context.Background(), body)
		require.NoError(t, err)
		require.EqualValues(t, 1, updated)
	}
	require.Len(t, repo.calls, 2)
	require.Equal(t, repo.calls[0], repo.calls[1], "replay applies the identical update")
}

func TestHandleCallbackRequiresUUID(t *testing.T) {
	repo := &stubOrderRepo{rows: 1}
	svc := newTestService(t, repo)

	body := signedBody(t, `{"status":"paid"}`)

	_, err := svc.HandleCallback(context.Background(), body)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
