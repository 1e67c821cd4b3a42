package notifications

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/mail"
)

type stubRepo struct {
	created   []*models.Notification
	delivered []uuid.UUID
	createErr error
}

func (s *stubRepo) Create(_ context.Context, n *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	n.ID = uuid.New()
	s.created = append(s.created, n)
	return nil
}

func (s *stubRepo) MarkDelivered(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.delivered = append(s.delivered, id)
	return nil
}

type stubSender struct {
	sent    []mail.Message
	sendErr error
}

func (s *stubSender) Send(_ context.Context, msg mail.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestService(t *testing.T, repo Repository, sender mail.Sender) Service {
	t.Helper()
	svc, err := NewService(repo, sender, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

func TestNotifyStatusChangeDeliversAndMarks(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{}
	svc := newTestService(t, repo, sender)

	svc.NotifyStatusChange(context.Background(), StatusChangeInput{
		Recipient:   "buyer@example.com",
		Name:        "Buyer",
		OrderNumber: 8120045,
		Status:      enums.OrderStatusApproved,
	})

	require.Len(t, repo.created, 1)
	require.Equal(t, "Your Order Has Been Approved!", repo.created[0].Subject)
	require.Equal(t, enums.NotificationKindOrderApproved, repo.created[0].Kind)
	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0].HTML, "#8120045")
	require.Len(t, repo.delivered, 1)
}

func TestNotifyStatusChangeRejectionReason(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{}
	svc := newTestService(t, repo, sender)

	svc.NotifyStatusChange(context.Background(), StatusChangeInput{
		Recipient:   "buyer@example.com",
		OrderNumber: 42,
		Status:      enums.OrderStatusRejected,
		Extras:      StatusExtras{RejectionReason: "broken anchor link"},
	})

	require.Len(t, sender.sent, 1)
	require.True(t, strings.HasSuffix(sender.sent[0].HTML, "Reason: broken anchor link"))
}

func TestNotifySendFailureIsSwallowed(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{sendErr: errors.New("provider down")}
	svc := newTestService(t, repo, sender)

	svc.NotifyStatusChange(context.Background(), StatusChangeInput{
		Recipient:   "buyer@example.com",
		OrderNumber: 42,
		Status:      enums.OrderStatusSubmitted,
	})

	require.Len(t, repo.created, 1, "row is persisted even when delivery fails")
	require.Empty(t, repo.delivered)
}

func TestNotifyOrderCreatedFansOutToStaff(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{}
	svc := newTestService(t, repo, sender)

	svc.NotifyOrderCreated(context.Background(), OrderCreatedInput{
		Recipient:   "buyer@example.com",
		OrderNumber: 9001,
		TotalAmount: 350,
		StaffEmails: []string{"mod@example.com", "admin@example.com"},
	})

	require.Len(t, sender.sent, 3)
	require.Equal(t, "Your Order Has Been Received", sender.sent[0].Subject)
	require.Equal(t, "New Pending Order", sender.sent[1].Subject)
}

func TestNotifySkipsEmptyRecipient(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{}
	svc := newTestService(t, repo, sender)

	svc.NotifyOrderDeleted(context.Background(), "", 42)

	require.Empty(t, repo.created)
	require.Empty(t, sender.sent)
}
