package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/crective/ggp-backend/pkg/db/models"
	"github.com/crective/ggp-backend/pkg/enums"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/mail"
)

// Service fans out order emails. Every send is best effort: the notification
// row is persisted first, delivery failures are logged and swallowed so order
// flows never fail because the mail provider is down.
type Service interface {
	NotifyStatusChange(ctx context.Context, input StatusChangeInput)
	NotifyOrderCreated(ctx context.Context, input OrderCreatedInput)
	NotifyOrderDeleted(ctx context.Context, recipient string, orderNumber int64)
}

// StatusChangeInput describes a status transition worth emailing about.
type StatusChangeInput struct {
	Recipient   string
	Name        string
	OrderNumber int64
	Status      enums.OrderStatus
	Extras      StatusExtras
}

// OrderCreatedInput describes a freshly placed order. StaffEmails receive the
// new-order alert alongside the buyer confirmation.
type OrderCreatedInput struct {
	Recipient   string
	Name        string
	OrderNumber int64
	TotalAmount int64
	StaffEmails []string
}

type service struct {
	repo   Repository
	sender mail.Sender
	logger *logger.Logger
}

// NewService wires the notification service. The sender may be nil, in which
// case rows are still recorded but nothing goes out.
func NewService(repo Repository, sender mail.Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, sender: sender, logger: logg}, nil
}

func (s *service) NotifyStatusChange(ctx context.Context, input StatusChangeInput) {
	subject, body := StatusMessage(input.OrderNumber, input.Status, input.Extras)
	s.deliver(ctx, input.Recipient, input.Name, subject, body, KindForStatus(input.Status), input.OrderNumber)
}

func (s *service) NotifyOrderCreated(ctx context.Context, input OrderCreatedInput) {
	subject, body := CreatedMessage(input.OrderNumber, input.TotalAmount)
	s.deliver(ctx, input.Recipient, input.Name, subject, body, enums.NotificationKindOrderCreated, input.OrderNumber)

	staffSubject, staffBody := NewOrderMessage(input.OrderNumber)
	for _, email := range input.StaffEmails {
		s.deliver(ctx, email, "", staffSubject, staffBody, enums.NotificationKindOrderCreated, input.OrderNumber)
	}
}

func (s *service) NotifyOrderDeleted(ctx context.Context, recipient string, orderNumber int64) {
	subject, body := DeletedMessage(orderNumber)
	s.deliver(ctx, recipient, "", subject, body, enums.NotificationKindOrderDeleted, orderNumber)
}

func (s *service) deliver(ctx context.Context, recipient, name, subject, body string, kind enums.NotificationKind, orderNumber int64) {
	if recipient == "" {
		return
	}

	row := &models.Notification{
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
		Kind:        kind,
		OrderNumber: &orderNumber,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error(ctx, "recording notification", err)
		return
	}

	if s.sender == nil {
		return
	}
	if err := s.sender.Send(ctx, mail.Message{To: recipient, ToName: name, Subject: subject, HTML: body}); err != nil {
		s.logger.Error(ctx, "sending notification", err)
		return
	}
	if err := s.repo.MarkDelivered(ctx, row.ID, time.Now().UTC()); err != nil {
		s.logger.Error(ctx, "marking notification delivered", err)
	}
}
