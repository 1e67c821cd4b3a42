package notifications

import (
	"fmt"

	"github.com/crective/ggp-backend/pkg/enums"
)

// StatusExtras carries the optional detail appended to a status message.
type StatusExtras struct {
	RejectionReason   string
	SubmissionDetails string
	SubmissionURL     string
}

// StatusMessage composes the buyer-facing subject and body for an order
// status change.
func StatusMessage(orderNumber int64, status enums.OrderStatus, extras StatusExtras) (subject, body string) {
	switch status {
	case enums.OrderStatusPending:
		subject = "Your Order Status Has Been Updated to Pending"
		body = fmt.Sprintf("Your Order #%d has been set to Pending status.", orderNumber)
	case enums.OrderStatusApproved:
		subject = "Your Order Has Been Approved!"
		body = fmt.Sprintf("Your Order #%d has been approved by the publisher.", orderNumber)
	case enums.OrderStatusRejected:
		subject = "Your Order Has Been Rejected"
		body = fmt.Sprintf("Your Order #%d has been rejected.", orderNumber)
		if extras.RejectionReason != "" {
			body += " Reason: " + extras.RejectionReason
		}
	case enums.OrderStatusInProgress:
		subject = "Your Order is Now In Progress"
		body = fmt.Sprintf("Your Order #%d is now being worked on by the publisher.", orderNumber)
	case enums.OrderStatusCompleted:
		subject = "Your Order is Now Complete"
		body = fmt.Sprintf("Your Order #%d has been completed successfully.", orderNumber)
	case enums.OrderStatusSubmitted:
		subject = "Your Order Has Been Submitted"
		body = fmt.Sprintf("Your Order #%d has been submitted.", orderNumber)
		if extras.SubmissionDetails != "" {
			body += "\n\nSubmission Details: " + extras.SubmissionDetails
		}
		if extras.SubmissionURL != "" {
			body += "\n\nSubmission URL: " + extras.SubmissionURL
		}
	case enums.OrderStatusUnpaid:
		subject = "Payment Required for Your Order"
		body = fmt.Sprintf("Your Order #%d is currently unpaid. Please complete payment to continue processing.", orderNumber)
	default:
		subject = "Your Order Status Has Been Updated"
		body = fmt.Sprintf("Your Order #%d status has been updated to %s.", orderNumber, status)
	}
	return subject, body
}

// CreatedMessage composes the confirmation sent to the buyer's backup email
// right after checkout.
func CreatedMessage(orderNumber int64, totalAmount int64) (subject, body string) {
	subject = "Your Order Has Been Received"
	body = fmt.Sprintf("Your Order #%d has been received and is pending review. Total: $%d.", orderNumber, totalAmount)
	return subject, body
}

// NewOrderMessage composes the alert sent to staff and the fulfilling
// publisher when a new order lands.
func NewOrderMessage(orderNumber int64) (subject, body string) {
	subject = "New Pending Order"
	body = fmt.Sprintf("A new Order #%d has been placed and is awaiting review.", orderNumber)
	return subject, body
}

// DeletedMessage composes the notice sent before an order is removed.
func DeletedMessage(orderNumber int64) (subject, body string) {
	subject = "Your Order Has Been Removed"
	body = fmt.Sprintf("Your Order #%d has been removed by the marketplace team.", orderNumber)
	return subject, body
}

// KindForStatus maps an order status onto the stored notification kind.
func KindForStatus(status enums.OrderStatus) enums.NotificationKind {
	switch status {
	case enums.OrderStatusApproved:
		return enums.NotificationKindOrderApproved
	case enums.OrderStatusRejected:
		return enums.NotificationKindOrderRejected
	case enums.OrderStatusSubmitted:
		return enums.NotificationKindOrderSubmitted
	default:
		return enums.NotificationKindOrderPending
	}
}
