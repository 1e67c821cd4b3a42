package enums

// NotificationKind labels outbound order notifications.
type NotificationKind string

const (
	NotificationKindOrderCreated   NotificationKind = "order_created"
	NotificationKindOrderPending   NotificationKind = "order_pending"
	NotificationKindOrderApproved  NotificationKind = "order_approved"
	NotificationKindOrderRejected  NotificationKind = "order_rejected"
	NotificationKindOrderSubmitted NotificationKind = "order_submitted"
	NotificationKindOrderDeleted   NotificationKind = "order_deleted"
)

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}
