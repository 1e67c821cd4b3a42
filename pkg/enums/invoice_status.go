package enums

// InvoiceStatus mirrors the paired order's settlement state on its invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusApproved  InvoiceStatus = "approved"
	InvoiceStatusRejected  InvoiceStatus = "rejected"
	InvoiceStatusSubmitted InvoiceStatus = "submitted"
)

// String implements fmt.Stringer.
func (i InvoiceStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	switch i {
	case InvoiceStatusPending, InvoiceStatusApproved, InvoiceStatusRejected, InvoiceStatusSubmitted:
		return true
	}
	return false
}
