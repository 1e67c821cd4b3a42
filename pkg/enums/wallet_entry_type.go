package enums

// WalletEntryType classifies append-only wallet ledger rows.
type WalletEntryType string

const (
	// WalletEntryTypeOrderCredit is the single credit a publisher earns when
	// an order is approved.
	WalletEntryTypeOrderCredit WalletEntryType = "order_credit"
	// WalletEntryTypeWithdrawal records a payout debit once a withdrawal
	// request is approved and dispatched.
	WalletEntryTypeWithdrawal WalletEntryType = "withdrawal"
)

// String implements fmt.Stringer.
func (w WalletEntryType) String() string {
	return string(w)
}
