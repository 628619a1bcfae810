package enum

// TransactionType identifies the business meaning of a transaction
type TransactionType string

const (
	TxSale          TransactionType = "SALE"
	TxPurchase      TransactionType = "PURCHASE"
	TxExpense       TransactionType = "EXPENSE"
	TxCreditPayment TransactionType = "CREDIT_PAYMENT"
	TxTransfer      TransactionType = "TRANSFER"
	TxLoanGiven     TransactionType = "LOAN_GIVEN"
)

// Valid reports whether the type is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TxSale, TxPurchase, TxExpense, TxCreditPayment, TxTransfer, TxLoanGiven:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction record.
// A DRAFT is recoverable work-in-progress, COMMITTED is immutable history,
// VOID is a reversed committed record.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "DRAFT"
	StatusCommitted TransactionStatus = "COMMITTED"
	StatusVoid      TransactionStatus = "VOID"
)
