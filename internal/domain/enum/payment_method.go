package enum

// PaymentMethod identifies how a transaction is settled
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentBank   PaymentMethod = "BANK"
	PaymentCard   PaymentMethod = "CARD"
	PaymentCredit PaymentMethod = "CREDIT"
	PaymentCheque PaymentMethod = "CHEQUE"
)

// Valid reports whether the method is one of the supported payment methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBank, PaymentCard, PaymentCredit, PaymentCheque:
		return true
	}
	return false
}
