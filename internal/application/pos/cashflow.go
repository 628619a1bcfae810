package pos

import (
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// DrawerTotals is the expected state of a branch's cash drawer derived from
// one day's committed transactions. All values are cents.
type DrawerTotals struct {
	Opening      int64 `json:"opening"`
	CashIn       int64 `json:"cash_in"`
	CashOut      int64 `json:"cash_out"`
	ExpectedCash int64 `json:"expected_cash"`
}

// settledCash is the drawer-relevant portion of a CASH transaction in either
// direction: the paid amount when it was split, otherwise the full amount.
func settledCash(tx entity.Transaction) int64 {
	if tx.PaidAmount > 0 {
		return tx.PaidAmount
	}
	return tx.Amount
}

// ExpectedDrawer folds one day's transactions into the expected drawer
// balance: opening + cashIn − cashOut. Only COMMITTED records count; the fold
// is a plain sum, so transaction order never changes the result. cashAccounts
// identifies which account IDs are physical drawers, classifying transfers as
// drawer inflow or outflow.
func ExpectedDrawer(opening int64, txs []entity.Transaction, cashAccounts map[uuid.UUID]bool) DrawerTotals {
	t := DrawerTotals{Opening: opening}

	for _, tx := range txs {
		if tx.Status != enum.StatusCommitted {
			continue
		}
		switch tx.Type {
		case enum.TxSale:
			if tx.PaymentMethod == enum.PaymentCash {
				t.CashIn += settledCash(tx)
			}
		case enum.TxCreditPayment:
			if tx.PaymentMethod == enum.PaymentCash {
				t.CashIn += tx.Amount
			}
		case enum.TxExpense:
			if tx.PaymentMethod == enum.PaymentCash {
				t.CashOut += tx.Amount
			}
		case enum.TxPurchase:
			if tx.PaymentMethod == enum.PaymentCash {
				t.CashOut += settledCash(tx)
			}
		case enum.TxLoanGiven:
			if tx.PaymentMethod == enum.PaymentCash {
				t.CashOut += tx.Amount
			}
		case enum.TxTransfer:
			if tx.DestinationAccountID != nil && cashAccounts[*tx.DestinationAccountID] {
				t.CashIn += tx.Amount
			}
			if tx.AccountID != nil && cashAccounts[*tx.AccountID] {
				t.CashOut += tx.Amount
			}
		}
	}

	t.ExpectedCash = t.Opening + t.CashIn - t.CashOut
	return t
}

// Variance returns the difference between the operator's physical count and
// the expected drawer balance. It is a reporting fact, never auto-corrected.
func Variance(actualClosing, expectedCash int64) int64 {
	return actualClosing - expectedCash
}
