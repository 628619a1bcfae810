package enum

// AccountKind classifies a money account for drawer reconciliation.
// Transfers into CASH accounts count as drawer inflow, out of them as outflow.
type AccountKind string

const (
	AccountCash AccountKind = "CASH"
	AccountBank AccountKind = "BANK"
)
