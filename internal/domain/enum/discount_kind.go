package enum

// DiscountKind distinguishes a flat amount discount from a percentage discount
type DiscountKind string

const (
	DiscountAmount  DiscountKind = "AMOUNT"
	DiscountPercent DiscountKind = "PERCENT"
)
