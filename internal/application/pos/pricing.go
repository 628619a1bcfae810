package pos

import (
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// CartLine is one product row in an in-progress cart. Quantity is capped at
// MaxQuantity, the stock level observed when the line was added. Discount is
// cents for AMOUNT and whole percent for PERCENT.
type CartLine struct {
	ProductID    uuid.UUID
	Name         string
	Quantity     int
	UnitPrice    int64
	Discount     int64
	DiscountKind enum.DiscountKind
	MaxQuantity  int
}

// Gross returns quantity times unit price for the line.
func (l CartLine) Gross() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// DiscountAmount returns the line discount in cents. Percent discounts are
// computed against the line gross with integer division. The result is not
// clamped to the gross: a discount larger than the line is preserved and the
// negative net is surfaced as a warning by Price.
func (l CartLine) DiscountAmount() int64 {
	if l.DiscountKind == enum.DiscountPercent {
		return l.Gross() * l.Discount / 100
	}
	return l.Discount
}

// Discount is a cart-level discount: cents for AMOUNT, whole percent for
// PERCENT. Amount and percent are mutually exclusive; the session enforces
// that setting one zeroes the other.
type Discount struct {
	Value int64
	Kind  enum.DiscountKind
}

// PricingResult holds the derived totals for a cart. All values are cents.
type PricingResult struct {
	Gross          int64       `json:"gross"`
	LineSavings    int64       `json:"line_savings"`
	Subtotal       int64       `json:"subtotal"`
	GlobalDiscount int64       `json:"global_discount"`
	FinalTotal     int64       `json:"final_total"`
	NegativeLines  []uuid.UUID `json:"negative_lines,omitempty"`
}

// TotalDiscount returns line savings plus the global discount amount, the
// figure stored on the transaction record.
func (r PricingResult) TotalDiscount() int64 {
	return r.LineSavings + r.GlobalDiscount
}

// Price derives cart totals from lines and a global discount. The global
// discount is applied against the subtotal, never the gross, and the final
// total is floored at zero. Lines whose own discount exceeds their gross are
// reported in NegativeLines; they are a warning, not an error.
func Price(lines []CartLine, global Discount) PricingResult {
	var r PricingResult
	for _, l := range lines {
		gross := l.Gross()
		disc := l.DiscountAmount()
		r.Gross += gross
		r.LineSavings += disc
		if disc > gross {
			r.NegativeLines = append(r.NegativeLines, l.ProductID)
		}
	}
	r.Subtotal = r.Gross - r.LineSavings

	if global.Kind == enum.DiscountPercent {
		r.GlobalDiscount = r.Subtotal * global.Value / 100
	} else {
		r.GlobalDiscount = global.Value
	}

	r.FinalTotal = r.Subtotal - r.GlobalDiscount
	if r.FinalTotal < 0 {
		r.FinalTotal = 0
	}
	return r
}

// RemainingDue returns the outstanding portion of a split payment.
func RemainingDue(finalTotal, advanceAmount int64) int64 {
	due := finalTotal - advanceAmount
	if due < 0 {
		return 0
	}
	return due
}

// RecomputeAmount re-derives a committed transaction's net payable from its
// item snapshot and stored total discount. The global share of the discount is
// whatever the total discount exceeds the per-line savings by, so the result
// reproduces the stored amount exactly.
func RecomputeAmount(items []entity.TransactionItem, totalDiscount int64) int64 {
	var gross, lineSavings int64
	for _, it := range items {
		line := CartLine{
			Quantity:     it.Quantity,
			UnitPrice:    it.Price,
			Discount:     it.Discount,
			DiscountKind: it.DiscountKind,
		}
		gross += line.Gross()
		lineSavings += line.DiscountAmount()
	}
	subtotal := gross - lineSavings
	global := totalDiscount - lineSavings
	amount := subtotal - global
	if amount < 0 {
		return 0
	}
	return amount
}
