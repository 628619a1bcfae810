package pos

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

func TestPrice(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	tests := []struct {
		name   string
		lines  []CartLine
		global Discount
		want   PricingResult
	}{
		{
			name:  "empty cart",
			lines: nil,
			want:  PricingResult{},
		},
		{
			name: "global percent against subtotal",
			lines: []CartLine{
				{ProductID: p1, Quantity: 2, UnitPrice: 10000},
			},
			global: Discount{Value: 10, Kind: enum.DiscountPercent},
			want: PricingResult{
				Gross:          20000,
				Subtotal:       20000,
				GlobalDiscount: 2000,
				FinalTotal:     18000,
			},
		},
		{
			name: "line percent discount",
			lines: []CartLine{
				{ProductID: p1, Quantity: 1, UnitPrice: 5000, Discount: 20, DiscountKind: enum.DiscountPercent},
				{ProductID: p2, Quantity: 3, UnitPrice: 1000},
			},
			want: PricingResult{
				Gross:       8000,
				LineSavings: 1000,
				Subtotal:    7000,
				FinalTotal:  7000,
			},
		},
		{
			name: "line amount discount stacks with global amount",
			lines: []CartLine{
				{ProductID: p1, Quantity: 2, UnitPrice: 10000, Discount: 500, DiscountKind: enum.DiscountAmount},
			},
			global: Discount{Value: 1500, Kind: enum.DiscountAmount},
			want: PricingResult{
				Gross:          20000,
				LineSavings:    500,
				Subtotal:       19500,
				GlobalDiscount: 1500,
				FinalTotal:     18000,
			},
		},
		{
			name: "final total floored at zero",
			lines: []CartLine{
				{ProductID: p1, Quantity: 1, UnitPrice: 1000},
			},
			global: Discount{Value: 5000, Kind: enum.DiscountAmount},
			want: PricingResult{
				Gross:          1000,
				Subtotal:       1000,
				GlobalDiscount: 5000,
				FinalTotal:     0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.lines, tt.global)
			got.NegativeLines = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Price() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPriceNegativeLineWarning(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	got := Price([]CartLine{
		{ProductID: p1, Quantity: 1, UnitPrice: 1000, Discount: 2500, DiscountKind: enum.DiscountAmount},
		{ProductID: p2, Quantity: 2, UnitPrice: 3000},
	}, Discount{})

	if len(got.NegativeLines) != 1 || got.NegativeLines[0] != p1 {
		t.Fatalf("NegativeLines = %v, want [%s]", got.NegativeLines, p1)
	}
	// Oversized line discount is preserved, not clamped
	if got.Subtotal != 1000+6000-2500 {
		t.Errorf("Subtotal = %d, want %d", got.Subtotal, 4500)
	}
	if got.FinalTotal != 4500 {
		t.Errorf("FinalTotal = %d, want 4500", got.FinalTotal)
	}
}

func TestRemainingDue(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		advance int64
		want    int64
	}{
		{"partial advance", 50000, 20000, 30000},
		{"advance covers total", 50000, 50000, 0},
		{"advance exceeds total", 50000, 60000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingDue(tt.total, tt.advance); got != tt.want {
				t.Errorf("RemainingDue(%d, %d) = %d, want %d", tt.total, tt.advance, got, tt.want)
			}
		})
	}
}

func TestRecomputeAmountRoundTrip(t *testing.T) {
	lines := []CartLine{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: 10000, Discount: 5, DiscountKind: enum.DiscountPercent},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 2500, Discount: 300, DiscountKind: enum.DiscountAmount},
	}
	global := Discount{Value: 10, Kind: enum.DiscountPercent}
	totals := Price(lines, global)

	var items []entity.TransactionItem
	for _, l := range lines {
		items = append(items, entity.TransactionItem{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			Price:        l.UnitPrice,
			Discount:     l.Discount,
			DiscountKind: l.DiscountKind,
		})
	}

	got := RecomputeAmount(items, totals.TotalDiscount())
	if got != totals.FinalTotal {
		t.Errorf("RecomputeAmount = %d, want stored amount %d", got, totals.FinalTotal)
	}
}
