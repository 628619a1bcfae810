package pos

import (
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	daysAgo := func(n int) time.Time { return asOf.AddDate(0, 0, -n) }

	tests := []struct {
		name    string
		balance int64
		events  []CreditEvent
		want    AgingBuckets
	}{
		{
			name:    "zero balance",
			balance: 0,
			events:  []CreditEvent{{Amount: 10000, Date: daysAgo(10)}},
			want:    AgingBuckets{},
		},
		{
			name:    "single recent event",
			balance: 10000,
			events:  []CreditEvent{{Amount: 10000, Date: daysAgo(10)}},
			want:    AgingBuckets{Days0To30: 10000},
		},
		{
			name:    "newest first across buckets",
			balance: 30000,
			events: []CreditEvent{
				{Amount: 10000, Date: daysAgo(5)},
				{Amount: 10000, Date: daysAgo(45)},
				{Amount: 10000, Date: daysAgo(75)},
			},
			want: AgingBuckets{Days0To30: 10000, Days31To60: 10000, Days61To90: 10000},
		},
		{
			name:    "partial allocation stops at balance",
			balance: 15000,
			events: []CreditEvent{
				{Amount: 10000, Date: daysAgo(5)},
				{Amount: 10000, Date: daysAgo(45)},
				{Amount: 10000, Date: daysAgo(120)},
			},
			want: AgingBuckets{Days0To30: 10000, Days31To60: 5000},
		},
		{
			name:    "leftover with no history lands in oldest bucket",
			balance: 25000,
			events:  []CreditEvent{{Amount: 10000, Date: daysAgo(20)}},
			want:    AgingBuckets{Days0To30: 10000, Over90: 15000},
		},
		{
			name:    "no history at all",
			balance: 8000,
			events:  nil,
			want:    AgingBuckets{Over90: 8000},
		},
		{
			name:    "old event beyond ninety days",
			balance: 5000,
			events:  []CreditEvent{{Amount: 5000, Date: daysAgo(200)}},
			want:    AgingBuckets{Over90: 5000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Age(tt.balance, tt.events, asOf)
			if got != tt.want {
				t.Errorf("Age() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAgeBucketsSumToBalance(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	events := []CreditEvent{
		{Amount: 7300, Date: asOf.AddDate(0, 0, -3)},
		{Amount: 12100, Date: asOf.AddDate(0, 0, -40)},
		{Amount: 900, Date: asOf.AddDate(0, 0, -88)},
		{Amount: 44000, Date: asOf.AddDate(0, 0, -365)},
	}

	for _, balance := range []int64{1, 7300, 20000, 64300, 99999} {
		got := Age(balance, events, asOf)
		if got.Total() != balance {
			t.Errorf("balance %d: buckets sum to %d", balance, got.Total())
		}
	}
}

func TestAgeIgnoresEventOrder(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	events := []CreditEvent{
		{Amount: 10000, Date: asOf.AddDate(0, 0, -45)},
		{Amount: 10000, Date: asOf.AddDate(0, 0, -5)},
	}
	// Oldest listed first; the allocator must still consume the newest event first
	got := Age(15000, events, asOf)
	want := AgingBuckets{Days0To30: 10000, Days31To60: 5000}
	if got != want {
		t.Errorf("Age() = %+v, want %+v", got, want)
	}
}
