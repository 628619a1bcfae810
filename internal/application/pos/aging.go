package pos

import (
	"sort"
	"time"
)

// CreditEvent is one historical credit-granting transaction for a party:
// a CREDIT-method purchase for vendors, a CREDIT-method sale for customers.
type CreditEvent struct {
	Amount int64
	Date   time.Time
}

// AgingBuckets splits an outstanding balance by how long ago it was incurred.
// The four buckets always sum to the balance passed to Age.
type AgingBuckets struct {
	Days0To30  int64 `json:"days_0_30"`
	Days31To60 int64 `json:"days_31_60"`
	Days61To90 int64 `json:"days_61_90"`
	Over90     int64 `json:"over_90"`
}

// Total returns the sum of all four buckets.
func (b AgingBuckets) Total() int64 {
	return b.Days0To30 + b.Days31To60 + b.Days61To90 + b.Over90
}

// Age distributes a running balance across credit events FIFO, newest first:
// each event absorbs min(remaining, event amount) into the bucket matching its
// age at asOf. Balance left after all known events — migrated accounts with no
// history — lands in the 90+ bucket, treating unknown age as oldest. The same
// walk serves vendor payables and customer receivables.
func Age(balance int64, events []CreditEvent, asOf time.Time) AgingBuckets {
	var b AgingBuckets
	if balance <= 0 {
		return b
	}

	sorted := make([]CreditEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	remaining := balance
	for _, ev := range sorted {
		if remaining == 0 {
			break
		}
		alloc := ev.Amount
		if alloc > remaining {
			alloc = remaining
		}
		if alloc <= 0 {
			continue
		}
		days := int(asOf.Sub(ev.Date).Hours() / 24)
		switch {
		case days <= 30:
			b.Days0To30 += alloc
		case days <= 60:
			b.Days31To60 += alloc
		case days <= 90:
			b.Days61To90 += alloc
		default:
			b.Over90 += alloc
		}
		remaining -= alloc
	}

	b.Over90 += remaining
	return b
}
