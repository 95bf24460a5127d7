package subledger

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BucketConfig is an inclusive days-past-due range. A nil bound is open-ended.
type BucketConfig struct {
	Label   string `json:"label"`
	MinDays *int   `json:"minDays,omitempty"`
	MaxDays *int   `json:"maxDays,omitempty"`
}

// Contains reports whether daysPastDue falls inside the bucket
func (b BucketConfig) Contains(daysPastDue int) bool {
	if b.MinDays != nil && daysPastDue < *b.MinDays {
		return false
	}
	if b.MaxDays != nil && daysPastDue > *b.MaxDays {
		return false
	}
	return true
}

func intPtr(v int) *int {
	return &v
}

// BucketsFromBoundaries builds CURRENT (<= first), then one bucket per gap,
// then an open-ended bucket beyond the last boundary. [0 30 60 90] yields
// CURRENT, 1-30, 31-60, 61-90 and 90+.
func BucketsFromBoundaries(days []int) []BucketConfig {
	if len(days) == 0 {
		return nil
	}
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)

	buckets := []BucketConfig{{Label: "CURRENT", MaxDays: intPtr(sorted[0])}}
	for i := 1; i < len(sorted); i++ {
		lo, hi := sorted[i-1]+1, sorted[i]
		buckets = append(buckets, BucketConfig{
			Label:   fmt.Sprintf("%d-%d", lo, hi),
			MinDays: intPtr(lo),
			MaxDays: intPtr(hi),
		})
	}
	last := sorted[len(sorted)-1]
	buckets = append(buckets, BucketConfig{
		Label:   fmt.Sprintf("%d+", last),
		MinDays: intPtr(last + 1),
	})
	return buckets
}

// DefaultBuckets returns CURRENT, 1-30, 31-60, 61-90 and 90+
func DefaultBuckets() []BucketConfig {
	return BucketsFromBoundaries([]int{0, 30, 60, 90})
}

// AgingInvoice is the read model of an open invoice used for aging
type AgingInvoice struct {
	InvoiceID   uuid.UUID
	PartyID     uuid.UUID
	Currency    valueobject.Currency
	DueDate     time.Time
	OpenBalance decimal.Decimal
}

// BucketTotal is the open balance falling in one bucket
type BucketTotal struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// AgingSummary aggregates one party's open invoices in one currency
type AgingSummary struct {
	PartyID   uuid.UUID            `json:"partyId"`
	Currency  valueobject.Currency `json:"currency"`
	Buckets   []BucketTotal        `json:"buckets"`
	TotalOpen decimal.Decimal      `json:"totalOpen"`
}

// ComputeAging groups invoices by party and currency and sums open balances
// into the first bucket containing asOf - dueDate. Invoices matching no bucket
// still count toward TotalOpen. Summaries are sorted by party then currency.
func ComputeAging(invoices []AgingInvoice, asOf time.Time, buckets []BucketConfig) []AgingSummary {
	type key struct {
		party    uuid.UUID
		currency valueobject.Currency
	}
	byKey := make(map[key]*AgingSummary)
	for _, inv := range invoices {
		k := key{inv.PartyID, inv.Currency}
		summary, ok := byKey[k]
		if !ok {
			summary = &AgingSummary{
				PartyID:   inv.PartyID,
				Currency:  inv.Currency,
				Buckets:   make([]BucketTotal, len(buckets)),
				TotalOpen: decimal.Zero,
			}
			for i, b := range buckets {
				summary.Buckets[i] = BucketTotal{Label: b.Label, Amount: decimal.Zero}
			}
			byKey[k] = summary
		}
		summary.TotalOpen = summary.TotalOpen.Add(inv.OpenBalance)

		days := shared.DaysBetween(inv.DueDate, asOf)
		for i, b := range buckets {
			if b.Contains(days) {
				summary.Buckets[i].Amount = summary.Buckets[i].Amount.Add(inv.OpenBalance)
				break
			}
		}
	}

	summaries := make([]AgingSummary, 0, len(byKey))
	for _, s := range byKey {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if c := bytes.Compare(summaries[i].PartyID[:], summaries[j].PartyID[:]); c != 0 {
			return c < 0
		}
		return summaries[i].Currency < summaries[j].Currency
	})
	return summaries
}
