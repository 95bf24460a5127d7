package subledger

import (
	"fmt"
	"sort"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationStrategy picks the candidate invoices and their order
type AllocationStrategy string

const (
	StrategyFIFO     AllocationStrategy = "FIFO"
	StrategySpecific AllocationStrategy = "SPECIFIC"
)

// ParseAllocationStrategy validates a strategy name
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	switch AllocationStrategy(s) {
	case StrategyFIFO, StrategySpecific:
		return AllocationStrategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown allocation strategy %q", shared.ErrInvalidInput, s)
}

// AllocationLine is one planned application of payment to an invoice
type AllocationLine struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	AppliedAmount decimal.Decimal
}

// AllocationPlan is the outcome of greedy allocation
type AllocationPlan struct {
	Lines           []AllocationLine
	UnappliedAmount decimal.Decimal
}

// TotalApplied sums the planned lines
func (p AllocationPlan) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.AppliedAmount)
	}
	return total
}

// SortFIFO orders invoices oldest first by invoice date, due date, then invoice number
func SortFIFO(invoices []*Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.Before(b.InvoiceDate)
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.InvoiceNumber < b.InvoiceNumber
	})
}

// PlanAllocation walks candidates in order, applying min(remaining, open balance)
// to each and stopping when the payment is exhausted. Non-positive amounts plan nothing.
func PlanAllocation(amount decimal.Decimal, candidates []*Invoice) AllocationPlan {
	plan := AllocationPlan{Lines: make([]AllocationLine, 0), UnappliedAmount: amount}
	if !amount.IsPositive() {
		return plan
	}
	remaining := amount
	for _, inv := range candidates {
		if !remaining.IsPositive() {
			break
		}
		if !inv.OpenBalance.IsPositive() {
			continue
		}
		applied := decimal.Min(remaining, inv.OpenBalance)
		plan.Lines = append(plan.Lines, AllocationLine{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			AppliedAmount: applied,
		})
		remaining = remaining.Sub(applied)
	}
	plan.UnappliedAmount = remaining
	return plan
}
