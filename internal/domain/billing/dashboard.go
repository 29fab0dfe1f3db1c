package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusRollup summarizes invoices sharing a status
type StatusRollup struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary is a read-side projection over a set of invoices. It performs no
// business logic of its own: every figure is a consistent sum of the
// invoices' derived fields.
type Summary struct {
	InvoiceCount int                            `json:"invoice_count"`
	Invoiced     decimal.Decimal                `json:"invoiced"`
	Collected    decimal.Decimal                `json:"collected"`
	Outstanding  decimal.Decimal                `json:"outstanding"`
	OverdueCount int                            `json:"overdue_count"`
	Overdue      decimal.Decimal                `json:"overdue"`
	ByStatus     map[InvoiceStatus]StatusRollup `json:"by_status"`
}

// Summarize rolls up totals by status. Cancelled invoices count toward
// their status bucket but not toward invoiced/collected/outstanding.
func Summarize(invoices []Invoice, now time.Time) Summary {
	s := Summary{
		Invoiced:    decimal.Zero,
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
		Overdue:     decimal.Zero,
		ByStatus:    make(map[InvoiceStatus]StatusRollup),
	}

	for _, inv := range invoices {
		s.InvoiceCount++

		rollup := s.ByStatus[inv.Status]
		rollup.Count++
		rollup.Total = rollup.Total.Add(inv.TotalAmount)
		rollup.Balance = rollup.Balance.Add(inv.BalanceAmount)
		s.ByStatus[inv.Status] = rollup

		if inv.Status == InvoiceStatusCancelled {
			continue
		}

		s.Invoiced = s.Invoiced.Add(inv.TotalAmount)
		s.Collected = s.Collected.Add(inv.PaidAmount)
		s.Outstanding = s.Outstanding.Add(inv.BalanceAmount)

		if inv.IsOverdue(now) {
			s.OverdueCount++
			s.Overdue = s.Overdue.Add(inv.BalanceAmount)
		}
	}

	return s
}

// AgingBuckets summarizes outstanding balances by how far past due they are
type AgingBuckets struct {
	Current    decimal.Decimal `json:"current"` // Not yet due
	Days30     decimal.Decimal `json:"days_30"` // 1-30 days past due
	Days60     decimal.Decimal `json:"days_60"` // 31-60 days past due
	Days90     decimal.Decimal `json:"days_90"` // 61-90 days past due
	Days90Plus decimal.Decimal `json:"days_90_plus"`
}

// Age buckets the outstanding balance of each non-cancelled invoice by days
// past due as of the given time
func Age(invoices []Invoice, now time.Time) AgingBuckets {
	buckets := AgingBuckets{
		Current:    decimal.Zero,
		Days30:     decimal.Zero,
		Days60:     decimal.Zero,
		Days90:     decimal.Zero,
		Days90Plus: decimal.Zero,
	}

	for _, inv := range invoices {
		if inv.Status == InvoiceStatusCancelled || !inv.BalanceAmount.IsPositive() {
			continue
		}

		days := inv.DaysOverdue(now)
		switch {
		case days == 0:
			buckets.Current = buckets.Current.Add(inv.BalanceAmount)
		case days <= 30:
			buckets.Days30 = buckets.Days30.Add(inv.BalanceAmount)
		case days <= 60:
			buckets.Days60 = buckets.Days60.Add(inv.BalanceAmount)
		case days <= 90:
			buckets.Days90 = buckets.Days90.Add(inv.BalanceAmount)
		default:
			buckets.Days90Plus = buckets.Days90Plus.Add(inv.BalanceAmount)
		}
	}

	return buckets
}

// OverdueInvoices filters the invoices with outstanding balance past due,
// preserving input order
func OverdueInvoices(invoices []Invoice, now time.Time) []Invoice {
	result := make([]Invoice, 0)
	for _, inv := range invoices {
		if inv.IsOverdue(now) {
			result = append(result, inv)
		}
	}
	return result
}
