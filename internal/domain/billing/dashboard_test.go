package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDashboardFixture(t *testing.T) []Invoice {
	t.Helper()
	actor := uuid.New()
	now := time.Now()

	// Sent, 1000, nothing collected
	open := createTestInvoiceWithTotal(t, 1000)
	require.NoError(t, open.Send(actor))

	// Partially paid: 2000 total, 500 collected
	partial := createTestInvoiceWithTotal(t, 2000)
	require.NoError(t, partial.RecordPayment(valueobject.NewMoneyUSDFromFloat(500), PaymentMethodCash, time.Time{}, "", "", actor))

	// Fully paid: 300
	paid := createTestInvoiceWithTotal(t, 300)
	require.NoError(t, paid.RecordPayment(valueobject.NewMoneyUSDFromFloat(300), PaymentMethodCheck, time.Time{}, "", "", actor))

	// Overdue by ~45 days, 700 outstanding
	issue := now.AddDate(0, 0, -75)
	overdue, err := NewInvoice("INV-2026-050", uuid.New(), uuid.Nil, "Old job", issue, issue.AddDate(0, 0, 30), actor)
	require.NoError(t, err)
	_, err = overdue.AddItem(LineItemInput{Description: "Work", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(700)})
	require.NoError(t, err)

	// Cancelled: 400, must not count toward money totals
	cancelled := createTestInvoiceWithTotal(t, 400)
	require.NoError(t, cancelled.Cancel(actor, "duplicate entry"))

	return []Invoice{*open, *partial, *paid, *overdue, *cancelled}
}

func TestSummarize(t *testing.T) {
	invoices := buildDashboardFixture(t)
	now := time.Now()

	s := Summarize(invoices, now)

	assert.Equal(t, 5, s.InvoiceCount)
	assert.True(t, s.Invoiced.Equal(decimal.NewFromInt(4000)), "invoiced = %s", s.Invoiced)
	assert.True(t, s.Collected.Equal(decimal.NewFromInt(800)), "collected = %s", s.Collected)
	assert.True(t, s.Outstanding.Equal(decimal.NewFromInt(3200)), "outstanding = %s", s.Outstanding)

	assert.Equal(t, 1, s.OverdueCount)
	assert.True(t, s.Overdue.Equal(decimal.NewFromInt(700)), "overdue = %s", s.Overdue)

	assert.Equal(t, 1, s.ByStatus[InvoiceStatusSent].Count)
	assert.Equal(t, 1, s.ByStatus[InvoiceStatusPartial].Count)
	assert.Equal(t, 1, s.ByStatus[InvoiceStatusPaid].Count)
	assert.Equal(t, 1, s.ByStatus[InvoiceStatusOverdue].Count)
	assert.Equal(t, 1, s.ByStatus[InvoiceStatusCancelled].Count)

	// Cancelled invoices keep their status rollup even though they are
	// excluded from the money totals
	assert.True(t, s.ByStatus[InvoiceStatusCancelled].Total.Equal(decimal.NewFromInt(400)))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, time.Now())
	assert.Zero(t, s.InvoiceCount)
	assert.True(t, s.Invoiced.IsZero())
	assert.True(t, s.Collected.IsZero())
	assert.True(t, s.Outstanding.IsZero())
	assert.Empty(t, s.ByStatus)
}

func TestAge(t *testing.T) {
	actor := uuid.New()
	now := time.Now()

	withDue := func(t *testing.T, amount int64, daysOverdue int) Invoice {
		t.Helper()
		issue := now.AddDate(0, 0, -daysOverdue-30)
		inv, err := NewInvoice("INV-2026-060", uuid.New(), uuid.Nil, "Job", issue, now.AddDate(0, 0, -daysOverdue), actor)
		require.NoError(t, err)
		_, err = inv.AddItem(LineItemInput{Description: "Work", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(amount)})
		require.NoError(t, err)
		return *inv
	}

	notDue := createTestInvoiceWithTotal(t, 100)
	cancelled := createTestInvoiceWithTotal(t, 999)
	require.NoError(t, cancelled.Cancel(actor, "void"))

	invoices := []Invoice{
		*notDue,              // current
		withDue(t, 200, 10),  // 1-30
		withDue(t, 300, 45),  // 31-60
		withDue(t, 400, 75),  // 61-90
		withDue(t, 500, 200), // 90+
		*cancelled,           // excluded
	}

	buckets := Age(invoices, now)

	assert.True(t, buckets.Current.Equal(decimal.NewFromInt(100)), "current = %s", buckets.Current)
	assert.True(t, buckets.Days30.Equal(decimal.NewFromInt(200)), "30 = %s", buckets.Days30)
	assert.True(t, buckets.Days60.Equal(decimal.NewFromInt(300)), "60 = %s", buckets.Days60)
	assert.True(t, buckets.Days90.Equal(decimal.NewFromInt(400)), "90 = %s", buckets.Days90)
	assert.True(t, buckets.Days90Plus.Equal(decimal.NewFromInt(500)), "90+ = %s", buckets.Days90Plus)
}

func TestOverdueInvoices(t *testing.T) {
	invoices := buildDashboardFixture(t)
	now := time.Now()

	overdue := OverdueInvoices(invoices, now)
	require.Len(t, overdue, 1)
	assert.Equal(t, "INV-2026-050", overdue[0].InvoiceNumber)
}
