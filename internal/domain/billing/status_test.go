package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 30)
	past := now.AddDate(0, 0, -30)

	d := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	tests := []struct {
		name    string
		total   decimal.Decimal
		paid    decimal.Decimal
		balance decimal.Decimal
		dueDate time.Time
		want    PaymentStatus
	}{
		{"unpaid before due date", d(100), d(0), d(100), future, PaymentStatusPending},
		{"fully paid", d(100), d(100), d(0), future, PaymentStatusPaid},
		{"fully paid even past due", d(100), d(100), d(0), past, PaymentStatusPaid},
		{"partially paid", d(100), d(40), d(60), future, PaymentStatusPartial},
		{"partial outranks overdue", d(100), d(40), d(60), past, PaymentStatusPartial},
		{"unpaid past due date", d(100), d(0), d(100), past, PaymentStatusOverdue},
		{"zero total stays pending", d(0), d(0), d(0), future, PaymentStatusPending},
		{"zero total past due stays pending", d(0), d(0), d(0), past, PaymentStatusPending},
		{"zero due date never goes overdue", d(100), d(0), d(100), time.Time{}, PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(tt.total, tt.paid, tt.balance, tt.dueDate, now)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("due date extension reverts overdue to pending", func(t *testing.T) {
		got := DerivePaymentStatus(d(100), d(0), d(100), past, now)
		assert.Equal(t, PaymentStatusOverdue, got)

		got = DerivePaymentStatus(d(100), d(0), d(100), future, now)
		assert.Equal(t, PaymentStatusPending, got)
	})
}

func TestInvoiceStatus(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		for _, s := range []InvoiceStatus{
			InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed,
			InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue,
			InvoiceStatusCancelled,
		} {
			assert.True(t, s.IsValid(), "%s should be valid", s)
		}
		assert.False(t, InvoiceStatus("pending_review").IsValid())
		assert.False(t, InvoiceStatus("").IsValid())
	})

	t.Run("document states", func(t *testing.T) {
		assert.True(t, InvoiceStatusDraft.IsDocumentState())
		assert.True(t, InvoiceStatusSent.IsDocumentState())
		assert.True(t, InvoiceStatusViewed.IsDocumentState())
		assert.False(t, InvoiceStatusPartial.IsDocumentState())
		assert.False(t, InvoiceStatusPaid.IsDocumentState())
		assert.False(t, InvoiceStatusOverdue.IsDocumentState())
		assert.False(t, InvoiceStatusCancelled.IsDocumentState())
	})
}

func TestPaymentStatus_IsValid(t *testing.T) {
	for _, s := range []PaymentStatus{
		PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid,
		PaymentStatusOverdue, PaymentStatusFailed,
	} {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}
	assert.False(t, PaymentStatus("refunded").IsValid())
}
