package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the document status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusViewed    InvoiceStatus = "viewed"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed,
		InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue,
		InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsDocumentState returns true for the pre-payment document states
func (s InvoiceStatus) IsDocumentState() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusViewed
}

// PaymentStatus represents the payment-side status of an invoice
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid,
		PaymentStatusOverdue, PaymentStatusFailed:
		return true
	}
	return false
}

// DerivePaymentStatus is the single source of truth for payment-side status.
// It is level-triggered: recomputed in full from the current amounts each
// time, so replayed payments or total edits self-correct.
//
// Rules, in precedence order:
//   - paid: balance <= 0 and the invoice carries a positive total
//   - partial: some payment applied but balance remains
//   - overdue: balance remains and the due date has passed
//   - pending: everything else
func DerivePaymentStatus(total, paid, balance decimal.Decimal, dueDate time.Time, now time.Time) PaymentStatus {
	switch {
	case total.IsPositive() && !balance.IsPositive():
		return PaymentStatusPaid
	case paid.IsPositive() && paid.LessThan(total):
		return PaymentStatusPartial
	case balance.IsPositive() && !dueDate.IsZero() && now.After(dueDate):
		return PaymentStatusOverdue
	default:
		return PaymentStatusPending
	}
}
