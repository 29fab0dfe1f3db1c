package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientID      uuid.UUID `json:"client_id"`
	ProjectID     uuid.UUID `json:"project_id"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientID:        inv.ClientID,
		ProjectID:       inv.ProjectID,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
	}
}

// InvoiceSentEvent is raised when an invoice is sent to the client
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientID:        inv.ClientID,
		TotalAmount:     inv.TotalAmount,
		DueDate:         inv.DueDate,
	}
}

// InvoiceViewedEvent is raised the first time a client opens a sent invoice
type InvoiceViewedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// EventType returns the event type name
func (e *InvoiceViewedEvent) EventType() string {
	return "InvoiceViewed"
}

// NewInvoiceViewedEvent creates a new InvoiceViewedEvent
func NewInvoiceViewedEvent(inv *Invoice) *InvoiceViewedEvent {
	return &InvoiceViewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceViewed", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
	}
}

// InvoicePaymentRecordedEvent is raised for every ledger entry
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return "InvoicePaymentRecorded"
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, payment Payment) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentRecorded", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		PaidAmount:      inv.PaidAmount,
		BalanceAmount:   inv.BalanceAmount,
	}
}

// InvoicePaidEvent is raised once, when the balance first reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientID:        inv.ClientID,
		TotalAmount:     inv.TotalAmount,
		PaidAt:          paidAt,
	}
}

// InvoiceCancelledEvent is raised when an invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          reason,
	}
}

// InvoiceRecurredEvent is raised when a recurring template produces a new due date
type InvoiceRecurredEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	GeneratedDue  time.Time  `json:"generated_due"`
	NextDueDate   *time.Time `json:"next_due_date,omitempty"`
	Occurrences   int        `json:"occurrences"`
}

// EventType returns the event type name
func (e *InvoiceRecurredEvent) EventType() string {
	return "InvoiceRecurred"
}

// NewInvoiceRecurredEvent creates a new InvoiceRecurredEvent
func NewInvoiceRecurredEvent(inv *Invoice, generatedDue time.Time) *InvoiceRecurredEvent {
	return &InvoiceRecurredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceRecurred", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		GeneratedDue:    generatedDue,
		NextDueDate:     inv.Recurring.NextDueDate,
		Occurrences:     inv.Recurring.Occurrences,
	}
}
