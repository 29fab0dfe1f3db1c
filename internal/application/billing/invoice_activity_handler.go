package billing

import (
	"context"

	"github.com/houseway/backend/internal/domain/billing"
	"github.com/houseway/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceActivityHandler writes the billing activity stream to the
// structured log. It is the default subscriber for invoice events on
// single-node deployments, where the log doubles as the audit trail.
type InvoiceActivityHandler struct {
	logger *zap.Logger
}

// NewInvoiceActivityHandler creates a new InvoiceActivityHandler
func NewInvoiceActivityHandler(logger *zap.Logger) *InvoiceActivityHandler {
	return &InvoiceActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceActivityHandler) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"InvoiceSent",
		"InvoiceViewed",
		"InvoicePaymentRecorded",
		"InvoicePaid",
		"InvoiceCancelled",
		"InvoiceRecurred",
	}
}

// Handle logs one activity line per event
func (h *InvoiceActivityHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event", event.EventType()),
		zap.String("invoice_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.Time("due_date", e.DueDate),
		)
	case *billing.InvoicePaymentRecordedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("balance", e.BalanceAmount.String()),
		)
	case *billing.InvoicePaidEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.Time("paid_at", e.PaidAt),
		)
	case *billing.InvoiceCancelledEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("reason", e.Reason),
		)
	case *billing.InvoiceRecurredEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.Time("generated_due", e.GeneratedDue),
		)
	}

	h.logger.Info("invoice activity", fields...)
	return nil
}
