package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInvoiceActivityHandler(t *testing.T) {
	t.Run("covers the full invoice event stream", func(t *testing.T) {
		handler := NewInvoiceActivityHandler(zap.NewNop())
		assert.ElementsMatch(t, []string{
			"InvoiceCreated",
			"InvoiceSent",
			"InvoiceViewed",
			"InvoicePaymentRecorded",
			"InvoicePaid",
			"InvoiceCancelled",
			"InvoiceRecurred",
		}, handler.EventTypes())
	})

	t.Run("logs one activity line per event", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		handler := NewInvoiceActivityHandler(zap.New(core))

		inv, err := billing.NewInvoice(
			"INV-2026-001",
			uuid.New(),
			uuid.New(),
			"Garage conversion",
			time.Now(),
			time.Now().AddDate(0, 0, 30),
			uuid.New(),
		)
		require.NoError(t, err)

		require.NoError(t, handler.Handle(context.Background(), billing.NewInvoiceCreatedEvent(inv)))
		require.NoError(t, handler.Handle(context.Background(), billing.NewInvoiceCancelledEvent(inv, "client postponed")))

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "invoice activity", entries[0].Message)
		assert.Equal(t, "InvoiceCreated", entries[0].ContextMap()["event"])
		assert.Equal(t, "client postponed", entries[1].ContextMap()["reason"])
	})
}
