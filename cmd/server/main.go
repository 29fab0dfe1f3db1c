package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/houseway/backend/internal/application/billing"
	"github.com/houseway/backend/internal/domain/billing"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/houseway/backend/internal/infrastructure/config"
	"github.com/houseway/backend/internal/infrastructure/event"
	"github.com/houseway/backend/internal/infrastructure/logger"
	"github.com/houseway/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// recurrenceInterval is how often due recurring templates are checked
const recurrenceInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoice ledger engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("currency", cfg.Billing.Currency),
		zap.String("number_prefix", cfg.Billing.NumberPrefix),
	)

	// Initialize repositories
	invoiceRepo := persistence.NewMemoryInvoiceRepository()

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	activityHandler := billingapp.NewInvoiceActivityHandler(log)
	eventBus.Subscribe(activityHandler)

	log.Info("Event handlers registered",
		zap.Strings("invoice_activity_events", activityHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo,
		billing.NewNumberSequence(),
		eventBus,
		log,
		billingapp.Options{
			NumberPrefix:     cfg.Billing.NumberPrefix,
			Currency:         valueobject.Currency(cfg.Billing.Currency),
			PaymentTermsDays: cfg.Billing.PaymentTermsDays,
		},
	)

	// Generate recurring invoices ahead of their due dates
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runRecurrenceLoop(ctx, invoiceService, cfg.Billing.RecurrenceHorizonDays, log)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	cancel()
	log.Info("Engine exited gracefully")
}

// runRecurrenceLoop periodically generates invoices from recurring templates
// whose next due date falls inside the configured horizon
func runRecurrenceLoop(ctx context.Context, svc *billingapp.InvoiceService, horizonDays int, log *zap.Logger) {
	ticker := time.NewTicker(recurrenceInterval)
	defer ticker.Stop()

	for {
		horizon := time.Now().AddDate(0, 0, horizonDays)
		generated, err := svc.GenerateRecurring(ctx, horizon)
		if err != nil {
			log.Error("Recurring invoice generation failed", zap.Error(err))
		} else if len(generated) > 0 {
			log.Info("Recurring invoices generated",
				zap.Int("count", len(generated)),
				zap.Time("horizon", horizon),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
