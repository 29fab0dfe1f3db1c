package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/billing"
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService orchestrates the invoice ledger engine: it loads
// aggregates, invokes their operations, saves them and publishes their
// domain events. Persistence and notification transports are supplied by
// the host through the repository and publisher ports.
type InvoiceService struct {
	repo         billing.InvoiceRepository
	numbers      *billing.NumberSequence
	events       shared.EventPublisher
	logger       *zap.Logger
	validate     *validator.Validate
	numberPrefix string
	currency     valueobject.Currency
	paymentTerms int
}

// Options carries the billing policy the host configures: the invoice
// number prefix, the ledger currency and the default payment terms applied
// when a create request leaves the due date unset.
type Options struct {
	NumberPrefix     string
	Currency         valueobject.Currency
	PaymentTermsDays int
}

// NewInvoiceService creates a new InvoiceService. Zero option fields fall
// back to the INV prefix, the default currency and net 30 terms.
func NewInvoiceService(repo billing.InvoiceRepository, numbers *billing.NumberSequence, events shared.EventPublisher, logger *zap.Logger, opts Options) *InvoiceService {
	if opts.NumberPrefix == "" {
		opts.NumberPrefix = billing.DefaultNumberPrefix
	}
	if opts.Currency == "" {
		opts.Currency = valueobject.DefaultCurrency
	}
	if opts.PaymentTermsDays <= 0 {
		opts.PaymentTermsDays = 30
	}
	return &InvoiceService{
		repo:         repo,
		numbers:      numbers,
		events:       events,
		logger:       logger,
		validate:     validator.New(),
		numberPrefix: opts.NumberPrefix,
		currency:     opts.Currency,
		paymentTerms: opts.PaymentTermsDays,
	}
}

// CreateInvoiceRequest carries the fields for a new invoice
type CreateInvoiceRequest struct {
	ClientID    uuid.UUID `validate:"required"`
	ProjectID   uuid.UUID
	Title       string `validate:"required"`
	Description string
	IssueDate   time.Time
	DueDate     time.Time
	Items       []billing.LineItemInput
	Taxes       []billing.TaxEntry
	Discount    *billing.DiscountPolicy
	Recurring   *billing.RecurringPattern
	ActorID     uuid.UUID
}

// CreateInvoice allocates an invoice number, builds the aggregate and saves
// it. A duplicate-number collision from a concurrent writer is retried once
// with a freshly seeded sequence.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, s.paymentTerms)
	}
	year := issueDate.Year()

	if err := s.seedSequence(ctx, year); err != nil {
		return nil, err
	}

	inv, err := s.buildInvoice(req, issueDate, dueDate, year)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "DUPLICATE_INVOICE_NUMBER" {
			return nil, fmt.Errorf("failed to save invoice: %w", err)
		}

		// Another writer won the number; reseed and retry once
		s.logger.Warn("invoice number collision, retrying",
			zap.String("invoice_number", inv.InvoiceNumber),
		)
		if err := s.seedSequence(ctx, year); err != nil {
			return nil, err
		}
		inv, err = s.buildInvoice(req, issueDate, dueDate, year)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, inv); err != nil {
			return nil, fmt.Errorf("failed to save invoice: %w", err)
		}
	}

	s.publishEvents(ctx, inv)
	s.logger.Info("invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("client_id", inv.ClientID.String()),
		zap.String("total", inv.TotalAmount.String()),
	)
	return inv, nil
}

// buildInvoice constructs the aggregate from a validated request
func (s *InvoiceService) buildInvoice(req CreateInvoiceRequest, issueDate, dueDate time.Time, year int) (*billing.Invoice, error) {
	number := s.numbers.Allocate(s.numberPrefix, year)

	inv, err := billing.NewInvoice(number, req.ClientID, req.ProjectID, req.Title, issueDate, dueDate, req.ActorID)
	if err != nil {
		return nil, err
	}
	inv.Description = req.Description
	inv.Currency = s.currency

	for _, input := range req.Items {
		if _, err := inv.AddItem(input); err != nil {
			return nil, err
		}
	}
	if len(req.Taxes) > 0 {
		if err := inv.SetTaxes(req.Taxes); err != nil {
			return nil, err
		}
	}
	if req.Discount != nil {
		if err := inv.SetDiscount(*req.Discount); err != nil {
			return nil, err
		}
	}
	if req.Recurring != nil {
		if err := inv.EnableRecurrence(*req.Recurring); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// RecordPaymentRequest carries the fields for a ledger entry
type RecordPaymentRequest struct {
	InvoiceID uuid.UUID             `validate:"required"`
	Amount    decimal.Decimal       `validate:"required"`
	Currency  valueobject.Currency  // Empty means the invoice's own currency
	Method    billing.PaymentMethod `validate:"required"`
	Date      time.Time
	Reference string
	Notes     string
	ActorID   uuid.UUID `validate:"required"`
}

// RecordPayment appends a payment to an invoice's ledger
func (s *InvoiceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	inv, err := s.loadInvoice(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	expectedVersion := inv.GetVersion()
	currency := req.Currency
	if currency == "" {
		currency = inv.Currency
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if err := inv.RecordPayment(amount, req.Method, req.Date, req.Reference, req.Notes, req.ActorID); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithVersion(ctx, inv, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, inv)
	s.logger.Info("payment recorded",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("balance", inv.BalanceAmount.String()),
		zap.String("status", inv.Status.String()),
	)
	return inv, nil
}

// AddLineItem appends a line item and recomputes totals
func (s *InvoiceService) AddLineItem(ctx context.Context, invoiceID uuid.UUID, input billing.LineItemInput) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		_, err := inv.AddItem(input)
		return err
	})
}

// UpdateLineItem edits a line item and recomputes totals
func (s *InvoiceService) UpdateLineItem(ctx context.Context, invoiceID, itemID uuid.UUID, input billing.LineItemInput) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.UpdateItem(itemID, input)
	})
}

// RemoveLineItem removes a line item and recomputes totals
func (s *InvoiceService) RemoveLineItem(ctx context.Context, invoiceID, itemID uuid.UUID) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.RemoveItem(itemID)
	})
}

// SetTaxes replaces the invoice-level tax entries
func (s *InvoiceService) SetTaxes(ctx context.Context, invoiceID uuid.UUID, taxes []billing.TaxEntry) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.SetTaxes(taxes)
	})
}

// SetDiscount replaces the discount policy
func (s *InvoiceService) SetDiscount(ctx context.Context, invoiceID uuid.UUID, policy billing.DiscountPolicy) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.SetDiscount(policy)
	})
}

// SendInvoice transitions a draft invoice to sent
func (s *InvoiceService) SendInvoice(ctx context.Context, invoiceID, actorID uuid.UUID) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.Send(actorID)
	})
}

// MarkViewed records the client's first view of a sent invoice
func (s *InvoiceService) MarkViewed(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.MarkViewed()
	})
}

// CancelInvoice voids an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID, actorID uuid.UUID, reason string) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.Cancel(actorID, reason)
	})
}

// ArchiveInvoice soft-deletes an invoice
func (s *InvoiceService) ArchiveInvoice(ctx context.Context, invoiceID, actorID uuid.UUID) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		inv.Archive(actorID)
		return nil
	})
}

// RestoreInvoice reverses an archive
func (s *InvoiceService) RestoreInvoice(ctx context.Context, invoiceID, actorID uuid.UUID) (*billing.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(inv *billing.Invoice) error {
		inv.Restore(actorID)
		return nil
	})
}

// ListOverdue returns active invoices with outstanding balance past due,
// with statuses refreshed against the given clock
func (s *InvoiceService) ListOverdue(ctx context.Context, asOf time.Time) ([]billing.Invoice, error) {
	invoices, err := s.repo.FindOverdue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue invoices: %w", err)
	}
	for i := range invoices {
		invoices[i].RefreshStatus(asOf)
	}
	return invoices, nil
}

// GenerateRecurring creates the next invoice for every recurring template
// whose next due date has arrived. Each generated invoice copies the
// template's items, taxes and discount under a freshly allocated number.
func (s *InvoiceService) GenerateRecurring(ctx context.Context, asOf time.Time) ([]*billing.Invoice, error) {
	templates, err := s.repo.FindRecurringDue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find recurring invoices: %w", err)
	}

	generated := make([]*billing.Invoice, 0, len(templates))
	for i := range templates {
		template := &templates[i]

		expectedVersion := template.GetVersion()
		dueDate, err := template.AdvanceRecurrence(uuid.Nil)
		if err != nil {
			s.logger.Warn("skipping recurring template",
				zap.String("invoice_number", template.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}

		// A late scheduler run must not issue an invoice after its own due
		// date, and the number is minted for the issue year
		issueDate := asOf
		if dueDate.Before(issueDate) {
			issueDate = dueDate
		}

		year := issueDate.Year()
		if err := s.seedSequence(ctx, year); err != nil {
			return generated, err
		}

		next, err := s.cloneForRecurrence(template, dueDate, issueDate, year)
		if err != nil {
			return generated, err
		}

		if err := s.repo.Save(ctx, next); err != nil {
			return generated, fmt.Errorf("failed to save generated invoice: %w", err)
		}
		if err := s.repo.SaveWithVersion(ctx, template, expectedVersion); err != nil {
			return generated, fmt.Errorf("failed to save recurring template: %w", err)
		}

		s.publishEvents(ctx, next)
		s.publishEvents(ctx, template)
		s.logger.Info("recurring invoice generated",
			zap.String("template", template.InvoiceNumber),
			zap.String("invoice_number", next.InvoiceNumber),
			zap.Time("due_date", next.DueDate),
		)
		generated = append(generated, next)
	}

	return generated, nil
}

// cloneForRecurrence copies a template's billing content into a new invoice
func (s *InvoiceService) cloneForRecurrence(template *billing.Invoice, dueDate, issueDate time.Time, year int) (*billing.Invoice, error) {
	number := s.numbers.Allocate(s.numberPrefix, year)

	next, err := billing.NewInvoice(number, template.ClientID, template.ProjectID, template.Title, issueDate, dueDate, uuid.Nil)
	if err != nil {
		return nil, err
	}
	next.Description = template.Description
	next.Currency = template.Currency

	for _, item := range template.Items {
		input := billing.LineItemInput{
			Description:     item.Description,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			Rate:            item.Rate,
			DiscountPercent: item.DiscountPercent,
			TaxRate:         item.TaxRate,
			Category:        item.Category,
			Phase:           item.Phase,
		}
		if _, err := next.AddItem(input); err != nil {
			return nil, err
		}
	}
	if len(template.Taxes) > 0 {
		if err := next.SetTaxes(template.Taxes); err != nil {
			return nil, err
		}
	}
	if err := next.SetDiscount(template.Discount); err != nil {
		return nil, err
	}
	return next, nil
}

// GetInvoice loads a single invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.loadInvoice(ctx, invoiceID)
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	return s.repo.FindAll(ctx, filter)
}

// Dashboard returns status roll-ups and aging buckets over the invoices
// matching the filter
func (s *InvoiceService) Dashboard(ctx context.Context, filter billing.InvoiceFilter) (billing.Summary, billing.AgingBuckets, error) {
	invoices, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return billing.Summary{}, billing.AgingBuckets{}, fmt.Errorf("failed to load invoices: %w", err)
	}

	now := time.Now()
	return billing.Summarize(invoices, now), billing.Age(invoices, now), nil
}

// mutate is the shared load-mutate-save path for single-invoice operations
func (s *InvoiceService) mutate(ctx context.Context, invoiceID uuid.UUID, op func(*billing.Invoice) error) (*billing.Invoice, error) {
	inv, err := s.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	expectedVersion := inv.GetVersion()
	if err := op(inv); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithVersion(ctx, inv, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, inv)
	return inv, nil
}

func (s *InvoiceService) loadInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

// seedSequence refreshes the number allocator from the store
func (s *InvoiceService) seedSequence(ctx context.Context, year int) error {
	existing, err := s.repo.NumbersForYear(ctx, s.numberPrefix, year)
	if err != nil {
		return fmt.Errorf("failed to load invoice numbers: %w", err)
	}
	s.numbers.Seed(s.numberPrefix, year, existing)
	return nil
}

// publishEvents flushes the aggregate's pending events to the bus.
// Publish failures are logged, not propagated; the save already succeeded.
func (s *InvoiceService) publishEvents(ctx context.Context, inv *billing.Invoice) {
	events := inv.GetDomainEvents()
	if len(events) == 0 || s.events == nil {
		inv.ClearDomainEvents()
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish invoice events",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err),
		)
	}
	inv.ClearDomainEvents()
}
