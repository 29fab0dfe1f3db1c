package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/billing"
	"github.com/houseway/backend/internal/domain/shared"
)

// MemoryInvoiceRepository implements billing.InvoiceRepository in process
// memory. It is the default store for single-node deployments and keeps the
// same contract a database-backed implementation would: value copies across
// the boundary, number uniqueness on insert and optimistic version checks.
type MemoryInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]billing.Invoice
	numbers  map[string]uuid.UUID
}

// NewMemoryInvoiceRepository creates a new MemoryInvoiceRepository
func NewMemoryInvoiceRepository() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{
		invoices: make(map[uuid.UUID]billing.Invoice),
		numbers:  make(map[string]uuid.UUID),
	}
}

// FindByID finds an invoice by its ID
func (r *MemoryInvoiceRepository) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	out := copyInvoice(inv)
	return &out, nil
}

// FindByNumber finds an invoice by its invoice number
func (r *MemoryInvoiceRepository) FindByNumber(_ context.Context, number string) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.numbers[number]
	if !ok {
		return nil, nil
	}
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	out := copyInvoice(inv)
	return &out, nil
}

// FindAll finds invoices matching the filter, ordered by invoice number
func (r *MemoryInvoiceRepository) FindAll(_ context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]billing.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if matchesFilter(inv, filter) {
			result = append(result, copyInvoice(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InvoiceNumber < result[j].InvoiceNumber
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []billing.Invoice{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// FindOverdue finds active invoices with outstanding balance past due
func (r *MemoryInvoiceRepository) FindOverdue(_ context.Context, asOf time.Time) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]billing.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.IsActive && inv.IsOverdue(asOf) {
			result = append(result, copyInvoice(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InvoiceNumber < result[j].InvoiceNumber
	})
	return result, nil
}

// FindRecurringDue finds recurring templates whose next due date has arrived
func (r *MemoryInvoiceRepository) FindRecurringDue(_ context.Context, asOf time.Time) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]billing.Invoice, 0)
	for _, inv := range r.invoices {
		if !inv.IsActive || !inv.Recurring.Enabled || inv.Recurring.NextDueDate == nil {
			continue
		}
		if !inv.Recurring.NextDueDate.After(asOf) {
			result = append(result, copyInvoice(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InvoiceNumber < result[j].InvoiceNumber
	})
	return result, nil
}

// NumbersForYear returns all invoice numbers issued under a prefix/year
func (r *MemoryInvoiceRepository) NumbersForYear(_ context.Context, prefix string, year int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := fmt.Sprintf("%s-%d-", prefix, year)
	result := make([]string, 0)
	for number := range r.numbers {
		if strings.HasPrefix(number, want) {
			result = append(result, number)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Save creates or updates an invoice. A number already owned by a different
// invoice fails with ErrDuplicateInvoiceNumber.
func (r *MemoryInvoiceRepository) Save(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.numbers[invoice.InvoiceNumber]; taken && owner != invoice.ID {
		return billing.ErrDuplicateInvoiceNumber
	}

	r.invoices[invoice.ID] = copyInvoice(*invoice)
	r.numbers[invoice.InvoiceNumber] = invoice.ID
	return nil
}

// SaveWithVersion saves only if the stored version matches expectedVersion
func (r *MemoryInvoiceRepository) SaveWithVersion(_ context.Context, invoice *billing.Invoice, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.invoices[invoice.ID]
	if ok && stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	if owner, taken := r.numbers[invoice.InvoiceNumber]; taken && owner != invoice.ID {
		return billing.ErrDuplicateInvoiceNumber
	}

	r.invoices[invoice.ID] = copyInvoice(*invoice)
	r.numbers[invoice.InvoiceNumber] = invoice.ID
	return nil
}

// copyInvoice deep-copies the slices an aggregate carries so callers cannot
// alias stored state
func copyInvoice(inv billing.Invoice) billing.Invoice {
	out := inv
	out.Items = append([]billing.LineItem{}, inv.Items...)
	out.Taxes = append([]billing.TaxEntry{}, inv.Taxes...)
	out.Payments = append([]billing.Payment{}, inv.Payments...)
	out.History = append([]billing.HistoryEntry{}, inv.History...)
	return out
}

func matchesFilter(inv billing.Invoice, filter billing.InvoiceFilter) bool {
	if !filter.IncludeArchived && !inv.IsActive {
		return false
	}
	if filter.ClientID != nil && inv.ClientID != *filter.ClientID {
		return false
	}
	if filter.ProjectID != nil && inv.ProjectID != *filter.ProjectID {
		return false
	}
	if filter.Status != nil && inv.Status != *filter.Status {
		return false
	}
	if filter.PaymentStatus != nil && inv.PaymentStatus != *filter.PaymentStatus {
		return false
	}
	if filter.IssuedFrom != nil && inv.IssueDate.Before(*filter.IssuedFrom) {
		return false
	}
	if filter.IssuedTo != nil && inv.IssueDate.After(*filter.IssuedTo) {
		return false
	}
	if filter.DueFrom != nil && inv.DueDate.Before(*filter.DueFrom) {
		return false
	}
	if filter.DueTo != nil && inv.DueDate.After(*filter.DueTo) {
		return false
	}
	if filter.Overdue != nil && inv.IsOverdue(time.Now()) != *filter.Overdue {
		return false
	}
	if filter.MinBalance != nil && inv.BalanceAmount.LessThan(*filter.MinBalance) {
		return false
	}
	if filter.MaxBalance != nil && inv.BalanceAmount.GreaterThan(*filter.MaxBalance) {
		return false
	}
	return true
}
