package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	ClientID        *uuid.UUID
	ProjectID       *uuid.UUID
	Status          *InvoiceStatus
	PaymentStatus   *PaymentStatus
	IssuedFrom      *time.Time
	IssuedTo        *time.Time
	DueFrom         *time.Time
	DueTo           *time.Time
	Overdue         *bool
	MinBalance      *decimal.Decimal
	MaxBalance      *decimal.Decimal
	IncludeArchived bool
	Limit           int
	Offset          int
}

// InvoiceRepository defines the persistence port for invoices. The billing
// core never touches storage directly; hosting systems provide this with
// single-writer-per-document semantics (SaveWithVersion for optimistic
// checks).
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its invoice number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll finds invoices matching the filter
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindOverdue finds active invoices with outstanding balance past due
	FindOverdue(ctx context.Context, asOf time.Time) ([]Invoice, error)

	// FindRecurringDue finds recurring templates whose next due date has arrived
	FindRecurringDue(ctx context.Context, asOf time.Time) ([]Invoice, error)

	// NumbersForYear returns all invoice numbers issued under a prefix/year
	NumbersForYear(ctx context.Context, prefix string, year int) ([]string, error)

	// Save creates or updates an invoice. Returns
	// ErrDuplicateInvoiceNumber when the number collides on insert.
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithVersion saves only if the stored version matches
	// expectedVersion, returning shared.ErrConcurrencyConflict otherwise
	SaveWithVersion(ctx context.Context, invoice *Invoice, expectedVersion int) error
}
