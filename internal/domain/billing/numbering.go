package billing

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/houseway/backend/internal/domain/shared"
)

// DefaultNumberPrefix is the invoice number prefix when none is configured
const DefaultNumberPrefix = "INV"

// ErrDuplicateInvoiceNumber is surfaced when a generated number collides in
// the store's uniqueness constraint; the caller retries with a fresh number
var ErrDuplicateInvoiceNumber = shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", "Invoice number already exists")

// NextInvoiceNumber computes the next number in the {prefix}-{year}-{seq}
// scheme given the numbers already issued for that prefix and year. The
// sequence is zero-padded to three digits and grows naturally past 999.
// With no existing matches the sequence starts at 1.
func NextInvoiceNumber(prefix string, year int, existing []string) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	scope := fmt.Sprintf("%s-%d-", prefix, year)

	max := 0
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, scope)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	return fmt.Sprintf("%s%03d", scope, max+1)
}

// NumberSequence is a process-wide allocator for invoice numbers, keyed by
// prefix and year. It replaces the read-then-construct pattern with a
// serialized counter: once seeded from the store's existing numbers, two
// concurrent creations can no longer draw the same sequence value. Store
// uniqueness constraints remain the final arbiter across processes.
type NumberSequence struct {
	mu   sync.Mutex
	next map[string]int
}

// NewNumberSequence creates an empty allocator
func NewNumberSequence() *NumberSequence {
	return &NumberSequence{
		next: make(map[string]int),
	}
}

// Seed initializes the counter for a prefix/year from the numbers already
// issued. Seeding never moves a counter backwards.
func (s *NumberSequence) Seed(prefix string, year int, existing []string) {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	scope := fmt.Sprintf("%s-%d-", prefix, year)

	max := 0
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, scope)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if max+1 > s.next[scope] {
		s.next[scope] = max + 1
	}
}

// Allocate reserves and returns the next number for a prefix/year
func (s *NumberSequence) Allocate(prefix string, year int) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	scope := fmt.Sprintf("%s-%d-", prefix, year)

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.next[scope]
	if seq == 0 {
		seq = 1
	}
	s.next[scope] = seq + 1

	return fmt.Sprintf("%s%03d", scope, seq)
}
