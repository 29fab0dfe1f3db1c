package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root for a client billing document. It owns the
// derivation of subtotal, tax, discount, total, balance and status from its
// line items, tax entries, discount policy and payment ledger.
//
// Derived monetary fields are never trusted independently: every mutation
// that touches items, taxes, discount or payments ends in a full recompute.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string               `json:"invoice_number"`
	ClientID      uuid.UUID            `json:"client_id"`
	ProjectID     uuid.UUID            `json:"project_id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Currency      valueobject.Currency `json:"currency"`

	IssueDate   time.Time  `json:"issue_date"`
	DueDate     time.Time  `json:"due_date"`
	PeriodStart *time.Time `json:"period_start,omitempty"` // Optional service period
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	Status        InvoiceStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	BalanceAmount  decimal.Decimal `json:"balance_amount"`

	Items     []LineItem       `json:"items"`
	Taxes     []TaxEntry       `json:"taxes"`
	Discount  DiscountPolicy   `json:"discount"`
	Payments  []Payment        `json:"payments"` // Append-only chronological ledger
	Recurring RecurringPattern `json:"recurring"`
	History   []HistoryEntry   `json:"history"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelNote  string     `json:"cancel_note,omitempty"`
	IsActive    bool       `json:"is_active"`
}

// NewInvoice creates a new draft invoice with no line items or payments
func NewInvoice(invoiceNumber string, clientID, projectID uuid.UUID, title string, issueDate, dueDate time.Time, actor uuid.UUID) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Invoice title cannot be empty")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		ClientID:          clientID,
		ProjectID:         projectID,
		Title:             title,
		Currency:          valueobject.DefaultCurrency,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Status:            InvoiceStatusDraft,
		PaymentStatus:     PaymentStatusPending,
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		BalanceAmount:     decimal.Zero,
		Items:             []LineItem{},
		Taxes:             []TaxEntry{},
		Discount:          NoDiscount(),
		Payments:          []Payment{},
		History:           []HistoryEntry{},
		IsActive:          true,
	}

	inv.History = append(inv.History, newHistoryEntry(HistoryActionCreated, actor, ""))
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddItem appends a line item and recomputes totals
func (inv *Invoice) AddItem(input LineItemInput) (*LineItem, error) {
	if err := inv.ensureEditable(); err != nil {
		return nil, err
	}

	item, err := NewLineItem(inv.ID, input)
	if err != nil {
		return nil, err
	}

	items := append(append([]LineItem{}, inv.Items...), *item)
	if err := inv.ensureCoversPaid(items, inv.Taxes, inv.Discount); err != nil {
		return nil, err
	}

	inv.Items = items
	inv.RecomputeTotals()
	inv.touch()
	return item, nil
}

// UpdateItem replaces an existing line item's fields and recomputes totals
func (inv *Invoice) UpdateItem(itemID uuid.UUID, input LineItemInput) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}

	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			updated := inv.Items[i]
			if err := updated.Update(input); err != nil {
				return err
			}
			items := append([]LineItem{}, inv.Items...)
			items[i] = updated
			if err := inv.ensureCoversPaid(items, inv.Taxes, inv.Discount); err != nil {
				return err
			}

			inv.Items = items
			inv.RecomputeTotals()
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found on invoice")
}

// RemoveItem deletes a line item and recomputes totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}

	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			items := append(append([]LineItem{}, inv.Items[:i]...), inv.Items[i+1:]...)
			if err := inv.ensureCoversPaid(items, inv.Taxes, inv.Discount); err != nil {
				return err
			}

			inv.Items = items
			inv.RecomputeTotals()
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found on invoice")
}

// SetTaxes replaces the invoice-level tax entries and recomputes totals
func (inv *Invoice) SetTaxes(entries []TaxEntry) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := NewTaxEntry(e.Name, e.Rate, e.Amount, e.Kind); err != nil {
			return err
		}
	}

	taxes := append([]TaxEntry{}, entries...)
	if err := inv.ensureCoversPaid(inv.Items, taxes, inv.Discount); err != nil {
		return err
	}

	inv.Taxes = taxes
	inv.RecomputeTotals()
	inv.touch()
	return nil
}

// SetDiscount replaces the discount policy and recomputes totals
func (inv *Invoice) SetDiscount(policy DiscountPolicy) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}

	validated, err := NewDiscountPolicy(policy.Kind, policy.Value, policy.AppliesTo, policy.Reason)
	if err != nil {
		return err
	}
	if err := inv.ensureCoversPaid(inv.Items, inv.Taxes, validated); err != nil {
		return err
	}

	inv.Discount = validated
	inv.RecomputeTotals()
	inv.touch()
	return nil
}

// computeTotals derives subtotal, tax, discount and the floored total from
// the billing content alone
func computeTotals(items []LineItem, taxes []TaxEntry, discount DiscountPolicy) (subtotal, taxTotal, discountTotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	taxTotal = decimal.Zero
	for _, tax := range taxes {
		taxTotal = taxTotal.Add(tax.Amount)
	}

	discountTotal = discount.AmountAgainst(subtotal)

	total = subtotal.Add(taxTotal).Sub(discountTotal)
	if total.IsNegative() {
		total = decimal.Zero // A large discount never produces a negative invoice
	}
	return subtotal, taxTotal, discountTotal, total
}

// ensureCoversPaid rejects a prospective items/taxes/discount combination
// whose total would fall below the amount already collected. The ledger is
// append-only, so a total under the paid sum could never settle and would
// leave the balance negative.
func (inv *Invoice) ensureCoversPaid(items []LineItem, taxes []TaxEntry, discount DiscountPolicy) error {
	_, _, _, total := computeTotals(items, taxes, discount)
	if total.LessThan(inv.PaidAmount) {
		return shared.NewDomainError("TOTAL_BELOW_PAID", fmt.Sprintf("New total %s is below the %s already paid", total.StringFixed(2), inv.PaidAmount.StringFixed(2)))
	}
	return nil
}

// RecomputeTotals derives all monetary fields from items, taxes, discount
// and the payment ledger. It is idempotent and always succeeds; callers
// invoke it explicitly after every mutation instead of relying on dirty
// tracking. All derived fields update together.
func (inv *Invoice) RecomputeTotals() {
	subtotal, taxTotal, discountTotal, total := computeTotals(inv.Items, inv.Taxes, inv.Discount)

	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = taxTotal
	inv.DiscountAmount = discountTotal
	inv.TotalAmount = total
	inv.PaidAmount = paid
	inv.BalanceAmount = total.Sub(paid)

	inv.refreshStatus(time.Now())
}

// RecordPayment appends a payment to the ledger and re-derives the paid
// amount, balance and status. Payments are never mutated or removed.
func (inv *Invoice) RecordPayment(amount valueobject.Money, method PaymentMethod, date time.Time, reference, notes string, recordedBy uuid.UUID) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot record payment on a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Currency() != inv.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", fmt.Sprintf("Payment currency %s does not match invoice currency %s", amount.Currency(), inv.Currency))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if amount.Amount().GreaterThan(inv.BalanceAmount) {
		return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount.StringFixed(2), inv.BalanceAmount.StringFixed(2)))
	}

	payment := NewPayment(amount, method, date, reference, notes, recordedBy)
	inv.Payments = append(inv.Payments, payment)

	wasPaid := inv.PaymentStatus == PaymentStatusPaid

	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	inv.PaidAmount = paid
	inv.BalanceAmount = inv.TotalAmount.Sub(paid)
	inv.refreshStatus(time.Now())

	inv.History = append(inv.History, newHistoryEntry(HistoryActionPaymentRecorded, recordedBy, fmt.Sprintf("%s via %s", amount.String(), method)))
	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, payment))

	if !wasPaid && inv.PaymentStatus == PaymentStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	inv.touch()
	return nil
}

// Send transitions a draft invoice to sent
func (inv *Invoice) Send(actor uuid.UUID) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot send a cancelled invoice")
	}
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}

	inv.Status = InvoiceStatusSent
	inv.History = append(inv.History, newHistoryEntry(HistoryActionSent, actor, ""))
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	inv.touch()
	return nil
}

// MarkViewed records that the client opened the invoice
func (inv *Invoice) MarkViewed() error {
	if inv.Status != InvoiceStatusSent {
		// Only the first view of a sent invoice changes status
		return nil
	}

	inv.Status = InvoiceStatusViewed
	inv.History = append(inv.History, newHistoryEntry(HistoryActionViewed, uuid.Nil, ""))
	inv.AddDomainEvent(NewInvoiceViewedEvent(inv))
	inv.touch()
	return nil
}

// Cancel voids the invoice. Paid invoices cannot be cancelled.
func (inv *Invoice) Cancel(actor uuid.UUID, reason string) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if inv.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a paid invoice")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelNote = reason
	inv.History = append(inv.History, newHistoryEntry(HistoryActionCancelled, actor, reason))
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, reason))
	inv.touch()
	return nil
}

// Archive soft-deletes the invoice. Invoices are never physically deleted.
func (inv *Invoice) Archive(actor uuid.UUID) {
	if !inv.IsActive {
		return
	}
	inv.IsActive = false
	inv.History = append(inv.History, newHistoryEntry(HistoryActionArchived, actor, ""))
	inv.touch()
}

// Restore reverses an archive
func (inv *Invoice) Restore(actor uuid.UUID) {
	if inv.IsActive {
		return
	}
	inv.IsActive = true
	inv.History = append(inv.History, newHistoryEntry(HistoryActionRestored, actor, ""))
	inv.touch()
}

// EnableRecurrence attaches a recurring pattern seeded from the due date
func (inv *Invoice) EnableRecurrence(pattern RecurringPattern) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}

	validated, err := NewRecurringPattern(pattern.Frequency, pattern.Interval, pattern.EndDate, pattern.MaxOccurrences)
	if err != nil {
		return err
	}

	next := NextDueDate(inv.DueDate, validated)
	validated.NextDueDate = &next
	inv.Recurring = validated
	inv.touch()
	return nil
}

// DisableRecurrence turns recurrence off, keeping past occurrence counts
func (inv *Invoice) DisableRecurrence() {
	inv.Recurring.Enabled = false
	inv.Recurring.NextDueDate = nil
	inv.touch()
}

// AdvanceRecurrence consumes one occurrence and returns the due date the
// next generated invoice should carry. Fails when the pattern is disabled
// or exhausted.
func (inv *Invoice) AdvanceRecurrence(actor uuid.UUID) (time.Time, error) {
	if !inv.Recurring.Enabled {
		return time.Time{}, shared.NewDomainError("RECURRENCE_DISABLED", "Invoice has no active recurring pattern")
	}

	current := inv.DueDate
	if inv.Recurring.NextDueDate != nil {
		current = *inv.Recurring.NextDueDate
	}
	if inv.Recurring.Exhausted(current) {
		return time.Time{}, shared.NewDomainError("RECURRENCE_EXHAUSTED", "Recurring pattern has no remaining occurrences")
	}

	next := NextDueDate(current, inv.Recurring)
	inv.Recurring.Occurrences++
	inv.Recurring.NextDueDate = &next
	inv.History = append(inv.History, newHistoryEntry(HistoryActionRecurred, actor, current.Format("2006-01-02")))
	inv.AddDomainEvent(NewInvoiceRecurredEvent(inv, current))
	inv.touch()
	return current, nil
}

// RefreshStatus re-derives status against the given clock. Read paths use
// it to surface overdue transitions without waiting for a mutation.
func (inv *Invoice) RefreshStatus(now time.Time) {
	inv.refreshStatus(now)
}

// IsOverdue returns true if the balance is outstanding past the due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceStatusCancelled {
		return false
	}
	return inv.BalanceAmount.IsPositive() && now.After(inv.DueDate)
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(inv.DueDate).Hours() / 24)
}

// PaymentCount returns the number of ledger entries
func (inv *Invoice) PaymentCount() int {
	return len(inv.Payments)
}

// TotalMoney returns the total amount as Money
func (inv *Invoice) TotalMoney() valueobject.Money {
	return inv.moneyOf(inv.TotalAmount)
}

// BalanceMoney returns the balance amount as Money
func (inv *Invoice) BalanceMoney() valueobject.Money {
	return inv.moneyOf(inv.BalanceAmount)
}

// PaidMoney returns the paid amount as Money
func (inv *Invoice) PaidMoney() valueobject.Money {
	return inv.moneyOf(inv.PaidAmount)
}

func (inv *Invoice) moneyOf(amount decimal.Decimal) valueobject.Money {
	m, err := valueobject.NewMoney(amount, inv.Currency)
	if err != nil {
		return valueobject.NewMoneyUSD(amount)
	}
	return m
}

// refreshStatus maps the derived payment status onto the two surface
// fields. PaidAt is stamped exactly once, on the first transition to paid;
// later recomputations never re-trigger it.
func (inv *Invoice) refreshStatus(now time.Time) {
	if inv.Status == InvoiceStatusCancelled {
		return
	}

	inv.PaymentStatus = DerivePaymentStatus(inv.TotalAmount, inv.PaidAmount, inv.BalanceAmount, inv.DueDate, now)

	switch inv.PaymentStatus {
	case PaymentStatusPaid:
		inv.Status = InvoiceStatusPaid
		if inv.PaidAt == nil {
			paidAt := now
			inv.PaidAt = &paidAt
		}
	case PaymentStatusPartial:
		inv.Status = InvoiceStatusPartial
	case PaymentStatusOverdue:
		inv.Status = InvoiceStatusOverdue
	default:
		if !inv.Status.IsDocumentState() {
			// A due-date extension or total increase can pull the invoice
			// back out of overdue/partial; it re-enters circulation as sent
			inv.Status = InvoiceStatusSent
		}
	}
}

// ensureEditable rejects money-side mutation of cancelled invoices
func (inv *Invoice) ensureEditable() error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot modify a cancelled invoice")
	}
	return nil
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}
