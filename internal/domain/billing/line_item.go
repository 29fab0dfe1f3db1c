package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineItem represents a billable line on an invoice.
// Line items are owned by exactly one invoice and are only created or
// edited through the Invoice aggregate.
type LineItem struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"` // Unit label (e.g. "hours", "sqft", "each")
	Rate            decimal.Decimal `json:"rate"` // Price per unit
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Amount          decimal.Decimal `json:"amount"`     // Quantity * Rate less line discount
	TaxAmount       decimal.Decimal `json:"tax_amount"` // Amount * TaxRate / 100
	Category        string          `json:"category"`   // Work category (e.g. "materials", "labor")
	Phase           string          `json:"phase"`      // Project phase tag
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LineItemInput carries the caller-supplied fields for a line item
type LineItemInput struct {
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	Rate            decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
	Category        string
	Phase           string
}

// NewLineItem creates a new line item and computes its derived amounts
func NewLineItem(invoiceID uuid.UUID, input LineItemInput) (*LineItem, error) {
	if err := validateLineItemInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &LineItem{
		ID:              uuid.New(),
		InvoiceID:       invoiceID,
		Description:     input.Description,
		Quantity:        input.Quantity,
		Unit:            input.Unit,
		Rate:            input.Rate,
		DiscountPercent: input.DiscountPercent,
		TaxRate:         input.TaxRate,
		Category:        input.Category,
		Phase:           input.Phase,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	item.recalculate()
	return item, nil
}

// Update replaces the caller-supplied fields and recomputes derived amounts
func (i *LineItem) Update(input LineItemInput) error {
	if err := validateLineItemInput(input); err != nil {
		return err
	}

	i.Description = input.Description
	i.Quantity = input.Quantity
	i.Unit = input.Unit
	i.Rate = input.Rate
	i.DiscountPercent = input.DiscountPercent
	i.TaxRate = input.TaxRate
	i.Category = input.Category
	i.Phase = input.Phase
	i.UpdatedAt = time.Now()
	i.recalculate()
	return nil
}

// AmountMoney returns the line amount as Money
func (i *LineItem) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Amount)
}

// TaxAmountMoney returns the line tax amount as Money
func (i *LineItem) TaxAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.TaxAmount)
}

// recalculate derives Amount and TaxAmount from the editable fields
func (i *LineItem) recalculate() {
	gross := i.Quantity.Mul(i.Rate)
	discount := gross.Mul(i.DiscountPercent).Div(decimal.NewFromInt(100))
	i.Amount = gross.Sub(discount)
	i.TaxAmount = i.Amount.Mul(i.TaxRate).Div(decimal.NewFromInt(100))
}

func validateLineItemInput(input LineItemInput) error {
	if input.Description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Line item description cannot be empty")
	}
	if input.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if input.Rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if input.DiscountPercent.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}
	if input.TaxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	return nil
}
