package billing

import (
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxKind classifies an invoice-level tax entry
type TaxKind string

const (
	TaxKindSales   TaxKind = "sales"
	TaxKindService TaxKind = "service"
	TaxKindVAT     TaxKind = "vat"
	TaxKindOther   TaxKind = "other"
)

// IsValid checks if the tax kind is valid
func (k TaxKind) IsValid() bool {
	switch k {
	case TaxKindSales, TaxKindService, TaxKindVAT, TaxKindOther:
		return true
	}
	return false
}

// TaxEntry is an invoice-level tax line. The list of tax entries is kept
// independent of any per-line tax rate: only the entries feed the invoice
// tax total, while per-line tax amounts remain informational on each item.
type TaxEntry struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
	Kind   TaxKind         `json:"kind"`
}

// NewTaxEntry creates a validated tax entry
func NewTaxEntry(name string, rate, amount decimal.Decimal, kind TaxKind) (TaxEntry, error) {
	if name == "" {
		return TaxEntry{}, shared.NewDomainError("INVALID_TAX_NAME", "Tax name cannot be empty")
	}
	if rate.IsNegative() {
		return TaxEntry{}, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if amount.IsNegative() {
		return TaxEntry{}, shared.NewDomainError("INVALID_TAX_AMOUNT", "Tax amount cannot be negative")
	}
	if !kind.IsValid() {
		return TaxEntry{}, shared.NewDomainError("INVALID_TAX_KIND", "Tax kind is not valid")
	}
	return TaxEntry{
		Name:   name,
		Rate:   rate,
		Amount: amount,
		Kind:   kind,
	}, nil
}
