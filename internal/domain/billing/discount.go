package billing

import (
	"github.com/houseway/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountKind determines how a discount value is interpreted
type DiscountKind string

const (
	DiscountKindPercentage DiscountKind = "percentage"
	DiscountKindFixed      DiscountKind = "fixed"
)

// IsValid checks if the discount kind is valid
func (k DiscountKind) IsValid() bool {
	return k == DiscountKindPercentage || k == DiscountKindFixed
}

// DiscountAppliesTo indicates what base the discount applies against
type DiscountAppliesTo string

const (
	DiscountAppliesSubtotal DiscountAppliesTo = "subtotal"
	DiscountAppliesTotal    DiscountAppliesTo = "total"
	DiscountAppliesSpecific DiscountAppliesTo = "specific"
)

// IsValid checks if the applies-to value is valid
func (a DiscountAppliesTo) IsValid() bool {
	switch a {
	case DiscountAppliesSubtotal, DiscountAppliesTotal, DiscountAppliesSpecific:
		return true
	}
	return false
}

// DiscountPolicy is the single invoice-level discount. A percentage discount
// is always computed against the current subtotal at recomputation time, so
// item edits change the effective discount amount.
type DiscountPolicy struct {
	Kind      DiscountKind      `json:"kind"`
	Value     decimal.Decimal   `json:"value"`
	AppliesTo DiscountAppliesTo `json:"applies_to"`
	Reason    string            `json:"reason,omitempty"`
}

// NoDiscount returns an empty percentage discount
func NoDiscount() DiscountPolicy {
	return DiscountPolicy{
		Kind:      DiscountKindPercentage,
		Value:     decimal.Zero,
		AppliesTo: DiscountAppliesSubtotal,
	}
}

// NewDiscountPolicy creates a validated discount policy
func NewDiscountPolicy(kind DiscountKind, value decimal.Decimal, appliesTo DiscountAppliesTo, reason string) (DiscountPolicy, error) {
	if !kind.IsValid() {
		return DiscountPolicy{}, shared.NewDomainError("INVALID_DISCOUNT_KIND", "Discount kind is not valid")
	}
	if value.IsNegative() {
		return DiscountPolicy{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	if appliesTo == "" {
		appliesTo = DiscountAppliesSubtotal
	}
	if !appliesTo.IsValid() {
		return DiscountPolicy{}, shared.NewDomainError("INVALID_DISCOUNT_TARGET", "Discount applies-to is not valid")
	}
	return DiscountPolicy{
		Kind:      kind,
		Value:     value,
		AppliesTo: appliesTo,
		Reason:    reason,
	}, nil
}

// AmountAgainst computes the discount amount for the given subtotal
func (d DiscountPolicy) AmountAgainst(subtotal decimal.Decimal) decimal.Decimal {
	if d.Kind == DiscountKindFixed {
		return d.Value
	}
	return subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
}
