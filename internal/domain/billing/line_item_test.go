package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItem(t *testing.T) {
	invoiceID := uuid.New()

	t.Run("computes amount from quantity and rate", func(t *testing.T) {
		item, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Drywall installation",
			Quantity:    decimal.NewFromInt(120),
			Unit:        "sqft",
			Rate:        decimal.NewFromFloat(2.50),
		})
		require.NoError(t, err)

		assert.True(t, item.Amount.Equal(decimal.NewFromInt(300)), "amount = %s", item.Amount)
		assert.True(t, item.TaxAmount.IsZero())
		assert.Equal(t, invoiceID, item.InvoiceID)
	})

	t.Run("applies line discount before tax", func(t *testing.T) {
		item, err := NewLineItem(invoiceID, LineItemInput{
			Description:     "Custom cabinetry",
			Quantity:        decimal.NewFromInt(10),
			Unit:            "each",
			Rate:            decimal.NewFromInt(100),
			DiscountPercent: decimal.NewFromInt(10),
			TaxRate:         decimal.NewFromInt(8),
		})
		require.NoError(t, err)

		// 10 * 100 = 1000, less 10% = 900, tax 8% of 900 = 72
		assert.True(t, item.Amount.Equal(decimal.NewFromInt(900)), "amount = %s", item.Amount)
		assert.True(t, item.TaxAmount.Equal(decimal.NewFromInt(72)), "tax = %s", item.TaxAmount)
	})

	t.Run("allows zero quantity", func(t *testing.T) {
		item, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Placeholder",
			Quantity:    decimal.Zero,
			Rate:        decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		assert.True(t, item.Amount.IsZero())
	})

	t.Run("rejects empty description", func(t *testing.T) {
		_, err := NewLineItem(invoiceID, LineItemInput{
			Quantity: decimal.NewFromInt(1),
			Rate:     decimal.NewFromInt(1),
		})
		assertDomainError(t, err, "INVALID_DESCRIPTION")
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Demo work",
			Quantity:    decimal.NewFromInt(-1),
			Rate:        decimal.NewFromInt(1),
		})
		assertDomainError(t, err, "INVALID_QUANTITY")
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Demo work",
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(-5),
		})
		assertDomainError(t, err, "INVALID_RATE")
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		_, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Demo work",
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(5),
			TaxRate:     decimal.NewFromInt(-1),
		})
		assertDomainError(t, err, "INVALID_TAX_RATE")
	})
}

func TestLineItem_Update(t *testing.T) {
	invoiceID := uuid.New()

	t.Run("recomputes derived amounts", func(t *testing.T) {
		item, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Framing labor",
			Quantity:    decimal.NewFromInt(8),
			Unit:        "hours",
			Rate:        decimal.NewFromInt(85),
		})
		require.NoError(t, err)
		require.True(t, item.Amount.Equal(decimal.NewFromInt(680)))

		err = item.Update(LineItemInput{
			Description: "Framing labor",
			Quantity:    decimal.NewFromInt(10),
			Unit:        "hours",
			Rate:        decimal.NewFromInt(85),
		})
		require.NoError(t, err)
		assert.True(t, item.Amount.Equal(decimal.NewFromInt(850)), "amount = %s", item.Amount)
	})

	t.Run("rejects invalid input without mutating", func(t *testing.T) {
		item, err := NewLineItem(invoiceID, LineItemInput{
			Description: "Tile work",
			Quantity:    decimal.NewFromInt(2),
			Rate:        decimal.NewFromInt(300),
		})
		require.NoError(t, err)

		err = item.Update(LineItemInput{
			Description: "",
			Quantity:    decimal.NewFromInt(3),
			Rate:        decimal.NewFromInt(300),
		})
		assertDomainError(t, err, "INVALID_DESCRIPTION")
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, item.Amount.Equal(decimal.NewFromInt(600)))
	})
}
