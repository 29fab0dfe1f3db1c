package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/houseway/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodOnline, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is one entry in an invoice's payment ledger.
// The ledger is append-only: payments are never edited or removed, and the
// invoice's paid amount is always derived by summing it.
type Payment struct {
	ID         uuid.UUID            `json:"id"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   valueobject.Currency `json:"currency"`
	Date       time.Time            `json:"date"`
	Method     PaymentMethod        `json:"method"`
	Reference  string               `json:"reference,omitempty"`
	RecordedBy uuid.UUID            `json:"recorded_by"`
	Notes      string               `json:"notes,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewPayment creates a new ledger entry. A zero date defaults to now.
func NewPayment(amount valueobject.Money, method PaymentMethod, date time.Time, reference, notes string, recordedBy uuid.UUID) Payment {
	if date.IsZero() {
		date = time.Now()
	}
	return Payment{
		ID:         uuid.New(),
		Amount:     amount.Amount(),
		Currency:   amount.Currency(),
		Date:       date,
		Method:     method,
		Reference:  reference,
		RecordedBy: recordedBy,
		Notes:      notes,
		CreatedAt:  time.Now(),
	}
}

// AmountMoney returns the payment amount as Money
func (p Payment) AmountMoney() valueobject.Money {
	m, err := valueobject.NewMoney(p.Amount, p.Currency)
	if err != nil {
		return valueobject.NewMoneyUSD(p.Amount)
	}
	return m
}
