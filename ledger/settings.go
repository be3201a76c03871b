package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExpenseLimit is the monthly limit given to a freshly created installation.
var DefaultExpenseLimit = decimal.NewFromInt(2000)

// UserSettings is the per-installation budget state. There is exactly one per store.
type UserSettings struct {
	// ExpenseLimit is the monthly budget ceiling.
	ExpenseLimit decimal.Decimal

	// SavingBuffer accumulates unspent budget from past months.
	SavingBuffer decimal.Decimal

	// LastBufferUpdate is the month checkpoint of the rollover engine.
	// It is nil until the first evaluation.
	LastBufferUpdate *time.Time
}

// NewUserSettings returns first-run settings with the given limit.
func NewUserSettings(limit decimal.Decimal) UserSettings {
	return UserSettings{
		ExpenseLimit: limit,
		SavingBuffer: decimal.Zero,
	}
}

// SetLimit changes the monthly limit. The limit must be positive.
func (s *UserSettings) SetLimit(limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return &InvalidAmountError{Field: "expense limit", Amount: limit}
	}
	s.ExpenseLimit = limit
	return nil
}
