package budget

import (
	"time"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/shopspring/decimal"
)

// MonthRollover is the evaluation of one closed month.
type MonthRollover struct {
	Month    time.Time
	Spend    decimal.Decimal
	Surplus  decimal.Decimal
	Credited decimal.Decimal
}

// Rollover reports what AdvanceBuffer did.
type Rollover struct {
	// Initialized is set when the checkpoint was missing and has been placed at now.
	Initialized bool
	Months      []MonthRollover
}

// Credited returns the total added to the saving buffer.
func (r Rollover) Credited() decimal.Decimal {
	total := decimal.Zero
	for _, m := range r.Months {
		total = total.Add(m.Credited)
	}
	return total
}

// Changed reports whether the returned settings differ from the input and must be saved.
func (r Rollover) Changed() bool {
	return r.Initialized || len(r.Months) > 0
}

// AdvanceBuffer closes every calendar month between the settings checkpoint and now.
//
// For each closed month, the limit-applicable spend of that month's expenses is
// subtracted from the current ExpenseLimit and a positive surplus is added to the
// SavingBuffer. Deficits are ignored, so the buffer never decreases. The checkpoint ends
// in now's month.
//
// A nil checkpoint is set to now's month without crediting anything. A checkpoint in
// now's month, or later than now, leaves the settings unchanged. Month boundaries of
// expenses are computed in now's location.
func AdvanceBuffer(settings ledger.UserSettings, expenses []*ledger.Expense, now time.Time) (ledger.UserSettings, Rollover) {
	var report Rollover

	if settings.LastBufferUpdate == nil {
		checkpoint := Checkpoint(now)
		settings.LastBufferUpdate = &checkpoint
		report.Initialized = true
		return settings, report
	}

	month := CheckpointMonth(*settings.LastBufferUpdate, now.Location())
	current := MonthStart(now)
	if !month.Before(current) {
		return settings, report
	}

	buffer := settings.SavingBuffer
	for ; month.Before(current); month = NextMonth(month) {
		spend := LimitApplicableSpend(MonthlyExpenses(expenses, month))
		surplus := settings.ExpenseLimit.Sub(spend)

		credited := decimal.Zero
		if surplus.IsPositive() {
			credited = surplus
			buffer = buffer.Add(surplus)
		}

		report.Months = append(report.Months, MonthRollover{
			Month:    month,
			Spend:    spend,
			Surplus:  surplus,
			Credited: credited,
		})
	}

	checkpoint := Checkpoint(month)
	settings.SavingBuffer = buffer
	settings.LastBufferUpdate = &checkpoint
	return settings, report
}

// Checkpoint encodes the calendar month of t, read in t's own location, as noon UTC on
// the 15th. That instant falls in the same month in every time zone, so a checkpoint
// stored in UTC reads back as the same month wherever the next run happens.
func Checkpoint(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 15, 12, 0, 0, 0, time.UTC)
}

// CheckpointMonth returns the first instant, in loc, of the month recorded by checkpoint.
// The month is taken from the checkpoint's own calendar fields, never from a conversion
// into loc.
func CheckpointMonth(checkpoint time.Time, loc *time.Location) time.Time {
	return time.Date(checkpoint.Year(), checkpoint.Month(), 1, 0, 0, 0, 0, loc)
}

// EnsureSettings returns existing, or first-run settings with defaultLimit when existing
// is nil. A non-positive defaultLimit falls back to ledger.DefaultExpenseLimit.
func EnsureSettings(existing *ledger.UserSettings, defaultLimit decimal.Decimal) ledger.UserSettings {
	if existing != nil {
		return *existing
	}
	if !defaultLimit.IsPositive() {
		defaultLimit = ledger.DefaultExpenseLimit
	}
	return ledger.NewUserSettings(defaultLimit)
}
