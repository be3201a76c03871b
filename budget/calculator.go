// Package budget derives monthly spending figures from an expense snapshot and rolls
// unused budget into the saving buffer.
//
// Every function is a pure computation over values it is given. Reading and persisting
// records is the caller's job:
//
//	settings, report := budget.AdvanceBuffer(settings, expenses, time.Now())
//	if report.Changed() {
//		err = st.SaveSettings(ctx, settings)
//	}
//	summary := budget.Summarize(settings, expenses, time.Now())
package budget

import (
	"time"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/shopspring/decimal"
)

// MonthlyExpenses returns the expenses dated in ref's calendar month.
func MonthlyExpenses(expenses []*ledger.Expense, ref time.Time) []*ledger.Expense {
	var out []*ledger.Expense
	for _, e := range expenses {
		if SameMonth(e.Date, ref) {
			out = append(out, e)
		}
	}
	return out
}

// GrossSpend sums expense amounts without deducting recoveries.
func GrossSpend(expenses []*ledger.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// NetCashFlow is what the user is out of pocket: amounts spent minus everything
// participants have already paid back.
func NetCashFlow(expenses []*ledger.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount).Sub(e.Recovered())
	}
	return total
}

// LimitApplicableSpend is NetCashFlow restricted to expenses that count against the
// limit. UTR expenses are excluded; expenses without a category count.
func LimitApplicableSpend(expenses []*ledger.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.IsUTR() {
			continue
		}
		total = total.Add(e.Amount).Sub(e.Recovered())
	}
	return total
}

// LimitLeft returns the unspent part of the monthly limit. It is negative once the
// limit is exceeded.
func LimitLeft(settings ledger.UserSettings, spend decimal.Decimal) decimal.Decimal {
	return settings.ExpenseLimit.Sub(spend)
}

// SafeLimit lowers limitLeft by the recurring charges expected but not yet spent this
// month. The projection is last month's recurring total minus what recurred so far.
// Without recurring charges last month, or when they already recurred, limitLeft is
// returned as is.
func SafeLimit(limitLeft, lastMonthRecurring, thisMonthRecurring decimal.Decimal) decimal.Decimal {
	projected := lastMonthRecurring.Sub(thisMonthRecurring)
	if lastMonthRecurring.IsPositive() && projected.IsPositive() {
		return limitLeft.Sub(projected)
	}
	return limitLeft
}

// RecurringTotal sums the amounts of template-spawned expenses in month's calendar month.
func RecurringTotal(expenses []*ledger.Expense, month time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.TemplateID == nil || !SameMonth(e.Date, month) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// Summary is the budget picture of one month.
type Summary struct {
	Month        time.Time
	ExpenseLimit decimal.Decimal
	SavingBuffer decimal.Decimal

	ExpenseCount int
	GrossSpend   decimal.Decimal
	NetCashFlow  decimal.Decimal
	LimitSpend   decimal.Decimal
	LimitLeft    decimal.Decimal

	LastMonthRecurring decimal.Decimal
	ThisMonthRecurring decimal.Decimal
	SafeLimit          decimal.Decimal
}

// Progress returns the share of the limit consumed, as a fraction. It is zero when the
// limit is not positive.
func (s Summary) Progress() decimal.Decimal {
	if !s.ExpenseLimit.IsPositive() {
		return decimal.Zero
	}
	return s.LimitSpend.Div(s.ExpenseLimit)
}

// Summarize computes the Summary of now's month from the full expense list.
func Summarize(settings ledger.UserSettings, expenses []*ledger.Expense, now time.Time) Summary {
	monthly := MonthlyExpenses(expenses, now)
	spend := LimitApplicableSpend(monthly)
	left := LimitLeft(settings, spend)
	last := RecurringTotal(expenses, PreviousMonth(now))
	this := RecurringTotal(expenses, now)

	return Summary{
		Month:              MonthStart(now),
		ExpenseLimit:       settings.ExpenseLimit,
		SavingBuffer:       settings.SavingBuffer,
		ExpenseCount:       len(monthly),
		GrossSpend:         GrossSpend(monthly),
		NetCashFlow:        NetCashFlow(monthly),
		LimitSpend:         spend,
		LimitLeft:          left,
		LastMonthRecurring: last,
		ThisMonthRecurring: this,
		SafeLimit:          SafeLimit(left, last, this),
	}
}
