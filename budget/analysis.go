package budget

import (
	"strings"
	"time"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// TypeSpend is the net spend of one category type.
type TypeSpend struct {
	Type   ledger.CategoryType
	Amount decimal.Decimal
}

// TypeBreakdown returns net spend per category type in Need, Want, UTR order.
// Uncategorized expenses count as Need. Types without expenses are omitted.
func TypeBreakdown(expenses []*ledger.Expense) []TypeSpend {
	totals := make(map[ledger.CategoryType]decimal.Decimal)
	for _, e := range expenses {
		typ, ok := e.CategoryType()
		if !ok {
			typ = ledger.Need
		}
		totals[typ] = totals[typ].Add(e.Amount).Sub(e.Recovered())
	}

	var out []TypeSpend
	for _, typ := range []ledger.CategoryType{ledger.Need, ledger.Want, ledger.UTR} {
		if amount, ok := totals[typ]; ok {
			out = append(out, TypeSpend{Type: typ, Amount: amount})
		}
	}
	return out
}

// Split divides net spend between template-spawned and one-time expenses.
type Split struct {
	Recurring decimal.Decimal
	OneTime   decimal.Decimal
}

// RecurringSplit computes the net Split of expenses.
func RecurringSplit(expenses []*ledger.Expense) Split {
	split := Split{Recurring: decimal.Zero, OneTime: decimal.Zero}
	for _, e := range expenses {
		net := e.Amount.Sub(e.Recovered())
		if e.TemplateID != nil {
			split.Recurring = split.Recurring.Add(net)
		} else {
			split.OneTime = split.OneTime.Add(net)
		}
	}
	return split
}

// VelocityStatus grades the daily spending rate against the target rate.
type VelocityStatus string

const (
	OnTrack VelocityStatus = "on-track"
	Warning VelocityStatus = "warning"
	Over    VelocityStatus = "over"
)

var warningFactor = decimal.RequireFromString("1.25")

// SpendingVelocity compares the spend rate so far with the rate that would exactly
// consume the limit by the end of the month.
type SpendingVelocity struct {
	DailyRate  decimal.Decimal
	TargetRate decimal.Decimal
	Status     VelocityStatus
}

// Velocity divides spend by the elapsed days of now's month and the limit by the days
// in the month. A rate up to 125% of the target is a warning, above it is over.
func Velocity(spend, limit decimal.Decimal, now time.Time) SpendingVelocity {
	daily := spend.Div(decimal.NewFromInt(int64(now.Day())))
	target := limit.Div(decimal.NewFromInt(int64(DaysInMonth(now))))

	status := Over
	switch {
	case daily.LessThanOrEqual(target):
		status = OnTrack
	case daily.LessThanOrEqual(target.Mul(warningFactor)):
		status = Warning
	}

	return SpendingVelocity{
		DailyRate:  daily.Round(2),
		TargetRate: target.Round(2),
		Status:     status,
	}
}

// MonthTotal is the gross spend of one calendar month.
type MonthTotal struct {
	Month  time.Time
	Amount decimal.Decimal
}

// Trend returns gross monthly totals for the n months ending with now's month, oldest
// first. Months without expenses are reported as zero.
func Trend(expenses []*ledger.Expense, now time.Time, n int) []MonthTotal {
	if n <= 0 {
		return nil
	}

	out := make([]MonthTotal, n)
	first := AddMonths(now, -(n - 1))
	for i := range out {
		out[i] = MonthTotal{Month: AddMonths(first, i), Amount: decimal.Zero}
	}

	for _, e := range expenses {
		d := e.Date.In(now.Location())
		if d.Before(first) {
			continue
		}
		i := (d.Year()-first.Year())*12 + int(d.Month()-first.Month())
		if i < n {
			out[i].Amount = out[i].Amount.Add(e.Amount)
		}
	}
	return out
}

// CategoryTotal is the gross spend of one category.
type CategoryTotal struct {
	Name   string
	Type   ledger.CategoryType
	Amount decimal.Decimal
}

// CategoryTotals sums gross spend per category, largest first with ties broken by name.
// Uncategorized expenses are left out.
func CategoryTotals(expenses []*ledger.Expense) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, e := range expenses {
		if e.Category == nil {
			continue
		}
		i, ok := index[e.Category.ID]
		if !ok {
			i = len(out)
			index[e.Category.ID] = i
			out = append(out, CategoryTotal{Name: e.Category.Name, Type: e.Category.Type, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
