package budget

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/kharchamitra/kharcha/ledger"
)

func spawned(tmpl *ledger.RecurringTemplate, on time.Time) *ledger.Expense {
	return tmpl.Spawn(on)
}

func TestMonthlyExpenses(t *testing.T) {
	in := expense("10", day(2025, time.March, 1))
	alsoIn := expense("20", time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC))
	before := expense("30", time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC))
	lastYear := expense("40", day(2024, time.March, 15))

	got := MonthlyExpenses([]*ledger.Expense{before, in, lastYear, alsoIn}, day(2025, time.March, 20))

	assert.Equal(t, 2, len(got))
	assert.Equal(t, in.ID, got[0].ID)
	assert.Equal(t, alsoIn.ID, got[1].ID)
}

func TestNetCashFlowAndLimitSpend(t *testing.T) {
	utr := ledger.NewCategory("Office", ledger.UTR)
	want := ledger.NewCategory("Dining", ledger.Want)

	dinner := expense("120", day(2025, time.May, 2))
	dinner.Category = want
	dinner.Share("Ana", dec("40")).AmountPaid = dec("25")

	travel := expense("500", day(2025, time.May, 3))
	travel.Category = utr

	misc := expense("35.5", day(2025, time.May, 4))

	monthly := []*ledger.Expense{dinner, travel, misc}

	assertAmount(t, "655.5", GrossSpend(monthly))
	assertAmount(t, "630.5", NetCashFlow(monthly))
	assertAmount(t, "130.5", LimitApplicableSpend(monthly))

	settings := ledger.NewUserSettings(dec("100"))
	assertAmount(t, "-30.5", LimitLeft(settings, LimitApplicableSpend(monthly)))
}

func TestSafeLimit(t *testing.T) {
	tests := []struct {
		name      string
		limitLeft string
		last      string
		this      string
		want      string
	}{
		{name: "nothing recurred last month", limitLeft: "800", last: "0", this: "0", want: "800"},
		{name: "recurring charges still due", limitLeft: "800", last: "300", this: "100", want: "600"},
		{name: "all recurring charges already spent", limitLeft: "800", last: "300", this: "300", want: "800"},
		{name: "more recurred than last month", limitLeft: "800", last: "300", this: "450", want: "800"},
		{name: "limit already exceeded", limitLeft: "-50", last: "200", this: "0", want: "-250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, SafeLimit(dec(tt.limitLeft), dec(tt.last), dec(tt.this)))
		})
	}
}

func TestRecurringTotal(t *testing.T) {
	rent := ledger.NewRecurringTemplate(dec("1000"), "Rent", nil)
	gym := ledger.NewRecurringTemplate(dec("50"), "Gym", nil)

	expenses := []*ledger.Expense{
		spawned(rent, day(2025, time.April, 1)),
		spawned(gym, day(2025, time.April, 3)),
		spawned(rent, day(2025, time.May, 1)),
		expense("75", day(2025, time.May, 2)),
	}
	// Recurring flag alone does not count, only a template link does.
	flagged := expense("20", day(2025, time.May, 4))
	flagged.IsRecurring = true
	expenses = append(expenses, flagged)

	assertAmount(t, "1050", RecurringTotal(expenses, day(2025, time.April, 20)))
	assertAmount(t, "1000", RecurringTotal(expenses, day(2025, time.May, 20)))
	assertAmount(t, "0", RecurringTotal(expenses, day(2025, time.June, 20)))
}

func TestSummarize(t *testing.T) {
	rent := ledger.NewRecurringTemplate(dec("900"), "Rent", nil)
	phone := ledger.NewRecurringTemplate(dec("100"), "Phone", nil)
	utr := ledger.NewCategory("Work trip", ledger.UTR)

	trip := expense("400", day(2025, time.June, 8))
	trip.Category = utr

	expenses := []*ledger.Expense{
		spawned(rent, day(2025, time.May, 1)),
		spawned(phone, day(2025, time.May, 5)),
		spawned(rent, day(2025, time.June, 1)),
		expense("250", day(2025, time.June, 4)),
		trip,
	}
	settings := ledger.UserSettings{ExpenseLimit: dec("2000"), SavingBuffer: dec("120")}

	s := Summarize(settings, expenses, day(2025, time.June, 10))

	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), s.Month)
	assert.Equal(t, 3, s.ExpenseCount)
	assertAmount(t, "1550", s.GrossSpend)
	assertAmount(t, "1550", s.NetCashFlow)
	assertAmount(t, "1150", s.LimitSpend)
	assertAmount(t, "850", s.LimitLeft)
	assertAmount(t, "1000", s.LastMonthRecurring)
	assertAmount(t, "900", s.ThisMonthRecurring)
	assertAmount(t, "750", s.SafeLimit)
	assertAmount(t, "120", s.SavingBuffer)
	assertAmount(t, "0.575", s.Progress())
}

func TestMonthHelpers(t *testing.T) {
	ref := time.Date(2024, time.January, 31, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), MonthStart(ref))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), NextMonth(ref))
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), PreviousMonth(ref))
	assert.Equal(t, time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC), AddMonths(ref, -5))
	assert.Equal(t, 29, DaysInMonth(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, DaysInMonth(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)))
}
