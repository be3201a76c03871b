package budget

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/kharchamitra/kharcha/ledger"
)

func TestTypeBreakdown(t *testing.T) {
	want := ledger.NewCategory("Movies", ledger.Want)
	utr := ledger.NewCategory("Client", ledger.UTR)

	movie := expense("60", day(2025, time.July, 1))
	movie.Category = want
	movie.Share("Kim", dec("30")).AmountPaid = dec("30")

	client := expense("200", day(2025, time.July, 2))
	client.Category = utr

	groceries := expense("80", day(2025, time.July, 3))

	got := TypeBreakdown([]*ledger.Expense{client, movie, groceries})

	assert.Equal(t, 3, len(got))
	assert.Equal(t, ledger.Need, got[0].Type)
	assertAmount(t, "80", got[0].Amount)
	assert.Equal(t, ledger.Want, got[1].Type)
	assertAmount(t, "30", got[1].Amount)
	assert.Equal(t, ledger.UTR, got[2].Type)
	assertAmount(t, "200", got[2].Amount)

	assert.Equal(t, 0, len(TypeBreakdown(nil)))
}

func TestRecurringSplit(t *testing.T) {
	rent := ledger.NewRecurringTemplate(dec("1000"), "Rent", nil)
	shared := rent.Spawn(day(2025, time.July, 1))
	shared.Share("Flatmate", dec("500")).AmountPaid = dec("500")

	split := RecurringSplit([]*ledger.Expense{shared, expense("45", day(2025, time.July, 2))})

	assertAmount(t, "500", split.Recurring)
	assertAmount(t, "45", split.OneTime)
}

func TestVelocity(t *testing.T) {
	// June has 30 days, so a 3000 limit targets 100 a day.
	tests := []struct {
		name   string
		spend  string
		now    time.Time
		status VelocityStatus
		daily  string
	}{
		{name: "below target", spend: "900", now: day(2025, time.June, 10), status: OnTrack, daily: "90"},
		{name: "exactly on target", spend: "1000", now: day(2025, time.June, 10), status: OnTrack, daily: "100"},
		{name: "within warning band", spend: "1250", now: day(2025, time.June, 10), status: Warning, daily: "125"},
		{name: "over", spend: "1260", now: day(2025, time.June, 10), status: Over, daily: "126"},
		{name: "first day", spend: "150", now: day(2025, time.June, 1), status: Over, daily: "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Velocity(dec(tt.spend), dec("3000"), tt.now)
			assert.Equal(t, tt.status, v.Status)
			assertAmount(t, tt.daily, v.DailyRate)
			assertAmount(t, "100", v.TargetRate)
		})
	}
}

func TestTrend(t *testing.T) {
	now := day(2025, time.February, 14)
	expenses := []*ledger.Expense{
		expense("10", day(2024, time.August, 31)),
		expense("20", day(2024, time.September, 1)),
		expense("30", day(2024, time.December, 24)),
		expense("5", day(2024, time.December, 25)),
		expense("40", day(2025, time.February, 2)),
		expense("99", day(2025, time.March, 1)),
	}

	got := Trend(expenses, now, 6)

	assert.Equal(t, 6, len(got))
	assert.Equal(t, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), got[0].Month)
	assertAmount(t, "20", got[0].Amount)
	assertAmount(t, "0", got[1].Amount)
	assertAmount(t, "0", got[2].Amount)
	assert.Equal(t, time.December, got[3].Month.Month())
	assertAmount(t, "35", got[3].Amount)
	assertAmount(t, "0", got[4].Amount)
	assert.Equal(t, time.February, got[5].Month.Month())
	assertAmount(t, "40", got[5].Amount)

	assert.Equal(t, 0, len(Trend(expenses, now, 0)))
}

func TestCategoryTotals(t *testing.T) {
	food := ledger.NewCategory("Food", ledger.Need)
	fun := ledger.NewCategory("Fun", ledger.Want)
	books := ledger.NewCategory("Books", ledger.Want)

	var expenses []*ledger.Expense
	add := func(amount string, c *ledger.Category) {
		e := expense(amount, day(2025, time.March, 1))
		e.Category = c
		expenses = append(expenses, e)
	}
	add("30", food)
	add("45", fun)
	add("20", food)
	add("50", books)
	add("500", nil)

	got := CategoryTotals(expenses)

	assert.Equal(t, 3, len(got))
	assert.Equal(t, "Books", got[0].Name)
	assertAmount(t, "50", got[0].Amount)
	assert.Equal(t, "Food", got[1].Name)
	assertAmount(t, "50", got[1].Amount)
	assert.Equal(t, "Fun", got[2].Name)
	assert.Equal(t, ledger.Want, got[2].Type)
}
