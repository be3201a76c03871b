package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "expected %s, got %s", want, got.String())
}

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 12, 0, 0, 0, time.UTC)
}

func sharedExpense(amount string, on time.Time, shares map[string]string) *Expense {
	e := NewExpense(dec(amount), on)
	e.CreatedAt = on
	for name, owed := range shares {
		e.Share(name, dec(owed))
	}
	return e
}

func TestRecordPayment_Scenario(t *testing.T) {
	a := sharedExpense("120", date(time.January, 5), map[string]string{"Sam": "60"})
	b := sharedExpense("200", date(time.January, 20), map[string]string{"Sam": "100"})
	expenses := []*Expense{b, a}
	now := date(time.February, 1)

	payment, err := RecordPayment("Sam", dec("80"), expenses, now)
	assert.NoError(t, err)

	assertAmount(t, "60", a.Participants[0].AmountPaid)
	assertAmount(t, "0", a.Participants[0].Remaining())
	assertAmount(t, "20", b.Participants[0].AmountPaid)
	assertAmount(t, "80", b.Participants[0].Remaining())

	assert.Equal(t, "Sam", payment.Settlement.ParticipantName)
	assertAmount(t, "80", payment.Settlement.Amount)
	assert.Equal(t, now, payment.Settlement.Date)
	assert.NotZero(t, payment.Settlement.ID)
	assertAmount(t, "0", payment.Unallocated)

	assert.Equal(t, 2, len(payment.Allocations))
	assert.Equal(t, a.ID, payment.Allocations[0].ExpenseID)
	assert.Equal(t, b.ID, payment.Allocations[1].ExpenseID)
	assert.Equal(t, 2, len(payment.Touched))

	debts := AggregateOutstandingDebts(expenses)
	assertAmount(t, "80", debts.Owed("Sam"))
}

func TestRecordPayment_FIFOOrder(t *testing.T) {
	t.Run("oldest debt is settled first", func(t *testing.T) {
		older := sharedExpense("60", date(time.March, 1), map[string]string{"Ana": "60"})
		newer := sharedExpense("100", date(time.March, 2), map[string]string{"Ana": "100"})

		_, err := RecordPayment("Ana", dec("80"), []*Expense{newer, older}, date(time.March, 3))
		assert.NoError(t, err)

		assertAmount(t, "0", older.Participants[0].Remaining())
		assertAmount(t, "80", newer.Participants[0].Remaining())
	})

	t.Run("equal dates fall back to creation time", func(t *testing.T) {
		first := sharedExpense("50", date(time.April, 10), map[string]string{"Ana": "50"})
		second := sharedExpense("50", date(time.April, 10), map[string]string{"Ana": "50"})
		first.CreatedAt = date(time.April, 10).Add(-time.Hour)
		second.CreatedAt = date(time.April, 10)

		_, err := RecordPayment("Ana", dec("30"), []*Expense{second, first}, date(time.April, 11))
		assert.NoError(t, err)

		assertAmount(t, "30", first.Participants[0].AmountPaid)
		assertAmount(t, "0", second.Participants[0].AmountPaid)
	})

	t.Run("equal dates and creation times fall back to expense ID", func(t *testing.T) {
		x := sharedExpense("50", date(time.April, 10), map[string]string{"Ana": "50"})
		y := sharedExpense("50", date(time.April, 10), map[string]string{"Ana": "50"})
		x.ID, y.ID = "b-expense", "a-expense"

		_, err := RecordPayment("Ana", dec("10"), []*Expense{x, y}, date(time.April, 11))
		assert.NoError(t, err)

		assertAmount(t, "10", y.Participants[0].AmountPaid)
		assertAmount(t, "0", x.Participants[0].AmountPaid)
	})
}

func TestRecordPayment_SettlementAlwaysRecorded(t *testing.T) {
	t.Run("no debts at all", func(t *testing.T) {
		payment, err := RecordPayment("Nobody", dec("25.50"), nil, date(time.May, 1))
		assert.NoError(t, err)
		assert.NotZero(t, payment.Settlement)
		assertAmount(t, "25.50", payment.Settlement.Amount)
		assertAmount(t, "25.50", payment.Unallocated)
		assert.Equal(t, 0, len(payment.Touched))
	})

	t.Run("debts belong to someone else", func(t *testing.T) {
		e := sharedExpense("40", date(time.May, 2), map[string]string{"Ravi": "40"})

		payment, err := RecordPayment("ravi", dec("10"), []*Expense{e}, date(time.May, 3))
		assert.NoError(t, err)
		assertAmount(t, "10", payment.Settlement.Amount)
		assertAmount(t, "10", payment.Unallocated)
		assertAmount(t, "0", e.Participants[0].AmountPaid)
	})
}

func TestRecordPayment_Overpayment(t *testing.T) {
	e := sharedExpense("90", date(time.June, 1), map[string]string{"Kim": "30", "Lee": "30"})

	payment, err := RecordPayment("Kim", dec("45"), []*Expense{e}, date(time.June, 2))
	assert.NoError(t, err)

	kim := e.Participants[0]
	if kim.Name != "Kim" {
		kim = e.Participants[1]
	}
	assertAmount(t, "30", kim.AmountPaid)
	assertAmount(t, "0", kim.Remaining())
	assertAmount(t, "15", payment.Unallocated)
	assertAmount(t, "30", payment.Allocated())
	assertAmount(t, "45", payment.Settlement.Amount)
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	e := sharedExpense("40", date(time.July, 1), map[string]string{"Sam": "40"})

	for _, amount := range []string{"0", "-5"} {
		t.Run(amount, func(t *testing.T) {
			payment, err := RecordPayment("Sam", dec(amount), []*Expense{e}, date(time.July, 2))
			assert.Error(t, err)
			assert.True(t, payment == nil)
			assert.True(t, errors.Is(err, ErrInvalidAmount))

			var invalid *InvalidAmountError
			assert.True(t, errors.As(err, &invalid))
			assertAmount(t, "0", e.Participants[0].AmountPaid)
		})
	}
}

func TestRecordPayment_SkipsSettledAndUnsharedEntries(t *testing.T) {
	settled := sharedExpense("50", date(time.August, 1), map[string]string{"Sam": "50"})
	settled.Participants[0].AmountPaid = dec("50")

	overpaid := sharedExpense("50", date(time.August, 2), map[string]string{"Sam": "20"})
	overpaid.Participants[0].AmountPaid = dec("25")

	unshared := NewExpense(dec("70"), date(time.August, 3))
	unshared.Participants = []*SharedParticipant{{ID: "ghost", Name: "Sam", AmountOwed: dec("70"), AmountPaid: decimal.Zero}}

	open := sharedExpense("50", date(time.August, 4), map[string]string{"Sam": "40"})

	payment, err := RecordPayment("Sam", dec("100"), []*Expense{settled, overpaid, unshared, open}, date(time.August, 5))
	assert.NoError(t, err)

	assert.Equal(t, 1, len(payment.Allocations))
	assert.Equal(t, open.ID, payment.Allocations[0].ExpenseID)
	assertAmount(t, "25", overpaid.Participants[0].AmountPaid)
	assertAmount(t, "0", unshared.Participants[0].AmountPaid)
	assertAmount(t, "60", payment.Unallocated)
}

func TestRecordPayment_Conservation(t *testing.T) {
	owed := []string{"10.10", "0.33", "7", "19.99", "3.01"}
	payments := []string{"0.01", "0.33", "5", "10.43", "30", "40.43", "100"}

	for _, amount := range payments {
		t.Run(amount, func(t *testing.T) {
			var expenses []*Expense
			before := map[string]decimal.Decimal{}
			for i, o := range owed {
				e := sharedExpense("50", date(time.September, i+1), map[string]string{"Pat": o})
				expenses = append(expenses, e)
				before[e.Participants[0].ID] = e.Participants[0].AmountPaid
			}

			payment, err := RecordPayment("Pat", dec(amount), expenses, date(time.October, 1))
			assert.NoError(t, err)

			assert.True(t, payment.Allocated().LessThanOrEqual(dec(amount)))
			assertAmount(t, amount, payment.Allocated().Add(payment.Unallocated))

			for _, e := range expenses {
				p := e.Participants[0]
				increase := p.AmountPaid.Sub(before[p.ID])
				assert.False(t, increase.IsNegative())
				assert.True(t, increase.LessThanOrEqual(p.AmountOwed))
				assert.False(t, p.Remaining().IsNegative())
			}
		})
	}
}
