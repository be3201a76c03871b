package ledger

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestAggregateOutstandingDebts(t *testing.T) {
	tests := []struct {
		name     string
		expenses func() []*Expense
		want     map[string]string
	}{
		{
			name:     "no expenses",
			expenses: func() []*Expense { return nil },
			want:     map[string]string{},
		},
		{
			name: "sums shares across expenses",
			expenses: func() []*Expense {
				return []*Expense{
					sharedExpense("100", date(time.January, 1), map[string]string{"Sam": "50", "Ana": "25"}),
					sharedExpense("60", date(time.February, 1), map[string]string{"Sam": "30"}),
				}
			},
			want: map[string]string{"Sam": "80", "Ana": "25"},
		},
		{
			name: "fully paid shares are omitted",
			expenses: func() []*Expense {
				e := sharedExpense("100", date(time.January, 1), map[string]string{"Sam": "50"})
				e.Participants[0].AmountPaid = dec("50")
				return []*Expense{e}
			},
			want: map[string]string{},
		},
		{
			name: "overpaid shares do not offset other debts",
			expenses: func() []*Expense {
				over := sharedExpense("100", date(time.January, 1), map[string]string{"Sam": "50"})
				over.Participants[0].AmountPaid = dec("70")
				open := sharedExpense("40", date(time.January, 2), map[string]string{"Sam": "40"})
				return []*Expense{over, open}
			},
			want: map[string]string{"Sam": "40"},
		},
		{
			name: "names are case sensitive",
			expenses: func() []*Expense {
				return []*Expense{
					sharedExpense("100", date(time.January, 1), map[string]string{"sam": "10", "Sam": "20"}),
				}
			},
			want: map[string]string{"sam": "10", "Sam": "20"},
		},
		{
			name: "participants of unshared expenses are ignored",
			expenses: func() []*Expense {
				e := sharedExpense("100", date(time.January, 1), map[string]string{"Sam": "50"})
				e.IsShared = false
				return []*Expense{e}
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debts := AggregateOutstandingDebts(tt.expenses())
			assert.Equal(t, len(tt.want), len(debts))
			for name, amount := range tt.want {
				assertAmount(t, amount, debts.Owed(name))
			}
			for key, amount := range debts {
				assert.True(t, amount.IsPositive(), "debt of %s should be positive", key)
			}
		})
	}
}

func TestDebtsSortedAndTotal(t *testing.T) {
	debts := AggregateOutstandingDebts([]*Expense{
		sharedExpense("90", date(time.January, 1), map[string]string{"Zoe": "30", "Ana": "12.5", "Mo": "7.25"}),
	})

	sorted := debts.Sorted()
	assert.Equal(t, 3, len(sorted))
	assert.Equal(t, "Ana", sorted[0].Name)
	assert.Equal(t, "Mo", sorted[1].Name)
	assert.Equal(t, "Zoe", sorted[2].Name)
	assertAmount(t, "49.75", debts.Total())
	assertAmount(t, "0", debts.Owed("Nobody"))
}

func TestOutstandingFor(t *testing.T) {
	late := sharedExpense("200", date(time.January, 20), map[string]string{"Sam": "100"})
	late.Reason = "Concert"
	early := sharedExpense("120", date(time.January, 5), map[string]string{"Sam": "60", "Ana": "60"})
	early.Category = &Category{Name: "Groceries", Type: Need}
	paid := sharedExpense("30", date(time.January, 1), map[string]string{"Sam": "30"})
	paid.Participants[0].AmountPaid = dec("30")

	debts, total := OutstandingFor("Sam", []*Expense{late, paid, early})

	assert.Equal(t, 2, len(debts))
	assert.Equal(t, early.ID, debts[0].ExpenseID)
	assert.Equal(t, "Groceries", debts[0].Label)
	assertAmount(t, "60", debts[0].Remaining)
	assert.Equal(t, late.ID, debts[1].ExpenseID)
	assert.Equal(t, "Concert", debts[1].Label)
	assertAmount(t, "160", total)

	none, total := OutstandingFor("Lee", []*Expense{late, early})
	assert.Equal(t, 0, len(none))
	assertAmount(t, "0", total)
}

func TestShareSummary(t *testing.T) {
	expenses := []*Expense{
		sharedExpense("100", date(time.January, 1), map[string]string{"Sam": "40", "Ana": "20"}),
		sharedExpense("50", date(time.January, 2), map[string]string{"Sam": "10"}),
		NewExpense(dec("500"), date(time.January, 3)),
	}
	settlements := []*Settlement{
		{ID: "s1", ParticipantName: "Sam", Amount: dec("15")},
		{ID: "s2", ParticipantName: "Sam", Amount: dec("5")},
		{ID: "s3", ParticipantName: "Kim", Amount: dec("8")},
	}

	summary := ShareSummary(expenses, settlements)

	assert.Equal(t, 3, len(summary.Participants))
	assert.Equal(t, "Ana", summary.Participants[0].Name)
	assert.Equal(t, "Kim", summary.Participants[1].Name)
	assert.Equal(t, "Sam", summary.Participants[2].Name)

	kim := summary.Participants[1]
	assertAmount(t, "0", kim.TotalShared)
	assertAmount(t, "8", kim.TotalPaid)
	assertAmount(t, "-8", kim.Net())

	sam := summary.Participants[2]
	assertAmount(t, "50", sam.TotalShared)
	assertAmount(t, "20", sam.TotalPaid)
	assertAmount(t, "30", sam.Net())

	assertAmount(t, "70", summary.TotalLent)
	assertAmount(t, "28", summary.TotalRecovered)
}

func TestParticipantKey(t *testing.T) {
	key := KeyFor("Sam")
	assert.True(t, key.Matches("Sam"))
	assert.False(t, key.Matches("sam"))
	assert.False(t, key.Matches("Sam "))
	assert.Equal(t, "Sam", key.Name())
}
