// Package storetest holds behaviour tests shared by every store.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "expected %s, got %s", want, got.String())
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 9, 30, 0, 0, time.UTC)
}

// Run exercises a store created fresh by open for every subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("expenses round-trip with participants and category", func(t *testing.T) {
		st := open(t)
		food := ledger.NewCategory("Food", ledger.Need)
		assert.NoError(t, st.CreateCategory(ctx, food))

		e := ledger.NewExpense(dec("123.45"), day(time.March, 3))
		e.Category = food
		e.Reason = "Dinner"
		e.Share("Sam", dec("40.15"))
		e.Share("Ana", dec("41"))
		assert.NoError(t, st.CreateExpense(ctx, e))

		got, err := st.GetExpense(ctx, e.ID)
		assert.NoError(t, err)
		assertAmount(t, "123.45", got.Amount)
		assert.True(t, got.Date.Equal(e.Date))
		assert.Equal(t, "Dinner", got.Reason)
		assert.True(t, got.IsShared)
		assert.NotZero(t, got.Category)
		assert.Equal(t, "Food", got.Category.Name)
		assert.Equal(t, ledger.Need, got.Category.Type)
		assert.Equal(t, 2, len(got.Participants))
		assert.Equal(t, "Sam", got.Participants[0].Name)
		assert.Equal(t, e.ID, got.Participants[0].ExpenseID)
		assertAmount(t, "40.15", got.Participants[0].AmountOwed)
		assertAmount(t, "0", got.Participants[0].AmountPaid)
		assert.True(t, got.TemplateID == nil)
	})

	t.Run("list filters by month and shared flag", func(t *testing.T) {
		st := open(t)
		feb := ledger.NewExpense(dec("10"), time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC))
		mar := ledger.NewExpense(dec("20"), time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
		marShared := ledger.NewExpense(dec("30"), time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC))
		marShared.Share("Sam", dec("15"))
		apr := ledger.NewExpense(dec("40"), time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
		for _, e := range []*ledger.Expense{apr, marShared, feb, mar} {
			assert.NoError(t, st.CreateExpense(ctx, e))
		}

		all, err := st.ListExpenses(ctx, store.ExpenseFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 4, len(all))
		assert.Equal(t, feb.ID, all[0].ID)
		assert.Equal(t, apr.ID, all[3].ID)

		march, err := st.ListExpenses(ctx, store.Month(day(time.March, 15)))
		assert.NoError(t, err)
		assert.Equal(t, 2, len(march))
		assert.Equal(t, mar.ID, march[0].ID)
		assert.Equal(t, marShared.ID, march[1].ID)

		shared, err := st.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(shared))
		assert.Equal(t, 1, len(shared[0].Participants))
	})

	t.Run("delete cascades to participants", func(t *testing.T) {
		st := open(t)
		e := ledger.NewExpense(dec("50"), day(time.May, 1))
		p := e.Share("Sam", dec("25"))
		assert.NoError(t, st.CreateExpense(ctx, e))

		assert.NoError(t, st.DeleteExpense(ctx, e.ID))

		_, err := st.GetExpense(ctx, e.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		p.AmountPaid = dec("5")
		err = st.ApplyPayment(ctx, &ledger.Settlement{Amount: dec("5"), Date: day(time.May, 2), ParticipantName: "Sam"}, []*ledger.SharedParticipant{p})
		assert.True(t, errors.Is(err, store.ErrNotFound))

		err = st.DeleteExpense(ctx, e.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("apply payment persists settlement and participants", func(t *testing.T) {
		st := open(t)
		a := ledger.NewExpense(dec("120"), day(time.January, 5))
		a.Share("Sam", dec("60"))
		b := ledger.NewExpense(dec("200"), day(time.January, 20))
		b.Share("Sam", dec("100"))
		assert.NoError(t, st.CreateExpense(ctx, a))
		assert.NoError(t, st.CreateExpense(ctx, b))

		expenses, err := st.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
		assert.NoError(t, err)

		payment, err := ledger.RecordPayment("Sam", dec("80"), expenses, day(time.February, 1))
		assert.NoError(t, err)
		assert.NoError(t, st.ApplyPayment(ctx, payment.Settlement, payment.Touched))

		expenses, err = st.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
		assert.NoError(t, err)
		assertAmount(t, "60", expenses[0].Participants[0].AmountPaid)
		assertAmount(t, "20", expenses[1].Participants[0].AmountPaid)
		assertAmount(t, "80", ledger.AggregateOutstandingDebts(expenses).Owed("Sam"))

		settlements, err := st.ListSettlements(ctx, "Sam")
		assert.NoError(t, err)
		assert.Equal(t, 1, len(settlements))
		assertAmount(t, "80", settlements[0].Amount)
		assert.True(t, settlements[0].Date.Equal(day(time.February, 1)))
	})

	t.Run("failed payment writes nothing", func(t *testing.T) {
		st := open(t)
		e := ledger.NewExpense(dec("100"), day(time.June, 1))
		p := e.Share("Kim", dec("50"))
		assert.NoError(t, st.CreateExpense(ctx, e))

		p.AmountPaid = dec("50")
		ghost := &ledger.SharedParticipant{ID: "missing", ExpenseID: e.ID, Name: "Kim", AmountPaid: dec("1")}
		err := st.ApplyPayment(ctx, &ledger.Settlement{Amount: dec("51"), Date: day(time.June, 2), ParticipantName: "Kim"},
			[]*ledger.SharedParticipant{p, ghost})
		assert.Error(t, err)

		settlements, err := st.ListSettlements(ctx, "")
		assert.NoError(t, err)
		assert.Equal(t, 0, len(settlements))

		got, err := st.GetExpense(ctx, e.ID)
		assert.NoError(t, err)
		assertAmount(t, "0", got.Participants[0].AmountPaid)
	})

	t.Run("settlements newest first and filtered by exact name", func(t *testing.T) {
		st := open(t)
		for i, name := range []string{"Sam", "sam", "Sam"} {
			s := &ledger.Settlement{Amount: dec("10"), Date: day(time.July, i+1), ParticipantName: name}
			assert.NoError(t, st.ApplyPayment(ctx, s, nil))
		}

		all, err := st.ListSettlements(ctx, "")
		assert.NoError(t, err)
		assert.Equal(t, 3, len(all))
		assert.True(t, all[0].Date.Equal(day(time.July, 3)))

		sam, err := st.ListSettlements(ctx, "Sam")
		assert.NoError(t, err)
		assert.Equal(t, 2, len(sam))
	})

	t.Run("settings are missing until saved", func(t *testing.T) {
		st := open(t)
		_, err := st.GetSettings(ctx)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		settings := ledger.NewUserSettings(dec("2000"))
		assert.NoError(t, st.SaveSettings(ctx, settings))

		got, err := st.GetSettings(ctx)
		assert.NoError(t, err)
		assertAmount(t, "2000", got.ExpenseLimit)
		assertAmount(t, "0", got.SavingBuffer)
		assert.True(t, got.LastBufferUpdate == nil)

		checkpoint := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
		settings.SavingBuffer = dec("1600.50")
		settings.LastBufferUpdate = &checkpoint
		assert.NoError(t, st.SaveSettings(ctx, settings))

		got, err = st.GetSettings(ctx)
		assert.NoError(t, err)
		assertAmount(t, "1600.5", got.SavingBuffer)
		assert.NotZero(t, got.LastBufferUpdate)
		assert.True(t, got.LastBufferUpdate.Equal(checkpoint))
	})

	t.Run("categories are unique by name regardless of case", func(t *testing.T) {
		st := open(t)
		assert.NoError(t, st.CreateCategory(ctx, ledger.NewCategory("Travel", ledger.Want)))
		assert.NoError(t, st.CreateCategory(ctx, ledger.NewCategory("bills", ledger.Need)))
		assert.Error(t, st.CreateCategory(ctx, ledger.NewCategory("travel", ledger.UTR)))

		found, err := st.FindCategory(ctx, "TRAVEL")
		assert.NoError(t, err)
		assert.Equal(t, "Travel", found.Name)

		byID, err := st.GetCategory(ctx, found.ID)
		assert.NoError(t, err)
		assert.Equal(t, ledger.Want, byID.Type)

		_, err = st.FindCategory(ctx, "Nope")
		assert.True(t, errors.Is(err, store.ErrNotFound))

		all, err := st.ListCategories(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(all))
		assert.Equal(t, "bills", all[0].Name)
	})

	t.Run("templates spawn linked expenses and unlink on delete", func(t *testing.T) {
		st := open(t)
		rent := ledger.NewCategory("Rent", ledger.Need)
		assert.NoError(t, st.CreateCategory(ctx, rent))

		tmpl := ledger.NewRecurringTemplate(dec("900"), "Flat", rent)
		assert.NoError(t, st.CreateTemplate(ctx, tmpl))

		templates, err := st.ListTemplates(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(templates))
		assert.Equal(t, "Rent", templates[0].Category.Name)

		spawned := tmpl.Spawn(day(time.August, 1))
		assert.NoError(t, st.CreateExpense(ctx, spawned))

		got, err := st.GetExpense(ctx, spawned.ID)
		assert.NoError(t, err)
		assert.NotZero(t, got.TemplateID)
		assert.Equal(t, tmpl.ID, *got.TemplateID)
		assert.True(t, got.IsRecurring)

		assert.NoError(t, st.DeleteTemplate(ctx, tmpl.ID))
		_, err = st.GetTemplate(ctx, tmpl.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		got, err = st.GetExpense(ctx, spawned.ID)
		assert.NoError(t, err)
		assert.True(t, got.TemplateID == nil)
		assert.True(t, got.IsRecurring)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		st := open(t)
		e := ledger.NewExpense(dec("10"), day(time.September, 1))
		e.Share("Lee", dec("5"))
		assert.NoError(t, st.CreateExpense(ctx, e))

		got, err := st.GetExpense(ctx, e.ID)
		assert.NoError(t, err)
		got.Participants[0].AmountPaid = dec("5")

		again, err := st.GetExpense(ctx, e.ID)
		assert.NoError(t, err)
		assertAmount(t, "0", again.Participants[0].AmountPaid)
	})
}
