package tracker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/budget"
	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/telemetry"
)

// DefaultTrendMonths is the analysis window used when none is given.
const DefaultTrendMonths = 6

// Dashboard is the current month at a glance.
type Dashboard struct {
	Settings  ledger.UserSettings
	Rollover  budget.Rollover
	Summary   budget.Summary
	Velocity  budget.SpendingVelocity
	Debts     []ledger.Debt
	TotalOwed decimal.Decimal
}

// Dashboard activates the tracker and summarises the current month.
func (t *Tracker) Dashboard(ctx context.Context) (*Dashboard, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Dashboard")
	defer span.End()

	settings, rollover, err := t.activate(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now()
	// The previous month is needed for its recurring total.
	expenses, err := t.store.ListExpenses(ctx, store.ExpenseFilter{
		From: budget.PreviousMonth(now),
		To:   budget.NextMonth(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	shared, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load shared expenses: %w", err)
	}

	_, calc := telemetry.Span(ctx, "Summarize")
	summary := budget.Summarize(settings, expenses, now)
	debts := ledger.AggregateOutstandingDebts(shared)
	calc.End()

	return &Dashboard{
		Settings:  settings,
		Rollover:  rollover,
		Summary:   summary,
		Velocity:  budget.Velocity(summary.LimitSpend, settings.ExpenseLimit, now),
		Debts:     debts.Sorted(),
		TotalOwed: debts.Total(),
	}, nil
}

// Analysis is the spending report over a window of months ending with the current one.
type Analysis struct {
	Months         int
	Breakdown      []budget.TypeSpend
	Split          budget.Split
	Velocity       budget.SpendingVelocity
	Trend          []budget.MonthTotal
	CategoryTotals []budget.CategoryTotal
	Shares         ledger.Shares
}

// Analysis builds the report for the last months calendar months. The type breakdown,
// split and velocity cover the current month only.
func (t *Tracker) Analysis(ctx context.Context, months int) (*Analysis, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Analysis")
	defer span.End()

	settings, _, err := t.activate(ctx)
	if err != nil {
		return nil, err
	}

	now := t.now()
	from := budget.AddMonths(now, -(months - 1))
	window, err := t.store.ListExpenses(ctx, store.ExpenseFilter{From: from, To: budget.NextMonth(now)})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	shared, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load shared expenses: %w", err)
	}
	settlements, err := t.store.ListSettlements(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}

	monthly := budget.MonthlyExpenses(window, now)
	return &Analysis{
		Months:         months,
		Breakdown:      budget.TypeBreakdown(monthly),
		Split:          budget.RecurringSplit(monthly),
		Velocity:       budget.Velocity(budget.LimitApplicableSpend(monthly), settings.ExpenseLimit, now),
		Trend:          budget.Trend(window, now, months),
		CategoryTotals: budget.CategoryTotals(window),
		Shares:         ledger.ShareSummary(shared, settlements),
	}, nil
}
