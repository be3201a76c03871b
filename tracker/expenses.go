package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/telemetry"
)

// ShareInput is one participant of a new shared expense.
type ShareInput struct {
	Name   string
	Amount decimal.Decimal
}

// ExpenseInput describes an expense to add. Date defaults to now and Category, when
// set, is looked up by name.
type ExpenseInput struct {
	Amount    decimal.Decimal
	Date      time.Time
	Category  string
	Reason    string
	Recurring bool
	Shares    []ShareInput
}

// AddExpense validates and stores a new expense.
func (t *Tracker) AddExpense(ctx context.Context, in ExpenseInput) (*ledger.Expense, error) {
	ctx, span := telemetry.Span(ctx, "Add expense")
	defer span.End()

	date := in.Date
	if date.IsZero() {
		date = t.now()
	}

	e := ledger.NewExpense(in.Amount, date)
	e.CreatedAt = t.now()
	e.Reason = strings.TrimSpace(in.Reason)
	e.IsRecurring = in.Recurring

	if in.Category != "" {
		category, err := t.store.FindCategory(ctx, in.Category)
		if err != nil {
			return nil, fmt.Errorf("unknown category %q: %w", in.Category, err)
		}
		e.Category = category
	}
	for _, s := range in.Shares {
		e.Share(s.Name, s.Amount)
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := t.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to store expense: %w", err)
	}

	t.logger.DebugContext(ctx, "expense added", "id", e.ID, "amount", e.Amount.String(), "shared", e.IsShared)
	return e, nil
}

// ListExpenses returns the expenses of month's calendar month.
func (t *Tracker) ListExpenses(ctx context.Context, month time.Time) ([]*ledger.Expense, error) {
	ctx, span := telemetry.Span(ctx, "List expenses")
	defer span.End()

	expenses, err := t.store.ListExpenses(ctx, store.Month(month))
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its shares. Settlements already recorded against
// it are kept.
func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Delete expense")
	defer span.End()

	if err := t.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	t.logger.DebugContext(ctx, "expense deleted", "id", id)
	return nil
}

// AddCategory creates a category. typ is need, want or utr.
func (t *Tracker) AddCategory(ctx context.Context, name, typ, icon, color string) (*ledger.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ledger.FieldError{Field: "name", Reason: "is required"}
	}
	categoryType, err := ledger.ParseCategoryType(typ)
	if err != nil {
		return nil, err
	}

	c := ledger.NewCategory(name, categoryType)
	c.Icon = icon
	c.Color = color
	if err := t.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Categories lists every category.
func (t *Tracker) Categories(ctx context.Context) ([]*ledger.Category, error) {
	return t.store.ListCategories(ctx)
}

// AddTemplate creates a recurring template, optionally in the named category.
func (t *Tracker) AddTemplate(ctx context.Context, amount decimal.Decimal, reason, category string) (*ledger.RecurringTemplate, error) {
	if !amount.IsPositive() {
		return nil, &ledger.InvalidAmountError{Field: "template amount", Amount: amount}
	}

	var c *ledger.Category
	if category != "" {
		found, err := t.store.FindCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("unknown category %q: %w", category, err)
		}
		c = found
	}

	tmpl := ledger.NewRecurringTemplate(amount, strings.TrimSpace(reason), c)
	if err := t.store.CreateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to store template: %w", err)
	}
	return tmpl, nil
}

// Templates lists every recurring template.
func (t *Tracker) Templates(ctx context.Context) ([]*ledger.RecurringTemplate, error) {
	return t.store.ListTemplates(ctx)
}

// DeleteTemplate removes a template. Expenses spawned from it are kept.
func (t *Tracker) DeleteTemplate(ctx context.Context, id string) error {
	return t.store.DeleteTemplate(ctx, id)
}

// ErrAlreadySpawned is returned by SpawnRecurring when the template already has an
// expense in the requested month.
var ErrAlreadySpawned = errors.New("template already spawned this month")

// SpawnRecurring creates the expense of template id dated on date, or now when date is
// zero. A template spawns at most once per calendar month.
func (t *Tracker) SpawnRecurring(ctx context.Context, id string, date time.Time) (*ledger.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Spawn recurring")
	defer span.End()

	if date.IsZero() {
		date = t.now()
	}

	tmpl, err := t.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := t.store.ListExpenses(ctx, store.Month(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	for _, e := range existing {
		if e.TemplateID != nil && *e.TemplateID == tmpl.ID {
			return nil, fmt.Errorf("%s in %s: %w", tmpl.Reason, date.Format("January 2006"), ErrAlreadySpawned)
		}
	}

	e := tmpl.Spawn(date)
	e.CreatedAt = t.now()
	if err := t.store.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to store expense: %w", err)
	}

	t.logger.InfoContext(ctx, "recurring expense spawned", "template", tmpl.ID, "amount", e.Amount.String(), "date", date.Format(time.DateOnly))
	return e, nil
}
