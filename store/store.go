// Package store defines persistence for ledger records.
//
// Implementations live in sub-packages: store/sqlite for the on-disk database and
// store/memory for tests and throwaway sessions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kharchamitra/kharcha/ledger"
)

// ErrNotFound is returned when a requested record does not exist. GetSettings returns it
// before the first settings record has been saved.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows ListExpenses. The zero value selects every expense.
type ExpenseFilter struct {
	// From is inclusive. Zero means unbounded.
	From time.Time
	// To is exclusive. Zero means unbounded.
	To time.Time
	// SharedOnly selects expenses with participants.
	SharedOnly bool
}

// Month returns a filter covering the calendar month of t, in t's location.
func Month(t time.Time) ExpenseFilter {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return ExpenseFilter{From: from, To: from.AddDate(0, 1, 0)}
}

// Match reports whether e passes the filter.
func (f ExpenseFilter) Match(e *ledger.Expense) bool {
	if f.SharedOnly && !e.IsShared {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Date.Before(f.To) {
		return false
	}
	return true
}

// Store persists expenses, settlements, categories, recurring templates and the
// user settings record. Expenses are returned with their participants and category
// loaded, ordered by date then creation time.
type Store interface {
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*ledger.Expense, error)
	GetExpense(ctx context.Context, id string) (*ledger.Expense, error)

	// CreateExpense inserts the expense and its participants together.
	CreateExpense(ctx context.Context, e *ledger.Expense) error

	// DeleteExpense removes the expense and its participants.
	DeleteExpense(ctx context.Context, id string) error

	// ApplyPayment inserts the settlement and updates AmountPaid of every touched
	// participant in one transaction. Nothing is written when any step fails.
	ApplyPayment(ctx context.Context, settlement *ledger.Settlement, touched []*ledger.SharedParticipant) error

	// ListSettlements returns settlements newest first, restricted to name unless it is empty.
	ListSettlements(ctx context.Context, name string) ([]*ledger.Settlement, error)

	GetSettings(ctx context.Context) (*ledger.UserSettings, error)
	SaveSettings(ctx context.Context, settings ledger.UserSettings) error

	ListCategories(ctx context.Context) ([]*ledger.Category, error)
	GetCategory(ctx context.Context, id string) (*ledger.Category, error)
	FindCategory(ctx context.Context, name string) (*ledger.Category, error)
	CreateCategory(ctx context.Context, c *ledger.Category) error

	ListTemplates(ctx context.Context) ([]*ledger.RecurringTemplate, error)
	GetTemplate(ctx context.Context, id string) (*ledger.RecurringTemplate, error)
	CreateTemplate(ctx context.Context, t *ledger.RecurringTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	Close() error
}
