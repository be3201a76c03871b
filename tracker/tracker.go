// Package tracker is the application service behind the CLI and the web server. It reads
// records from a store.Store, runs the ledger and budget rules over them and persists the
// results.
//
// Every read starts with an activation, which rolls the saving buffer forward to the
// current month. Operations that modify shared state hold a mutex for their whole
// read-modify-write cycle, so concurrent web requests cannot credit a month twice or apply
// a payment against stale balances.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/budget"
	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/telemetry"
)

// Tracker coordinates ledger operations over a store.
type Tracker struct {
	store        store.Store
	logger       *slog.Logger
	now          func() time.Time
	defaultLimit decimal.Decimal

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithDefaultLimit sets the expense limit used when settings are created.
func WithDefaultLimit(limit decimal.Decimal) Option {
	return func(t *Tracker) { t.defaultLimit = limit }
}

// New creates a Tracker over st.
func New(st store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:        st,
		logger:       slog.Default(),
		now:          time.Now,
		defaultLimit: ledger.DefaultExpenseLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Activate loads the settings, creating them on first run, and rolls the saving buffer
// forward to the current month. It returns the settings after the rollover.
func (t *Tracker) Activate(ctx context.Context) (ledger.UserSettings, budget.Rollover, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activate(ctx)
}

// activate must be called with t.mu held.
func (t *Tracker) activate(ctx context.Context) (ledger.UserSettings, budget.Rollover, error) {
	ctx, span := telemetry.Span(ctx, "Activate")
	defer span.End()

	now := t.now()

	existing, err := t.store.GetSettings(ctx)
	created := false
	if errors.Is(err, store.ErrNotFound) {
		created = true
	} else if err != nil {
		return ledger.UserSettings{}, budget.Rollover{}, fmt.Errorf("failed to load settings: %w", err)
	}
	settings := budget.EnsureSettings(existing, t.defaultLimit)

	var expenses []*ledger.Expense
	if settings.LastBufferUpdate != nil {
		from := budget.CheckpointMonth(*settings.LastBufferUpdate, now.Location())
		if from.Before(budget.MonthStart(now)) {
			_, load := telemetry.Span(ctx, "Load unclosed months")
			expenses, err = t.store.ListExpenses(ctx, store.ExpenseFilter{
				From: from,
				To:   budget.MonthStart(now),
			})
			load.End()
			if err != nil {
				return ledger.UserSettings{}, budget.Rollover{}, fmt.Errorf("failed to load expenses: %w", err)
			}
		}
	}

	_, advance := telemetry.Span(ctx, "Advance buffer")
	settings, report := budget.AdvanceBuffer(settings, expenses, now)
	advance.End()

	if !created && !report.Changed() {
		return settings, report, nil
	}

	if err := t.store.SaveSettings(ctx, settings); err != nil {
		return ledger.UserSettings{}, budget.Rollover{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if created {
		t.logger.InfoContext(ctx, "created settings", "expense_limit", settings.ExpenseLimit.String())
	}
	for _, m := range report.Months {
		t.logger.InfoContext(ctx, "closed month",
			"month", m.Month.Format("2006-01"),
			"spend", m.Spend.String(),
			"credited", m.Credited.String(),
		)
	}
	if len(report.Months) > 0 {
		t.logger.InfoContext(ctx, "saving buffer rolled over",
			"months", len(report.Months),
			"credited", report.Credited().String(),
			"buffer", settings.SavingBuffer.String(),
		)
	}
	return settings, report, nil
}

// SetLimit changes the monthly expense limit.
func (t *Tracker) SetLimit(ctx context.Context, limit decimal.Decimal) (ledger.UserSettings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Set limit")
	defer span.End()

	settings, _, err := t.activate(ctx)
	if err != nil {
		return ledger.UserSettings{}, err
	}
	previous := settings.ExpenseLimit
	if err := settings.SetLimit(limit); err != nil {
		return ledger.UserSettings{}, err
	}
	if err := t.store.SaveSettings(ctx, settings); err != nil {
		return ledger.UserSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	t.logger.InfoContext(ctx, "expense limit changed", "from", previous.String(), "to", limit.String())
	return settings, nil
}
