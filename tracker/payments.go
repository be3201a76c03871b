package tracker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/telemetry"
)

// Debts returns everyone who still owes money, sorted by name, and the total owed.
func (t *Tracker) Debts(ctx context.Context) ([]ledger.Debt, decimal.Decimal, error) {
	ctx, span := telemetry.Span(ctx, "Debts")
	defer span.End()

	expenses, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load shared expenses: %w", err)
	}
	debts := ledger.AggregateOutstandingDebts(expenses)
	return debts.Sorted(), debts.Total(), nil
}

// DebtDetail lists the unpaid shares of name, oldest first, and their total.
func (t *Tracker) DebtDetail(ctx context.Context, name string) ([]ledger.OutstandingDebt, decimal.Decimal, error) {
	ctx, span := telemetry.Span(ctx, "Debt detail")
	defer span.End()

	expenses, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load shared expenses: %w", err)
	}
	debts, total := ledger.OutstandingFor(name, expenses)
	return debts, total, nil
}

// RecordPayment applies a payment received from name to their oldest debts and stores
// the settlement together with the updated shares.
func (t *Tracker) RecordPayment(ctx context.Context, name string, amount decimal.Decimal) (*ledger.Payment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, span := telemetry.Span(ctx, "Record payment")
	defer span.End()

	_, load := telemetry.Span(ctx, "Load shared expenses")
	expenses, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	load.End()
	if err != nil {
		return nil, fmt.Errorf("failed to load shared expenses: %w", err)
	}

	payment, err := ledger.RecordPayment(name, amount, expenses, t.now())
	if err != nil {
		return nil, err
	}

	_, apply := telemetry.Span(ctx, "Apply payment")
	err = t.store.ApplyPayment(ctx, payment.Settlement, payment.Touched)
	apply.End()
	if err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	t.logger.InfoContext(ctx, "payment recorded",
		"participant", name,
		"amount", amount.String(),
		"shares", len(payment.Allocations),
		"allocated", payment.Allocated().String(),
	)
	if payment.Unallocated.IsPositive() {
		t.logger.WarnContext(ctx, "payment exceeds outstanding debt, remainder not credited",
			"participant", name,
			"unallocated", payment.Unallocated.String(),
		)
	}
	return payment, nil
}

// Settlements returns the payment history, newest first, optionally for one person.
func (t *Tracker) Settlements(ctx context.Context, name string) ([]*ledger.Settlement, error) {
	ctx, span := telemetry.Span(ctx, "Settlements")
	defer span.End()

	settlements, err := t.store.ListSettlements(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	return settlements, nil
}

// Shares summarises lifetime lending and recovery per person.
func (t *Tracker) Shares(ctx context.Context) (ledger.Shares, error) {
	ctx, span := telemetry.Span(ctx, "Shares")
	defer span.End()

	expenses, err := t.store.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
	if err != nil {
		return ledger.Shares{}, fmt.Errorf("failed to load shared expenses: %w", err)
	}
	settlements, err := t.store.ListSettlements(ctx, "")
	if err != nil {
		return ledger.Shares{}, fmt.Errorf("failed to load settlements: %w", err)
	}
	return ledger.ShareSummary(expenses, settlements), nil
}
