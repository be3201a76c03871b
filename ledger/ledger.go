// Package ledger provides the shared-expense ledger of a personal finance tracker.
// It models expenses, the participants who owe a share of them and the settlements
// they pay back, and implements the two reconciliation rules that operate on them:
//
//   - AggregateOutstandingDebts sums, per counterparty, everything still owed across
//     all shared expenses.
//   - RecordPayment turns an incoming payment into a Settlement and spreads it over the
//     counterparty's outstanding shares, oldest expense first.
//
// Participants are identified by their display name. All matching goes through
// ParticipantKey so the identity rule lives in a single place.
//
// The package performs no I/O. Callers load a snapshot of expenses from a store,
// run the rules in memory and persist the returned mutations. All monetary amounts
// use decimal arithmetic to avoid floating point drift across repeated summation.
//
// Example usage:
//
//	expenses, _ := st.ListExpenses(ctx, store.ExpenseFilter{SharedOnly: true})
//	payment, err := ledger.RecordPayment("Sam", decimal.NewFromInt(80), expenses, time.Now())
//	if err != nil {
//	    var invalid *ledger.InvalidAmountError
//	    if errors.As(err, &invalid) {
//	        // nothing was mutated
//	    }
//	}
//	_ = st.ApplyPayment(ctx, payment.Settlement, payment.Touched)
package ledger
