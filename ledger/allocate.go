package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation is the part of a payment credited to one participant share.
type Allocation struct {
	ExpenseID     string
	ParticipantID string
	ExpenseDate   time.Time
	Amount        decimal.Decimal
}

// Payment is the outcome of RecordPayment.
type Payment struct {
	// Settlement is the history record of the payment. It always carries the full amount.
	Settlement *Settlement

	// Allocations lists the credited shares in the order they were settled.
	Allocations []Allocation

	// Touched holds the participants whose AmountPaid changed. They must be persisted
	// together with Settlement.
	Touched []*SharedParticipant

	// Unallocated is what was left after every outstanding share was settled.
	// It is not credited anywhere.
	Unallocated decimal.Decimal
}

// Allocated returns the part of the payment that was credited to shares.
func (p *Payment) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// RecordPayment records a payment of amount received from name and applies it to the
// person's outstanding shares, oldest expense first.
//
// A settlement is created for every valid payment, even when nothing is owed, so advance
// payments stay in the history. Each share receives at most its remaining amount and the
// walk stops once the payment is used up. Participants are mutated in place; the caller
// persists Payment.Settlement and Payment.Touched as one batch.
//
// A non-positive amount returns an *InvalidAmountError and leaves everything untouched.
func RecordPayment(name string, amount decimal.Decimal, expenses []*Expense, now time.Time) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, &InvalidAmountError{Field: "payment amount", Amount: amount}
	}

	payment := &Payment{
		Settlement: &Settlement{
			ID:              uuid.NewString(),
			Amount:          amount,
			Date:            now,
			ParticipantName: name,
		},
	}

	remaining := amount
	for _, s := range outstandingShares(KeyFor(name), expenses) {
		if !remaining.IsPositive() {
			break
		}

		due := s.participant.Remaining()
		if !due.IsPositive() {
			continue
		}

		allocated := decimal.Min(remaining, due)
		s.participant.AmountPaid = s.participant.AmountPaid.Add(allocated)
		remaining = remaining.Sub(allocated)

		payment.Touched = append(payment.Touched, s.participant)
		payment.Allocations = append(payment.Allocations, Allocation{
			ExpenseID:     s.expense.ID,
			ParticipantID: s.participant.ID,
			ExpenseDate:   s.expense.Date,
			Amount:        allocated,
		})
	}

	payment.Unallocated = remaining
	return payment, nil
}
