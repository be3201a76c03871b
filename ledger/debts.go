package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Debts maps each counterparty to the total amount they still owe.
// Counterparties that owe nothing are absent rather than zero-valued.
type Debts map[ParticipantKey]decimal.Decimal

// Debt is a single entry of Debts.
type Debt struct {
	Name   string
	Amount decimal.Decimal
}

// AggregateOutstandingDebts sums the remaining amount of every shared participant,
// grouped by participant key. It covers the whole lifetime of the ledger, so callers
// must pass all expenses rather than a single month.
func AggregateOutstandingDebts(expenses []*Expense) Debts {
	debts := make(Debts)
	for _, e := range expenses {
		if !e.IsShared {
			continue
		}
		for _, p := range e.Participants {
			remaining := p.Remaining()
			if !remaining.IsPositive() {
				continue
			}
			key := p.Key()
			debts[key] = debts[key].Add(remaining)
		}
	}
	return debts
}

// Owed returns what name owes, or zero.
func (d Debts) Owed(name string) decimal.Decimal {
	if amount, ok := d[KeyFor(name)]; ok {
		return amount
	}
	return decimal.Zero
}

// Total returns the sum owed by everyone.
func (d Debts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range d {
		total = total.Add(amount)
	}
	return total
}

// Sorted returns the debts ordered by name.
func (d Debts) Sorted() []Debt {
	out := make([]Debt, 0, len(d))
	for key, amount := range d {
		out = append(out, Debt{Name: key.Name(), Amount: amount})
	}
	slices.SortFunc(out, func(a, b Debt) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// OutstandingDebt is one unpaid share, linked to the expense it came from.
type OutstandingDebt struct {
	ExpenseID     string
	ParticipantID string
	Label         string
	Date          time.Time
	Remaining     decimal.Decimal
}

// OutstandingFor lists the unpaid shares of name, oldest expense first, and their total.
// The order is the same one RecordPayment settles them in.
func OutstandingFor(name string, expenses []*Expense) ([]OutstandingDebt, decimal.Decimal) {
	shares := outstandingShares(KeyFor(name), expenses)

	total := decimal.Zero
	out := make([]OutstandingDebt, 0, len(shares))
	for _, s := range shares {
		remaining := s.participant.Remaining()
		total = total.Add(remaining)
		out = append(out, OutstandingDebt{
			ExpenseID:     s.expense.ID,
			ParticipantID: s.participant.ID,
			Label:         s.expense.Label(),
			Date:          s.expense.Date,
			Remaining:     remaining,
		})
	}
	return out, total
}

// share pairs a participant with the expense that owns it.
type share struct {
	expense     *Expense
	participant *SharedParticipant
}

// outstandingShares selects the unpaid shares of key across shared expenses and sorts
// them for settlement: expense date ascending, then expense creation time, then expense
// ID, then participant ID. The secondary keys make equal-date ordering reproducible.
func outstandingShares(key ParticipantKey, expenses []*Expense) []share {
	var shares []share
	for _, e := range expenses {
		if !e.IsShared {
			continue
		}
		for _, p := range e.Participants {
			if p.Key() != key || !p.Remaining().IsPositive() {
				continue
			}
			shares = append(shares, share{expense: e, participant: p})
		}
	}

	slices.SortStableFunc(shares, func(a, b share) int {
		if c := a.expense.Date.Compare(b.expense.Date); c != 0 {
			return c
		}
		if c := a.expense.CreatedAt.Compare(b.expense.CreatedAt); c != 0 {
			return c
		}
		if c := strings.Compare(a.expense.ID, b.expense.ID); c != 0 {
			return c
		}
		return strings.Compare(a.participant.ID, b.participant.ID)
	})
	return shares
}

// ParticipantShare summarises everything shared with one person.
type ParticipantShare struct {
	Name string
	// TotalShared is the sum of every share assigned to the person, paid or not.
	TotalShared decimal.Decimal
	// TotalPaid is the sum of the person's settlements.
	TotalPaid decimal.Decimal
}

// Net returns what remains once settlements are deducted from the shared total.
// It is negative when the person paid in advance.
func (p ParticipantShare) Net() decimal.Decimal {
	return p.TotalShared.Sub(p.TotalPaid)
}

// Shares is the lifetime shared-finance overview.
type Shares struct {
	Participants   []ParticipantShare
	TotalLent      decimal.Decimal
	TotalRecovered decimal.Decimal
}

// ShareSummary groups shares and settlements by participant key, sorted by name.
// A person who only appears in settlements is still listed.
func ShareSummary(expenses []*Expense, settlements []*Settlement) Shares {
	shared := make(map[ParticipantKey]decimal.Decimal)
	paid := make(map[ParticipantKey]decimal.Decimal)

	for _, e := range expenses {
		if !e.IsShared {
			continue
		}
		for _, p := range e.Participants {
			shared[p.Key()] = shared[p.Key()].Add(p.AmountOwed)
		}
	}
	for _, s := range settlements {
		key := KeyFor(s.ParticipantName)
		paid[key] = paid[key].Add(s.Amount)
	}

	keys := make([]ParticipantKey, 0, len(shared)+len(paid))
	for key := range shared {
		keys = append(keys, key)
	}
	for key := range paid {
		if _, ok := shared[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	summary := Shares{TotalLent: decimal.Zero, TotalRecovered: decimal.Zero}
	for _, key := range keys {
		ps := ParticipantShare{Name: key.Name(), TotalShared: shared[key], TotalPaid: paid[key]}
		summary.Participants = append(summary.Participants, ps)
		summary.TotalLent = summary.TotalLent.Add(ps.TotalShared)
		summary.TotalRecovered = summary.TotalRecovered.Add(ps.TotalPaid)
	}
	return summary
}
