package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryType classifies a category for budgeting purposes.
type CategoryType string

const (
	Need CategoryType = "need"
	Want CategoryType = "want"
	// UTR marks reimbursable or untracked spending that never counts against the limit.
	UTR CategoryType = "utr"
)

// ParseCategoryType parses a category type case-insensitively.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.ToLower(strings.TrimSpace(s))) {
	case Need:
		return Need, nil
	case Want:
		return Want, nil
	case UTR:
		return UTR, nil
	}
	return "", fmt.Errorf("invalid category type %q, expected need, want or utr", s)
}

// String returns the display name of the category type.
func (t CategoryType) String() string {
	switch t {
	case Need:
		return "Need"
	case Want:
		return "Want"
	case UTR:
		return "UTR"
	}
	return string(t)
}

// Category groups expenses. Only its Type matters to the budget rules.
type Category struct {
	ID    string
	Name  string
	Type  CategoryType
	Icon  string
	Color string
}

// NewCategory creates a category with a generated ID.
func NewCategory(name string, typ CategoryType) *Category {
	return &Category{
		ID:   uuid.NewString(),
		Name: name,
		Type: typ,
	}
}

// Expense is a single spending event. A shared expense owns the participants that
// owe part of it; deleting the expense deletes them too.
type Expense struct {
	ID          string
	Amount      decimal.Decimal
	Date        time.Time
	Category    *Category
	Reason      string
	IsRecurring bool
	IsShared    bool

	Participants []*SharedParticipant

	// TemplateID references the recurring template that spawned this expense, if any.
	TemplateID *string

	CreatedAt time.Time
}

// NewExpense creates an expense with a generated ID and CreatedAt set to now.
func NewExpense(amount decimal.Decimal, date time.Time) *Expense {
	return &Expense{
		ID:        uuid.NewString(),
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now(),
	}
}

// Share adds a participant owing amountOwed of this expense and marks it shared.
func (e *Expense) Share(name string, amountOwed decimal.Decimal) *SharedParticipant {
	p := &SharedParticipant{
		ID:         uuid.NewString(),
		ExpenseID:  e.ID,
		Name:       name,
		AmountOwed: amountOwed,
		AmountPaid: decimal.Zero,
	}
	e.IsShared = true
	e.Participants = append(e.Participants, p)
	return p
}

// CategoryType returns the type of the expense category and whether one is set.
func (e *Expense) CategoryType() (CategoryType, bool) {
	if e.Category == nil {
		return "", false
	}
	return e.Category.Type, true
}

// IsUTR reports whether the expense is excluded from the spending limit.
func (e *Expense) IsUTR() bool {
	typ, ok := e.CategoryType()
	return ok && typ == UTR
}

// Recovered returns the sum of everything participants have paid back on this expense.
func (e *Expense) Recovered() decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.Participants {
		total = total.Add(p.AmountPaid)
	}
	return total
}

// Label returns the reason, falling back to the category name.
func (e *Expense) Label() string {
	if strings.TrimSpace(e.Reason) != "" {
		return e.Reason
	}
	if e.Category != nil && e.Category.Name != "" {
		return e.Category.Name
	}
	return "Uncategorized"
}

// Validate checks the expense and its participants, collecting every problem found.
func (e *Expense) Validate() error {
	var errs []error

	if !e.Amount.IsPositive() {
		errs = append(errs, &FieldError{Field: "amount", Reason: fmt.Sprintf("must be positive, got %s", e.Amount)})
	}
	if e.Date.IsZero() {
		errs = append(errs, &FieldError{Field: "date", Reason: "is required"})
	}
	if !e.IsShared && len(e.Participants) > 0 {
		errs = append(errs, &FieldError{Field: "participants", Reason: "only shared expenses can have participants"})
	}

	for _, p := range e.Participants {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, &FieldError{Field: "participant.name", Reason: "is required"})
		}
		if p.AmountOwed.IsNegative() {
			errs = append(errs, &FieldError{Field: "participant.amount_owed", Reason: fmt.Sprintf("%s: cannot be negative", p.Name)})
		}
		if p.AmountPaid.IsNegative() {
			errs = append(errs, &FieldError{Field: "participant.amount_paid", Reason: fmt.Sprintf("%s: cannot be negative", p.Name)})
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// SharedParticipant is one person's share of a shared expense.
type SharedParticipant struct {
	ID         string
	ExpenseID  string
	Name       string
	AmountOwed decimal.Decimal
	AmountPaid decimal.Decimal
}

// Remaining returns the amount still owed on this share.
func (p *SharedParticipant) Remaining() decimal.Decimal {
	return p.AmountOwed.Sub(p.AmountPaid)
}

// Key returns the identity used to match this participant against payments.
func (p *SharedParticipant) Key() ParticipantKey {
	return KeyFor(p.Name)
}

// Settlement is the immutable history record of a payment received from a participant.
type Settlement struct {
	ID              string
	Amount          decimal.Decimal
	Date            time.Time
	ParticipantName string
}

// RecurringTemplate describes a repeating expense. It is used to project next month's
// recurring load and to spawn concrete expenses.
type RecurringTemplate struct {
	ID       string
	Amount   decimal.Decimal
	Category *Category
	Reason   string
}

// NewRecurringTemplate creates a template with a generated ID.
func NewRecurringTemplate(amount decimal.Decimal, reason string, category *Category) *RecurringTemplate {
	return &RecurringTemplate{
		ID:       uuid.NewString(),
		Amount:   amount,
		Category: category,
		Reason:   reason,
	}
}

// Spawn creates a recurring expense dated on date that references this template.
func (t *RecurringTemplate) Spawn(date time.Time) *Expense {
	id := t.ID
	e := NewExpense(t.Amount, date)
	e.Category = t.Category
	e.Reason = t.Reason
	e.IsRecurring = true
	e.TemplateID = &id
	return e
}
