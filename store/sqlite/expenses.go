package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

const selectExpenses = `
SELECT e.id, e.amount, e.date, e.reason, e.is_recurring, e.is_shared, e.template_id, e.created_at,
       c.id, c.name, c.type, c.icon, c.color
FROM expenses e
LEFT JOIN categories c ON c.id = e.category_id`

const selectParticipants = `
SELECT p.id, p.expense_id, p.name, p.amount_owed, p.amount_paid
FROM shared_participants p
JOIN expenses e ON e.id = p.expense_id`

func expenseWhere(f store.ExpenseFilter) (string, []any) {
	var conds []string
	var args []any
	if !f.From.IsZero() {
		conds = append(conds, "e.date >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "e.date < ?")
		args = append(args, formatTime(f.To))
	}
	if f.SharedOnly {
		conds = append(conds, "e.is_shared = 1")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListExpenses returns the expenses matching filter with participants and category loaded.
func (s *Store) ListExpenses(ctx context.Context, filter store.ExpenseFilter) ([]*ledger.Expense, error) {
	where, args := expenseWhere(filter)
	return s.queryExpenses(ctx, where, args)
}

// GetExpense retrieves a single expense by ID.
func (s *Store) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	expenses, err := s.queryExpenses(ctx, " WHERE e.id = ?", []any{id})
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	return expenses[0], nil
}

func (s *Store) queryExpenses(ctx context.Context, where string, args []any) ([]*ledger.Expense, error) {
	rows, err := s.db.QueryContext(ctx, selectExpenses+where+" ORDER BY e.date, e.created_at, e.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*ledger.Expense
	byID := make(map[string]*ledger.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return nil, nil
	}
	if err := s.loadParticipants(ctx, byID, where, args); err != nil {
		return nil, err
	}
	return expenses, nil
}

func scanExpense(rows *sql.Rows) (*ledger.Expense, error) {
	e := &ledger.Expense{}
	var date, createdAt string
	var templateID sql.NullString
	var catID, catName, catType, catIcon, catColor sql.NullString

	if err := rows.Scan(&e.ID, &e.Amount, &date, &e.Reason, &e.IsRecurring, &e.IsShared, &templateID, &createdAt,
		&catID, &catName, &catType, &catIcon, &catColor); err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	var err error
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if templateID.Valid {
		id := templateID.String
		e.TemplateID = &id
	}
	if catID.Valid {
		e.Category = &ledger.Category{
			ID:    catID.String,
			Name:  catName.String,
			Type:  ledger.CategoryType(catType.String),
			Icon:  catIcon.String,
			Color: catColor.String,
		}
	}
	return e, nil
}

func (s *Store) loadParticipants(ctx context.Context, byID map[string]*ledger.Expense, where string, args []any) error {
	rows, err := s.db.QueryContext(ctx, selectParticipants+where+" ORDER BY p.rowid", args...)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &ledger.SharedParticipant{}
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.Name, &p.AmountOwed, &p.AmountPaid); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}

// CreateExpense inserts the expense and its participants in one transaction.
func (s *Store) CreateExpense(ctx context.Context, e *ledger.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var categoryID any
	if e.Category != nil {
		categoryID = e.Category.ID
	}
	var templateID any
	if e.TemplateID != nil {
		templateID = *e.TemplateID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, date, category_id, reason, is_recurring, is_shared, template_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, formatTime(e.Date), categoryID, e.Reason, e.IsRecurring, e.IsShared, templateID, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, p := range e.Participants {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.ExpenseID = e.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shared_participants (id, expense_id, name, amount_owed, amount_paid)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.ExpenseID, p.Name, p.AmountOwed, p.AmountPaid,
		); err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}

	slog.DebugContext(ctx, "stored expense", "id", e.ID, "amount", e.Amount.String(), "participants", len(e.Participants))
	return nil
}

// DeleteExpense removes an expense. Participants go with it through the foreign key cascade.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// ApplyPayment stores the settlement and the new AmountPaid of each touched participant
// atomically.
func (s *Store) ApplyPayment(ctx context.Context, settlement *ledger.Settlement, touched []*ledger.SharedParticipant) error {
	if settlement.ID == "" {
		settlement.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settlements (id, amount, date, participant_name) VALUES (?, ?, ?, ?)`,
		settlement.ID, settlement.Amount, formatTime(settlement.Date), settlement.ParticipantName,
	); err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, p := range touched {
		res, err := tx.ExecContext(ctx, "UPDATE shared_participants SET amount_paid = ? WHERE id = ?", p.AmountPaid, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
		} else if n == 0 {
			return fmt.Errorf("participant %s: %w", p.ID, store.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

// ListSettlements returns settlements newest first, optionally for a single participant.
func (s *Store) ListSettlements(ctx context.Context, name string) ([]*ledger.Settlement, error) {
	query := "SELECT id, amount, date, participant_name FROM settlements"
	var args []any
	if name != "" {
		query += " WHERE participant_name = ?"
		args = append(args, name)
	}
	query += " ORDER BY date DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*ledger.Settlement
	for rows.Next() {
		st := &ledger.Settlement{Amount: decimal.Zero}
		var date string
		if err := rows.Scan(&st.ID, &st.Amount, &date, &st.ParticipantName); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if st.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
