package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

const selectCategories = "SELECT id, name, type, icon, color FROM categories"

func scanCategory(row interface{ Scan(...any) error }) (*ledger.Category, error) {
	c := &ledger.Category{}
	var typ string
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color); err != nil {
		return nil, err
	}
	c.Type = ledger.CategoryType(typ)
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*ledger.Category, error) {
	rows, err := s.db.QueryContext(ctx, selectCategories+" ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*ledger.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*ledger.Category, error) {
	return s.getCategory(ctx, "id = ?", id)
}

// FindCategory retrieves a category by name, ignoring case.
func (s *Store) FindCategory(ctx context.Context, name string) (*ledger.Category, error) {
	return s.getCategory(ctx, "name = ? COLLATE NOCASE", name)
}

func (s *Store) getCategory(ctx context.Context, cond string, arg string) (*ledger.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, selectCategories+" WHERE "+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", arg, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// CreateCategory persists a new category. Names are unique regardless of case.
func (s *Store) CreateCategory(ctx context.Context, c *ledger.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, string(c.Type), c.Icon, c.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", c.Name, err)
	}
	return nil
}

const selectTemplates = `
SELECT t.id, t.amount, t.reason, c.id, c.name, c.type, c.icon, c.color
FROM recurring_templates t
LEFT JOIN categories c ON c.id = t.category_id`

func scanTemplate(row interface{ Scan(...any) error }) (*ledger.RecurringTemplate, error) {
	t := &ledger.RecurringTemplate{}
	var catID, catName, catType, catIcon, catColor sql.NullString
	if err := row.Scan(&t.ID, &t.Amount, &t.Reason, &catID, &catName, &catType, &catIcon, &catColor); err != nil {
		return nil, err
	}
	if catID.Valid {
		t.Category = &ledger.Category{
			ID:    catID.String,
			Name:  catName.String,
			Type:  ledger.CategoryType(catType.String),
			Icon:  catIcon.String,
			Color: catColor.String,
		}
	}
	return t, nil
}

// ListTemplates returns all recurring templates ordered by reason.
func (s *Store) ListTemplates(ctx context.Context) ([]*ledger.RecurringTemplate, error) {
	rows, err := s.db.QueryContext(ctx, selectTemplates+" ORDER BY t.reason, t.id")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*ledger.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// GetTemplate retrieves a recurring template by ID.
func (s *Store) GetTemplate(ctx context.Context, id string) (*ledger.RecurringTemplate, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, selectTemplates+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// CreateTemplate persists a new recurring template.
func (s *Store) CreateTemplate(ctx context.Context, t *ledger.RecurringTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var categoryID any
	if t.Category != nil {
		categoryID = t.Category.ID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO recurring_templates (id, amount, category_id, reason) VALUES (?, ?, ?, ?)",
		t.ID, t.Amount, categoryID, t.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template. Expenses it spawned keep existing and lose the link.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recurring_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	return nil
}
