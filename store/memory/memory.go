// Package memory provides an in-memory store.Store. Records are copied on the way in
// and out, so callers observe the same isolation as with the SQLite store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a mutex.
type Store struct {
	mu          sync.RWMutex
	expenses    map[string]*ledger.Expense
	settlements []*ledger.Settlement
	settings    *ledger.UserSettings
	categories  map[string]*ledger.Category
	templates   map[string]*ledger.RecurringTemplate
}

// New returns an empty store.
func New() *Store {
	return &Store{
		expenses:   make(map[string]*ledger.Expense),
		categories: make(map[string]*ledger.Category),
		templates:  make(map[string]*ledger.RecurringTemplate),
	}
}

func (s *Store) ListExpenses(_ context.Context, filter store.ExpenseFilter) ([]*ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ledger.Expense
	for _, e := range s.expenses {
		if filter.Match(e) {
			out = append(out, s.cloneExpense(e))
		}
	}
	slices.SortFunc(out, func(a, b *ledger.Expense) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (*ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	return s.cloneExpense(e), nil
}

func (s *Store) CreateExpense(_ context.Context, e *ledger.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := s.expenses[e.ID]; ok {
		return fmt.Errorf("expense %s already exists", e.ID)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	for _, p := range e.Participants {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.ExpenseID = e.ID
	}
	s.expenses[e.ID] = s.cloneExpense(e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ApplyPayment(_ context.Context, settlement *ledger.Settlement, touched []*ledger.SharedParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Resolve every participant before writing anything.
	targets := make([]*ledger.SharedParticipant, len(touched))
	for i, p := range touched {
		target := s.findParticipant(p)
		if target == nil {
			return fmt.Errorf("participant %s: %w", p.ID, store.ErrNotFound)
		}
		targets[i] = target
	}

	if settlement.ID == "" {
		settlement.ID = uuid.NewString()
	}
	stored := *settlement
	s.settlements = append(s.settlements, &stored)
	for i, p := range touched {
		targets[i].AmountPaid = p.AmountPaid
	}
	return nil
}

func (s *Store) findParticipant(p *ledger.SharedParticipant) *ledger.SharedParticipant {
	e, ok := s.expenses[p.ExpenseID]
	if !ok {
		return nil
	}
	for _, candidate := range e.Participants {
		if candidate.ID == p.ID {
			return candidate
		}
	}
	return nil
}

func (s *Store) ListSettlements(_ context.Context, name string) ([]*ledger.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ledger.Settlement
	for _, st := range s.settlements {
		if name != "" && st.ParticipantName != name {
			continue
		}
		c := *st
		out = append(out, &c)
	}
	slices.SortStableFunc(out, func(a, b *ledger.Settlement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetSettings(_ context.Context) (*ledger.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, fmt.Errorf("user settings: %w", store.ErrNotFound)
	}
	c := cloneSettings(*s.settings)
	return &c, nil
}

func (s *Store) SaveSettings(_ context.Context, settings ledger.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cloneSettings(settings)
	s.settings = &c
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cc := *c
		out = append(out, &cc)
	}
	slices.SortFunc(out, func(a, b *ledger.Category) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, store.ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

func (s *Store) FindCategory(_ context.Context, name string) (*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			cc := *c
			return &cc, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", name, store.ErrNotFound)
}

func (s *Store) CreateCategory(_ context.Context, c *ledger.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return fmt.Errorf("category %s already exists", c.Name)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cc := *c
	s.categories[c.ID] = &cc
	return nil
}

func (s *Store) ListTemplates(_ context.Context) ([]*ledger.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ledger.RecurringTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, s.cloneTemplate(t))
	}
	slices.SortFunc(out, func(a, b *ledger.RecurringTemplate) int {
		if c := strings.Compare(a.Reason, b.Reason); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*ledger.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	return s.cloneTemplate(t), nil
}

func (s *Store) CreateTemplate(_ context.Context, t *ledger.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.templates[t.ID] = s.cloneTemplate(t)
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	delete(s.templates, id)
	for _, e := range s.expenses {
		if e.TemplateID != nil && *e.TemplateID == id {
			e.TemplateID = nil
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

// category resolves c against the stored categories so reads see current values.
func (s *Store) category(c *ledger.Category) *ledger.Category {
	if c == nil {
		return nil
	}
	if stored, ok := s.categories[c.ID]; ok {
		cc := *stored
		return &cc
	}
	cc := *c
	return &cc
}

func (s *Store) cloneExpense(e *ledger.Expense) *ledger.Expense {
	c := *e
	c.Category = s.category(e.Category)
	if e.TemplateID != nil {
		id := *e.TemplateID
		c.TemplateID = &id
	}
	c.Participants = make([]*ledger.SharedParticipant, len(e.Participants))
	for i, p := range e.Participants {
		pc := *p
		c.Participants[i] = &pc
	}
	return &c
}

func (s *Store) cloneTemplate(t *ledger.RecurringTemplate) *ledger.RecurringTemplate {
	c := *t
	c.Category = s.category(t.Category)
	return &c
}

func cloneSettings(settings ledger.UserSettings) ledger.UserSettings {
	if settings.LastBufferUpdate != nil {
		t := *settings.LastBufferUpdate
		settings.LastBufferUpdate = &t
	}
	return settings
}
