package cli

import (
	"fmt"
	"strings"

	"github.com/kharchamitra/kharcha/store"
)

// resolveID expands prefix to the one ID among ids that starts with it. Lists print
// shortened IDs, so commands accept any unique prefix.
func resolveID(kind, prefix string, ids []string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}

	var matches []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %s: %w", kind, prefix, store.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%s ID %q is ambiguous, it matches %d records", kind, prefix, len(matches))
}

func (s *session) resolveExpenseID(prefix string) (string, error) {
	expenses, err := s.store.ListExpenses(s.ctx, store.ExpenseFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	return resolveID("expense", prefix, ids)
}

func (s *session) resolveTemplateID(prefix string) (string, error) {
	templates, err := s.tracker.Templates(s.ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	return resolveID("template", prefix, ids)
}
