package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

// GetSettings returns the settings record, or store.ErrNotFound before the first save.
func (s *Store) GetSettings(ctx context.Context) (*ledger.UserSettings, error) {
	settings := &ledger.UserSettings{}
	var checkpoint sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT expense_limit, saving_buffer, last_buffer_update FROM user_settings WHERE id = 1",
	).Scan(&settings.ExpenseLimit, &settings.SavingBuffer, &checkpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user settings: %w", store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if checkpoint.Valid {
		t, err := parseTime(checkpoint.String)
		if err != nil {
			return nil, err
		}
		settings.LastBufferUpdate = &t
	}
	return settings, nil
}

// SaveSettings creates or replaces the settings record.
func (s *Store) SaveSettings(ctx context.Context, settings ledger.UserSettings) error {
	var checkpoint any
	if settings.LastBufferUpdate != nil {
		checkpoint = formatTime(*settings.LastBufferUpdate)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (id, expense_limit, saving_buffer, last_buffer_update)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   expense_limit = excluded.expense_limit,
		   saving_buffer = excluded.saving_buffer,
		   last_buffer_update = excluded.last_buffer_update`,
		settings.ExpenseLimit, settings.SavingBuffer, checkpoint,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
