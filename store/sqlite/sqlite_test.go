package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "nested", "kharcha.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTemp(t)
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kharcha.db")

	st, err := New(path)
	assert.NoError(t, err)
	e := ledger.NewExpense(decimal.NewFromInt(42), time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC))
	assert.NoError(t, st.CreateExpense(ctx, e))
	assert.NoError(t, st.Close())

	// Migrations are idempotent on an up-to-date database.
	st, err = New(path)
	assert.NoError(t, err)
	defer st.Close()

	got, err := st.GetExpense(ctx, e.ID)
	assert.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, path, st.Path())
}

func TestStoredTimesSortLexically(t *testing.T) {
	a := formatTime(time.Date(2025, time.March, 1, 10, 0, 5, 0, time.UTC))
	b := formatTime(time.Date(2025, time.March, 1, 10, 0, 5, 500, time.UTC))
	assert.True(t, a < b)

	ist := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2025, time.March, 1, 1, 0, 0, 0, ist)
	parsed, err := parseTime(formatTime(local))
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(local))
}
