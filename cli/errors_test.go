package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

func TestCommandError(t *testing.T) {
	t.Run("implements error interface", func(t *testing.T) {
		err := NewCommandError(1)
		assert.Error(t, err)
	})

	t.Run("returns exit code", func(t *testing.T) {
		err := NewCommandError(42)
		assert.Equal(t, err.ExitCode(), 42)
	})
}

func TestReportError(t *testing.T) {
	t.Run("nil is success", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Equal(t, 0, ReportError(&buf, nil))
		assert.Equal(t, "", buf.String())
	})

	t.Run("command errors are silent", func(t *testing.T) {
		var buf bytes.Buffer
		err := fmt.Errorf("pay: %w", NewCommandError(3))
		assert.Equal(t, 3, ReportError(&buf, err))
		assert.Equal(t, "", buf.String())
	})

	t.Run("other errors are printed", func(t *testing.T) {
		var buf bytes.Buffer
		err := &ledger.InvalidAmountError{Field: "payment amount", Amount: decimal.NewFromInt(-5)}
		assert.Equal(t, 1, ReportError(&buf, err))
		assert.Contains(t, buf.String(), "invalid payment amount -5")
	})
}

func TestRenderError(t *testing.T) {
	t.Run("ValidationErrors", func(t *testing.T) {
		e := ledger.NewExpense(decimal.Zero, time.Time{})
		e.Share("", decimal.NewFromInt(-1))

		err := e.Validate()
		var verr *ledger.ValidationErrors
		assert.True(t, errors.As(err, &verr))

		out := RenderError(err)
		assert.Contains(t, out, fmt.Sprintf("%d problems found", len(verr.Errors)))
		assert.Contains(t, out, "amount")
		assert.Contains(t, out, "participant.name")
		assert.Equal(t, len(verr.Errors)+1, strings.Count(out, "\n"))
	})

	t.Run("NotFound", func(t *testing.T) {
		err := fmt.Errorf("template abc: %w", store.ErrNotFound)
		out := RenderError(err)
		assert.Contains(t, out, "template abc does not exist")
		assert.NotContains(t, out, "not found")
	})

	t.Run("Plain", func(t *testing.T) {
		out := RenderError(errors.New("boom"))
		assert.Contains(t, out, "boom")
	})
}
