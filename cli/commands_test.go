package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/kharchamitra/kharcha/config"
	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/tracker"
)

// harness runs commands against one temporary ledger.
type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("KHARCHA_CONFIG", "")
	os.Unsetenv("KHARCHA_CONFIG")
	for _, key := range []string{config.EnvDB, config.EnvLogLevel, config.EnvDefaultLimit, config.EnvCurrency} {
		t.Setenv(key, "")
	}
	return &harness{t: t, db: filepath.Join(dir, "ledger.db")}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()

	var app struct {
		Commands
	}
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&app,
		kong.Name("kharcha"),
		kong.Writers(&stdout, &stderr),
		kong.Bind(&app.Globals),
		kong.Exit(func(int) { h.t.Fatalf("kong exited while parsing %v", args) }),
	)
	assert.NoError(h.t, err)

	kctx, err := parser.Parse(append([]string{"--db", h.db}, args...))
	if err != nil {
		return stdout.String(), stderr.String(), err
	}
	err = kctx.Run()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	stdout, stderr, err := h.run(args...)
	assert.NoError(h.t, err, "stderr: %s", stderr)
	return stdout
}

var idPattern = regexp.MustCompile(`[0-9a-f]{8}`)

func TestStatus(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("status")
	assert.Contains(t, out, "Limit")
	assert.Contains(t, out, "₹2,000.00")
	assert.Contains(t, out, "Saving buffer")

	// status is the default command.
	out = h.mustRun()
	assert.Contains(t, out, "Safe to spend")
}

func TestSharedExpenseAndPayments(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("expense", "add", "600", "--reason", "Dinner", "--share", "Sam=300", "-s", "Alex=100")
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "Sam")

	out = h.mustRun("debts")
	assert.Contains(t, out, "Alex")
	assert.Contains(t, out, "₹300.00")
	assert.Contains(t, out, "₹400.00")

	t.Run("PartialPayment", func(t *testing.T) {
		out := h.mustRun("pay", "Sam", "200")
		assert.Contains(t, out, "Recorded")
		assert.Contains(t, out, "₹200.00")

		out = h.mustRun("debt", "Sam")
		assert.Contains(t, out, "Dinner")
		assert.Contains(t, out, "₹100.00")
	})

	t.Run("NothingOwedNeedsConfirmation", func(t *testing.T) {
		_, stderr, err := h.run("pay", "Kim", "50")
		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 1, cmdErr.ExitCode())
		assert.Contains(t, stderr, "owes you nothing")

		out := h.mustRun("settlements", "Kim")
		assert.Contains(t, out, "No payments recorded")

		h.mustRun("pay", "Kim", "50", "--yes")
		out = h.mustRun("settlements", "Kim")
		assert.Contains(t, out, "Kim")
		assert.Contains(t, out, "₹50.00")
	})

	t.Run("Overpayment", func(t *testing.T) {
		out := h.mustRun("pay", "Sam", "250", "-y")
		assert.Contains(t, out, "₹150.00 exceeded")

		out = h.mustRun("debt", "Sam")
		assert.Contains(t, out, "owes you nothing")
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		_, _, err := h.run("pay", "Alex", "0")
		assert.True(t, errors.Is(err, ledger.ErrInvalidAmount))
	})

	t.Run("Settlements", func(t *testing.T) {
		out := h.mustRun("settlements")
		assert.Equal(t, 4, strings.Count(out, "\n"), "header plus three payments:\n%s", out)
	})
}

func TestLimit(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("limit", "0")
	assert.True(t, errors.Is(err, ledger.ErrInvalidAmount))

	out := h.mustRun("limit", "3,500")
	assert.Contains(t, out, "₹3,500.00")

	out = h.mustRun("status")
	assert.Contains(t, out, "₹3,500.00")
}

func TestCategoriesAndExpenses(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("category", "list")
	assert.Contains(t, out, "No categories")

	h.mustRun("category", "add", "Travel", "--type", "utr")
	out = h.mustRun("category", "list")
	assert.Contains(t, out, "Travel")
	assert.Contains(t, out, "UTR")

	_, _, err := h.run("category", "add", "Food", "--type", "luxury")
	assert.Error(t, err)

	h.mustRun("expense", "add", "120", "-c", "travel", "-r", "Cab")
	out = h.mustRun("expense", "list")
	assert.Contains(t, out, "Cab")
	assert.Contains(t, out, "UTR")
	assert.Contains(t, out, "₹120.00")

	_, _, err = h.run("expense", "add", "10", "-c", "Nope")
	assert.Error(t, err)
	assert.Contains(t, RenderError(err), "does not exist")

	_, _, err = h.run("expense", "add", "10", "--share", "Sam")
	assert.Error(t, err)

	id := idPattern.FindString(out)
	assert.NotZero(t, id)
	out = h.mustRun("expense", "delete", id)
	assert.Contains(t, out, "Deleted")

	out = h.mustRun("expense", "list", "--month", "2001-01")
	assert.Contains(t, out, "No expenses in January 2001")
}

func TestRecurring(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("recurring", "add", "499", "Streaming")
	id := idPattern.FindString(out)
	assert.NotZero(t, id)

	out = h.mustRun("recurring", "list")
	assert.Contains(t, out, "Streaming")
	assert.Contains(t, out, "₹499.00")

	out = h.mustRun("recurring", "spawn", id[:4])
	assert.Contains(t, out, "Streaming")

	_, _, err := h.run("recurring", "spawn", id)
	assert.True(t, errors.Is(err, tracker.ErrAlreadySpawned))

	h.mustRun("recurring", "delete", id)
	out = h.mustRun("recurring", "list")
	assert.Contains(t, out, "No recurring templates")

	out = h.mustRun("expense", "list")
	assert.Contains(t, out, "Streaming")
}

func TestAnalysis(t *testing.T) {
	h := newHarness(t)
	h.mustRun("category", "add", "Food")
	h.mustRun("expense", "add", "250", "-c", "Food", "-s", "Sam=50")

	out := h.mustRun("analysis", "--months", "3")
	assert.Contains(t, out, "Last 3 months")
	assert.Contains(t, out, "Need")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "Shared with others")
	assert.Contains(t, out, "₹250.00")
}

func TestTelemetryReport(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("--telemetry", "debts")
	assert.NoError(t, err)
	assert.Contains(t, stderr, "debts")
	assert.Contains(t, stderr, "Activate")
	assert.Contains(t, stderr, "Debts")
}

func TestParseShares(t *testing.T) {
	shares, err := parseShares([]string{"Sam=300", " Alex = 1,000.50", "a=b=5"})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(shares))
	assert.Equal(t, "Sam", shares[0].Name)
	assert.Equal(t, "Alex", shares[1].Name)
	assert.Equal(t, "1000.5", shares[1].Amount.String())
	assert.Equal(t, "a=b", shares[2].Name)

	_, err = parseShares([]string{"Sam"})
	assert.Error(t, err)
	_, err = parseShares([]string{"Sam=lots"})
	assert.Error(t, err)
}

func TestResolveID(t *testing.T) {
	ids := []string{"abcd1234", "abce5678", "ffff0000"}

	id, err := resolveID("expense", "ff", ids)
	assert.NoError(t, err)
	assert.Equal(t, "ffff0000", id)

	id, err = resolveID("expense", "ABCD", ids)
	assert.NoError(t, err)
	assert.Equal(t, "abcd1234", id)

	_, err = resolveID("expense", "abc", ids)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = resolveID("expense", "00", ids)
	assert.Error(t, err)

	_, err = resolveID("expense", " ", ids)
	assert.Error(t, err)
}
