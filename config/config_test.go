package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{EnvDB, EnvLogLevel, EnvDefaultLimit, EnvCurrency} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "kharcha", "kharcha.db"), cfg.Storage.Path)
	assert.True(t, cfg.Budget.DefaultLimit.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "₹", cfg.Budget.Currency)
	assert.Equal(t, "127.0.0.1:8080", cfg.Web.Addr())
	assert.Equal(t, filepath.Join(dir, "config", "kharcha", "config.toml"), Path())
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "kharcha.toml")
	err := os.WriteFile(path, []byte(`
[storage]
path = "/tmp/ledger.db"

[budget]
default_limit = 3500.50
currency = "€"

[log]
level = "debug"

[web]
port = 9090
read_only = true
`), 0o600)
	assert.NoError(t, err)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", cfg.Storage.Path)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.True(t, cfg.Budget.DefaultLimit.Equal(decimal.RequireFromString("3500.5")))
	assert.Equal(t, "€", cfg.Budget.Currency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.True(t, cfg.Web.ReadOnly)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "kharcha.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[budget]\ncurrency = \"€\"\n"), 0o600))

	t.Setenv(EnvDB, "/data/other.db")
	t.Setenv(EnvCurrency, "$")
	t.Setenv(EnvDefaultLimit, "1500")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "/data/other.db", cfg.Storage.Path)
	assert.Equal(t, "$", cfg.Budget.Currency)
	assert.True(t, cfg.Budget.DefaultLimit.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "error", cfg.Log.Level)

	t.Setenv(EnvDefaultLimit, "lots")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Storage.Driver = "postgres"
	cfg.Budget.DefaultLimit = decimal.NewFromInt(-1)
	cfg.Log.Level = "chatty"
	cfg.Web.Port = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "budget.default_limit")
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "web.port")

	cfg = DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Budget.DefaultLimit = decimal.RequireFromString("4200.75")
	cfg.Web.Port = 8181
	assert.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	assert.NoError(t, err)
	assert.True(t, loaded.Budget.DefaultLimit.Equal(cfg.Budget.DefaultLimit))
	assert.Equal(t, 8181, loaded.Web.Port)
	assert.Equal(t, cfg.Storage.Path, loaded.Storage.Path)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "test.env")
	assert.NoError(t, os.WriteFile(envFile, []byte("KHARCHA_CURRENCY=£\nKHARCHA_DB=/from/dotenv.db\n"), 0o600))

	// Already-set variables win over the file.
	t.Setenv(EnvDB, "/from/shell.db")
	t.Setenv(EnvCurrency, "")
	os.Unsetenv(EnvCurrency)

	assert.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "£", os.Getenv(EnvCurrency))
	assert.Equal(t, "/from/shell.db", os.Getenv(EnvDB))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestWatch(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[budget]\ncurrency = \"€\"\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(cfg Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, os.WriteFile(path, []byte("[budget]\ncurrency = \"$\"\n"), 0o600))

	select {
	case cfg := <-changes:
		assert.Equal(t, "$", cfg.Budget.Currency)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
