// Package config loads kharcha settings from a TOML file, a .env file and environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/logging"
	"github.com/kharchamitra/kharcha/output"
)

// Environment variables that override the file.
const (
	EnvDB           = "KHARCHA_DB"
	EnvLogLevel     = "KHARCHA_LOG_LEVEL"
	EnvDefaultLimit = "KHARCHA_DEFAULT_LIMIT"
	EnvCurrency     = "KHARCHA_CURRENCY"
)

// Config holds all kharcha configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Budget  BudgetConfig  `toml:"budget"`
	Log     LogConfig     `toml:"log"`
	Web     WebConfig     `toml:"web"`
}

// StorageConfig selects the ledger database.
type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// BudgetConfig holds budget defaults.
type BudgetConfig struct {
	// DefaultLimit is the monthly limit given to a new installation. Changing it later has
	// no effect on existing settings; use `kharcha limit` for that.
	DefaultLimit decimal.Decimal `toml:"default_limit"`
	Currency     string          `toml:"currency"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `toml:"level"`
}

// WebConfig holds settings of `kharcha serve`.
type WebConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	ReadOnly bool   `toml:"read_only"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   filepath.Join(DataDir(), "kharcha.db"),
		},
		Budget: BudgetConfig{
			DefaultLimit: ledger.DefaultExpenseLimit,
			Currency:     output.DefaultCurrency,
		},
		Log: LogConfig{Level: "warn"},
		Web: WebConfig{Host: "127.0.0.1", Port: 8080},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kharcha")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kharcha")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kharcha")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "kharcha")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, or the default path when empty, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads variables from a .env file in the working directory without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var existing []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		c.Budget.Currency = v
	}
	if v := os.Getenv(EnvDefaultLimit); v != "" {
		limit, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDefaultLimit, v, err)
		}
		c.Budget.DefaultLimit = limit
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path cannot be empty with the sqlite driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("invalid storage.driver %q: must be sqlite or memory", c.Storage.Driver))
	}

	if !c.Budget.DefaultLimit.IsPositive() {
		errs = append(errs, fmt.Errorf("invalid budget.default_limit %s: must be greater than zero", c.Budget.DefaultLimit))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid web.port %d: must be between 1 and 65535", c.Web.Port))
	}

	return errors.Join(errs...)
}

// Addr returns the host:port the web server listens on.
func (c WebConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Save writes cfg to path, or the default path when empty.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
