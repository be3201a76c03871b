package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/config"
	"github.com/kharchamitra/kharcha/logging"
	"github.com/kharchamitra/kharcha/output"
	"github.com/kharchamitra/kharcha/store"
	"github.com/kharchamitra/kharcha/store/memory"
	"github.com/kharchamitra/kharcha/store/sqlite"
	"github.com/kharchamitra/kharcha/telemetry"
	"github.com/kharchamitra/kharcha/tracker"
)

// session is everything a command needs: the loaded config, an activated tracker and
// the output streams.
type session struct {
	ctx     context.Context
	cfg     config.Config
	logger  *slog.Logger
	store   store.Store
	tracker *tracker.Tracker
	stdout  io.Writer
	stderr  io.Writer
	styles  *output.Styles

	collector telemetry.Collector
	root      telemetry.Timer
}

// open loads the configuration, opens the store and activates the tracker, which rolls
// the saving buffer forward before any command output.
func (g *Globals) open(kctx *kong.Context) (*session, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.DB != "" {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.Path = g.DB
	}

	level := cfg.Log.Level
	if g.LogLevel != "" {
		level = g.LogLevel
	}
	logger, err := logging.Setup(kctx.Stderr, level)
	if err != nil {
		return nil, err
	}

	s := &session{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger,
		stdout: kctx.Stdout,
		stderr: kctx.Stderr,
		styles: output.NewStyles(kctx.Stdout),
	}

	if g.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)
		s.root = s.collector.Start(kctx.Command())
		s.ctx = telemetry.WithTimer(s.ctx, s.root)
	}

	_, openTimer := telemetry.Span(s.ctx, "Open store")
	s.store, err = openStore(cfg.Storage)
	openTimer.End()
	if err != nil {
		return nil, err
	}

	s.tracker = tracker.New(s.store,
		tracker.WithLogger(logger),
		tracker.WithDefaultLimit(cfg.Budget.DefaultLimit),
	)

	_, rollover, err := s.tracker.Activate(s.ctx)
	if err != nil {
		_ = s.store.Close()
		return nil, err
	}
	if credited := rollover.Credited(); credited.IsPositive() {
		printInfof(s.stdout, "Saving buffer grew by %s over %d closed month(s)",
			s.styles.Amount(s.money(credited)), len(rollover.Months))
	}

	return s, nil
}

// Close releases the store and prints the telemetry report when enabled.
func (s *session) Close() {
	if s.collector != nil {
		s.root.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close store", "error", err)
	}
}

func (s *session) money(amount decimal.Decimal) string {
	return output.FormatMoney(amount, s.cfg.Budget.Currency)
}

func openStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), nil
	case "", "sqlite":
		st, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger %s: %w", cfg.Path, err)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
