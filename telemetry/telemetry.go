// Package telemetry provides hierarchical timing collection for tracker operations.
//
// Collectors travel through context, so instrumented code never needs to know whether
// timing is enabled. The CLI installs a TimingCollector when --telemetry is given and
// prints the tree after the command; the web server installs a PrometheusCollector so
// the same spans feed the /metrics endpoint.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	ctx, span := telemetry.Span(ctx, "Record payment")
//	defer span.End()
//
//	_, load := telemetry.Span(ctx, "Load shared expenses")
//	// ... work ...
//	load.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/kharchamitra/kharcha/output"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const (
	collectorKey contextKey = iota
	timerKey
)

// Collector receives timed operations.
type Collector interface {
	// Start begins timing a top-level operation.
	Start(name string) Timer

	// Report writes the collected data to w. styles may be nil for plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation's timing.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a nested timer under this timer.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithTimer makes timer the parent of spans started from the returned context.
func WithTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, timerKey, timer)
}

// Span starts a timer nested under the timer carried by ctx, or a top-level timer of the
// context's collector. The returned context carries the new timer.
func Span(ctx context.Context, name string) (context.Context, Timer) {
	var timer Timer
	if parent, ok := ctx.Value(timerKey).(Timer); ok {
		timer = parent.Child(name)
	} else {
		timer = FromContext(ctx).Start(name)
	}
	return WithTimer(ctx, timer), timer
}
