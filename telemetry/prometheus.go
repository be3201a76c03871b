package telemetry

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kharchamitra/kharcha/output"
)

// PrometheusCollector observes every span, nested or not, in a histogram labelled by
// span name. It has nothing to report in text form.
type PrometheusCollector struct {
	durations *prometheus.HistogramVec
}

// NewPrometheusCollector registers the operation duration histogram with reg.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kharcha",
		Name:      "operation_duration_seconds",
		Help:      "Duration of tracker operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	if err := reg.Register(durations); err != nil {
		return nil, err
	}
	return &PrometheusCollector{durations: durations}, nil
}

func (c *PrometheusCollector) Start(name string) Timer {
	return &promTimer{collector: c, name: name, start: time.Now()}
}

func (c *PrometheusCollector) Report(io.Writer, *output.Styles) {}

type promTimer struct {
	collector *PrometheusCollector
	name      string
	start     time.Time
	ended     bool
}

func (t *promTimer) End() {
	if t.ended {
		return
	}
	t.ended = true
	t.collector.durations.WithLabelValues(t.name).Observe(time.Since(t.start).Seconds())
}

func (t *promTimer) Child(name string) Timer {
	return t.collector.Start(name)
}
