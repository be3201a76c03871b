package telemetry

import (
	"io"

	"github.com/kharchamitra/kharcha/output"
)

// noOpCollector is used when no collector is installed.
type noOpCollector struct{}

func (noOpCollector) Start(string) Timer { return noOpTimer{} }

func (noOpCollector) Report(io.Writer, *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(string) Timer { return noOpTimer{} }
