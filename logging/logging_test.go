package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "", want: slog.LevelInfo},
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: " error ", want: slog.LevelError},
		{name: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("rolled over", "months", 2)
	logger.Warn("payment exceeded debt", "participant", "Sam", "unallocated", "15")

	out := buf.String()
	assert.False(t, strings.Contains(out, "rolled over"))
	assert.Contains(t, out, "payment exceeded debt")
	assert.Contains(t, out, "participant=Sam")
	// A buffer is not a terminal, so no escape codes.
	assert.False(t, strings.Contains(out, "\x1b["))
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := Setup(&buf, "loud")
	assert.Error(t, err)
}
