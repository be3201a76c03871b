package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kharchamitra/kharcha/ledger"
	"github.com/kharchamitra/kharcha/store"
)

var errFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ReportError prints err to w and returns the exit code for it. A CommandError has
// already been reported by its command and only contributes the code.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}

	_, _ = fmt.Fprint(w, RenderError(err))
	return 1
}

// RenderError formats err for the terminal. Validation failures are listed one field
// per line.
func RenderError(err error) string {
	var buf strings.Builder

	var verr *ledger.ValidationErrors
	if errors.As(err, &verr) && len(verr.Errors) > 1 {
		fmt.Fprintf(&buf, "%s %s\n", errorStyle.Render(errorSymbol),
			errorStyle.Render(fmt.Sprintf("%d problems found", len(verr.Errors))))
		for _, e := range verr.Errors {
			buf.WriteString("   ")
			buf.WriteString(renderFieldError(e))
			buf.WriteByte('\n')
		}
		return buf.String()
	}

	message := err.Error()
	if errors.Is(err, store.ErrNotFound) {
		message = strings.TrimSuffix(message, ": "+store.ErrNotFound.Error()) + " does not exist"
	}
	fmt.Fprintf(&buf, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
	return buf.String()
}

func renderFieldError(err error) string {
	var ferr *ledger.FieldError
	if errors.As(err, &ferr) {
		return errFieldStyle.Render(ferr.Field) + " " + ferr.Reason
	}
	return err.Error()
}
