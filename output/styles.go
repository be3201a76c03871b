// Package output renders money and styled text for the terminal.
package output

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// role is how one kind of text is drawn. color is an ANSI palette index, empty for the
// terminal's default foreground.
type role struct {
	color string
	bold  bool
	faint bool
}

var (
	successRole = role{color: "2", bold: true}
	errorRole   = role{color: "1", bold: true}
	warningRole = role{color: "3", bold: true}
	pathRole    = role{color: "6"}
	personRole  = role{color: "3"}
	amountRole  = role{color: "5"}
	creditRole  = role{color: "2"}
	debitRole   = role{color: "1"}
	keywordRole = role{bold: true}
	dimRole     = role{faint: true}
)

// Styles colours CLI output. Colors are dropped when the writer is not a terminal, so
// the same calls produce plain text in pipes and tests.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles for w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) render(r role, text string) string {
	styled := s.output.String(text)
	if r.color != "" {
		styled = styled.Foreground(s.output.Color(r.color))
	}
	if r.bold {
		styled = styled.Bold()
	}
	if r.faint {
		styled = styled.Faint()
	}
	return styled.String()
}

func (s *Styles) Success(text string) string { return s.render(successRole, text) }
func (s *Styles) Error(text string) string   { return s.render(errorRole, text) }
func (s *Styles) Warning(text string) string { return s.render(warningRole, text) }
func (s *Styles) Path(text string) string    { return s.render(pathRole, text) }
func (s *Styles) Person(text string) string  { return s.render(personRole, text) }
func (s *Styles) Amount(text string) string  { return s.render(amountRole, text) }
func (s *Styles) Keyword(text string) string { return s.render(keywordRole, text) }
func (s *Styles) Dim(text string) string     { return s.render(dimRole, text) }

// Balance formats amount with the currency symbol, red when negative and green otherwise.
func (s *Styles) Balance(amount decimal.Decimal, currency string) string {
	r := creditRole
	if amount.IsNegative() {
		r = debitRole
	}
	return s.render(r, FormatMoney(amount, currency))
}
