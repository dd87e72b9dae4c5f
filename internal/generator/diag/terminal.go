package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	locColor     = color.New(color.FgCyan)
	hintColor    = color.New(color.FgGreen)
)

func severityColor(s Severity) *color.Color {
	switch s {
	case Warning:
		return warningColor
	case Info:
		return infoColor
	default:
		return errorColor
	}
}

// FormatForTerminal renders one diagnostic with ANSI colors.
func (d Diagnostic) FormatForTerminal() string {
	head := severityColor(d.Severity).Sprintf("%s[%s]", d.Severity, d.Code)
	out := fmt.Sprintf("%s: %s\n  %s %s\n", head, d.Message, locColor.Sprint("-->"), d.Location)
	if d.Suggestion != "" {
		out += fmt.Sprintf("  %s %s\n", hintColor.Sprint("hint:"), d.Suggestion)
	}
	return out
}

// Print writes every diagnostic to w in terminal form, followed by a summary
// line when anything was reported.
func Print(w io.Writer, ds []Diagnostic) {
	if len(ds) == 0 {
		return
	}

	errs, warns := 0, 0
	for _, d := range ds {
		fmt.Fprint(w, d.FormatForTerminal())
		switch d.Severity {
		case Warning:
			warns++
		case Error:
			errs++
		}
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
