package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

var severityColors = map[grammar.Severity]string{
	grammar.SeverityError:   "#ef4444",
	grammar.SeverityWarning: "#f59e0b",
	grammar.SeverityInfo:    "#3b82f6",
	grammar.SeverityOK:      "#22c55e",
}

// WriteReport prints a compact, colored summary of an evaluation report.
func WriteReport(w io.Writer, r *grammar.Report) error {
	out := termenv.NewOutput(w)
	ok := out.Color(severityColors[grammar.SeverityOK])
	bad := out.Color(severityColors[grammar.SeverityError])

	if _, err := fmt.Fprintln(w, out.String(fmt.Sprintf("%s (%s)", r.Name, r.TransformID)).Bold()); err != nil {
		return err
	}
	for _, op := range r.Operations {
		var line string
		if op.HasValue {
			line = fmt.Sprintf("  %s %s = %s", out.String("✔").Foreground(ok), op.ID, FormatValue(op.Value))
		} else {
			line = fmt.Sprintf("  %s %s", out.String("✘").Foreground(bad), op.ID)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, p := range op.Problems {
			sev := out.String(p.Severity.String()).Foreground(out.Color(severityColors[p.Severity]))
			if _, err := fmt.Fprintf(w, "      %s %s\n", sev, p.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReportMarkdown renders a report as markdown for glamour.
func ReportMarkdown(r *grammar.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Name)
	fmt.Fprintf(&sb, "`%s`\n\n", r.TransformID)

	sb.WriteString("| Operation | Kind | State | Value |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, op := range r.Operations {
		value := "-"
		if op.HasValue {
			value = FormatValue(op.Value)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", escapeCell(op.ID.String()), escapeCell(op.Name), op.State, escapeCell(value))
	}

	if len(r.Problems) > 0 {
		sb.WriteString("\n## Problems\n\n")
		for _, p := range r.Problems {
			sev := p.Severity.String()
			if p.IsError() {
				sev = "**" + sev + "**"
			}
			fmt.Fprintf(&sb, "- %s `%s` %s\n", sev, p.SourceID, p.Message)
		}
	}
	return sb.String()
}

// FormatValue renders an operation value for display.
func FormatValue(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprint(v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
