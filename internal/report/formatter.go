package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// NewFormatter selects a formatter by name. Text output is colored only
// when w is a terminal.
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewTextFormatter(IsTerminal(w)), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, derrors.ConfigError(fmt.Sprintf("unknown output format %q (valid: text, json)", format)).Build()
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type palette struct {
	enabled bool
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	source  lipgloss.Style
}

func newPalette(enabled bool) palette {
	return palette{
		enabled: enabled,
		title:   lipgloss.NewStyle().Bold(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		source:  lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	}
}

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.enabled {
		return text
	}
	return s.Render(text)
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	p palette
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	return &TextFormatter{p: newPalette(useColor)}
}

// Format outputs the report in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, r *Report) error {
	var b strings.Builder
	rule := f.p.render(f.p.muted, strings.Repeat("━", 60))

	fmt.Fprintf(&b, "%s\n%s\n", f.p.render(f.p.title, "notebinder "+r.Command), rule)

	if r.Success {
		for _, s := range r.Sections {
			indent := strings.Repeat("  ", s.Depth-1)
			fmt.Fprintf(&b, "%s%s %s\n", indent, s.Title, f.p.render(f.p.muted, fmt.Sprintf("(%d)", s.Items)))
		}
		if len(r.Sections) > 0 {
			b.WriteString(rule + "\n")
		}
		b.WriteString("Results:\n")
		fmt.Fprintf(&b, "  %d entr%s\n", r.Entries, plural(r.Entries, "y", "ies"))
		if r.Output != "" {
			fmt.Fprintf(&b, "  wrote %s (%d bytes)\n", r.Output, r.Bytes)
		}
		if r.Fingerprint != "" {
			fmt.Fprintf(&b, "  fingerprint %s\n", r.Fingerprint)
		}
		fmt.Fprintf(&b, "  %.1fms\n\n", r.DurationMS)
		b.WriteString(f.p.render(f.p.success, "✨ "+successMessage(r.Command)) + "\n")
	} else {
		header := fmt.Sprintf("✗ %d problem%s", len(r.Problems), plural(len(r.Problems), "", "s"))
		if r.Stage != "" {
			header += " in " + r.Stage + " stage"
		}
		if r.Category != "" {
			header += " [" + r.Category + "]"
		}
		b.WriteString(f.p.render(f.p.failure, header) + "\n")
		for _, p := range r.Problems {
			b.WriteString("  ")
			if p.Source != "" {
				b.WriteString(f.p.render(f.p.source, p.Source) + ": ")
			}
			if p.Field != "" {
				fmt.Fprintf(&b, "%s: ", p.Field)
			}
			b.WriteString(p.Message)
			if p.Constraint != "" {
				b.WriteString(" " + f.p.render(f.p.muted, "("+p.Constraint+")"))
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func successMessage(command string) string {
	if command == "validate" {
		return "All entries are valid."
	}
	return "Document rendered."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// JSONFormatter formats reports as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format outputs the report as JSON.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
