package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"surge/internal/trace"
)

// newStreamTracer builds a --trace tracer that renders dup/drop spans
// (spec.md §6's diagnostics channel) to w, styled the same way
// internal/driver and internal/ui color their own diagnostic output: a
// dim/cyan treatment for span text via lipgloss, with fatih/color backing
// the terminal capability detection lipgloss itself doesn't do.
func newStreamTracer(w io.Writer) trace.Tracer {
	return trace.NewStreamTracer(&colorizingWriter{w: w}, trace.LevelDetail, trace.FormatText)
}

var spanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

// colorizingWriter wraps an io.Writer, applying a lipgloss style to every
// write — trace.StreamTracer already formats each event into a complete
// line via trace.FormatEvent, so the only job left here is coloring that
// line before it reaches the terminal.
type colorizingWriter struct {
	w io.Writer
}

func (c *colorizingWriter) Write(p []byte) (int, error) {
	styled := spanStyle.Render(string(p))
	if !color.NoColor {
		if _, err := io.WriteString(c.w, styled); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return c.w.Write(p)
}
