package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"printqueue/internal/queue"
)

var (
	labelColor   = lipgloss.Color("#8BC34A")
	sumColor     = lipgloss.Color("#2196F3")
	warningColor = lipgloss.Color("#FFC107")
)

// StyledRenderer is the text layout with terminal colors.
type StyledRenderer struct {
	Label   lipgloss.Style
	Sum     lipgloss.Style
	Warning lipgloss.Style
}

// NewStyledRenderer returns the default palette.
func NewStyledRenderer() StyledRenderer {
	return StyledRenderer{
		Label:   lipgloss.NewStyle().Foreground(labelColor).Bold(true),
		Sum:     lipgloss.NewStyle().Foreground(sumColor).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(warningColor),
	}
}

// Render implements Renderer.
func (r StyledRenderer) Render(w io.Writer, res *queue.Result) error {
	for _, l := range allLines(res) {
		value := l.value
		label := r.Label.Render(l.label)
		switch {
		case l.sum:
			value = r.Sum.Render(value)
		case l.label == "unresolved" || l.label == "remaining":
			label = r.Warning.Render(l.label)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", label, value); err != nil {
			return err
		}
	}
	return nil
}
