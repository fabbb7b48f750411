package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/tui/theme"
)

// KeyHint is one "[key] action" entry in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// RenderStatusBar renders the bottom status bar: key hints on the left and
// right-aligned info (backend origin, notices) on the right.
func RenderStatusBar(width int, hints []KeyHint, right string) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	rightStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.Key+"]")+descStyle.Render(h.Desc))
	}
	left := " " + strings.Join(parts, "  ")

	if right != "" {
		right = rightStyle.Render(right + " ")
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", padding) + right
	if lipgloss.Width(bar) > width {
		bar = left
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(bar)
}
