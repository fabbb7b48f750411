package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/tui/theme"
)

// Steps are the screens of the planner in flow order.
var Steps = []string{"목표 입력", "설계 결과", "수익 예측"}

// RenderSteps renders the step indicator with the active step highlighted
// and the brand on the left.
func RenderSteps(activeIdx int, width int) string {
	t := theme.Active

	brandStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	todoStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	sepStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	parts := make([]string, len(Steps))
	for i, name := range Steps {
		switch {
		case i == activeIdx:
			parts[i] = activeStyle.Render("● " + name)
		case i < activeIdx:
			parts[i] = doneStyle.Render("✓ " + name)
		default:
			parts[i] = todoStyle.Render("○ " + name)
		}
	}

	line := " " + brandStyle.Render("◈ HolinFlow") + "  " + strings.Join(parts, sepStyle.Render(" › "))
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(line)
}
