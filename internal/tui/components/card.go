// Package components provides reusable TUI widgets for the hflow planner.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one labeled figure in a MetricCardRow.
type Metric struct {
	Label string
	Value string
	Note  string
}

// MetricCard renders a small card with label, value and an optional note.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Note != "" {
		content += "\n" + noteStyle.Render(m.Note)
	}
	return cardStyle.Render(content)
}

// MetricCardRow renders metric cards side by side. Below minCardWidth per
// card the row wraps onto several lines.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	const minCardWidth = 18

	perRow := max(1, min(len(metrics), totalWidth/minCardWidth))
	var rows []string
	for start := 0; start < len(metrics); start += perRow {
		end := min(start+perRow, len(metrics))
		widths := LayoutRow(totalWidth, end-start)
		cards := make([]string, 0, end-start)
		for i, m := range metrics[start:end] {
			cards = append(cards, MetricCard(m, widths[i]))
		}
		rows = append(rows, CardRow(cards))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle.Render(content)
}

// AccentCard is a ContentCard with a thick colored left edge, used for
// allocation categories. selected brightens the remaining border.
func AccentCard(body string, accent lipgloss.Color, selected bool, outerWidth int) string {
	t := theme.Active

	border := t.Border
	if selected {
		border = t.BorderFocus
	}

	edge := lipgloss.Border{
		Top: "─", Bottom: "─", Left: "┃", Right: "│",
		TopLeft: "┏", TopRight: "╮", BottomLeft: "┗", BottomRight: "╯",
	}
	style := lipgloss.NewStyle().
		Border(edge).
		BorderForeground(border).
		BorderLeftForeground(accent).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	return style.Render(body)
}

// CardRow joins pre-rendered card strings horizontally.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
