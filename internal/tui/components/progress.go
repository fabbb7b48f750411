package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/holinflow/hflow/internal/tui/theme"
)

func clamp01(f float64) float64 {
	if f != f || f < 0 { // NaN or negative
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ShareBar renders an allocation share (pct in 0-100) as a solid bar in the
// category's accent color.
func ShareBar(pct float64, color lipgloss.Color, width int) string {
	if width <= 0 {
		return ""
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar.ViewAs(clamp01(pct / 100))
}

// HorizonSlider renders the projection horizon as a range slider:
// "3 ━━━━●──── 30   10년".
func HorizonSlider(years, minYears, maxYears, width int) string {
	t := theme.Active

	minLbl := fmt.Sprintf("%d", minYears)
	maxLbl := fmt.Sprintf("%d", maxYears)
	value := fmt.Sprintf("%d년", years)

	track := width - len(minLbl) - len(maxLbl) - lipgloss.Width(value) - 5
	track = max(track, 10)

	pos := 0
	if maxYears > minYears {
		pos = int(clamp01(float64(years-minYears)/float64(maxYears-minYears)) * float64(track-1))
	}

	fill := lipgloss.NewStyle().Foreground(t.Accent)
	rest := lipgloss.NewStyle().Foreground(t.TextDim)
	knob := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	valStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder
	b.WriteString(label.Render(minLbl + " "))
	b.WriteString(fill.Render(strings.Repeat("━", pos)))
	b.WriteString(knob.Render("●"))
	b.WriteString(rest.Render(strings.Repeat("─", track-1-pos)))
	b.WriteString(label.Render(" " + maxLbl))
	b.WriteString("   ")
	b.WriteString(valStyle.Render(value))
	return b.String()
}
