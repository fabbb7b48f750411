package tui

import (
	"fmt"
	"strings"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/projection"
	"github.com/holinflow/hflow/internal/tui/components"
	"github.com/holinflow/hflow/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a App) updateProjection(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "left", "h", "-":
		a.ctrl.AdjustYears(-1)
	case "right", "l", "+", "=":
		a.ctrl.AdjustYears(1)
	case "home":
		a.ctrl.SetYears(projection.MinYears)
	case "end":
		a.ctrl.SetYears(projection.MaxYears)
	case "b", "esc":
		_ = a.ctrl.BackToResult()
		a.clampResultScroll()
	case "r":
		return a.reset()
	}
	return a, nil
}

// chartLabels labels the columns picked by projection.TickYears.
func chartLabels(years []int, n int) []string {
	labels := make([]string, n)
	for _, y := range years {
		if y >= 0 && y < n {
			labels[y] = fmt.Sprintf("%d년", y)
		}
	}
	return labels
}

func (a App) renderProjection(cw, h int) string {
	plan := a.ctrl.Plan()
	if plan == nil {
		return ""
	}
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true)

	years := a.ctrl.Years()
	series := projection.FromReport(plan.Report, years)

	var b strings.Builder
	b.WriteString(titleStyle.Render("자산 성장 예측"))
	b.WriteString("\n")
	b.WriteString(subStyle.Render("현재 자산과 예상 수익률을 기준으로 연도별 자산 변화를 보여줍니다."))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("예측 기간  "))
	b.WriteString(components.HorizonSlider(years, projection.MinYears, projection.MaxYears, min(cw-12, 70)))
	b.WriteString("\n\n")

	summary := components.MetricCardRow([]components.Metric{
		{Label: cli.LabelAnnualReturn, Value: cli.FormatPct2(plan.Report.WeightedAnnualReturn)},
		{Label: cli.LabelCurrentAssets, Value: cli.FormatWan(plan.Report.CurrentAssets)},
		{Label: fmt.Sprintf("%d%s", years, cli.LabelProjectedAfterYears), Value: cli.FormatWan(projection.FinalValue(series))},
	}, cw)

	used := strings.Count(b.String(), "\n") + lipgloss.Height(summary) + 1
	chartH := max(h-used-4, 4)
	innerW := components.CardInnerWidth(cw)

	chart := components.BarChart(
		projection.Values(series),
		chartLabels(projection.TickYears(series), len(series)),
		t.Accent, innerW, chartH,
	)
	b.WriteString(components.ContentCard("예상 자산 (만원)", chart, cw))
	b.WriteString("\n")
	b.WriteString(summary)

	return b.String()
}
