package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// planValues backs the plan form. huh edits strings, so amounts are parsed on
// completion.
type planValues struct {
	Goal   string
	Assets string
	Risk   model.RiskLevel
}

func planValuesFrom(req model.PlanRequest) *planValues {
	risk := req.RiskLevel
	if !risk.Valid() {
		risk = model.RiskNeutral
	}
	return &planValues{
		Goal:   cli.FormatPlain(req.MonthlyGoal),
		Assets: cli.FormatPlain(req.CurrentAssets),
		Risk:   risk,
	}
}

// request converts the form values into a PlanRequest. The form validators
// have already run; errors here only happen for programmatic input.
func (v planValues) request() (model.PlanRequest, error) {
	goal, err := parseAmount(v.Goal)
	if err != nil {
		return model.PlanRequest{}, fmt.Errorf("monthly goal: %w", err)
	}
	assets, err := parseAmount(v.Assets)
	if err != nil {
		return model.PlanRequest{}, fmt.Errorf("current assets: %w", err)
	}
	return model.PlanRequest{MonthlyGoal: goal, CurrentAssets: assets, RiskLevel: v.Risk}, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New("값을 입력하세요")
	}
	return strconv.ParseFloat(s, 64)
}

func minAmount(limit float64) func(string) error {
	return func(s string) error {
		v, err := parseAmount(s)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("숫자를 입력하세요")
		}
		if v < limit {
			return fmt.Errorf("%s 이상이어야 합니다", cli.FormatPlain(limit))
		}
		return nil
	}
}

func newPlanForm(vals *planValues) *huh.Form {
	riskOpts := make([]huh.Option[model.RiskLevel], 0, 3)
	for _, r := range model.RiskLevels() {
		riskOpts = append(riskOpts, huh.NewOption(string(r), r))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("월수입 목표 (만원)").
				Placeholder("1000").
				Value(&vals.Goal).
				Validate(minAmount(model.MinMonthlyGoal)),
			huh.NewInput().
				Title("현재 자산 (만원)").
				Placeholder("5000").
				Value(&vals.Assets).
				Validate(minAmount(0)),
			huh.NewSelect[model.RiskLevel]().
				Title("투자 성향").
				Options(riskOpts...).
				Value(&vals.Risk),
		),
	).WithShowHelp(true)
}

// resetPlanForm rebuilds the plan form prefilled with req and returns its
// init command.
func (a *App) resetPlanForm(req model.PlanRequest) tea.Cmd {
	a.planVals = planValuesFrom(req)
	a.planForm = newPlanForm(a.planVals)
	if a.width > 0 {
		a.planForm = a.planForm.WithWidth(formWidth(a.contentWidth())).WithHeight(a.contentHeight())
	}
	return a.planForm.Init()
}

func formWidth(cw int) int {
	return min(cw-4, 60)
}

func (a App) renderForm(cw, h int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	errStyle := lipgloss.NewStyle().Foreground(t.Negative).Bold(true)
	spinStyle := lipgloss.NewStyle().Foreground(t.Accent)

	var b strings.Builder
	b.WriteString(titleStyle.Render("목표 입력"))
	b.WriteString("\n")
	b.WriteString(subStyle.Render("월수입 목표와 현재 자산, 투자 성향을 입력하면 자산 배분을 설계합니다."))
	b.WriteString("\n\n")

	if a.ctrl.Loading() {
		b.WriteString(spinStyle.Render(a.spinner.View()))
		b.WriteString(subStyle.Render(" 계산 중..."))
		b.WriteString("\n\n")
		b.WriteString(subStyle.Render("esc 취소"))
	} else if a.planForm != nil {
		b.WriteString(a.planForm.View())
	}

	if msg := a.ctrl.Error(); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(errStyle.Render("⚠ " + msg))
	}

	body := b.String()
	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Width(formWidth(cw)).Render(body))
}
