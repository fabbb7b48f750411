package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/report"
	"github.com/holinflow/hflow/internal/session"
	"github.com/holinflow/hflow/internal/tui/components"
	"github.com/holinflow/hflow/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const itemCardMinWidth = 38

func newCategoryList() components.ExpandableList[model.AssetCategory] {
	return components.NewExpandableList(nil,
		func(c model.AssetCategory) string { return c.Category },
		renderCategoryHeader,
		renderCategoryItems,
	)
}

// enterResult refreshes the result view state for a newly stored plan. A
// category that was open before going back stays open if the new plan still
// has it.
func (a *App) enterResult() {
	plan := a.ctrl.Plan()
	if plan == nil {
		return
	}
	a.categories.SetItems(plan.Assets)
	a.resultScroll = 0
	a.notice = ""
	a.editingEmail = false
	a.emailInput.Blur()
}

func (a App) updateResult(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.categories.Next()
		a.followCursor()
	case "k", "up":
		a.categories.Prev()
		a.followCursor()
	case "enter", " ":
		a.categories.ToggleSelected()
		a.followCursor()
	case "J":
		a.resultScroll++
		a.clampResultScroll()
	case "K":
		a.resultScroll = max(a.resultScroll-1, 0)
	case "ctrl+d":
		a.resultScroll += a.halfPage()
		a.clampResultScroll()
	case "ctrl+u":
		a.resultScroll = max(a.resultScroll-a.halfPage(), 0)
	case "g":
		a.resultScroll = 0
	case "p":
		if a.ctrl.ViewProjection() == nil {
			a.editingEmail = false
		}
	case "b", "esc":
		if a.ctrl.Back() == nil {
			cmd := a.resetPlanForm(a.ctrl.Request())
			return a, cmd
		}
	case "r":
		return a.reset()
	case "d":
		return a.startExport()
	case "e":
		a.editingEmail = true
		a.emailInput.SetValue(a.ctrl.EmailDraft())
		a.emailInput.CursorEnd()
		cmd := a.emailInput.Focus()
		return a, cmd
	case "m":
		return a.startEmail()
	}
	return a, nil
}

// reset discards the plan and returns to a form with the startup defaults.
func (a App) reset() (tea.Model, tea.Cmd) {
	if err := a.ctrl.Reset(); err != nil {
		return a, nil
	}
	a.categories.SetItems(nil)
	a.resultScroll = 0
	a.notice = ""
	a.editingEmail = false
	a.emailInput.Reset()
	a.emailInput.Blur()
	cmd := a.resetPlanForm(a.defaults)
	return a, cmd
}

func (a App) startExport() (tea.Model, tea.Cmd) {
	if a.ctrl.Exporting() {
		return a, nil
	}
	token, err := a.ctrl.BeginExport()
	if err != nil {
		return a, nil
	}
	a.notice = ""
	path := report.ResolvePath(a.reportDir, "")
	a.log.WithField("token", token).Debug("requesting pdf")
	return a, tea.Batch(exportPDFCmd(a.backend, token, a.ctrl.Plan(), path), a.spinner.Tick)
}

func (a App) startEmail() (tea.Model, tea.Cmd) {
	if a.ctrl.EmailSending() {
		return a, nil
	}
	token, addr, err := a.ctrl.BeginEmail()
	if errors.Is(err, planapi.ErrEmailRequired) {
		a.alert = session.EmailRequiredMessage
		return a, nil
	}
	if err != nil {
		return a, nil
	}
	a.log.WithField("token", token).Debug("requesting email dispatch")
	return a, tea.Batch(sendEmailCmd(a.backend, token, addr, a.ctrl.Plan()), a.spinner.Tick)
}

// updateEmailInput handles keys while the email field has focus. enter
// commits the draft, esc leaves it unchanged.
func (a App) updateEmailInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.ctrl.SetEmailDraft(a.emailInput.Value())
		a.editingEmail = false
		a.emailInput.Blur()
		return a, nil
	case "esc":
		a.editingEmail = false
		a.emailInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.emailInput, cmd = a.emailInput.Update(msg)
	return a, cmd
}

// followCursor scrolls the result so the selected category header is in
// view.
func (a *App) followCursor() {
	body, selected := a.renderResult(a.contentWidth())
	h := a.contentHeight()
	if selected < a.resultScroll {
		a.resultScroll = selected
	} else if selected >= a.resultScroll+h-2 {
		a.resultScroll = selected - h + 3
	}
	a.resultScroll = max(0, min(a.resultScroll, maxScroll(body, h)))
}

func (a *App) clampResultScroll() {
	if a.ctrl.View() != session.ViewResult || a.ctrl.Plan() == nil {
		a.resultScroll = 0
		return
	}
	body, _ := a.renderResult(a.contentWidth())
	a.resultScroll = max(0, min(a.resultScroll, maxScroll(body, a.contentHeight())))
}

func maxScroll(body string, h int) int {
	return max(strings.Count(body, "\n")+1-h, 0)
}

// renderResult draws the whole result page and returns it with the line of
// the selected category header.
func (a App) renderResult(cw int) (string, int) {
	plan := a.ctrl.Plan()
	if plan == nil {
		return "", 0
	}
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("설계 결과"))
	b.WriteString("\n")
	b.WriteString(subStyle.Render("목표 달성을 위한 자산 배분과 추가 필요 금액을 확인하세요."))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("📈 설계 요약"))
	b.WriteString("\n")
	b.WriteString(components.MetricCardRow(summaryMetrics(plan), cw))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("📄 상세 리포트 생성"))
	b.WriteString("\n")
	b.WriteString(a.renderReportActions(cw))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("🎯 자산 배분 상세"))
	b.WriteString("\n")
	offset := strings.Count(b.String(), "\n")
	selected := offset
	if a.categories.Len() == 0 {
		b.WriteString(subStyle.Render("배분 항목이 없습니다."))
	} else {
		list, sel := a.categories.Render(cw)
		b.WriteString(list)
		selected += sel
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("💡 투자 조언"))
	b.WriteString("\n")
	for i, advice := range cli.Advice {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(subStyle.Render("  " + advice))
	}

	return b.String(), selected
}

func summaryMetrics(plan *model.PlanResponse) []components.Metric {
	r := plan.Report
	return []components.Metric{
		{Label: cli.LabelMonthlyGoal, Value: cli.FormatWan(plan.MonthlyGoal)},
		{Label: cli.LabelCurrentAssets, Value: cli.FormatWan(r.CurrentAssets)},
		{Label: cli.LabelExpectedIncome, Value: cli.FormatWan1(r.ExpectedMonthlyIncome)},
		{Label: cli.LabelGoalGap, Value: cli.FormatWan1(r.MonthlyGoalGap)},
		{Label: cli.LabelAdditionalAssets, Value: cli.FormatWan1(r.RequiredAdditionalAssets)},
	}
}

func (a App) renderReportActions(cw int) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	fieldStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	okStyle := lipgloss.NewStyle().Foreground(t.Positive).Bold(true)
	spinStyle := lipgloss.NewStyle().Foreground(t.Accent)

	var b strings.Builder
	b.WriteString(descStyle.Render("배당 상세 정보와 투자 의견이 포함된 PDF 리포트를 저장하거나 이메일로 받을 수 있습니다."))
	b.WriteString("\n")

	b.WriteString(keyStyle.Render("[d]"))
	if a.ctrl.Exporting() {
		b.WriteString(spinStyle.Render(" " + a.spinner.View()))
		b.WriteString(descStyle.Render(" PDF 저장 중..."))
	} else {
		b.WriteString(descStyle.Render(" 📥 PDF 다운로드"))
	}
	b.WriteString("   ")

	b.WriteString(keyStyle.Render("[e]"))
	b.WriteString(descStyle.Render(" 이메일 "))
	switch {
	case a.editingEmail:
		b.WriteString(a.emailInput.View())
	case a.ctrl.EmailDraft() != "":
		b.WriteString(fieldStyle.Render(a.ctrl.EmailDraft()))
	default:
		b.WriteString(dimStyle.Render("이메일 주소"))
	}
	b.WriteString("   ")

	b.WriteString(keyStyle.Render("[m]"))
	if a.ctrl.EmailSending() {
		b.WriteString(spinStyle.Render(" " + a.spinner.View()))
		b.WriteString(descStyle.Render(" 전송 중..."))
	} else {
		b.WriteString(descStyle.Render(" ✉️ 이메일 발송"))
	}

	if n := a.ctrl.EmailNotice(); n != "" {
		b.WriteString("\n")
		b.WriteString(okStyle.Render("✓ " + n))
	}
	if a.notice != "" {
		b.WriteString("\n")
		b.WriteString(okStyle.Render("✓ " + a.notice))
	}

	return lipgloss.NewStyle().Width(cw).Render(b.String())
}

func renderCategoryHeader(c model.AssetCategory, st components.ItemState, width int) string {
	t := theme.Active
	accent := cli.CategoryColor(c.Category)
	inner := components.CardInnerWidth(width)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	incomeLabel := lipgloss.NewStyle().Foreground(t.TextDim)
	incomeValue := lipgloss.NewStyle().Foreground(accent).Bold(true)
	iconStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	icon := "▶"
	if st.Expanded {
		icon = "▼"
	}
	income := "-"
	if c.ExpectedIncome != nil {
		income = cli.FormatWan1(*c.ExpectedIncome)
	}

	left := nameStyle.Render(c.Category)
	right := incomeLabel.Render(cli.LabelCategoryIncome+" ") + incomeValue.Render(income) + "  " + iconStyle.Render(icon)
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line1 := left + strings.Repeat(" ", gap) + right

	details := fmt.Sprintf("%s (%s)", cli.FormatWan(c.Amount), cli.FormatPct1(c.AllocationPercent))
	barW := max(inner-lipgloss.Width(details)-2, 0)
	line2 := detailStyle.Render(details)
	if barW >= 8 {
		line2 += "  " + components.ShareBar(c.AllocationPercent, accent, barW)
	}

	return components.AccentCard(line1+"\n"+line2, accent, st.Selected, width)
}

func renderCategoryItems(c model.AssetCategory, width int) string {
	if len(c.Items) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Active.TextDim).Render("  추천 종목이 없습니다.")
	}
	inner := width - 2
	perRow := max(1, min(len(c.Items), inner/itemCardMinWidth))

	var rows []string
	for start := 0; start < len(c.Items); start += perRow {
		end := min(start+perRow, len(c.Items))
		widths := components.LayoutRow(inner, end-start)
		cards := make([]string, 0, end-start)
		for i, it := range c.Items[start:end] {
			cards = append(cards, renderItemCard(it, widths[i]))
		}
		rows = append(rows, components.CardRow(cards))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().PaddingLeft(2).Render(body)
}

// itemRows lists the detail rows of an item. Rows for absent optional
// fields are omitted.
func itemRows(it model.InvestmentItem) [][2]string {
	rows := [][2]string{{cli.LabelAllocation, cli.FormatWan(it.Allocation)}}
	if it.HasExpectedReturn() {
		rows = append(rows, [2]string{cli.LabelExpectedReturn, cli.FormatPlain(*it.ExpectedReturn) + "%"})
	}
	if it.IsDividendBearing() {
		rows = append(rows, [2]string{cli.LabelDividendRate, cli.FormatPlain(*it.DividendRate) + "%"})
		if months := it.ValidPayoutMonths(); len(months) > 0 {
			rows = append(rows, [2]string{cli.LabelPayoutMonths, cli.FormatPayoutMonths(months)})
		}
		if it.ExpectedQuarterlyDividend != nil {
			rows = append(rows, [2]string{cli.LabelQuarterlyDividend, cli.FormatPlain(*it.ExpectedQuarterlyDividend) + cli.Unit})
		}
		annual := "-"
		if it.ExpectedAnnualDividend != nil {
			annual = cli.FormatPlain(*it.ExpectedAnnualDividend) + cli.Unit
		}
		rows = append(rows, [2]string{cli.LabelAnnualDividend, annual})
	}
	return rows
}

func renderItemCard(it model.InvestmentItem, width int) string {
	t := theme.Active
	inner := components.CardInnerWidth(width)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	codeStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(inner)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder
	b.WriteString(nameStyle.Render(it.Name))
	if it.Code != "" {
		b.WriteString(" ")
		b.WriteString(codeStyle.Render(it.Code))
	}
	if it.Description != "" {
		b.WriteString("\n")
		b.WriteString(descStyle.Render(it.Description))
	}
	for _, row := range itemRows(it) {
		label := labelStyle.Render(row[0])
		value := valueStyle.Render(row[1])
		gap := max(inner-lipgloss.Width(label)-lipgloss.Width(value), 1)
		b.WriteString("\n")
		b.WriteString(label + strings.Repeat(" ", gap) + value)
	}
	return components.ContentCard("", b.String(), width)
}
