// Package tui provides the interactive Bubble Tea planner for hflow.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/holinflow/hflow/internal/config"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/report"
	"github.com/holinflow/hflow/internal/session"
	"github.com/holinflow/hflow/internal/tui/components"
	"github.com/holinflow/hflow/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

// Alert texts shown in the blocking modal.
const (
	AlertPDFFailed   = "PDF 다운로드 중 오류가 발생했습니다."
	AlertEmailFailed = "이메일 전송 중 오류가 발생했습니다. SMTP 설정을 확인하세요."
)

// Backend is the part of the API client the TUI needs.
type Backend interface {
	RequestPlan(ctx context.Context, req model.PlanRequest) (*model.PlanResponse, error)
	RequestPDF(ctx context.Context, plan *model.PlanResponse) ([]byte, error)
	RequestEmailDispatch(ctx context.Context, email string, plan *model.PlanResponse) error
}

// planResultMsg carries the outcome of a plan request back to Update.
type planResultMsg struct {
	token session.Token
	plan  *model.PlanResponse
	err   error
}

// pdfSavedMsg is sent when a PDF download has been written (or failed).
type pdfSavedMsg struct {
	token session.Token
	path  string
	err   error
}

// emailSentMsg is sent when an email dispatch completes.
type emailSentMsg struct {
	token session.Token
	err   error
}

// Options configures NewApp.
type Options struct {
	Backend   Backend
	Defaults  model.PlanRequest
	Years     int
	ReportDir string
	BaseURL   string

	// First-run setup. When NeedSetup is set the wizard is shown before the
	// form and its answers are saved to ConfigPath.
	NeedSetup  bool
	Config     config.Config
	ConfigPath string
	// Reconnect builds a new backend (and its origin) after setup changed
	// the config. Nil keeps the current backend.
	Reconnect func(config.Config) (Backend, string, error)

	Logger *log.Entry
}

// App is the root Bubble Tea model.
type App struct {
	backend   Backend
	ctrl      *session.Controller
	defaults  model.PlanRequest
	reportDir string
	baseURL   string
	log       *log.Entry

	// Form view
	planForm   *huh.Form
	planVals   *planValues
	cancelPlan context.CancelFunc

	// Result view
	categories   components.ExpandableList[model.AssetCategory]
	resultScroll int
	emailInput   textinput.Model
	editingEmail bool
	notice       string

	// Blocking modal, dismissed by any key
	alert string

	// First-run setup (huh form)
	setupForm  *huh.Form
	setupVals  *SetupValues
	needSetup  bool
	cfg        config.Config
	cfgPath    string
	reconnect  func(config.Config) (Backend, string, error)
	setupSaved error

	// UI state
	width    int
	height   int
	showHelp bool
	spinner  spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 140

	// Scroll navigation
	scrollOverhead    = 4 // header + status bar + margins for half-page calc
	minHalfPageScroll = 1 // minimum lines for half-page scroll
	minContentHeight  = 5 // minimum content area height
	wheelStep         = 3
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	ti := textinput.New()
	ti.Placeholder = "이메일 주소"
	ti.CharLimit = 254
	ti.Width = 40

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "tui")
	}

	ctrl := session.New()
	if opts.Years > 0 {
		ctrl.SetYears(opts.Years)
	}

	a := App{
		backend:    opts.Backend,
		ctrl:       ctrl,
		defaults:   opts.Defaults,
		reportDir:  opts.ReportDir,
		baseURL:    opts.BaseURL,
		log:        logger,
		categories: newCategoryList(),
		emailInput: ti,
		needSetup:  opts.NeedSetup,
		cfg:        opts.Config,
		cfgPath:    opts.ConfigPath,
		reconnect:  opts.Reconnect,
		spinner:    sp,
	}
	a.resetPlanForm(opts.Defaults)
	if a.needSetup {
		a.setupVals = SetupValuesFrom(opts.Config)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.needSetup && a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else if a.planForm != nil {
		cmds = append(cmds, a.planForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.planForm != nil {
			a.planForm = a.planForm.WithWidth(formWidth(a.contentWidth())).WithHeight(a.contentHeight())
		}
		a.emailInput.Width = min(40, max(a.contentWidth()-20, 10))
		a.clampResultScroll()
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.alert != "" || a.needSetup || a.ctrl.View() != session.ViewResult {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.resultScroll = max(a.resultScroll-wheelStep, 0)
		case tea.MouseButtonWheelDown:
			a.resultScroll += wheelStep
			a.clampResultScroll()
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			if a.cancelPlan != nil {
				a.cancelPlan()
			}
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if a.alert != "" {
			a.alert = ""
			return a, nil
		}

		if a.editingEmail {
			return a.updateEmailInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch a.ctrl.View() {
		case session.ViewForm:
			return a.updateForm(msg)
		case session.ViewResult:
			return a.updateResult(key)
		case session.ViewProjection:
			return a.updateProjection(key)
		}
		return a, nil

	case planResultMsg:
		if !a.ctrl.CompleteSubmit(msg.token, msg.plan, msg.err) {
			a.log.WithField("token", msg.token).Debug("dropping stale plan response")
			return a, nil
		}
		if a.cancelPlan != nil {
			a.cancelPlan()
			a.cancelPlan = nil
		}
		if msg.err != nil || msg.plan == nil {
			a.log.WithField("token", msg.token).WithError(msg.err).Warn("plan request failed")
			cmd := a.resetPlanForm(a.ctrl.Request())
			return a, cmd
		}
		a.enterResult()
		return a, nil

	case pdfSavedMsg:
		if !a.ctrl.CompleteExport(msg.token) {
			a.log.WithField("token", msg.token).Debug("dropping stale pdf response")
			return a, nil
		}
		if msg.err != nil {
			a.log.WithField("token", msg.token).WithError(msg.err).Warn("pdf export failed")
			a.alert = AlertPDFFailed
			return a, nil
		}
		a.log.WithField("path", msg.path).Info("pdf report saved")
		a.notice = "PDF 저장 완료: " + msg.path
		return a, nil

	case emailSentMsg:
		if !a.ctrl.CompleteEmail(msg.token, msg.err) {
			a.log.WithField("token", msg.token).Debug("dropping stale email response")
			return a, nil
		}
		if msg.err != nil {
			a.log.WithField("token", msg.token).WithError(msg.err).Warn("email dispatch failed")
			a.alert = AlertEmailFailed
		}
		return a, nil

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, group changes) to the active
	// form or input.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editingEmail {
		var cmd tea.Cmd
		a.emailInput, cmd = a.emailInput.Update(msg)
		return a, cmd
	}
	if a.ctrl.View() == session.ViewForm && !a.ctrl.Loading() && a.planForm != nil {
		return a.forwardPlanForm(msg)
	}
	return a, nil
}

func (a App) busy() bool {
	return a.ctrl.Loading() || a.ctrl.Exporting() || a.ctrl.EmailSending()
}

// ─── Form view ──────────────────────────────────────────────────

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.ctrl.Loading() {
		if msg.String() == "esc" && a.ctrl.CancelSubmit() == nil {
			if a.cancelPlan != nil {
				a.cancelPlan()
				a.cancelPlan = nil
			}
			a.log.Debug("plan request cancelled")
			cmd := a.resetPlanForm(a.ctrl.Request())
			return a, cmd
		}
		return a, nil
	}
	if a.planForm == nil {
		cmd := a.resetPlanForm(a.defaults)
		return a, cmd
	}
	return a.forwardPlanForm(msg)
}

func (a App) forwardPlanForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.planForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.planForm = f
	}

	switch a.planForm.State {
	case huh.StateCompleted:
		req, err := a.planVals.request()
		if err != nil {
			formCmd := a.resetPlanForm(a.ctrl.Request())
			return a, formCmd
		}
		var submit tea.Cmd
		a, submit = a.startSubmit(req)
		if submit == nil {
			formCmd := a.resetPlanForm(req)
			return a, formCmd
		}
		return a, tea.Batch(submit, a.spinner.Tick)
	case huh.StateAborted:
		formCmd := a.resetPlanForm(a.defaults)
		return a, formCmd
	}
	return a, cmd
}

// startSubmit begins a plan request for req and returns the network command.
// A nil command means the request was rejected; the controller holds the
// validation message.
func (a App) startSubmit(req model.PlanRequest) (App, tea.Cmd) {
	token, err := a.ctrl.BeginSubmit(req)
	if err != nil {
		a.log.WithError(err).Debug("plan request rejected")
		return a, nil
	}
	if a.cancelPlan != nil {
		a.cancelPlan()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelPlan = cancel
	a.log.WithFields(log.Fields{"token": token, "risk": req.RiskLevel}).Debug("requesting plan")
	return a, requestPlanCmd(ctx, a.backend, token, req)
}

// ─── Setup ──────────────────────────────────────────────────────

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		formCmd := a.resetPlanForm(a.defaults)
		return a, formCmd
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		formCmd := a.resetPlanForm(a.defaults)
		return a, formCmd
	}
	return a, cmd
}

// saveSetupConfig applies and persists the wizard answers. Failures are
// logged and shown above the form; the session keeps the old settings.
func (a *App) saveSetupConfig() {
	cfg, err := a.setupVals.Apply(a.cfg)
	if err == nil {
		err = config.Save(cfg, a.cfgPath)
	}
	a.setupSaved = err
	if err != nil {
		a.log.WithError(err).Warn("saving setup config")
		return
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.defaults.RiskLevel = cfg.DefaultRiskLevel()

	if a.reconnect != nil {
		b, baseURL, rerr := a.reconnect(cfg)
		if rerr != nil {
			a.setupSaved = rerr
			a.log.WithError(rerr).Warn("reconnecting after setup")
			return
		}
		a.backend = b
		a.baseURL = baseURL
	}
}

// ─── Commands ───────────────────────────────────────────────────

func requestPlanCmd(ctx context.Context, b Backend, token session.Token, req model.PlanRequest) tea.Cmd {
	return func() tea.Msg {
		plan, err := b.RequestPlan(ctx, req)
		return planResultMsg{token: token, plan: plan, err: err}
	}
}

func exportPDFCmd(b Backend, token session.Token, plan *model.PlanResponse, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := b.RequestPDF(context.Background(), plan)
		if err != nil {
			return pdfSavedMsg{token: token, err: err}
		}
		if err := report.SaveFile(path, data); err != nil {
			return pdfSavedMsg{token: token, err: err}
		}
		return pdfSavedMsg{token: token, path: path}
	}
}

func sendEmailCmd(b Backend, token session.Token, addr string, plan *model.PlanResponse) tea.Cmd {
	return func() tea.Msg {
		err := b.RequestEmailDispatch(context.Background(), addr, plan)
		return emailSentMsg{token: token, err: err}
	}
}

// ─── Layout ─────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentHeight is the height left between the step header and status bar.
func (a App) contentHeight() int {
	return max(a.height-2, minContentHeight)
}

func (a App) halfPage() int {
	return max((a.height-scrollOverhead)/2, minHalfPageScroll)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	// First-run setup wizard
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.alert != "" {
		return a.viewAlert()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  hflow needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewAlert() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Negative).
		Background(t.Surface).
		Padding(1, 3)

	msgStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	card := cardStyle.Render(msgStyle.Render("⚠ "+a.alert) + "\n\n" + dimStyle.Render("아무 키나 누르면 닫힙니다"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// helpSection groups the key bindings of one screen in the help overlay.
type helpSection struct {
	title    string
	bindings []components.KeyHint
}

// helpSections lists the bindings per screen. q only quits outside the
// form, where it is ordinary input.
func helpSections() []helpSection {
	return []helpSection{
		{"목표 입력", []components.KeyHint{
			{Key: "Tab Enter", Desc: "다음 항목 / 제출"},
			{Key: "Esc", Desc: "계산 취소"},
		}},
		{"설계 결과", []components.KeyHint{
			{Key: "j k", Desc: "카테고리 이동"},
			{Key: "Enter Space", Desc: "카테고리 펼치기 / 접기"},
			{Key: "J K ^d ^u", Desc: "스크롤"},
			{Key: "p", Desc: "수익 예측"},
			{Key: "d", Desc: "PDF 다운로드"},
			{Key: "e m", Desc: "이메일 입력 / 발송"},
			{Key: "b", Desc: "뒤로가기"},
			{Key: "r", Desc: "다시 설계"},
			{Key: "q", Desc: "종료"},
		}},
		{"수익 예측", []components.KeyHint{
			{Key: "← →", Desc: "예측 기간 조정"},
			{Key: "b", Desc: "결과로 돌아가기"},
			{Key: "r", Desc: "다시 설계"},
			{Key: "q", Desc: "종료"},
		}},
		{"공통", []components.KeyHint{
			{Key: "?", Desc: "도움말"},
			{Key: "^c", Desc: "종료"},
		}},
	}
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Heading).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sections := helpSections()

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ 단축키"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.Key)),
				descStyle.Render(bind.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("아무 키나 누르면 닫힙니다"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHints() []components.KeyHint {
	switch a.ctrl.View() {
	case session.ViewResult:
		if a.editingEmail {
			return []components.KeyHint{{Key: "enter", Desc: "확인"}, {Key: "esc", Desc: "취소"}}
		}
		return []components.KeyHint{
			{Key: "j/k", Desc: "이동"}, {Key: "enter", Desc: "펼치기"},
			{Key: "p", Desc: "수익 예측"}, {Key: "d", Desc: "PDF"}, {Key: "e", Desc: "이메일"},
			{Key: "b", Desc: "뒤로"}, {Key: "r", Desc: "다시 설계"}, {Key: "?", Desc: "도움말"},
		}
	case session.ViewProjection:
		return []components.KeyHint{
			{Key: "←/→", Desc: "기간"}, {Key: "b", Desc: "결과로"},
			{Key: "r", Desc: "다시 설계"}, {Key: "?", Desc: "도움말"},
		}
	}
	if a.ctrl.Loading() {
		return []components.KeyHint{{Key: "esc", Desc: "취소"}, {Key: "ctrl+c", Desc: "종료"}}
	}
	return []components.KeyHint{{Key: "enter", Desc: "다음"}, {Key: "?", Desc: "도움말"}, {Key: "ctrl+c", Desc: "종료"}}
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderSteps(int(a.ctrl.View()), w)
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.baseURL)
	contentH := a.contentHeight()

	var content string
	switch a.ctrl.View() {
	case session.ViewForm:
		content = a.renderForm(cw, contentH)
		if a.setupSaved != nil {
			warn := lipgloss.NewStyle().Foreground(t.Warning).
				Render(fmt.Sprintf("설정을 저장하지 못했습니다: %s", a.setupSaved))
			content = warn + "\n" + content
		}
	case session.ViewResult:
		body, _ := a.renderResult(cw)
		vp := viewport.New(cw, contentH)
		vp.SetContent(body)
		vp.SetYOffset(a.resultScroll)
		content = vp.View()
	case session.ViewProjection:
		content = a.renderProjection(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
