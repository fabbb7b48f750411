package tui

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/report"
	"github.com/holinflow/hflow/internal/session"
	"github.com/holinflow/hflow/internal/testutil"

	tea "github.com/charmbracelet/bubbletea"
)

var exampleRequest = model.PlanRequest{MonthlyGoal: 1000, CurrentAssets: 5000, RiskLevel: model.RiskNeutral}

type stubBackend struct {
	plan func(model.PlanRequest) (*model.PlanResponse, error)
}

func (s stubBackend) RequestPlan(_ context.Context, req model.PlanRequest) (*model.PlanResponse, error) {
	return s.plan(req)
}

func (s stubBackend) RequestPDF(context.Context, *model.PlanResponse) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s stubBackend) RequestEmailDispatch(context.Context, string, *model.PlanResponse) error {
	return errors.New("not implemented")
}

func newTestApp(t *testing.T, b Backend) App {
	t.Helper()
	a := NewApp(Options{
		Backend:   b,
		Defaults:  exampleRequest,
		ReportDir: t.TempDir(),
		BaseURL:   "http://backend.test",
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m.(App)
}

func newFakeBackendApp(t *testing.T) (App, *testutil.Backend) {
	t.Helper()
	fake := testutil.NewBackend(t)
	client, err := planapi.New(fake.URL())
	if err != nil {
		t.Fatalf("planapi.New: %v", err)
	}
	return newTestApp(t, client), fake
}

// submit runs a plan request to completion.
func submit(t *testing.T, a App, req model.PlanRequest) App {
	t.Helper()
	a, cmd := a.startSubmit(req)
	if cmd == nil {
		t.Fatalf("startSubmit(%+v) returned no command", req)
	}
	m, _ := a.Update(cmd())
	return m.(App)
}

func press(a App, key string) App {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

// pressCmd presses key and runs the resulting commands, returning the
// message of the given kind.
func pressCmd[T tea.Msg](t *testing.T, a App, key string) (App, T) {
	t.Helper()
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	a = m.(App)
	var zero T
	if cmd == nil {
		t.Fatalf("%q produced no command", key)
	}
	for _, msg := range flatten(cmd) {
		if v, ok := msg.(T); ok {
			return a, v
		}
	}
	t.Fatalf("%q produced no %T", key, zero)
	return a, zero
}

func flatten(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, flatten(c)...)
	}
	return out
}

func TestSubmitShowsResult(t *testing.T) {
	a, fake := newFakeBackendApp(t)

	a = submit(t, a, exampleRequest)

	if got := a.ctrl.View(); got != session.ViewResult {
		t.Fatalf("view = %s, want result", got)
	}
	if a.ctrl.Loading() {
		t.Error("still loading after response")
	}
	if reqs := fake.PlanRequests(); len(reqs) != 1 || reqs[0] != exampleRequest {
		t.Errorf("backend saw %+v", reqs)
	}

	out := a.View()
	for _, want := range []string{"5,000만원", "80.0만원", "920.0만원", "55000.0만원", "현금흐름", "배당주"} {
		if !strings.Contains(out, want) {
			t.Errorf("result view missing %q", want)
		}
	}
}

func TestHugeAmountsRender(t *testing.T) {
	a := newTestApp(t, stubBackend{plan: func(req model.PlanRequest) (*model.PlanResponse, error) {
		p := testutil.ExamplePlan()
		p.MonthlyGoal = req.MonthlyGoal
		p.Report.CurrentAssets = req.CurrentAssets
		return &p, nil
	}})
	a = submit(t, a, model.PlanRequest{MonthlyGoal: 1e19, CurrentAssets: 1e22, RiskLevel: model.RiskNeutral})

	if a.View() == "" {
		t.Fatal("empty result view")
	}
	metrics := summaryMetrics(a.ctrl.Plan())
	if metrics[0].Value != "10,000,000,000,000,000,000만원" {
		t.Errorf("goal = %q", metrics[0].Value)
	}
	if metrics[1].Value != "10,000,000,000,000,000,000,000만원" {
		t.Errorf("current assets = %q", metrics[1].Value)
	}

	a = press(a, "p")
	if !strings.Contains(a.View(), "자산 성장 예측") {
		t.Error("projection view did not render")
	}
}

func TestBackendFailureStaysOnForm(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	fake.FailPlan(http.StatusInternalServerError)

	a = submit(t, a, exampleRequest)

	if got := a.ctrl.View(); got != session.ViewForm {
		t.Fatalf("view = %s, want form", got)
	}
	if a.ctrl.Loading() {
		t.Error("loading flag not cleared")
	}
	if a.ctrl.Error() != session.PlanFailureMessage {
		t.Errorf("error = %q", a.ctrl.Error())
	}
	if a.ctrl.Plan() != nil {
		t.Error("failed request left a plan behind")
	}
	if !strings.Contains(a.View(), session.PlanFailureMessage) {
		t.Error("form view does not show the failure banner")
	}
	if a.planForm == nil || a.planVals.Goal != "1000" {
		t.Errorf("form not restored with the submitted values: %+v", a.planVals)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	first := testutil.ExamplePlan()
	second := testutil.ExamplePlan()
	second.MonthlyGoal = 2000

	b := stubBackend{plan: func(req model.PlanRequest) (*model.PlanResponse, error) {
		if req.MonthlyGoal == 2000 {
			return &second, nil
		}
		return &first, nil
	}}
	a := newTestApp(t, b)

	a, cmd1 := a.startSubmit(exampleRequest)
	req2 := exampleRequest
	req2.MonthlyGoal = 2000
	a, cmd2 := a.startSubmit(req2)

	m, _ := a.Update(cmd2())
	a = m.(App)
	m, _ = a.Update(cmd1())
	a = m.(App)

	if a.ctrl.Plan() == nil || a.ctrl.Plan().MonthlyGoal != 2000 {
		t.Fatalf("plan = %+v, want the second response", a.ctrl.Plan())
	}
}

func TestEscCancelsInFlightRequest(t *testing.T) {
	b := stubBackend{plan: func(model.PlanRequest) (*model.PlanResponse, error) {
		p := testutil.ExamplePlan()
		return &p, nil
	}}
	a := newTestApp(t, b)

	a, cmd := a.startSubmit(exampleRequest)
	a = press(a, "esc")
	if a.ctrl.Loading() {
		t.Fatal("esc did not cancel the request")
	}

	m, _ := a.Update(cmd())
	a = m.(App)
	if a.ctrl.View() != session.ViewForm || a.ctrl.Plan() != nil {
		t.Errorf("cancelled response was applied: view=%s", a.ctrl.View())
	}
}

func TestInvalidRequestIsRejected(t *testing.T) {
	a := newTestApp(t, stubBackend{})

	a, cmd := a.startSubmit(model.PlanRequest{MonthlyGoal: 50, RiskLevel: model.RiskNeutral})
	if cmd != nil {
		t.Fatal("invalid request produced a network command")
	}
	if a.ctrl.Error() == "" {
		t.Error("validation message not set")
	}

	a, cmd = a.startSubmit(model.PlanRequest{MonthlyGoal: math.Inf(1), RiskLevel: model.RiskNeutral})
	if cmd != nil {
		t.Fatal("infinite goal produced a network command")
	}
	if !strings.Contains(a.ctrl.Error(), "finite") {
		t.Errorf("error = %q, want the finite-number message", a.ctrl.Error())
	}
}

func TestAmountValidatorRejectsNonFinite(t *testing.T) {
	check := minAmount(model.MinMonthlyGoal)
	for _, in := range []string{"Inf", "+Inf", "NaN", "1e400"} {
		if check(in) == nil {
			t.Errorf("minAmount accepted %q", in)
		}
	}
	if err := check("1,000"); err != nil {
		t.Errorf("minAmount(1,000) = %v", err)
	}
}

func TestCategoryExpansion(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	if strings.Contains(a.View(), "SK텔레콤") {
		t.Fatal("items visible before expanding")
	}

	a = press(a, "j")
	a = press(a, "enter")
	if !a.categories.IsExpanded(1) {
		t.Fatal("second category not expanded")
	}
	out := a.View()
	for _, want := range []string{"SK텔레콤", "배당 지급월", "3, 6, 9, 12월", "예상 연배당금"} {
		if !strings.Contains(out, want) {
			t.Errorf("expanded view missing %q", want)
		}
	}

	a = press(a, "k")
	a = press(a, "space")
	if !a.categories.IsExpanded(0) || a.categories.IsExpanded(1) {
		t.Error("expanding the first category did not collapse the second")
	}

	a = press(a, "enter")
	if a.categories.ExpandedKey() != "" {
		t.Error("second toggle did not collapse")
	}
}

func TestExpandedCategorySurvivesResubmit(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	a = press(a, "j")
	a = press(a, "enter")
	want := a.categories.ExpandedKey()
	if want == "" {
		t.Fatal("no category expanded")
	}

	a = press(a, "b")
	a = submit(t, a, exampleRequest)
	if got := a.categories.ExpandedKey(); got != want {
		t.Errorf("after resubmit expanded = %q, want %q", got, want)
	}

	a = press(a, "r")
	if a.categories.Len() != 0 || a.categories.ExpandedKey() != "" {
		t.Error("reset kept the category list")
	}
	a = submit(t, a, exampleRequest)
	if a.categories.ExpandedKey() != "" {
		t.Error("new plan after reset opened expanded")
	}
}

func TestItemRowsOmitAbsentFields(t *testing.T) {
	rate := 4.8
	plain := model.InvestmentItem{Name: "예금", Allocation: 100}
	div := model.InvestmentItem{Name: "배당", Allocation: 100, DividendRate: &rate, PayoutMonths: []int{13, 0}}

	if got := len(itemRows(plain)); got != 1 {
		t.Errorf("plain item rows = %d, want 1", got)
	}

	rows := itemRows(div)
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r[0]
	}
	joined := strings.Join(labels, ",")
	if strings.Contains(joined, "배당 지급월") {
		t.Error("payout row shown without valid months")
	}
	if strings.Contains(joined, "예상 분기배당금") {
		t.Error("quarterly row shown without a value")
	}
	if rows[len(rows)-1][1] != "-" {
		t.Errorf("missing annual dividend rendered as %q", rows[len(rows)-1][1])
	}
}

func TestProjectionNavigation(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	a = press(a, "p")
	if a.ctrl.View() != session.ViewProjection {
		t.Fatalf("view = %s, want projection", a.ctrl.View())
	}
	out := a.View()
	if !strings.Contains(out, "8,954만원") {
		t.Error("projection view missing 10-year value")
	}
	if !strings.Contains(out, "6.00%") {
		t.Error("projection view missing annual return")
	}

	a = press(a, "right")
	if a.ctrl.Years() != 11 {
		t.Errorf("years = %d after right, want 11", a.ctrl.Years())
	}
	for range 40 {
		a = press(a, "right")
	}
	if a.ctrl.Years() != 30 {
		t.Errorf("years = %d, want clamped to 30", a.ctrl.Years())
	}

	a = press(a, "b")
	if a.ctrl.View() != session.ViewResult {
		t.Fatalf("b from projection: view = %s", a.ctrl.View())
	}

	a = press(a, "p")
	a = press(a, "r")
	if a.ctrl.View() != session.ViewForm || a.ctrl.Plan() != nil {
		t.Errorf("reset from projection: view=%s plan=%v", a.ctrl.View(), a.ctrl.Plan())
	}
	if a.ctrl.Years() != 10 {
		t.Errorf("reset kept years = %d", a.ctrl.Years())
	}
}

func TestBackKeepsFormValues(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	req := model.PlanRequest{MonthlyGoal: 300, CurrentAssets: 1200, RiskLevel: model.RiskAggressive}
	a = submit(t, a, req)

	a = press(a, "b")
	if a.ctrl.View() != session.ViewForm {
		t.Fatalf("view = %s, want form", a.ctrl.View())
	}
	if a.ctrl.Plan() == nil {
		t.Error("back discarded the plan")
	}
	if a.planVals.Goal != "300" || a.planVals.Assets != "1200" || a.planVals.Risk != model.RiskAggressive {
		t.Errorf("form values = %+v", a.planVals)
	}
}

func TestEmailRequiredAlert(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	a = press(a, "m")
	if a.alert != session.EmailRequiredMessage {
		t.Fatalf("alert = %q", a.alert)
	}
	if !strings.Contains(a.View(), session.EmailRequiredMessage) {
		t.Error("alert not rendered")
	}
	if len(fake.Emails()) != 0 {
		t.Error("request sent for an empty address")
	}

	a = press(a, "x")
	if a.alert != "" {
		t.Error("any key did not dismiss the alert")
	}
}

func TestEmailDispatch(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	a = press(a, "e")
	a = press(a, " me@example.com ")
	a = press(a, "enter")
	if a.editingEmail {
		t.Fatal("enter did not leave the email field")
	}

	a, msg := pressCmd[emailSentMsg](t, a, "m")
	if !a.ctrl.EmailSending() {
		t.Error("email not marked in flight")
	}
	m, _ := a.Update(msg)
	a = m.(App)

	if a.ctrl.EmailNotice() != session.EmailSuccessMessage {
		t.Errorf("notice = %q", a.ctrl.EmailNotice())
	}
	if a.ctrl.EmailDraft() != "" {
		t.Error("draft not cleared after success")
	}
	emails := fake.Emails()
	if len(emails) != 1 || emails[0].Email != "me@example.com" {
		t.Errorf("backend saw %+v", emails)
	}
	if !strings.Contains(a.View(), session.EmailSuccessMessage) {
		t.Error("success message not rendered")
	}
}

func TestEmailFailureAlert(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	fake.FailEmail(http.StatusBadGateway)
	a = submit(t, a, exampleRequest)

	a = press(a, "e")
	a = press(a, "me@example.com")
	a = press(a, "enter")
	a, msg := pressCmd[emailSentMsg](t, a, "m")
	m, _ := a.Update(msg)
	a = m.(App)

	if a.alert != AlertEmailFailed {
		t.Errorf("alert = %q", a.alert)
	}
	if a.ctrl.EmailDraft() != "me@example.com" {
		t.Error("draft cleared after a failure")
	}
}

func TestResetDropsInFlightEmail(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)
	a = press(a, "e")
	a = press(a, "me@example.com")
	a = press(a, "enter")

	a, msg := pressCmd[emailSentMsg](t, a, "m")
	a = press(a, "r")
	m, _ := a.Update(msg)
	a = m.(App)

	if a.ctrl.EmailNotice() != "" || a.alert != "" {
		t.Error("email response applied after reset")
	}
}

func TestPDFExport(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)

	a, msg := pressCmd[pdfSavedMsg](t, a, "d")
	m, _ := a.Update(msg)
	a = m.(App)

	want := filepath.Join(a.reportDir, report.DefaultPDFName)
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading saved pdf: %v", err)
	}
	if !bytes.Equal(data, testutil.FakePDF) {
		t.Error("saved pdf differs from backend body")
	}
	if !strings.Contains(a.notice, want) {
		t.Errorf("notice = %q", a.notice)
	}
	if len(fake.PDFPlans()) != 1 {
		t.Errorf("pdf requests = %d", len(fake.PDFPlans()))
	}
}

func TestPDFFailureAlert(t *testing.T) {
	a, fake := newFakeBackendApp(t)
	fake.FailPDF(http.StatusInternalServerError)
	a = submit(t, a, exampleRequest)

	a, msg := pressCmd[pdfSavedMsg](t, a, "d")
	m, _ := a.Update(msg)
	a = m.(App)

	if a.alert != AlertPDFFailed {
		t.Errorf("alert = %q", a.alert)
	}
	if a.ctrl.Exporting() {
		t.Error("export flag not cleared")
	}
	matches, _ := filepath.Glob(filepath.Join(a.reportDir, "*"))
	if len(matches) != 0 {
		t.Errorf("failed export left files: %v", matches)
	}
}

func TestHelpOverlay(t *testing.T) {
	a := newTestApp(t, stubBackend{})

	a = press(a, "?")
	if !strings.Contains(a.View(), "단축키") {
		t.Fatal("help overlay not shown")
	}
	a = press(a, "j")
	if a.showHelp {
		t.Error("any key did not close help")
	}
}

func TestHelpQuitKeyScopedToResultScreens(t *testing.T) {
	quitIn := map[string]bool{}
	for _, sec := range helpSections() {
		for _, h := range sec.bindings {
			for _, k := range strings.Fields(h.Key) {
				if k == "q" {
					quitIn[sec.title] = true
				}
			}
		}
	}
	if quitIn["목표 입력"] || quitIn["공통"] {
		t.Errorf("q listed where it is form input: %v", quitIn)
	}
	if !quitIn["설계 결과"] || !quitIn["수익 예측"] {
		t.Errorf("q missing from result screens: %v", quitIn)
	}
}

func TestMouseWheelScrollsResult(t *testing.T) {
	a, _ := newFakeBackendApp(t)
	a = submit(t, a, exampleRequest)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	a = m.(App)

	m, _ = a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	a = m.(App)
	if a.resultScroll != wheelStep {
		t.Fatalf("scroll = %d after wheel down, want %d", a.resultScroll, wheelStep)
	}
	m, _ = a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	a = m.(App)
	m, _ = a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	a = m.(App)
	if a.resultScroll != 0 {
		t.Errorf("scroll = %d, want clamped at 0", a.resultScroll)
	}
}

func TestChartLabels(t *testing.T) {
	got := chartLabels([]int{0, 2, 4, 5}, 6)
	want := []string{"0년", "", "2년", "", "4년", "5년"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
