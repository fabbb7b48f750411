package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so commands can be
// executed repeatedly within one test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--config", filepath.Join(t.TempDir(), "config.toml"), "--log-level", "error"}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanJSON(t *testing.T) {
	fake := testutil.NewBackend(t)

	out, err := execute(t, "plan", "--base-url", fake.URL(), "--goal", "300", "--risk", "aggressive", "-f", "json")
	require.NoError(t, err)

	var got model.PlanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	want := testutil.ExamplePlan()
	assert.Equal(t, want.MonthlyGoal, got.MonthlyGoal)
	assert.Equal(t, want.Report, got.Report)
	assert.Len(t, got.Assets, len(want.Assets))

	reqs := fake.PlanRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 300.0, reqs[0].MonthlyGoal)
	assert.Equal(t, model.RiskAggressive, reqs[0].RiskLevel)
	// unset flags come from the configured defaults
	assert.Equal(t, 5000.0, reqs[0].CurrentAssets)
}

func TestPlanTable(t *testing.T) {
	fake := testutil.NewBackend(t)

	out, err := execute(t, "plan", "--base-url", fake.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "설계 요약")
	assert.Contains(t, out, "920.0만원")
	assert.Contains(t, out, "투자 조언")
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	fake := testutil.NewBackend(t)

	_, err := execute(t, "plan", "--base-url", fake.URL(), "--goal", "50")
	require.Error(t, err)

	_, err = execute(t, "plan", "--base-url", fake.URL(), "--risk", "yolo")
	require.Error(t, err)

	_, err = execute(t, "plan", "--base-url", fake.URL(), "--format", "xml")
	require.Error(t, err)

	assert.Empty(t, fake.PlanRequests())
}

func TestProjectOffline(t *testing.T) {
	out, err := execute(t, "project", "--base", "1000", "--rate", "10", "--years", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "1,210만원")
	assert.Contains(t, out, "10.00%")
}

func TestProjectOfflineBeyondInt64(t *testing.T) {
	// 5000 × 4^30 is far past the int64 range
	out, err := execute(t, "project", "--base", "5000", "--rate", "300", "--years", "30")
	require.NoError(t, err)
	assert.Regexp(t, `\d{1,3}(,\d{3}){7,}만원`, out)
	assert.Contains(t, out, "300.00%")
}

func TestProjectFlagErrors(t *testing.T) {
	_, err := execute(t, "project", "--base", "1000")
	assert.ErrorContains(t, err, "together")

	_, err = execute(t, "project", "--base", "1000", "--rate", "5", "--years", "-1")
	assert.ErrorContains(t, err, "between 0 and 30")

	_, err = execute(t, "project", "--base", "1000", "--rate", "5", "--years", "2000000000")
	assert.ErrorContains(t, err, "between 0 and 30")

	out, err := execute(t, "project", "--base", "1000", "--rate", "5", "--years", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "30년 후")
}

func TestProjectWritesPDF(t *testing.T) {
	fake := testutil.NewBackend(t)
	path := filepath.Join(t.TempDir(), "growth.pdf")

	_, err := execute(t, "project", "--base-url", fake.URL(), "--years", "5", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReportPDF(t *testing.T) {
	fake := testutil.NewBackend(t)
	path := filepath.Join(t.TempDir(), "plan.pdf")

	out, err := execute(t, "report", "pdf", "--base-url", fake.URL(), "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.FakePDF, data)
	assert.Len(t, fake.PDFPlans(), 1)
}

func TestReportEmail(t *testing.T) {
	fake := testutil.NewBackend(t)

	_, err := execute(t, "report", "email", "--base-url", fake.URL())
	require.Error(t, err, "--to is required")

	out, err := execute(t, "report", "email", "--base-url", fake.URL(), "--to", "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "이메일이 성공적으로 발송되었습니다.")

	emails := fake.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "me@example.com", emails[0].Email)
}

func TestReportEmailFailure(t *testing.T) {
	fake := testutil.NewBackend(t)
	fake.FailEmail(500)

	_, err := execute(t, "report", "email", "--base-url", fake.URL(), "--to", "me@example.com")
	require.Error(t, err)
}

func TestConfigShowsSources(t *testing.T) {
	t.Setenv("HFLOW_GENERAL_PROJECTION_YEARS", "25")

	out, err := execute(t, "config", "--base-url", "http://10.1.2.3:8000")
	require.NoError(t, err)
	assert.Contains(t, out, "using defaults")
	assert.Contains(t, out, "Resolved URL:  http://10.1.2.3:8000")
	assert.Contains(t, out, "Projection years: 25")
	assert.True(t, strings.Contains(out, "general.projection_years"), out)
}
