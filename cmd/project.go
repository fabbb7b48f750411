package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/projection"
	"github.com/holinflow/hflow/internal/report"

	"github.com/spf13/cobra"
)

var (
	projectFlags planFlags
	flagYears    int
	flagBase     float64
	flagRate     float64
	flagProjOut  string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project asset growth over a number of years",
	Long: "Fetch a plan and compound its current assets at the plan's weighted annual return.\n" +
		"With --base and --rate the projection is computed offline without a backend.",
	Example: `  hflow project --goal 1000 --assets 5000 --years 20
  hflow project --base 5000 --rate 6 --years 10 --out growth.pdf`,
	RunE: runProject,
}

func init() {
	addPlanFlags(projectCmd, &projectFlags)
	projectCmd.Flags().IntVar(&flagYears, "years", 0, "Projection horizon in years, at most 30 (default from config)")
	projectCmd.Flags().Float64Var(&flagBase, "base", 0, "Offline: starting assets in 만원")
	projectCmd.Flags().Float64Var(&flagRate, "rate", 0, "Offline: annual return in percent")
	projectCmd.Flags().StringVarP(&flagProjOut, "out", "o", "", "Also write the projection as a PDF to this file")
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, _ []string) error {
	years := cfg.General.ProjectionYears
	if cmd.Flags().Changed("years") {
		years = flagYears
	}
	if years < 0 || years > projection.MaxYears {
		return fmt.Errorf("--years must be between 0 and %d, got %d", projection.MaxYears, years)
	}

	offlineBase, offlineRate := cmd.Flags().Changed("base"), cmd.Flags().Changed("rate")
	if offlineBase != offlineRate {
		return errors.New("--base and --rate must be given together")
	}

	var (
		req     model.PlanRequest
		summary model.ReportSummary
	)
	if offlineBase {
		summary = model.ReportSummary{CurrentAssets: flagBase, WeightedAnnualReturn: flagRate}
		req = model.PlanRequest{CurrentAssets: flagBase}
	} else {
		var err error
		req, err = projectFlags.validatedRequest(cmd)
		if err != nil {
			return err
		}
		plan, err := fetchPlan(cmd.Context(), req)
		if err != nil {
			return err
		}
		summary = plan.Report
	}

	series := projection.FromReport(summary, years)
	writeProjection(cmd.OutOrStdout(), summary, series)

	if flagProjOut == "" {
		return nil
	}
	data, err := report.ProjectionPDF(report.ProjectionInput{
		Request:   req,
		Summary:   summary,
		Series:    series,
		Generated: time.Now(),
	})
	if err != nil {
		return err
	}
	if err := report.SaveFile(flagProjOut, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Saved projection to %s\n\n", flagProjOut)
	return nil
}

func writeProjection(w io.Writer, summary model.ReportSummary, series []model.ProjectionPoint) {
	years := len(series) - 1

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("자산 성장 예측  "+cli.FormatYears(years)))
	fmt.Fprintln(w)

	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Rows: [][]string{
			{cli.LabelAnnualReturn, cli.FormatPct2(summary.WeightedAnnualReturn)},
			{cli.LabelCurrentAssets, cli.FormatWan(summary.CurrentAssets)},
			{strconv.Itoa(years) + cli.LabelProjectedAfterYears, cli.FormatWan(projection.FinalValue(series))},
		},
	}))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n\n", cli.RenderSparkline(projection.Values(series)))

	ticks := make(map[int]bool)
	for _, y := range projection.TickYears(series) {
		ticks[y] = true
	}
	rows := make([][]string, 0, len(series))
	for _, p := range series {
		if !ticks[p.Year] {
			continue
		}
		rows = append(rows, []string{fmt.Sprintf("%d년", p.Year), cli.FormatWan(p.Value)})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Headers: []string{"연도", "예상 자산"},
		Rows:    rows,
	}))
	fmt.Fprintln(w)
}
