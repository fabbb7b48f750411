package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/holinflow/hflow/internal/cli"
	"github.com/holinflow/hflow/internal/model"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	planCmdFlags planFlags
	flagFormat   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Request an allocation plan and print it",
	Example: `  hflow plan --goal 1000 --assets 5000 --risk 중립
  hflow plan --goal 300 --risk aggressive --format json`,
	RunE: runPlan,
}

func init() {
	addPlanFlags(planCmd, &planCmdFlags)
	planCmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "Output format: table, json, yaml")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	switch flagFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", flagFormat)
	}

	req, err := planCmdFlags.validatedRequest(cmd)
	if err != nil {
		return err
	}
	plan, err := fetchPlan(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch flagFormat {
	case "json":
		return writeJSON(out, plan)
	case "yaml":
		return writeYAML(out, plan)
	}
	writePlanTable(out, req, plan)
	return nil
}

// fetchPlan requests a plan with the configured client.
func fetchPlan(ctx context.Context, req model.PlanRequest) (*model.PlanResponse, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return client.RequestPlan(ctx, req)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// writePlanTable prints the plan the way the result screen lays it out.
func writePlanTable(w io.Writer, req model.PlanRequest, plan *model.PlanResponse) {
	r := plan.Report

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle(fmt.Sprintf("HOLINFLOW PLAN  %s  %s", cli.FormatWan(req.MonthlyGoal), req.RiskLevel)))
	fmt.Fprintln(w)

	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title: "설계 요약",
		Rows: [][]string{
			{cli.LabelMonthlyGoal, cli.FormatWan(plan.MonthlyGoal)},
			{cli.LabelCurrentAssets, cli.FormatWan(r.CurrentAssets)},
			{cli.Separator},
			{cli.LabelExpectedIncome, cli.FormatWan1(r.ExpectedMonthlyIncome)},
			{cli.LabelGoalGap, cli.FormatWan1(r.MonthlyGoalGap)},
			{cli.LabelAdditionalAssets, cli.FormatWan1(r.RequiredAdditionalAssets)},
			{cli.Separator},
			{cli.LabelAnnualReturn, cli.FormatPct2(r.WeightedAnnualReturn)},
		},
	}))
	fmt.Fprintln(w)

	if len(plan.Assets) == 0 {
		fmt.Fprintln(w, "  배분 항목이 없습니다.")
	} else {
		rows := make([][]string, 0, len(plan.Assets))
		for _, c := range plan.Assets {
			income := "-"
			if c.ExpectedIncome != nil {
				income = cli.FormatWan1(*c.ExpectedIncome)
			}
			rows = append(rows, []string{
				c.Category,
				cli.FormatWan(c.Amount),
				cli.FormatPct1(c.AllocationPercent),
				cli.RenderShareBar(c.AllocationPercent, 12),
				income,
			})
		}
		fmt.Fprint(w, cli.RenderTable(cli.Table{
			Title:   "자산 배분",
			Headers: []string{"카테고리", cli.LabelAllocation, "비중", "", cli.LabelCategoryIncome},
			Rows:    rows,
		}))

		for _, c := range plan.Assets {
			if len(c.Items) == 0 {
				continue
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, cli.RenderTable(cli.Table{
				Title:   c.Category,
				Headers: []string{"종목", "코드", cli.LabelAllocation, "세부"},
				Rows:    itemTableRows(c.Items),
			}))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  투자 조언")
	for _, a := range cli.Advice {
		fmt.Fprintf(w, "    %s\n", a)
	}
	fmt.Fprintln(w)
}

func itemTableRows(items []model.InvestmentItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		var details []string
		if it.HasExpectedReturn() {
			details = append(details, fmt.Sprintf("%s %s%%", cli.LabelExpectedReturn, cli.FormatPlain(*it.ExpectedReturn)))
		}
		if it.IsDividendBearing() {
			details = append(details, fmt.Sprintf("%s %s%%", cli.LabelDividendRate, cli.FormatPlain(*it.DividendRate)))
			if months := it.ValidPayoutMonths(); len(months) > 0 {
				details = append(details, cli.FormatPayoutMonths(months))
			}
			if it.ExpectedQuarterlyDividend != nil {
				details = append(details, fmt.Sprintf("분기 %s%s", cli.FormatPlain(*it.ExpectedQuarterlyDividend), cli.Unit))
			}
			if it.ExpectedAnnualDividend != nil {
				details = append(details, fmt.Sprintf("연 %s%s", cli.FormatPlain(*it.ExpectedAnnualDividend), cli.Unit))
			}
		}
		rows = append(rows, []string{it.Name, it.Code, cli.FormatWan(it.Allocation), strings.Join(details, " · ")})
	}
	return rows
}
