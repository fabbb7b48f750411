package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holinflow/hflow/internal/report"
	"github.com/holinflow/hflow/internal/session"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	reportPDFFlags   planFlags
	reportEmailFlags planFlags
	flagReportOut    string
	flagEmailTo      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the backend's detailed report",
}

var reportPDFCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Download the plan report as a PDF",
	Example: `  hflow report pdf --goal 1000 --assets 5000
  hflow report pdf --risk 공격적 --out ~/plan.pdf`,
	RunE: runReportPDF,
}

var reportEmailCmd = &cobra.Command{
	Use:     "email",
	Short:   "Ask the backend to email the plan report",
	Example: `  hflow report email --to me@example.com --goal 1000`,
	RunE:    runReportEmail,
}

func init() {
	addPlanFlags(reportPDFCmd, &reportPDFFlags)
	reportPDFCmd.Flags().StringVarP(&flagReportOut, "out", "o", "", "Output file (default: HolinFlow_Report.pdf in the report directory)")

	addPlanFlags(reportEmailCmd, &reportEmailFlags)
	reportEmailCmd.Flags().StringVar(&flagEmailTo, "to", "", "Recipient address")
	_ = reportEmailCmd.MarkFlagRequired("to")

	reportCmd.AddCommand(reportPDFCmd, reportEmailCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportPDF(cmd *cobra.Command, _ []string) error {
	req, err := reportPDFFlags.validatedRequest(cmd)
	if err != nil {
		return err
	}
	plan, err := fetchPlan(cmd.Context(), req)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	data, err := client.RequestPDF(cmd.Context(), plan)
	if err != nil {
		return err
	}

	path := report.ResolvePath(cfg.General.ReportDir, flagReportOut)
	if err := report.SaveFile(path, data); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": path, "bytes": len(data)}).Info("report saved")
	fmt.Fprintf(cmd.OutOrStdout(), "  Saved report to %s\n", path)
	return nil
}

func runReportEmail(cmd *cobra.Command, _ []string) error {
	to := strings.TrimSpace(flagEmailTo)
	if to == "" {
		return errors.New(session.EmailRequiredMessage)
	}
	req, err := reportEmailFlags.validatedRequest(cmd)
	if err != nil {
		return err
	}
	plan, err := fetchPlan(cmd.Context(), req)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	if err := client.RequestEmailDispatch(cmd.Context(), to, plan); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", session.EmailSuccessMessage, to)
	return nil
}
