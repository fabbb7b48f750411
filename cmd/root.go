// Package cmd implements the hflow CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/holinflow/hflow/internal/config"
	"github.com/holinflow/hflow/internal/logging"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagBaseURL  string
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
	flagQuiet    bool
)

// Loaded once per invocation by the persistent pre-run.
var (
	cfg       config.Config
	cfgMeta   config.Meta
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "hflow",
	Short: "HolinFlow financial planning client",
	Long: "Plan a monthly-income portfolio against the HolinFlow backend: " +
		"interactive TUI, one-shot plans, growth projections and reports.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here because setupRun refers back to rootCmd.
	rootCmd.PersistentPreRunE = setupRun
	rootCmd.PersistentPostRunE = teardownRun

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend origin, e.g. http://localhost:8000 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file, .toml or .yaml (default $XDG_CONFIG_HOME/hflow/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
}

// setupRun loads configuration and configures logging for every command.
// Interactive commands log to a file since the alt screen owns the terminal.
func setupRun(cmd *cobra.Command, _ []string) error {
	c, meta, err := config.LoadWithMeta(flagConfig)
	if err != nil {
		if cmd != setupCmd {
			return err
		}
		// setup exists to repair a broken config
		fmt.Fprintf(os.Stderr, "  Ignoring unreadable config: %v\n", err)
		c = config.DefaultConfig()
	}
	if flagBaseURL != "" {
		c.Backend.BaseURL = flagBaseURL
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg, cfgMeta = c, meta

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	file := cfg.Log.File
	if flagLogFile != "" {
		file = flagLogFile
	}
	if file == "" && isInteractive(cmd) {
		file = filepath.Join(config.CacheDir(), "hflow.log")
	}

	closer, err := logging.Setup(logging.Options{Level: level, File: file, Quiet: flagQuiet})
	if err != nil {
		return err
	}
	logCloser = closer
	log.WithFields(log.Fields{"command": cmd.Name(), "config": meta.Path, "file_loaded": meta.FileLoaded}).Debug("config loaded")
	return nil
}

func teardownRun(_ *cobra.Command, _ []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == tuiCmd || cmd == setupCmd
}

// newClient builds the API client for c.
func newClient(c config.Config) (*planapi.Client, error) {
	client, err := planapi.New(c.ResolvedBaseURL(),
		planapi.WithTimeout(c.RequestTimeout()),
		planapi.WithLogger(log.WithField("component", "planapi")),
	)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	return client, nil
}

// planFlags are the form values shared by every command that requests a
// plan. Unset flags fall back to the configured defaults.
type planFlags struct {
	goal   float64
	assets float64
	risk   string
}

func addPlanFlags(cmd *cobra.Command, pf *planFlags) {
	cmd.Flags().Float64Var(&pf.goal, "goal", 0, "Monthly income goal in 만원 (at least 100)")
	cmd.Flags().Float64Var(&pf.assets, "assets", 0, "Current assets in 만원")
	cmd.Flags().StringVar(&pf.risk, "risk", "", "Risk level: 보수적|중립|공격적 or conservative|neutral|aggressive")
}

// request merges the flags that were set over the configured defaults.
func (pf planFlags) request(cmd *cobra.Command) (model.PlanRequest, error) {
	req := cfg.DefaultRequest()
	if cmd.Flags().Changed("goal") {
		req.MonthlyGoal = pf.goal
	}
	if cmd.Flags().Changed("assets") {
		req.CurrentAssets = pf.assets
	}
	if cmd.Flags().Changed("risk") {
		r, err := model.ParseRiskLevel(pf.risk)
		if err != nil {
			return req, err
		}
		req.RiskLevel = r
	}
	return req, nil
}

// validatedRequest is request followed by PlanRequest.Validate.
func (pf planFlags) validatedRequest(cmd *cobra.Command) (model.PlanRequest, error) {
	req, err := pf.request(cmd)
	if err != nil {
		return req, err
	}
	return req, req.Validate()
}
