package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where it came from",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	writeConfig(cmd.OutOrStdout())
	return nil
}

func writeConfig(w io.Writer) {
	fmt.Fprintf(w, "  Config file: %s\n", cfgMeta.Path)
	if cfgMeta.FileLoaded {
		fmt.Fprintln(w, "  Status: loaded")
	} else {
		fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	if len(cfgMeta.EnvKeys) > 0 {
		fmt.Fprintf(w, "  Environment: %s\n", strings.Join(cfgMeta.EnvKeys, ", "))
	}
	if flagBaseURL != "" {
		fmt.Fprintf(w, "  Flag override: --base-url %s\n", flagBaseURL)
	}
	fmt.Fprintln(w)

	b := cfg.Backend
	fmt.Fprintln(w, "  [Backend]")
	fmt.Fprintf(w, "    Resolved URL:  %s\n", cfg.ResolvedBaseURL())
	if b.BaseURL != "" {
		fmt.Fprintf(w, "    Base URL:      %s\n", b.BaseURL)
	} else {
		fmt.Fprintln(w, "    Base URL:      not set")
	}
	if b.Host != "" {
		fmt.Fprintf(w, "    Host:          %s\n", b.Host)
		fmt.Fprintf(w, "    Port:          %d (local %d)\n", b.Port, b.LocalPort)
		fmt.Fprintf(w, "    Tunnel:        %s -> %s\n", b.TunnelDomain, b.TunnelOrigin)
	}
	if b.RequestTimeoutSec > 0 {
		fmt.Fprintf(w, "    Timeout:       %ds\n", b.RequestTimeoutSec)
	} else {
		fmt.Fprintln(w, "    Timeout:       none")
	}
	fmt.Fprintln(w)

	g := cfg.General
	fmt.Fprintln(w, "  [General]")
	fmt.Fprintf(w, "    Default goal:     %s만원\n", formatConfigAmount(g.DefaultGoal))
	fmt.Fprintf(w, "    Default assets:   %s만원\n", formatConfigAmount(g.DefaultAssets))
	fmt.Fprintf(w, "    Default risk:     %s\n", cfg.DefaultRiskLevel())
	fmt.Fprintf(w, "    Projection years: %d\n", g.ProjectionYears)
	if g.ReportDir != "" {
		fmt.Fprintf(w, "    Report directory: %s\n", g.ReportDir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Appearance]")
	fmt.Fprintf(w, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Log]")
	fmt.Fprintf(w, "    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Fprintf(w, "    File:  %s\n", cfg.Log.File)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Run `hflow setup` to reconfigure.")
}

func formatConfigAmount(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.2f", v), ".00")
}
