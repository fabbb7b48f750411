package cmd

import (
	"fmt"

	"github.com/holinflow/hflow/internal/config"
	"github.com/holinflow/hflow/internal/tui"
	"github.com/holinflow/hflow/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tuiFlags planFlags

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner",
	RunE:  runTUI,
}

func init() {
	addPlanFlags(tuiCmd, &tuiFlags)
	addPlanFlags(rootCmd, &tuiFlags)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !theme.SetActive(cfg.Appearance.Theme) {
		log.WithField("theme", cfg.Appearance.Theme).Warn("unknown theme, using flexoki-dark")
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	defaults, err := tuiFlags.request(cmd)
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Backend:    client,
		Defaults:   defaults,
		Years:      cfg.General.ProjectionYears,
		ReportDir:  cfg.General.ReportDir,
		BaseURL:    client.BaseURL(),
		NeedSetup:  !config.Exists(flagConfig),
		Config:     cfg,
		ConfigPath: flagConfig,
		Reconnect:  reconnect,
		Logger:     log.WithField("component", "tui"),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

func reconnect(c config.Config) (tui.Backend, string, error) {
	client, err := newClient(c)
	if err != nil {
		return nil, "", err
	}
	return client, client.BaseURL(), nil
}
