package cmd

import (
	"errors"
	"fmt"

	"github.com/holinflow/hflow/internal/config"
	"github.com/holinflow/hflow/internal/tui"

	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the backend, defaults and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	newCfg, err := vals.Apply(cfg)
	if err != nil {
		return err
	}
	if err := config.Save(newCfg, flagConfig); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	log.WithField("path", path).Info("config saved")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", path)
	fmt.Fprintf(out, "  Backend: %s\n", newCfg.ResolvedBaseURL())
	fmt.Fprintln(out, "  Run `hflow setup` anytime to reconfigure.")
	fmt.Fprintln(out)
	return nil
}
