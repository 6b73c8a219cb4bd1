package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/dishtip/internal/config"
	"github.com/abelbrown/dishtip/internal/logging"
)

// cli holds the global flags and the configuration they produce.
type cli struct {
	configPath string
	backendURL string
	verbose    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "dt",
		Short: "DishTip command line",
		Long: `dt looks up dish recommendations for a place without the TUI.

Example usage:
  dt lookup ChIJN1t_tDeuEmsRUsoyG83frY4     # top five dishes
  dt lookup ChIJN1t_tDeuEmsRUsoyG83frY4 --all
  dt places "ramen kreuzberg"                # find a place id
  dt serve-mock --addr :8000                 # local fixture backend
  dt events --kind session --tail 20`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.dishtip/config.yaml)")
	root.PersistentFlags().StringVar(&c.backendURL, "backend", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newLookupCmd(c),
		newPlacesCmd(c),
		newServeMockCmd(c),
		newEventsCmd(c),
		newVersionCmd(),
	)
	return root
}

// init loads configuration and points the logger at stderr.
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.backendURL != "" {
		cfg.Backend.BaseURL = c.backendURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	if err := logging.InitWriter(cmd.ErrOrStderr(), level); err != nil {
		return err
	}
	logging.Debug("configuration loaded", "backend", cfg.Backend.BaseURL, "autocomplete", cfg.Places.APIKey != "")

	c.cfg = cfg
	return nil
}
