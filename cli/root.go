// Package cli holds the jewelsphere command line.
package cli

import (
	"fmt"
	"os"

	"github.com/Govind-619/JewelSphere/config"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/spf13/cobra"
)

var Version = "dev"

// NewRootCmd builds the command tree. Running it without a subcommand serves
// the API.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jewelsphere",
		Short:         "JewelSphere order payments service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(orderStatusCmd())
	rootCmd.AddCommand(analyzeLogsCmd())

	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and initializes the loggers.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := utils.InitLogger(cfg.LogDir); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
