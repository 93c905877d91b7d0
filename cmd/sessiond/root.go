package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/spf13/cobra"
)

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sessiond",
		Short:         "sessiond issues and verifies signed cookie sessions",
		Long:          `sessiond runs the session HTTP API and offers tooling to issue and inspect session tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newServeCmd(),
		newTokenCmd(),
		newBenchCmd(),
		newVersionCmd(),
	)
	return root
}

// loadCommandConfig reads --config, applies environment overrides and
// validates the result.
func loadCommandConfig(cmd *cobra.Command) (*fileConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(path, os.Getenv)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cfg *fileConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, logging.Format(cfg.Log.Format), level), nil
}
