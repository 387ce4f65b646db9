// Command wmsctl manages the WMS database: schema migrations and seed data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "wmsctl",
	Short:         "Administrative commands for the WMS backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.AddCommand(migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and a console logger shared by all commands
func setup() (*config.Config, *zap.Logger, error) {
	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, log, nil
}
