// Command invoicectl runs extraction, bulk import and export from the shell.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoices-tracker/internal/app"
)

var (
	configPath string
	envFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "invoicectl",
	Short:        "Command line operations against the invoice store",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra .env file loaded after ./.env")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dbhealthCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openApp loads configuration and opens the store for commands that need it.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, logger, err := app.LoadConfig(configPath, envFile)
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, logger)
}
