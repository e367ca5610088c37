package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/app"
)

var extractModel string

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract invoice fields from a local PDF and print them as JSON",
	Long: `Extract invoice fields from a local PDF without touching the store.

Examples:
  invoicectl extract invoice.pdf
  invoicectl extract invoice.pdf --model groq`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractModel, "model", "gemini", "provider: gemini or groq")
}

func runExtract(cmd *cobra.Command, args []string) error {
	provider, ok := constants.CanonicalProvider(extractModel)
	if !ok {
		return fmt.Errorf("unknown model %q", extractModel)
	}
	cfg, logger, err := app.LoadConfig(configPath, envFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	res, err := app.NewProcessor(cfg, nil, logger).ExtractPDF(cmd.Context(), string(provider), pdf)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"provider": res.Provider,
		"fellBack": res.FellBack,
		"data":     res.Fields,
	})
}
