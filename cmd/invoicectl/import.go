package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/ingest"
)

var (
	importModel      string
	importWorkers    int
	importRPS        float64
	importSkipHidden bool
	importWatch      bool
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Upload, extract and store every PDF under a directory",
	Long: `Walk a directory, store each PDF, extract its fields and create an invoice.

Examples:
  invoicectl import ./inbox
  invoicectl import ./inbox --model groq --workers 4 --rps 0.5
  invoicectl import ./inbox --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importModel, "model", "gemini", "provider: gemini or groq")
	importCmd.Flags().IntVar(&importWorkers, "workers", 2, "concurrent files")
	importCmd.Flags().Float64Var(&importRPS, "rps", 0, "provider calls per second, 0 for unlimited")
	importCmd.Flags().BoolVar(&importSkipHidden, "skip-hidden", true, "skip dot files and directories")
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "keep importing new files until interrupted")
}

func runImport(cmd *cobra.Command, args []string) error {
	provider, ok := constants.CanonicalProvider(importModel)
	if !ok {
		return fmt.Errorf("unknown model %q", importModel)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	imp := ingest.NewImporter(ingest.Config{
		Model:      string(provider),
		Workers:    importWorkers,
		RPS:        importRPS,
		SkipHidden: importSkipHidden,
	}, a.Files, a.Processor, a.Invoices, a.Logger)

	out := cmd.OutOrStdout()
	if importWatch {
		err := imp.Watch(ctx, args[0], true, func(r ingest.FileResult) {
			printResult(cmd, r)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	results, stats, err := imp.ImportDirectory(ctx, args[0])
	if err != nil {
		return err
	}
	for _, r := range results {
		printResult(cmd, r)
	}
	fmt.Fprintf(out, "scanned=%d matched=%d succeeded=%d fell_back=%d failed=%d\n",
		stats.Scanned, stats.Matched, stats.Succeeded, stats.FellBack, stats.Failed)
	if stats.Failed > 0 {
		a.Logger.Warn("import finished with failures", zap.Uint32("failed", stats.Failed))
	}
	return nil
}

func printResult(cmd *cobra.Command, r ingest.FileResult) {
	if r.Err != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", r.Path, r.Err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK   %s invoice=%s provider=%s fell_back=%t\n", r.Path, r.InvoiceID, r.Provider, r.FellBack)
}
