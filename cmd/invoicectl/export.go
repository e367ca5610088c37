package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportOut   string
	exportQuery string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored invoices to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path, default invoices-<timestamp>.xlsx")
	exportCmd.Flags().StringVarP(&exportQuery, "q", "q", "", "vendor name or invoice number filter")
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.Export.ExportInvoicesXLSX(cmd.Context(), exportQuery)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = fmt.Sprintf("invoices-%s.xlsx", time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}
