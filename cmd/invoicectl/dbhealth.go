package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoices-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoices-tracker/internal/server"
)

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Ping the store and report how many invoices it holds",
	Args:  cobra.NoArgs,
	RunE:  runDBHealth,
}

func runDBHealth(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := server.PingDB(cmd.Context(), a.DB, a.Logger, time.Second); err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	page, err := a.Invoices.List(cmd.Context(), invoices.ListRequest{Limit: 1})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (driver=%s invoices=%d)\n", a.DB.Dialect(), page.Pagination.Total)
	return nil
}
