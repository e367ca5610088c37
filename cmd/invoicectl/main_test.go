package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoices-tracker/internal/ingest"
)

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"extract", "import", "export", "dbhealth", "migrate"})
	assert.NotNil(t, importCmd.Flags().Lookup("watch"))
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printResult(cmd, ingest.FileResult{Path: "a.pdf", InvoiceID: "inv-1", Provider: "groq", FellBack: true})
	printResult(cmd, ingest.FileResult{Path: "b.pdf", Err: "extract: boom"})

	assert.Equal(t, "OK   a.pdf invoice=inv-1 provider=groq fell_back=true\nFAIL b.pdf: extract: boom\n", buf.String())
}
