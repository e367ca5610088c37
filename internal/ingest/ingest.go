package ingest

import (
	"context"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
)

// FileResult is the per-file import outcome.
type FileResult struct {
	Path      string `json:"path"`
	FileID    string `json:"fileId,omitempty"`
	InvoiceID string `json:"invoiceId,omitempty"`
	Provider  string `json:"provider,omitempty"`
	FellBack  bool   `json:"fellBack,omitempty"`
	Err       string `json:"error,omitempty"`
}

// DirStats summarizes a directory import.
type DirStats struct {
	Scanned   uint32 `json:"scanned"`
	Matched   uint32 `json:"matched"`
	Succeeded uint32 `json:"succeeded"`
	FellBack  uint32 `json:"fellBack"`
	Failed    uint32 `json:"failed"`
}

// BlobWriter stores the raw PDF.
type BlobWriter interface {
	Put(ctx context.Context, fileID string, data []byte, filename, contentType string) (*entity.Upload, error)
}

// Extractor turns PDF bytes into normalized fields.
type Extractor interface {
	ExtractPDF(ctx context.Context, model string, pdf []byte) (*pipeline.Result, error)
}

// InvoiceCreator persists a reviewed invoice document.
type InvoiceCreator interface {
	Create(ctx context.Context, doc map[string]any) (*entity.InvoiceDocument, error)
}
