package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/async"
)

// Config controls a bulk import.
type Config struct {
	Model      string        // provider requested for every file
	Workers    int           // default 2
	RPS        float64       // provider calls per second, 0 = unlimited
	SkipHidden bool          // skip dot files and dot directories
	Timeout    time.Duration // per file, default 3m
}

// Importer stores PDFs from the local filesystem, extracts their fields
// and creates an invoice for each.
type Importer struct {
	cfg      Config
	blobs    BlobWriter
	extract  Extractor
	invoices InvoiceCreator
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewImporter(cfg Config, blobs BlobWriter, extract Extractor, invoices InvoiceCreator, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Importer{
		cfg:      cfg,
		blobs:    blobs,
		extract:  extract,
		invoices: invoices,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// ImportPath imports a single PDF. The returned result is filled as far as
// the import got, so a failed extraction still reports the stored FileID.
func (i *Importer) ImportPath(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{Path: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	if !AllowedExt(filepath.Ext(abs)) {
		return out, fmt.Errorf("unsupported extension %q", filepath.Ext(abs))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return out, err
	}
	if info.Size() > constants.MaxUploadBytes {
		return out, errors.New("file too large")
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return out, err
	}

	fileID := uuid.NewString()
	fileName := filepath.Base(abs)
	if _, err := i.blobs.Put(ctx, fileID, data, fileName, constants.PDFContentType); err != nil {
		return out, fmt.Errorf("store blob: %w", err)
	}
	out.FileID = fileID

	if err := i.limiter.Wait(ctx); err != nil {
		return out, err
	}
	res, err := i.extract.ExtractPDF(ctx, i.cfg.Model, data)
	if err != nil {
		return out, fmt.Errorf("extract: %w", err)
	}
	out.Provider = string(res.Provider)
	out.FellBack = res.FellBack

	doc, err := buildDocument(fileID, fileName, res.Fields)
	if err != nil {
		return out, err
	}
	created, err := i.invoices.Create(ctx, doc)
	if err != nil {
		return out, fmt.Errorf("create invoice: %w", err)
	}
	out.InvoiceID = created.ID

	i.logger.Info("ingest.file.ok",
		zap.String("path", abs),
		zap.String("file_id", fileID),
		zap.String("invoice_id", created.ID),
		zap.String("provider", out.Provider),
		zap.Bool("fell_back", out.FellBack),
	)
	return out, nil
}

// ImportDirectory walks root and imports every PDF on the worker pool.
// Results come back in walk order together with aggregate stats.
func (i *Importer) ImportDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var (
		results []FileResult
		paths   []int // indexes into results still to import
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			return nil
		}
		if i.cfg.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, len(results))
		results = append(results, FileResult{Path: path})
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	var mu sync.Mutex
	q := async.NewWorkerQueue(func(jobCtx context.Context, job async.Job) error {
		idx, _ := strconv.Atoi(job.ID)
		if err := ctx.Err(); err != nil {
			mu.Lock()
			results[idx].Err = err.Error()
			mu.Unlock()
			return err
		}
		res, err := i.ImportPath(jobCtx, job.Path)
		if err != nil {
			res.Err = err.Error()
		}
		mu.Lock()
		results[idx] = res
		mu.Unlock()
		return err
	}, i.logger, async.WithParent(ctx), async.WithWorkers(i.cfg.Workers), async.WithProcessTimeout(i.cfg.Timeout))

	for _, idx := range paths {
		if err := q.Enqueue(ctx, async.Job{ID: strconv.Itoa(idx), Path: results[idx].Path}); err != nil {
			results[idx].Err = err.Error()
		}
	}
	if err := q.Shutdown(context.Background()); err != nil {
		return results, stats, err
	}

	for _, r := range results {
		switch {
		case r.Err != "":
			stats.Failed++
		case r.InvoiceID != "":
			stats.Succeeded++
			if r.FellBack {
				stats.FellBack++
			}
		}
	}
	i.logger.Info("ingest.directory.done",
		zap.String("root", root),
		zap.Uint32("matched", stats.Matched),
		zap.Uint32("succeeded", stats.Succeeded),
		zap.Uint32("failed", stats.Failed),
	)
	return results, stats, nil
}
