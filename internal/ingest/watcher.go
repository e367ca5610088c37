package ingest

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // emit PDFs already present
	Debounce    time.Duration // coalesce rapid write bursts, default 500ms
}

// StartWatcher emits paths of PDFs created or written under the roots. Both
// channels are closed once ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *zap.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", zap.Error(err))
		return nil, nil, err
	}

	var initial []string
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path)) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("failed to add root directory", zap.String("root", r), zap.Error(err))
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer w.Close()

		pending := map[string]struct{}{}
		for _, p := range initial {
			pending[p] = struct{}{}
		}
		timer := time.NewTimer(cfg.Debounce)
		if len(initial) == 0 {
			timer.Stop()
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					// new directories join the watch; files fall through
					_ = w.Add(e.Name)
				}
				if AllowedExt(filepath.Ext(e.Name)) && (e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
					pending[e.Name] = struct{}{}
					timer.Reset(cfg.Debounce)
				}
			case <-timer.C:
				for p := range pending {
					select {
					case evCh <- p:
					case <-ctx.Done():
						return
					}
					delete(pending, p)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", zap.Error(err))
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// Watch imports PDFs as they appear under root until ctx ends. Each outcome
// is passed to report.
func (i *Importer) Watch(ctx context.Context, root string, initialScan bool, report func(FileResult)) error {
	events, errs, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: initialScan}, i.logger)
	if err != nil {
		return err
	}
	i.logger.Info("ingest.watch.start", zap.String("root", root))
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if i.cfg.SkipHidden && IsHidden(path) {
				continue
			}
			fileCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
			res, err := i.ImportPath(fileCtx, path)
			cancel()
			if err != nil {
				res.Err = err.Error()
				i.logger.Warn("ingest.file.failed", zap.String("path", path), zap.Error(err))
			}
			if report != nil {
				report(res)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				i.logger.Warn("ingest.watch.error", zap.Error(err))
			}
			if !ok {
				errs = nil
			}
		}
	}
}
