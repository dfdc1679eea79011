package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// File is one generated output file.
type File struct {
	Path    string
	Content []byte
}

// Writer writes generated files in parallel. Go sources are passed through
// goimports before they are written.
type Writer struct {
	workers int
	logger  *slog.Logger

	mu      sync.Mutex
	written int
	bytes   int64
}

// NewWriter returns a Writer using one worker per CPU.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{workers: runtime.GOMAXPROCS(0), logger: logger}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Written returns the number of files and bytes written so far.
func (w *Writer) Written() (files int, bytes int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written, w.bytes
}

// Write writes every file, stopping at the first error.
func (w *Writer) Write(ctx context.Context, files ...File) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.write(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) write(f File) error {
	content := f.Content
	if filepath.Ext(f.Path) == ".go" {
		formatted, err := imports.Process(f.Path, content, nil)
		if err != nil {
			// Keep the unformatted source next to the target for debugging.
			debugPath := f.Path + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, content, 0o644)
			return fmt.Errorf("format %s: %w (unformatted written to %s)", f.Path, err, debugPath)
		}
		content = formatted
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(f.Path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	w.mu.Lock()
	w.written++
	w.bytes += int64(len(content))
	w.mu.Unlock()
	w.logger.Debug("file written", "path", f.Path, "bytes", len(content))
	return nil
}
