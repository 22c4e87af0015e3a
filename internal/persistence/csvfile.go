package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/clock"
	"github.com/spec-kit/support-tracker/internal/config"
)

// ErrWriteExhausted is returned when every write attempt failed.
var ErrWriteExhausted = errors.New("write attempts exhausted")

// CSVFile owns the on-disk ticket table. Writes replace the whole file
// atomically and are retried with a fixed delay; there is no locking, so
// the last successful writer wins.
type CSVFile struct {
	path      string
	retries   int
	delay     time.Duration
	clock     clock.Clock
	logger    *zap.Logger
	writeFile func(path string, data []byte) error
}

// NewCSVFile builds a file handle from store configuration.
func NewCSVFile(cfg config.StoreConfig, clk clock.Clock, logger *zap.Logger) *CSVFile {
	retries := cfg.WriteRetries
	if retries <= 0 {
		retries = 1
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVFile{
		path:      cfg.Path,
		retries:   retries,
		delay:     cfg.RetryDelay(),
		clock:     clk,
		logger:    logger,
		writeFile: writeFile,
	}
}

// Path returns the file location.
func (f *CSVFile) Path() string {
	return f.path
}

// Read returns the raw file content. A missing file yields an error
// satisfying errors.Is(err, os.ErrNotExist).
func (f *CSVFile) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Write replaces the file content, retrying failed attempts. It gives up
// early when ctx is done.
func (f *CSVFile) Write(ctx context.Context, data []byte) error {
	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = f.writeFile(f.path, data)
		if lastErr == nil {
			f.logger.Debug("store written", zap.String("path", f.path), zap.Int("attempt", attempt), zap.Int("bytes", len(data)))
			return nil
		}
		f.logger.Warn("store write failed", zap.String("path", f.path), zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt < f.retries {
			f.clock.Sleep(f.delay)
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrWriteExhausted, f.retries, lastErr)
}

// Create writes data only when no file exists yet. It reports whether the
// file was created; an existing file is left untouched.
func (f *CSVFile) Create(data []byte) (bool, error) {
	if err := ensureDir(f.path); err != nil {
		return false, err
	}
	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return true, err
	}
	return true, out.Close()
}

// writeFile stages data in a temp file next to path and renames it into
// place, so readers see either the old content or the new, never a
// truncated file.
func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
