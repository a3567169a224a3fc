package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"cutline/internal/paths"
)

// New creates a logger that writes to a timestamped file inside the project's
// logs directory. With verbose set the output is mirrored to stderr. The
// returned closer should be closed when logging is no longer needed.
func New(p paths.ProjectPaths, verbose bool) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	file, err := os.OpenFile(filepath.Join(p.LogsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if verbose {
		out = io.MultiWriter(file, os.Stderr)
	}
	return log.New(out, "", log.LstdFlags|log.Lmicroseconds), file, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
