// Package logging sets up the application logger. The TUI owns the terminal,
// so everything is written to a file in the data directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileName is the log file created inside the data directory.
const FileName = "wgen.log"

// New returns a logger appending to <dataDir>/wgen.log. Debug mode uses the
// human-readable development encoder; otherwise entries are JSON at info
// level. The returned func flushes buffered entries.
func New(dataDir string, debug bool) (*zap.SugaredLogger, func(), error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	path := filepath.Join(dataDir, FileName)

	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}

	sugar := logger.Sugar()
	sync := func() { _ = logger.Sync() }
	return sugar, sync, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
