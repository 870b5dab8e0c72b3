// Package logs writes and reads the structured run log kept under .mle/logs/.
package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FilePrefix names the daily log files: chain-2006-01-02.log
const FilePrefix = "chain-"

// FieldRunID tags every entry written during one driver run
const FieldRunID = "run_id"

// RunLogger is a zap logger bound to one run
type RunLogger struct {
	*zap.Logger
	RunID string
	Path  string
}

// FileName returns the log file name for the given day
func FileName(day time.Time) string {
	return FilePrefix + day.Format("2006-01-02") + ".log"
}

// New opens today's log file in logsDir and returns a logger tagged with a
// fresh run id. level is one of debug, info, warn, error.
func New(logsDir, level string) (*RunLogger, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create logs directory: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	path := filepath.Join(logsDir, FileName(time.Now()))

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Sampling = nil
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	runID := uuid.NewString()
	return &RunLogger{
		Logger: logger.With(zap.String(FieldRunID, runID)),
		RunID:  runID,
		Path:   path,
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *RunLogger {
	return &RunLogger{Logger: zap.NewNop()}
}

// Close flushes buffered entries
func (l *RunLogger) Close() error {
	return l.Sync()
}
