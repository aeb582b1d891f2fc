package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LogFileName is the file, relative to the working directory, that receives a
// copy of every log line.
const LogFileName = "shelfscout.log"

var (
	once   sync.Once
	logger *slog.Logger
	level  = new(slog.LevelVar)
)

// Logger returns a singleton slog.Logger that writes both to stderr and a
// persistent log file inside the working directory. When the file cannot be
// opened the logger writes to stderr only. Stdout is left to command output.
// Safe for concurrent use.
func Logger() *slog.Logger {
	once.Do(func() {
		var out io.Writer = os.Stderr
		if file, err := openLogFile(); err == nil {
			out = io.MultiWriter(os.Stderr, file)
		}
		logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	})

	return logger
}

// For returns the process logger tagged with a component name.
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}

// SetDebug toggles debug level output.
func SetDebug(enabled bool) {
	if enabled {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openLogFile() (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cwd, LogFileName)
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
