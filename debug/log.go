package debug

import (
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// The TUI owns the terminal, so diagnostics go to a log file instead
// of stdout. Logging is off until Enable is called; Log before Enable
// (or after a failed Enable) is a no-op.

var (
	mu     sync.Mutex
	file   *os.File
	logger *charmlog.Logger
)

// Enable starts logging to the given file, truncating any previous run.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	logger = charmlog.NewWithOptions(f, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	logger.Info("logging started")
	return nil
}

// Disable stops logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
}

// Log writes a categorized message to the debug log.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		return
	}
	logger.With("cat", category).Infof(format, args...)
	file.Sync() // flush immediately so we see logs even on crash
}
