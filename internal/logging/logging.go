package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the default logger based on verbosity and returns it.
// 0 logs warnings and errors, 1 adds info, 2 and above add debug output with caller locations.
func Setup(w io.Writer, verbosity int) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           levelFor(verbosity),
		ReportCaller:    verbosity >= 2,
		ReportTimestamp: verbosity >= 2,
	})
	log.SetDefault(logger)
	return logger
}

func levelFor(verbosity int) log.Level {
	switch {
	case verbosity <= 0:
		return log.WarnLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

// For returns a logger for a specific component
func For(component string) *log.Logger {
	return log.Default().With("component", component)
}

// Discard returns a logger that drops everything, for tests and library defaults
func Discard() *log.Logger {
	return log.New(io.Discard)
}
