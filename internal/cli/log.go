// Package cli implements the cleanplots command-line interface.
//
// The commands are:
//   - serve: run the HTTP render API
//   - render: write complex images, line profiles and legends as PNG files
//   - scalebar: print the scalebar chosen for an image
//   - preview: plot a profile's magnitude in the terminal
//
// All commands accept --verbose (-v) for debug logging and --config for a
// YAML or TOML configuration file.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logPrefix tags every line the CLI writes to stderr.
const logPrefix = "cleanplots"

// levelFor maps --verbose onto a log level.
func levelFor(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// commandLogger returns the logger for one invocation of the named command.
// Debug output also reports the calling site.
func commandLogger(w io.Writer, level log.Level, command string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          logPrefix,
		ReportTimestamp: level <= log.DebugLevel,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
	if command != "" {
		l = l.With("cmd", command)
	}
	return l
}

// stopwatch reports how long a file-producing step took.
type stopwatch struct {
	log   *log.Logger
	began time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{log: l, began: time.Now()}
}

// wrote logs that path was written, with its size and the elapsed time.
func (s stopwatch) wrote(path string, size int) {
	s.log.Info("wrote figure", "path", path, "bytes", size,
		"elapsed", time.Since(s.began).Round(time.Millisecond))
}

type loggerCtxKey struct{}

func contextWithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// logFrom returns the command logger on ctx. Commands invoked without the
// root pre-run (tests, mostly) fall back to log.Default().
func logFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
