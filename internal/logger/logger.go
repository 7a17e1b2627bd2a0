// Package logger provides leveled logging for the lightway CLI.
//
// Runs are quiet by default: only errors reach the output until
// verbose mode lowers the threshold to debug.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu        sync.RWMutex
	threshold Level     = LevelError
	output    io.Writer = os.Stderr
)

// SetVerbose switches between printing everything and printing errors only.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		threshold = LevelDebug
	} else {
		threshold = LevelError
	}
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// Enabled reports whether messages at level l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= threshold
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Section prints a banner before a stage of a run.
func Section(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if threshold <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", fmt.Sprintf(format, args...))
	}
}

// Debug traces per-file and per-record progress.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info reports run summaries such as record counts.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn reports recoverable problems such as skipped columns.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error is printed at every threshold.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < threshold {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(output, "[%s] %s\n", l, strings.TrimRight(msg, "\n"))
}
