/*
Package log is the process-wide levelled logger.

Messages go to stderr so that spectrum rows written to stdout stay machine
readable. The level is a single atomic word, so checking it on a hot path
costs one load.
*/
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// levelNames holds the tag printed for each level, padded to the widest.
var levelNames = [...]string{
	LevelDebug: "[DEBUG]",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
	LevelError: "[ERROR]",
	LevelFatal: "[FATAL]",
}

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	if int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return strings.Trim(levelNames[l], "[] ")
}

// ParseLevel converts a level name (case-insensitive) to a LogLevel.
// Unknown names yield LevelInfo and false.
func ParseLevel(name string) (LogLevel, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn, true
	}
	for l := range levelNames {
		if LogLevel(l).String() == name {
			return LogLevel(l), true
		}
	}
	return LevelInfo, false
}

var (
	currentLevel atomic.Uint32
	logger       = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global level.
func SetLevel(level LogLevel) { currentLevel.Store(uint32(level)) }

// GetLevel returns the global level.
func GetLevel() LogLevel { return LogLevel(currentLevel.Load()) }

// Enabled reports whether messages at level are currently written.
func Enabled(level LogLevel) bool { return level >= GetLevel() }

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

func logf(level LogLevel, format string, v []any) {
	if !Enabled(level) {
		return
	}
	logger.Print(levelNames[level] + " " + fmt.Sprintf(format, v...))
}

// Debugf logs a debug message.
func Debugf(format string, v ...any) { logf(LevelDebug, format, v) }

// Infof logs an informational message.
func Infof(format string, v ...any) { logf(LevelInfo, format, v) }

// Warnf logs a warning.
func Warnf(format string, v ...any) { logf(LevelWarn, format, v) }

// Errorf logs an error.
func Errorf(format string, v ...any) { logf(LevelError, format, v) }

// Fatalf logs regardless of level and exits with status 1.
func Fatalf(format string, v ...any) {
	logger.Fatal(levelNames[LevelFatal] + " " + fmt.Sprintf(format, v...))
}
