// Package telemetry provides the leveled, indentable logger used across the
// ATPG engine to trace circuit construction and the PODEM search.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Level is the verbosity of a log record.
type Level int

const (
	ErrorLevel Level = iota
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// String returns the level's textual tag.
func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "ERROR"
	case WarningLevel:
		return "WARNING"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger is a small leveled logger whose Indent/Outdent pair is meant to
// mirror PODEM recursion depth, so nested search traces read as nested text.
type Logger struct {
	Level      Level
	Output     io.Writer
	ShowTime   bool
	IndentSize int
	indent     int
}

// New creates a logger at the given level, writing to stdout.
func New(level Level) *Logger {
	return &Logger{
		Level:      level,
		Output:     os.Stdout,
		ShowTime:   true,
		IndentSize: 2,
	}
}

// NewFile creates a logger at the given level, writing to a newly created
// file at path.
func NewFile(level Level, path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "telemetry: create log file %s", path)
	}
	return &Logger{
		Level:      level,
		Output:     f,
		ShowTime:   true,
		IndentSize: 2,
	}, nil
}

// Indent increases the indentation applied to subsequent records.
func (l *Logger) Indent() { l.indent++ }

// Outdent decreases the indentation applied to subsequent records, floored
// at zero.
func (l *Logger) Outdent() {
	if l.indent > 0 {
		l.indent--
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level > l.Level {
		return
	}

	var b strings.Builder
	if l.ShowTime {
		b.WriteString(time.Now().Format("15:04:05.000 "))
	}
	b.WriteString(fmt.Sprintf("[%s] ", level))
	if l.indent > 0 {
		b.WriteString(strings.Repeat(" ", l.indent*l.IndentSize))
	}
	b.WriteString(fmt.Sprintf(format, args...))
	b.WriteString("\n")

	fmt.Fprint(l.Output, b.String())
}

// Error logs at ErrorLevel.
func (l *Logger) Error(format string, args ...interface{}) { l.log(ErrorLevel, format, args...) }

// Warning logs at WarningLevel.
func (l *Logger) Warning(format string, args ...interface{}) { l.log(WarningLevel, format, args...) }

// Info logs at InfoLevel.
func (l *Logger) Info(format string, args ...interface{}) { l.log(InfoLevel, format, args...) }

// Debug logs at DebugLevel.
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DebugLevel, format, args...) }

// Trace logs at TraceLevel.
func (l *Logger) Trace(format string, args ...interface{}) { l.log(TraceLevel, format, args...) }

// Circuit logs a DebugLevel record tagged for circuit construction.
func (l *Logger) Circuit(format string, args ...interface{}) {
	l.log(DebugLevel, "CIRCUIT: "+format, args...)
}

// Podem logs a DebugLevel record tagged for the top-level PODEM search.
func (l *Logger) Podem(format string, args ...interface{}) {
	l.log(DebugLevel, "PODEM: "+format, args...)
}

// Objective logs a TraceLevel record tagged for objective selection.
func (l *Logger) Objective(format string, args ...interface{}) {
	l.log(TraceLevel, "OBJECTIVE: "+format, args...)
}

// Backtrace logs a TraceLevel record tagged for the back-trace walk.
func (l *Logger) Backtrace(format string, args ...interface{}) {
	l.log(TraceLevel, "BACKTRACE: "+format, args...)
}
