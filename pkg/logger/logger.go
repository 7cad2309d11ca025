// Package logger provides structured logging for gmq, backed by zerolog.
//
// Components log through the *C / *CF helpers so every line carries a
// component field, which keeps the console output greppable when several
// subsystems (client, directory, paginator) are active at once.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's levels with package-local names.
type Level int8

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var log zerolog.Logger

func init() {
	Setup(os.Stderr, "console")
}

// Setup configures the package logger. Format is "console" or "json".
func Setup(out io.Writer, format string) {
	if out == nil {
		out = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}
	log = zerolog.New(out).With().Timestamp().Logger()
}

// SetLevel sets the minimum level emitted.
func SetLevel(level Level) {
	switch level {
	case DEBUG:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case INFO:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case WARN:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case ERROR:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func event(e *zerolog.Event, component, msg string, fields map[string]any) {
	e = e.Str("component", component)
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// DebugCF logs a debug message with a component and structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	event(log.Debug(), component, msg, fields)
}

// InfoC logs an info message with a component.
func InfoC(component, msg string) {
	event(log.Info(), component, msg, nil)
}

// InfoCF logs an info message with a component and structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	event(log.Info(), component, msg, fields)
}

// WarnCF logs a warning with a component and structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	event(log.Warn(), component, msg, fields)
}

// ErrorCF logs an error with a component and structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	event(log.Error(), component, msg, fields)
}
