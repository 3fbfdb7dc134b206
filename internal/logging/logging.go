// Package logging wraps zerolog with the three severities the proxy
// subsystem's validator and console need: Info, Success, and Error. Success
// lines are additionally colorized, mirroring a CLI's pretty console output.
package logging

import (
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Logger is the structured logger interface spec.md §9 calls for in place
// of variadic logging macros.
type Logger interface {
	Info(msg string, fields map[string]any)
	Success(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}

type zlogger struct {
	log zerolog.Logger
}

// New builds a Logger with a pretty console writer, in the style of
// Patrick-DE-proxyblob's configureLogging.
func New() Logger {
	out := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}
	return &zlogger{log: zerolog.New(out).With().Timestamp().Logger()}
}

func (l *zlogger) Info(msg string, fields map[string]any) {
	evt := l.log.Info()
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}

func (l *zlogger) Success(msg string, fields map[string]any) {
	evt := l.log.Info()
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(color.GreenString(msg))
}

func (l *zlogger) Error(msg string, err error, fields map[string]any) {
	evt := l.log.Error().Err(err)
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}
