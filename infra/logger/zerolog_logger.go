// Package logger adapts rs/zerolog to the core logging interface.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	corelogger "github.com/platotv/plato/core/logger"
)

type zerologAdapter struct {
	log zerolog.Logger
}

// New builds a component-tagged logger. APP_ENV=dev switches to the human
// console format; PLATO_LOG_LEVEL (debug/info/warn/error) caps verbosity,
// defaulting to info.
func New(component string) corelogger.Logger {
	z := zerolog.New(output()).
		Level(level()).
		With().
		Timestamp().
		Str("component", component).
		Logger()
	return &zerologAdapter{log: z}
}

func output() io.Writer {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

func level() zerolog.Level {
	switch strings.ToLower(os.Getenv("PLATO_LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologAdapter) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologAdapter) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *zerologAdapter) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologAdapter) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *zerologAdapter) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
