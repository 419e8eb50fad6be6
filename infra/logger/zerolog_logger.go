package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

var console atomic.Bool

// SetConsole makes loggers created afterwards use the console format.
func SetConsole(on bool) { console.Store(on) }

// NewZerologLogger creates a ZerologLogger writing to stderr, keeping stdout
// free for command output. APP_ENV=dev or SetConsole selects the console
// format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	dev := console.Load() || strings.ToLower(os.Getenv("APP_ENV")) == "dev"
	return NewZerologLoggerTo(os.Stderr, component, dev)
}

// NewZerologLoggerTo writes to w, in console format when console is set.
func NewZerologLoggerTo(w io.Writer, component string, console bool) *ZerologLogger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
