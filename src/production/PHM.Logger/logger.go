package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
)

// Logger wraps zerolog.Logger with the field helpers used across services
type Logger struct {
	*zerolog.Logger
}

// NewLogger creates a logger from the logging configuration
func NewLogger(cfg *config.LoggingConfig) *Logger {
	out := io.Writer(os.Stdout)
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter creates a logger writing to out. Text format renders
// through a console writer, anything else is emitted as JSON lines.
func NewWithWriter(cfg *config.LoggingConfig, out io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.EnableCaller {
		ctx = ctx.Caller()
	}
	l := ctx.Logger()
	return &Logger{&l}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{&l}
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	logger := l.Logger.With().Interface(key, value).Logger()
	return &Logger{&logger}
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	context := l.Logger.With()
	for key, value := range fields {
		context = context.Interface(key, value)
	}
	logger := context.Logger()
	return &Logger{&logger}
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	logger := l.Logger.With().Err(err).Logger()
	return &Logger{&logger}
}

// WithRequestID adds a request ID to the logger
func (l *Logger) WithRequestID(requestID string) *Logger {
	logger := l.Logger.With().Str("request_id", requestID).Logger()
	return &Logger{&logger}
}

// WithService adds a service name to the logger
func (l *Logger) WithService(service string) *Logger {
	logger := l.Logger.With().Str("service", service).Logger()
	return &Logger{&logger}
}

// WithComponent adds a component name to the logger
func (l *Logger) WithComponent(component string) *Logger {
	logger := l.Logger.With().Str("component", component).Logger()
	return &Logger{&logger}
}

func (l *Logger) Fatal(msg string) {
	l.Logger.Fatal().Msg(msg)
}

func (l *Logger) FatalWithError(err error, msg string) {
	l.Logger.Fatal().Err(err).Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.Logger.Error().Msg(msg)
}

func (l *Logger) ErrorWithError(err error, msg string) {
	l.Logger.Error().Err(err).Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.Logger.Warn().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.Logger.Info().Msg(msg)
}

func (l *Logger) Debug(msg string) {
	l.Logger.Debug().Msg(msg)
}
