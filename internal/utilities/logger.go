package utilities

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antonio-alexander/go-employee-query/internal"

	"github.com/rs/zerolog"
)

type logger struct {
	zerolog.Logger
	config struct {
		Level Level
	}
}

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	default:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger writes json lines to stdout; an io.Writer parameter replaces
// the output
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	var writer io.Writer = os.Stdout

	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			writer = p
		}
	}
	l := &logger{
		Logger: zerolog.New(writer).With().Timestamp().Logger(),
	}
	l.config.Level = Error
	l.Logger = l.Logger.Level(l.config.Level.zerolog())
	return l
}

func (l *logger) Configure(envs map[string]string) error {
	l.config.Level = Error
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.Level = atoLogLevel(logLevel)
	}
	l.Logger = l.Logger.Level(l.config.Level.zerolog())
	return nil
}

func (l *logger) event(ctx context.Context, e *zerolog.Event, format string, v ...any) {
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		e = e.Str("correlation_id", correlationId)
	}
	e.Msg(fmt.Sprintf(format, v...))
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Error(), format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Info(), format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Debug(), format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Trace(), format, v...)
}
