package logging

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	ErrInvalidLogFormat = errors.New("invalid log format, must be one of 'console' or 'json'")

	setupGlobals sync.Once
)

func CreateLogger(level zerolog.Level, format string, writer io.Writer) (zerolog.Logger, error) {
	setupGlobals.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339
	})

	var output io.Writer

	switch format {
	case "console":
		output = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = writer
			w.TimeFormat = time.RFC3339
		})
	case "json":
		output = writer
	default:
		return zerolog.Logger{}, fmt.Errorf("%w, got %q", ErrInvalidLogFormat, format)
	}

	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger(), nil
}

// ComponentLogger returns a child logger for the given component, never more
// verbose than minLevel. Libraries like badger are too chatty otherwise.
func ComponentLogger(logger *zerolog.Logger, component string, minLevel zerolog.Level) *zerolog.Logger {
	child := logger.With().Str("component", component).Logger()
	if child.GetLevel() < minLevel {
		child = child.Level(minLevel)
	}
	return &child
}
