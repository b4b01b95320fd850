// pkg/logging/logging.go
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// logWriter stores the current log writer globally. Stdout carries the
	// scan output, so logs always go to stderr unless overridden.
	logWriter io.Writer
)

// stdLogWriter forwards stdlib log output into zerolog at debug level.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	w.logger.Debug().Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// init sets the global logging level for zerolog to ErrorLevel by default
func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	logWriter = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// ConfigureGlobalLogging configures the global logger from a level name
// lowered by the -v count. An unknown level name is an error.
func ConfigureGlobalLogging(levelStr string, verbosity int) error {
	if levelStr != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(levelStr)); err != nil {
			return fmt.Errorf("invalid log level %q", levelStr)
		}
	}
	ConfigureGlobal(LevelForVerbosity(levelStr, verbosity))
	return nil
}

// ConfigureGlobal installs a global logger at the given level writing to
// the configured log writer.
func ConfigureGlobal(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	logContext := zerolog.New(getLogWriter()).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: log.Logger})
}

// LevelForVerbosity maps the -v count onto a zerolog level. A zero count
// keeps the configured level; each -v lowers the threshold one step from
// info down to trace.
func LevelForVerbosity(configured string, verbosity int) zerolog.Level {
	base := parseLogLevel(configured)
	var v zerolog.Level
	switch {
	case verbosity <= 0:
		return base
	case verbosity == 1:
		v = zerolog.InfoLevel
	case verbosity == 2:
		v = zerolog.DebugLevel
	default:
		v = zerolog.TraceLevel
	}
	if v < base {
		return v
	}
	return base
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "error"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to error level.")
		return zerolog.ErrorLevel
	}
	return level
}

// getLogWriter returns the configured log writer
func getLogWriter() io.Writer {
	return logWriter
}

// SetLogWriter sets the global log writer. It must be called before
// ConfigureGlobal and before component loggers are created.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// NewLogger returns a component logger on the global writer. Pass
// zerolog.GlobalLevel() to follow the configured verbosity.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, getLogWriter())
}

// NewLoggerWithWriter returns a JSON component logger writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
