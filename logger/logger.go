package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

var (
	// Default is the default logger instance
	Default *Logger
)

// Init initializes the logger from LOG_LEVEL / JOBWORKER_ENVIRONMENT
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if os.Getenv("JOBWORKER_ENVIRONMENT") == "production" {
		// JSON lines for log collectors
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).With().Timestamp().Logger()
	}

	Default = &Logger{logger: logger}

	Default.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("JOBWORKER_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func ensure() {
	if Default == nil {
		Init()
	}
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithError adds an error to the logger
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal returns a fatal event
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	ensure()
	Default.Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	ensure()
	Default.Warn().Msgf(format, v...)
}

// ForComponent creates a logger tagged with a component name
func ForComponent(component string) *Logger {
	ensure()
	return Default.WithField("component", component)
}

// ForWorker creates a logger for the poll-and-notify worker
func ForWorker() *Logger {
	return ForComponent("worker")
}

// ForToken creates a logger for a token provider strategy
func ForToken(strategy string) *Logger {
	return ForComponent("token").WithField("strategy", strategy)
}

// ForSearch creates a logger for the search client
func ForSearch() *Logger {
	return ForComponent("search")
}

// ForNotifier creates a logger for a notification sink
func ForNotifier(sink string) *Logger {
	return ForComponent("notifier").WithField("sink", sink)
}

// ForCache creates a logger for the cache
func ForCache() *Logger {
	return ForComponent("cache")
}

