package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/jobworker/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger routes messages to the structured logger and, when an error file is
// configured, appends every error to it as well.
type Logger struct {
	errorFile string
	mu        sync.Mutex
}

// NewLogger creates a new logger instance. errorFile may be empty.
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError logs an error with the component name and timestamp
func (l *Logger) LogError(component string, err error) {
	logger.ForComponent(component).WithError(err).Error().Msg("Operation failed")

	if l.errorFile == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.ForComponent(component).Warn().Err(fileErr).Str("file", l.errorFile).Msg("Failed to open error log file")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, component, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}
