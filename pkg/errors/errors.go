package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeToken represents credential acquisition failures
	ErrorTypeToken ErrorType = "token"
	// ErrorTypeFetch represents search API failures (transport or non-2xx)
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents malformed search API responses
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeNotify represents notification sink errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// JobError is the error type shared by every component of the worker.
type JobError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *JobError) Error() string {
	if e.Component == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *JobError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *JobError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeToken, ErrorTypeFetch, ErrorTypeNotify:
		return true
	case ErrorTypeRateLimit, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsFetchFailure reports whether the error belongs to the fetch family
// (transport/status, malformed body or rate limiting).
func (e *JobError) IsFetchFailure() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeParsing, ErrorTypeRateLimit:
		return true
	}
	return false
}

// As extracts a *JobError from err's chain.
func As(err error) (*JobError, bool) {
	var jobErr *JobError
	if stderrors.As(err, &jobErr) {
		return jobErr, true
	}
	return nil, false
}

// IsType reports whether err's chain contains a JobError of the given type.
func IsType(err error, t ErrorType) bool {
	jobErr, ok := As(err)
	return ok && jobErr.Type == t
}

// New creates a new JobError
func New(errType ErrorType, component, message string, err error) *JobError {
	return &JobError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewToken creates a new credential acquisition error
func NewToken(component, message string, err error) *JobError {
	return New(ErrorTypeToken, component, message, err)
}

// NewFetch creates a new fetch error
func NewFetch(component, message string, err error) *JobError {
	return New(ErrorTypeFetch, component, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *JobError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component string, duration time.Duration) *JobError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, component, message, nil)
}

// NewNotify creates a new notification error
func NewNotify(component, message string, err error) *JobError {
	return New(ErrorTypeNotify, component, message, err)
}

// NewCache creates a new cache error
func NewCache(component, message string, err error) *JobError {
	return New(ErrorTypeCache, component, message, err)
}

// NewValidation creates a new validation error
func NewValidation(component, message string) *JobError {
	return New(ErrorTypeValidation, component, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *JobError {
	return New(ErrorTypeConfiguration, "", message, err)
}
