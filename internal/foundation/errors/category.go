package errors

import (
	"log/slog"
	"net/http"
)

// ErrorCategory classifies an error. The category alone decides the HTTP
// status, the CLI exit code and the default severity.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryForbidden  ErrorCategory = "forbidden"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryContent    ErrorCategory = "content"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity selects the log level an error is reported at.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

type categoryClass struct {
	status   int
	exit     int
	severity ErrorSeverity
}

var classes = map[ErrorCategory]categoryClass{
	CategoryConfig:     {http.StatusInternalServerError, 7, SeverityFatal},
	CategoryValidation: {http.StatusBadRequest, 2, SeverityError},
	CategoryForbidden:  {http.StatusForbidden, 1, SeverityWarning},
	CategoryNotFound:   {http.StatusNotFound, 1, SeverityInfo},
	CategoryContent:    {http.StatusInternalServerError, 11, SeverityError},
	CategoryRender:     {http.StatusInternalServerError, 11, SeverityError},
	CategoryFileSystem: {http.StatusInternalServerError, 11, SeverityError},
	CategoryRuntime:    {http.StatusServiceUnavailable, 12, SeverityError},
	CategoryInternal:   {http.StatusInternalServerError, 10, SeverityFatal},
}

func classOf(c ErrorCategory) categoryClass {
	if cl, ok := classes[c]; ok {
		return cl
	}
	return categoryClass{http.StatusInternalServerError, 1, SeverityError}
}

// HTTPStatus is the response status for errors of category c.
func (c ErrorCategory) HTTPStatus() int { return classOf(c).status }

// ExitCode is the process exit code for errors of category c.
func (c ErrorCategory) ExitCode() int { return classOf(c).exit }

// Level maps s onto slog.
func (s ErrorSeverity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ErrorContext is structured detail that only ever reaches the logs.
type ErrorContext map[string]any

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// attrs converts the context to slog attributes.
func (c ErrorContext) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, len(c))
	for k, v := range c {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func (c ErrorContext) with(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}
