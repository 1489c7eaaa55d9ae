// Package errors provides the classified error primitives used across docpages.
//
// Errors carry a category (which drives HTTP status codes and CLI exit codes),
// a severity (which drives the log level) and an optional context map for
// server-side logging. Only the message of a classified error is ever shown to
// HTTP clients; causes and context stay in the logs.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryForbidden, "access denied").
//		WithContext("project", projectSlug).
//		WithCause(resolveErr).
//		Build()
package errors
