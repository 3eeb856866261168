// Package errors provides foundational, type-safe error primitives used across notebinder.
//
// This package contains classified error types and helpers for consistent error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, validation, conflict, render, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - Categorized: Interface implemented by typed pipeline errors so adapters can route them
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategorySource, "decode failed").
//		WithContext("path", path).
//		WithCause(originalErr).
//		Build()
package errors
