// Package errors provides structured error types for the surfdeck host.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category), and carry an optional cause chain. All errors implement
// the standard error interface and support errors.Is/As.
package errors
