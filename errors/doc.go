// Package errors provides the structured error type returned by the container.
// Every failure carries a machine-readable code so callers can tell an
// unknown name from a dependency cycle or a failed construction.
package errors
