// Package errors provides the failure taxonomy shared by every generation path.
// It implements a structured error type with a closed set of codes, HTTP status
// mapping and classification of arbitrary errors onto that set.
package errors
