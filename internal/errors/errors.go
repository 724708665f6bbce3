// Package errors collects per-page failures during export and audit, and
// decorates fatal errors with actionable suggestions for the CLI.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// PageError is a failure tied to one route of the site.
type PageError struct {
	Path      string
	Message   string
	Severity  ErrorSeverity
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (pe *PageError) Error() string {
	if pe.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", pe.Path, pe.Severity, pe.Message, pe.Err)
	}
	return fmt.Sprintf("%s: %s: %s", pe.Path, pe.Severity, pe.Message)
}

// Unwrap returns the underlying cause, if any.
func (pe *PageError) Unwrap() error {
	return pe.Err
}

// ErrorCollector gathers page errors from concurrent workers.
type ErrorCollector struct {
	pageErrors []PageError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		pageErrors: make([]PageError, 0),
	}
}

// Add adds a page error to the collector
func (ec *ErrorCollector) Add(err PageError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.pageErrors = append(ec.pageErrors, err)
}

// AddError records err against path at error severity. Nil errors are ignored.
func (ec *ErrorCollector) AddError(path string, err error) {
	if err == nil {
		return
	}
	ec.Add(PageError{Path: path, Message: "failed", Severity: ErrorSeverityError, Err: err})
}

// GetErrors returns all collected errors sorted by path.
func (ec *ErrorCollector) GetErrors() []PageError {
	ec.mutex.RLock()
	result := make([]PageError, len(ec.pageErrors))
	copy(result, ec.pageErrors)
	ec.mutex.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// GetErrorsByPath returns errors for a specific path
func (ec *ErrorCollector) GetErrorsByPath(path string) []PageError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []PageError
	for _, err := range ec.pageErrors {
		if err.Path == path {
			out = append(out, err)
		}
	}
	return out
}

// HasErrors reports whether anything at error severity was collected.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	for _, err := range ec.pageErrors {
		if err.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of collected entries of any severity.
func (ec *ErrorCollector) Len() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.pageErrors)
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.pageErrors = ec.pageErrors[:0]
}

// Err joins every error severity entry into one error, or returns nil.
func (ec *ErrorCollector) Err() error {
	var errs []error
	for _, pe := range ec.GetErrors() {
		if pe.Severity >= ErrorSeverityError {
			pe := pe
			errs = append(errs, &pe)
		}
	}
	return errors.Join(errs...)
}
