package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeTransientFetch represents network or timeout errors while loading a page
	ErrorTypeTransientFetch ErrorType = "transient_fetch"
	// ErrorTypeStructuralMismatch represents pages where no selector variant matched
	ErrorTypeStructuralMismatch ErrorType = "structural_mismatch"
	// ErrorTypeNoData represents a confirmed empty result, not a failure
	ErrorTypeNoData ErrorType = "no_data"
	// ErrorTypeReconciliation represents a mismatch between extracted and reported row counts
	ErrorTypeReconciliation ErrorType = "reconciliation"
	// ErrorTypeNormalization represents a row whose date fields failed to parse
	ErrorTypeNormalization ErrorType = "normalization"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeStore represents document store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	return e.Type == ErrorTypeTransientFetch
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewTransientFetch creates a new transient fetch error
func NewTransientFetch(source, message string, err error) *ScrapeError {
	return New(ErrorTypeTransientFetch, source, message, err)
}

// NewStructuralMismatch creates a new structural mismatch error
func NewStructuralMismatch(source, message string) *ScrapeError {
	return New(ErrorTypeStructuralMismatch, source, message, nil)
}

// NewNoData creates a new no-data marker
func NewNoData(source string) *ScrapeError {
	return New(ErrorTypeNoData, source, "source reported no data", nil)
}

// NewReconciliation creates a new reconciliation discrepancy
func NewReconciliation(source string, extracted, reported int) *ScrapeError {
	message := fmt.Sprintf("extracted %d rows but source reported %d", extracted, reported)
	return New(ErrorTypeReconciliation, source, message, nil)
}

// NewNormalization creates a new normalization error
func NewNormalization(source, message string) *ScrapeError {
	return New(ErrorTypeNormalization, source, message, nil)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}

// NewStore creates a new store error
func NewStore(source, message string, err error) *ScrapeError {
	return New(ErrorTypeStore, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// IsNoData reports whether err is the confirmed-empty marker
func IsNoData(err error) bool {
	return IsType(err, ErrorTypeNoData)
}
