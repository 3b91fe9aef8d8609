// Package domain holds the core types shared across the FreightLens
// services: page images, extraction outcomes, comparison results, and the
// error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for reporting and HTTP status mapping.
type ErrorKind string

const (
	// KindConfiguration marks a missing or invalid credential/setting.
	// Fatal at startup; never retried.
	KindConfiguration ErrorKind = "configuration"
	// KindValidation marks bad caller input (missing file, wrong type,
	// empty payload). The caller must correct the input.
	KindValidation ErrorKind = "validation"
	// KindConversion marks a failure of the PDF-to-image step.
	KindConversion ErrorKind = "conversion"
	// KindExtraction marks a failure of the field-extraction step.
	KindExtraction ErrorKind = "extraction"
	// KindComparison marks a failure of the order-comparison step.
	KindComparison ErrorKind = "comparison"
	// KindUpstream marks a generic upstream service failure.
	KindUpstream ErrorKind = "upstream"
)

// Error is the typed error carried across component boundaries.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to the status surfaced to API callers.
// Validation errors are the caller's fault; everything else is a 500.
func (e *Error) HTTPStatus() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ConfigurationError reports a missing credential or invalid setting.
func ConfigurationError(message string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: message, Err: err}
}

// ValidationError reports invalid caller input.
func ValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// ConversionError reports a failed PDF-to-image conversion.
func ConversionError(message string, err error) *Error {
	return &Error{Kind: KindConversion, Message: message, Err: err}
}

// ExtractionError reports a failed field extraction.
func ExtractionError(message string, err error) *Error {
	return &Error{Kind: KindExtraction, Message: message, Err: err}
}

// ComparisonError reports a failed order comparison.
func ComparisonError(message string, err error) *Error {
	return &Error{Kind: KindComparison, Message: message, Err: err}
}

// UpstreamError reports a generic upstream service failure.
func UpstreamError(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf returns the ErrorKind of err, or KindUpstream when err is not a
// typed domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUpstream
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.HTTPStatus()
	}
	return http.StatusInternalServerError
}
