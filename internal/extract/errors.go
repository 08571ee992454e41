package extract

import (
	"errors"
	"fmt"
	"net/http"
)

// The pipeline reports exactly one aggregated error per request, classified
// into one of the types below. Degenerate but valid outcomes (no headings,
// no tables) are not errors.

// ResourceFetchError: the source document could not be retrieved.
type ResourceFetchError struct {
	URL string
	Err error
}

func (e *ResourceFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}
func (e *ResourceFetchError) Unwrap() error { return e.Err }

// UnsupportedDocumentError: the document cannot be processed as submitted
// (unparsable, zero pages, or no text layer with no detector configured).
type UnsupportedDocumentError struct {
	Reason string
	Err    error
}

func (e *UnsupportedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported document: %s: %v", e.Reason, e.Err)
	}
	return "unsupported document: " + e.Reason
}
func (e *UnsupportedDocumentError) Unwrap() error { return e.Err }

// ExtractionEngineError: a pipeline stage failed mid-flight.
type ExtractionEngineError struct {
	Stage string
	Err   error
}

func (e *ExtractionEngineError) Error() string {
	return fmt.Sprintf("extraction failed at stage %s: %v", e.Stage, e.Err)
}
func (e *ExtractionEngineError) Unwrap() error { return e.Err }

// DegenerateInputError: request parameters select nothing to work on, such
// as an empty reference window.
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string { return "degenerate input: " + e.Reason }

// ConfigurationError: the request needs a capability that is not
// configured on this deployment.
type ConfigurationError struct {
	Capability string
}

func (e *ConfigurationError) Error() string {
	return "capability not configured: " + e.Capability
}

// HTTPStatus maps a pipeline error to an HTTP status code and a short
// public message. Unclassified errors map to 500.
func HTTPStatus(err error) (int, string) {
	var fetchErr *ResourceFetchError
	if errors.As(err, &fetchErr) {
		return http.StatusBadGateway, "failed to fetch source document"
	}
	var unsupErr *UnsupportedDocumentError
	if errors.As(err, &unsupErr) {
		return http.StatusUnsupportedMediaType, unsupErr.Error()
	}
	var degenErr *DegenerateInputError
	if errors.As(err, &degenErr) {
		return http.StatusUnprocessableEntity, degenErr.Error()
	}
	var confErr *ConfigurationError
	if errors.As(err, &confErr) {
		return http.StatusNotImplemented, confErr.Error()
	}
	var engErr *ExtractionEngineError
	if errors.As(err, &engErr) {
		return http.StatusInternalServerError, "document extraction failed"
	}
	return http.StatusInternalServerError, "internal error"
}
