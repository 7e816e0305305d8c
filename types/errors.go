package types

import (
	"fmt"
	"strings"
)

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// ParseError reports that a generation capability returned text that failed
// structured parsing. Fatal to the whole request.
type ParseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable model output: %v (payload: %s)", e.Stage, e.Err, snippet(e.Raw))
}

func (e *ParseError) Unwrap() error { return e.Err }

// ServiceError is a non-success status from a generation, storage, or media
// capability. Carries the raw response body for diagnostics.
type ServiceError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Service, e.StatusCode, snippet(e.Body))
}

// MediaError is a non-zero exit from an external media-conversion process.
type MediaError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, snippet(e.Stderr))
}

func (e *MediaError) Unwrap() error { return e.Err }

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
