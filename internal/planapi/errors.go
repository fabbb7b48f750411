package planapi

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanGeneration indicates the plan request failed (transport error or non-2xx).
	ErrPlanGeneration = errors.New("planapi: plan generation failed")
	// ErrReportExport indicates the PDF report request failed.
	ErrReportExport = errors.New("planapi: report export failed")
	// ErrEmailDispatch indicates the email report request failed.
	ErrEmailDispatch = errors.New("planapi: email dispatch failed")
	// ErrEmailRequired is returned before any request when no address is given.
	ErrEmailRequired = errors.New("planapi: email address is required")
	// ErrInvalidBaseURL indicates the configured backend URL is unusable.
	ErrInvalidBaseURL = errors.New("planapi: invalid base URL")
)

// StatusError reports a non-2xx response. It unwraps to the sentinel of the
// operation that produced it.
type StatusError struct {
	Op         string
	StatusCode int
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.kind, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.kind }
