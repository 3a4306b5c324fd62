package models

import (
	"fmt"
	"time"
)

// OutcomeKind tags the terminal result of a request.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeInsufficientSpace OutcomeKind = "insufficient_space"
	OutcomePathRejected      OutcomeKind = "path_rejected"
	OutcomeIOFailure         OutcomeKind = "io_failure"
)

// Method is how a successful file was materialized.
type Method string

const (
	MethodSparse   Method = "sparse"
	MethodStreamed Method = "streamed"
)

// Outcome is reported exactly once per request.
// Method, BytesWritten and Elapsed are set for OutcomeSuccess only,
// Reason for OutcomePathRejected and Message for OutcomeIOFailure.
type Outcome struct {
	RequestID    string          `json:"request_id"`
	Kind         OutcomeKind     `json:"kind"`
	Method       Method          `json:"method,omitempty"`
	BytesWritten int64           `json:"bytes_written,omitempty"`
	Elapsed      time.Duration   `json:"elapsed,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Message      string          `json:"message,omitempty"`
	Target       *ResolvedTarget `json:"target,omitempty"`
}

// Success builds a successful outcome.
func Success(method Method, written int64, elapsed time.Duration) Outcome {
	return Outcome{Kind: OutcomeSuccess, Method: method, BytesWritten: written, Elapsed: elapsed}
}

// InsufficientSpace builds an insufficient space outcome.
func InsufficientSpace() Outcome {
	return Outcome{Kind: OutcomeInsufficientSpace}
}

// PathRejected builds a rejected path outcome.
func PathRejected(reason string) Outcome {
	return Outcome{Kind: OutcomePathRejected, Reason: reason}
}

// IOFailure builds an I/O failure outcome from err.
func IOFailure(err error) Outcome {
	return Outcome{Kind: OutcomeIOFailure, Message: err.Error()}
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// Err returns nil for a success and a sentinel-wrapped error otherwise.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomePathRejected:
		return fmt.Errorf("%w: %s", ErrPathRejected, o.Reason)
	case OutcomeInsufficientSpace:
		return ErrInsufficientSpace
	case OutcomeIOFailure:
		return fmt.Errorf("%w: %s", ErrIOFailure, o.Message)
	}
	return fmt.Errorf("unknown outcome kind %q", o.Kind)
}
