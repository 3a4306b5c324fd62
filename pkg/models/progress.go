package models

import (
	"math"
	"time"
)

// ETAUnknown marks an estimate that cannot be computed yet (zero throughput).
const ETAUnknown = time.Duration(math.MaxInt64)

// ProgressEvent is one entry of the per-request progress stream.
// Percent never decreases within a request. The last event of a request
// carries the Outcome.
type ProgressEvent struct {
	RequestID    string        `json:"request_id"`
	Percent      int           `json:"percent"`
	BytesWritten int64         `json:"bytes_written"`
	TotalBytes   int64         `json:"total_bytes"`
	Throughput   float64       `json:"throughput"` // bytes per second
	ETA          time.Duration `json:"eta"`
	Status       string        `json:"status"`
	Outcome      *Outcome      `json:"outcome,omitempty"`
}

// Terminal reports whether this event ends its request's stream.
func (e ProgressEvent) Terminal() bool {
	return e.Outcome != nil
}

// ETAKnown reports whether ETA holds a real estimate.
func (e ProgressEvent) ETAKnown() bool {
	return e.ETA != ETAUnknown
}
