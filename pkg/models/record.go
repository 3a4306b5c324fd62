package models

import "time"

// AllocationRecord is the journal entry kept for one finished request.
type AllocationRecord struct {
	Request    AllocationRequest `json:"request"`
	Outcome    Outcome           `json:"outcome"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}
