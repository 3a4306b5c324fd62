package history

import "errors"

var (
	// ErrDatabaseError wraps every failure of the underlying database.
	ErrDatabaseError = errors.New("history database error")

	// ErrDuplicateRecord is returned when a request id is recorded twice.
	ErrDuplicateRecord = errors.New("allocation already recorded")
)
