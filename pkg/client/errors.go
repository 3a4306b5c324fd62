package client

import (
	"net/http"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/models"
)

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "server returned status " + http.StatusText(e.StatusCode)
	}
	return "server returned status " + http.StatusText(e.StatusCode) + ": " + e.Message
}

// Unwrap maps well known statuses to the engine sentinels so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusConflict:
		return engine.ErrBusy
	case http.StatusBadRequest:
		return models.ErrInvalidRequest
	}
	return nil
}
