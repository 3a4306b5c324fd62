package models

import "errors"

var (
	// ErrInvalidRequest is returned when a request cannot be constructed from user input.
	ErrInvalidRequest = errors.New("invalid allocation request")

	// ErrPathRejected is the error form of a PathRejected outcome.
	ErrPathRejected = errors.New("path rejected")

	// ErrInsufficientSpace is the error form of an InsufficientSpace outcome.
	ErrInsufficientSpace = errors.New("insufficient disk space")

	// ErrIOFailure is the error form of an IOFailure outcome.
	ErrIOFailure = errors.New("i/o failure")
)
