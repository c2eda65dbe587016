package model

import "errors"

var (
	// ErrSessionNotFound means the caller referenced an interview session id
	// the store has never seen (or already evicted). Surfaced as a 404.
	ErrSessionNotFound = errors.New("interview session not found")

	// ErrInsufficientSymptoms means fewer usable symptoms than the minimum
	// required were supplied. Surfaced as a validation error.
	ErrInsufficientSymptoms = errors.New("not enough usable symptoms")

	// ErrModelUnavailable means the classifier could not be loaded or trained.
	ErrModelUnavailable = errors.New("classifier model unavailable")

	// ErrAdvisoryUnavailable means the external advisory source failed, timed
	// out, or returned garbage. Logged and downgraded, never surfaced hard.
	ErrAdvisoryUnavailable = errors.New("advisory source unavailable")

	// ErrGraphEmpty means the training data produced no symptoms at all.
	ErrGraphEmpty = errors.New("symptom graph is empty")
)
