package domain

import "errors"

// Sentinel errors services wrap with %w so the HTTP layer can pick a
// status code via errors.Is without seeing infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
