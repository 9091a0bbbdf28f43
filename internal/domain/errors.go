package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and adapters. Callers wrap them with
// fmt.Errorf("%w: ...") and the HTTP layer maps them to status codes.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ErrRoomNotFound marks a booking for a room id that does not exist.
var ErrRoomNotFound = fmt.Errorf("room %w", ErrNotFound)
