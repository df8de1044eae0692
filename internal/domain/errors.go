package domain

import "errors"

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("dream not found")

// ErrValidation is returned when required fields are missing or malformed.
var ErrValidation = errors.New("validation error")

// ErrStorageUnavailable is returned when the persisted collection cannot be
// read. Callers treat the journal as empty and surface a message.
var ErrStorageUnavailable = errors.New("storage unavailable")
