package store

import "errors"

// ErrNotFound is returned when a requested object, project, run or
// schedule does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned when an argument fails validation.
// Validation happens before any write.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnknownKind is returned when a kind is not registered with the store
var ErrUnknownKind = errors.New("unknown kind")

// ErrConflict is returned when a create would violate a uniqueness rule
var ErrConflict = errors.New("conflict")
