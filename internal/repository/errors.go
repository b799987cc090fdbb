// Package repository contains data access logic separated from HTTP
// handlers. This file defines sentinel errors shared across repositories
// so higher layers can distinguish failure scenarios with errors.Is
// instead of inspecting driver errors.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue cannot be found in the DB.
var ErrVenueNotFound = errors.New("venue not found")

// ErrStatusNotFound is returned when a venue has no live status record.
// Read paths that serve the UNKNOWN sentinel must swallow this; the
// detail endpoint surfaces it as a 404.
var ErrStatusNotFound = errors.New("status not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")
