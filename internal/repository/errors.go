// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios. For example, ErrNotFound indicates that the requested
// operation or message no longer exists, while ErrConflict signals
// that a create cannot proceed because of existing state (e.g. an
// operation path that is already taken).
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response; socket
// handlers drop the action silently.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an action on a
// resource they lack sufficient access level for. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a create or update cannot be
// performed because of conflicting state, such as creating an
// operation whose path already exists. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
