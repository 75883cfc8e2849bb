// Package repository defines the booking store and the errors it shares with
// higher layers. These sentinel values allow handlers to distinguish between
// different failure scenarios.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrForbidden is returned when the caller attempts to edit or delete a
// booking submitted by someone else. Handlers translate it into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert reuses an existing id.
var ErrConflict = errors.New("conflict")

// ErrNoChange indicates an update that left the row as it was.
var ErrNoChange = errors.New("no change")
