// Package repository implements data access over MySQL. This file defines
// sentinel error values shared across repositories so that handlers can
// translate failure scenarios into HTTP responses without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrSlotUnavailable is returned when a booking is attempted against a
// slot whose is_booked flag is already set, or when the UNIQUE(slot_id)
// backstop rejects a second booking row. Handlers should translate this
// into an HTTP 400 "already booked" response.
var ErrSlotUnavailable = errors.New("slot is not available for booking")

// Plain row absence is reported as sql.ErrNoRows, following the standard
// database/sql convention; handlers match it with errors.Is.
