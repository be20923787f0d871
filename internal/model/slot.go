package model

import (
	"errors"
	"time"
)

// SessionDuration is the fixed length of every availability slot. The
// duration is a business rule, not configuration: fixed-length
// appointments mean no partial-overlap logic is needed anywhere else.
const SessionDuration = 2 * time.Hour

// durationEpsilon absorbs floating rounding when clients compute end times
// from fractional hours (0.001h).
const durationEpsilon = 3600 * time.Millisecond

var (
	// ErrStartNotFuture is returned when a slot's start time is not
	// strictly after the current instant.
	ErrStartNotFuture = errors.New("start time must be in the future")
	// ErrBadDuration is returned when a slot is not exactly two hours long.
	ErrBadDuration = errors.New("availability slots must be exactly 2 hours long")
)

// AvailabilitySlot represents a row in the `availability_slots` table.
// A slot mutates only its IsBooked flag, exactly once, from false to true
// when a booking is created. There is no cancellation path, so the flag
// never reverts and slots are never deleted.
//
// Fields:
//  ID        – primary key identifier.
//  CoachID   – owning coach (FK users.id).
//  StartTime – start of the 2-hour window.
//  EndTime   – end of the window.
//  IsBooked  – whether a booking exists for this slot.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type AvailabilitySlot struct {
	ID        int64     `json:"id"`
	CoachID   int64     `json:"coach_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateRange bounds a listing to slots whose start time falls within
// [Start, End] inclusive. Both bounds are in server-local time; the caller
// and server must agree on locale.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ValidateSlotWindow checks the creation-time invariants of a slot: the
// start must be strictly after now and the window must span exactly
// SessionDuration within durationEpsilon.
func ValidateSlotWindow(start, end, now time.Time) error {
	if !start.After(now) {
		return ErrStartNotFuture
	}
	diff := end.Sub(start) - SessionDuration
	if diff < 0 {
		diff = -diff
	}
	if diff > durationEpsilon {
		return ErrBadDuration
	}
	return nil
}
