package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
	// BookingCancelled is declared in the schema but no API transition
	// produces it; it is reachable only by direct data manipulation.
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a row in the `bookings` table. A booking links one
// student to one slot (UNIQUE on slot_id). It is created only inside the
// booking transaction that flips the slot's is_booked flag, mutated only
// by feedback submission, and never deleted.
//
// Fields:
//  ID                – primary key identifier.
//  SlotID            – booked slot (FK, 1:1).
//  StudentID         – booking student (FK users.id).
//  Status            – scheduled, completed or cancelled.
//  SatisfactionScore – 1..5, set by feedback (nullable).
//  Notes             – free-form feedback text (nullable).
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type Booking struct {
	ID                int64         `json:"id"`
	SlotID            int64         `json:"slot_id"`
	StudentID         int64         `json:"student_id"`
	Status            BookingStatus `json:"status"`
	SatisfactionScore *int          `json:"satisfaction_score"`
	Notes             *string       `json:"notes"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
