// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionBookedEvent is published after a booking commits. It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type SessionBookedEvent struct {
	BookingID   int64  `json:"booking_id"`
	SlotID      int64  `json:"slot_id"`
	StudentID   int64  `json:"student_id"`
	CoachID     int64  `json:"coach_id"`
	StudentName string `json:"student_name"`
	CoachName   string `json:"coach_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	BookedAt    string `json:"booked_at"`
}
