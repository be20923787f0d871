package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
)

// BookingRepo provides persistence for bookings. Create is the only
// operation in the service that mutates two tables as one unit; it owns
// the slot's is_booked transition.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, slot_id, student_id, status, satisfaction_score, notes, created_at, updated_at"

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	var score sql.NullInt64
	var notes sql.NullString
	err := row.Scan(&b.ID, &b.SlotID, &b.StudentID, &b.Status, &score, &notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if score.Valid {
		v := int(score.Int64)
		b.SatisfactionScore = &v
	}
	if notes.Valid {
		n := notes.String
		b.Notes = &n
	}
	return b, nil
}

// Create atomically books a slot for a student. It locks the slot row for
// the duration of the check-then-write so that concurrent attempts on the
// same slot serialize: exactly one wins, the rest observe
// ErrSlotUnavailable. Any failure after the lock is acquired rolls back
// both the slot-flag change and the booking insert, so a booked slot and
// its booking row are never observed independently.
//
// Returns sql.ErrNoRows when the slot does not exist and
// ErrSlotUnavailable when it is already booked.
func (r *BookingRepo) Create(ctx context.Context, slotID, studentID int64) (model.Booking, error) {
	var booking model.Booking

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return booking, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the slot row; concurrent bookings of the same slot block here
	// until the first committer decides the outcome.
	var isBooked bool
	err = tx.QueryRowContext(ctx,
		"SELECT is_booked FROM availability_slots WHERE id = ? FOR UPDATE",
		slotID).Scan(&isBooked)
	if err != nil {
		return booking, err
	}
	if isBooked {
		return booking, ErrSlotUnavailable
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE availability_slots SET is_booked = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		slotID); err != nil {
		return booking, fmt.Errorf("mark slot booked: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (slot_id, student_id) VALUES (?, ?)",
		slotID, studentID)
	if err != nil {
		// UNIQUE(slot_id) backstop: a booking row already exists even
		// though the flag said free.
		if strings.Contains(err.Error(), "1062") {
			return booking, ErrSlotUnavailable
		}
		return booking, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return booking, err
	}

	booking, err = scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id))
	if err != nil {
		return booking, err
	}

	if err := tx.Commit(); err != nil {
		return model.Booking{}, fmt.Errorf("commit booking tx: %w", err)
	}
	committed = true
	return booking, nil
}

// BookingDetail is a booking enriched with the slot's time range and the
// human-readable identity of one or both parties. Listings populate only
// the counterparty fields, matching what each audience needs to see.
type BookingDetail struct {
	model.Booking
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	CoachID      int64     `json:"coach_id,omitempty"`
	CoachName    *string   `json:"coach_name,omitempty"`
	CoachPhone   *string   `json:"coach_phone,omitempty"`
	StudentName  *string   `json:"student_name,omitempty"`
	StudentPhone *string   `json:"student_phone,omitempty"`
}

// GetDetail returns a single booking joined with its slot time range and
// both parties' contact info. Returns sql.ErrNoRows when absent. Missing
// joined names degrade to a placeholder rather than failing the read.
func (r *BookingRepo) GetDetail(ctx context.Context, id int64) (BookingDetail, error) {
	const q = `SELECT b.id, b.slot_id, b.student_id, b.status, b.satisfaction_score, b.notes,
	                  b.created_at, b.updated_at,
	                  a.start_time, a.end_time, a.coach_id,
	                  cs.name, cs.phone_number,
	                  st.name, st.phone_number
	           FROM bookings b
	           JOIN availability_slots a ON a.id = b.slot_id
	           LEFT JOIN users cs ON cs.id = a.coach_id
	           LEFT JOIN users st ON st.id = b.student_id
	           WHERE b.id = ?`
	var d BookingDetail
	var score sql.NullInt64
	var notes sql.NullString
	var coachName, coachPhone, studentName, studentPhone sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.SlotID, &d.StudentID, &d.Status, &score, &notes,
		&d.CreatedAt, &d.UpdatedAt,
		&d.StartTime, &d.EndTime, &d.CoachID,
		&coachName, &coachPhone, &studentName, &studentPhone,
	)
	if err != nil {
		return d, err
	}
	if score.Valid {
		v := int(score.Int64)
		d.SatisfactionScore = &v
	}
	if notes.Valid {
		n := notes.String
		d.Notes = &n
	}
	d.CoachName = strPtr(orPlaceholder(coachName))
	d.CoachPhone = strPtr(orPlaceholder(coachPhone))
	d.StudentName = strPtr(orPlaceholder(studentName))
	d.StudentPhone = strPtr(orPlaceholder(studentPhone))
	return d, nil
}

// ListByCoach returns all bookings against a coach's slots, enriched with
// the slot time range and the student's identity, newest session first.
func (r *BookingRepo) ListByCoach(ctx context.Context, coachID int64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.slot_id, b.student_id, b.status, b.satisfaction_score, b.notes,
	                  b.created_at, b.updated_at,
	                  a.start_time, a.end_time,
	                  st.name, st.phone_number
	           FROM bookings b
	           JOIN availability_slots a ON a.id = b.slot_id
	           LEFT JOIN users st ON st.id = b.student_id
	           WHERE a.coach_id = ?
	           ORDER BY a.start_time DESC`
	return r.listDetails(ctx, q, false, coachID)
}

// ListByStudent returns a student's bookings enriched with the slot time
// range and the coach's identity, newest session first.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID int64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.slot_id, b.student_id, b.status, b.satisfaction_score, b.notes,
	                  b.created_at, b.updated_at,
	                  a.start_time, a.end_time,
	                  c.name, c.phone_number
	           FROM bookings b
	           JOIN availability_slots a ON a.id = b.slot_id
	           LEFT JOIN users c ON c.id = a.coach_id
	           WHERE b.student_id = ?
	           ORDER BY a.start_time DESC`
	return r.listDetails(ctx, q, true, studentID)
}

// listDetails runs a listing query whose trailing two columns are the
// counterparty's name and phone; coachSide selects which fields they fill.
func (r *BookingRepo) listDetails(ctx context.Context, query string, coachSide bool, arg any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var score sql.NullInt64
		var notes sql.NullString
		var name, phone sql.NullString
		if err := rows.Scan(
			&d.ID, &d.SlotID, &d.StudentID, &d.Status, &score, &notes,
			&d.CreatedAt, &d.UpdatedAt,
			&d.StartTime, &d.EndTime,
			&name, &phone,
		); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			d.SatisfactionScore = &v
		}
		if notes.Valid {
			n := notes.String
			d.Notes = &n
		}
		if coachSide {
			d.CoachName = strPtr(orPlaceholder(name))
			d.CoachPhone = strPtr(orPlaceholder(phone))
		} else {
			d.StudentName = strPtr(orPlaceholder(name))
			d.StudentPhone = strPtr(orPlaceholder(phone))
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// SubmitFeedback records a satisfaction score and notes on a booking and
// moves it to completed. The write is an idempotent overwrite: prior
// status is not checked and resubmission replaces earlier feedback.
// Returns sql.ErrNoRows when the booking does not exist.
func (r *BookingRepo) SubmitFeedback(ctx context.Context, id int64, score int, notes string) (model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET satisfaction_score = ?, notes = ?, status = 'completed', updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		score, notes, id)
	if err != nil {
		return model.Booking{}, fmt.Errorf("update feedback: %w", err)
	}
	// RowsAffected is 0 both for a missing row and for a no-op resubmit of
	// identical values, so existence is decided by the read-back instead.
	if _, err := res.RowsAffected(); err != nil {
		return model.Booking{}, err
	}
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id))
}

func strPtr(s string) *string { return &s }
