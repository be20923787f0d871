package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
)

// SlotRepo provides persistence for availability slots. Slots are created
// by coaches and mutate only their is_booked flag, which is owned by the
// booking transaction in BookingRepo; SlotRepo itself never writes it.
type SlotRepo struct {
	db *sql.DB
}

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// AvailableSlot is a free slot enriched with the owning coach's identity
// for display. It is returned by the available-slot listings.
type AvailableSlot struct {
	model.AvailabilitySlot
	CoachName  string `json:"coach_name"`
	CoachEmail string `json:"coach_email"`
	CoachPhone string `json:"coach_phone"`
}

const slotColumns = "id, coach_id, start_time, end_time, is_booked, created_at, updated_at"

func scanSlot(row interface{ Scan(...any) error }) (model.AvailabilitySlot, error) {
	var s model.AvailabilitySlot
	err := row.Scan(&s.ID, &s.CoachID, &s.StartTime, &s.EndTime, &s.IsBooked, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a new slot with is_booked = false and populates the
// generated id and timestamps on the passed record.
func (r *SlotRepo) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO availability_slots (coach_id, start_time, end_time) VALUES (?, ?, ?)",
		slot.CoachID, slot.StartTime, slot.EndTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// Query back the full row so callers see DB defaults.
	created, err := scanSlot(r.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM availability_slots WHERE id = ?", id))
	if err != nil {
		return err
	}
	*slot = created
	return nil
}

// GetByID fetches a slot by id. Returns sql.ErrNoRows when absent.
func (r *SlotRepo) GetByID(ctx context.Context, id int64) (model.AvailabilitySlot, error) {
	return scanSlot(r.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM availability_slots WHERE id = ? LIMIT 1", id))
}

// ListByCoach returns a coach's slots ordered by start time ascending.
// When includeBooked is false, booked slots are filtered out. A non-nil
// dateRange restricts results to slots starting within it, inclusive.
func (r *SlotRepo) ListByCoach(ctx context.Context, coachID int64, includeBooked bool, dateRange *model.DateRange) ([]model.AvailabilitySlot, error) {
	query := "SELECT " + slotColumns + " FROM availability_slots WHERE coach_id = ?"
	args := []any{coachID}
	if dateRange != nil {
		query += " AND start_time >= ? AND start_time <= ?"
		args = append(args, dateRange.Start, dateRange.End)
	}
	if !includeBooked {
		query += " AND is_booked = FALSE"
	}
	query += " ORDER BY start_time ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.AvailabilitySlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// ListAvailableAfter returns free slots starting strictly after the given
// instant, joined with the coach's identity and ordered by start time.
func (r *SlotRepo) ListAvailableAfter(ctx context.Context, after time.Time) ([]AvailableSlot, error) {
	const q = `SELECT a.id, a.coach_id, a.start_time, a.end_time, a.is_booked, a.created_at, a.updated_at,
	                  u.name, u.email, u.phone_number
	           FROM availability_slots a
	           JOIN users u ON u.id = a.coach_id
	           WHERE a.is_booked = FALSE AND a.start_time > ?
	           ORDER BY a.start_time ASC`
	return r.listAvailable(ctx, q, after)
}

// ListAvailableInRange returns free slots starting within the given range
// (inclusive), joined with the coach's identity and ordered by start time.
func (r *SlotRepo) ListAvailableInRange(ctx context.Context, dateRange model.DateRange) ([]AvailableSlot, error) {
	const q = `SELECT a.id, a.coach_id, a.start_time, a.end_time, a.is_booked, a.created_at, a.updated_at,
	                  u.name, u.email, u.phone_number
	           FROM availability_slots a
	           JOIN users u ON u.id = a.coach_id
	           WHERE a.is_booked = FALSE AND a.start_time >= ? AND a.start_time <= ?
	           ORDER BY a.start_time ASC`
	return r.listAvailable(ctx, q, dateRange.Start, dateRange.End)
}

func (r *SlotRepo) listAvailable(ctx context.Context, query string, args ...any) ([]AvailableSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]AvailableSlot, 0)
	for rows.Next() {
		var s AvailableSlot
		var name, email, phone sql.NullString
		if err := rows.Scan(&s.ID, &s.CoachID, &s.StartTime, &s.EndTime, &s.IsBooked,
			&s.CreatedAt, &s.UpdatedAt, &name, &email, &phone); err != nil {
			return nil, err
		}
		s.CoachName = orPlaceholder(name)
		s.CoachEmail = orPlaceholder(email)
		s.CoachPhone = orPlaceholder(phone)
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// orPlaceholder degrades an absent joined field to a placeholder instead
// of failing the whole read.
func orPlaceholder(v sql.NullString) string {
	if v.Valid && v.String != "" {
		return v.String
	}
	return "(unknown)"
}
