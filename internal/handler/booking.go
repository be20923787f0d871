package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/coach-session-scheduler/internal/metrics"
	"github.com/iliyamo/coach-session-scheduler/internal/model"
	"github.com/iliyamo/coach-session-scheduler/internal/queue"
	"github.com/iliyamo/coach-session-scheduler/internal/repository"
)

// bookingTimeout bounds the wait on a contended slot row so that a wedged
// lock surfaces as an error instead of blocking the request indefinitely.
const bookingTimeout = 5 * time.Second

// BookingHandler implements booking creation, the enriched booking reads
// and feedback submission.
type BookingHandler struct {
	Users    UserStore
	Slots    SlotStore
	Bookings BookingStore
	Log      *zap.Logger

	// PublishEvent, when set, is called after a successful booking commit.
	// Publishing is best-effort and never part of the atomic unit.
	PublishEvent func(ctx context.Context, ev queue.SessionBookedEvent) error
}

func NewBookingHandler(users UserStore, slots SlotStore, bookings BookingStore, log *zap.Logger) *BookingHandler {
	if users == nil || slots == nil || bookings == nil {
		panic("nil store passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Users: users, Slots: slots, Bookings: bookings, Log: log}
}

type createBookingRequest struct {
	SlotID    *int64 `json:"slot_id"`
	StudentID *int64 `json:"student_id"`
}

// CreateBooking handles POST /bookings. The student and slot are validated
// up front; the decisive free-slot check runs again under the row lock
// inside the booking transaction, so when two requests race for the same
// slot exactly one succeeds and the other observes a conflict.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SlotID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing slot_id"})
	}
	if req.StudentID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing student_id"})
	}

	ctx := c.Request().Context()
	student, err := h.Users.GetByID(ctx, *req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if student.Role != model.RoleStudent {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not a student"})
	}

	// Courtesy pre-check for friendlier 404/400 responses; the transaction
	// below is the authority.
	slot, err := h.Slots.GetByID(ctx, *req.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if slot.IsBooked {
		metrics.IncBookingConflict()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "this slot is already booked"})
	}

	txCtx, cancel := context.WithTimeout(ctx, bookingTimeout)
	defer cancel()
	booking, err := h.Bookings.Create(txCtx, slot.ID, student.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotUnavailable):
			metrics.IncBookingConflict()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "this slot is already booked"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		default:
			h.Log.Error("create booking failed",
				zap.Int64("slot_id", slot.ID),
				zap.Int64("student_id", student.ID),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
	}
	metrics.IncBookingCreated()
	h.Log.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("slot_id", booking.SlotID),
		zap.Int64("student_id", booking.StudentID))

	// Enrichment is a read-only join outside the atomic unit. If it fails
	// the booking still exists, so degrade to the plain row.
	detail, err := h.Bookings.GetDetail(ctx, booking.ID)
	if err != nil {
		h.Log.Warn("booking detail fetch failed", zap.Int64("booking_id", booking.ID), zap.Error(err))
		return c.JSON(http.StatusCreated, booking)
	}

	h.publishBooked(detail)
	return c.JSON(http.StatusCreated, detail)
}

// publishBooked emits a session.booked event for downstream consumers.
// Failures are logged and ignored.
func (h *BookingHandler) publishBooked(d repository.BookingDetail) {
	if h.PublishEvent == nil {
		return
	}
	ev := queue.SessionBookedEvent{
		BookingID: d.ID,
		SlotID:    d.SlotID,
		StudentID: d.StudentID,
		CoachID:   d.CoachID,
		StartTime: d.StartTime.Format(time.RFC3339),
		EndTime:   d.EndTime.Format(time.RFC3339),
		BookedAt:  d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.CoachName != nil {
		ev.CoachName = *d.CoachName
	}
	if d.StudentName != nil {
		ev.StudentName = *d.StudentName
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := h.PublishEvent(ctx, ev); err != nil {
		h.Log.Warn("publish session.booked failed", zap.Int64("booking_id", d.ID), zap.Error(err))
	}
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	detail, err := h.Bookings.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// GetCoachBookings handles GET /bookings/coach/:coachId.
func (h *BookingHandler) GetCoachBookings(c echo.Context) error {
	coachID, err := idParam(c, "coachId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	bookings, err := h.Bookings.ListByCoach(c.Request().Context(), coachID)
	if err != nil {
		h.Log.Error("list coach bookings failed", zap.Int64("coach_id", coachID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// GetStudentBookings handles GET /bookings/student/:studentId.
func (h *BookingHandler) GetStudentBookings(c echo.Context) error {
	studentID, err := idParam(c, "studentId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	bookings, err := h.Bookings.ListByStudent(c.Request().Context(), studentID)
	if err != nil {
		h.Log.Error("list student bookings failed", zap.Int64("student_id", studentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, bookings)
}

type feedbackRequest struct {
	SatisfactionScore *int   `json:"satisfaction_score"`
	Notes             string `json:"notes"`
}

// SubmitFeedback handles PUT /bookings/:id/feedback. The write is an
// idempotent overwrite: resubmission replaces earlier feedback and the
// booking always ends up completed.
func (h *BookingHandler) SubmitFeedback(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SatisfactionScore == nil || *req.SatisfactionScore < 1 || *req.SatisfactionScore > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "satisfaction score must be between 1 and 5"})
	}

	booking, err := h.Bookings.SubmitFeedback(c.Request().Context(), id, *req.SatisfactionScore, req.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		h.Log.Error("submit feedback failed", zap.Int64("booking_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	metrics.IncFeedbackSubmitted(strconv.Itoa(*req.SatisfactionScore))
	return c.JSON(http.StatusOK, booking)
}
