package handler // handler defines the HTTP handlers for the scheduling API

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
	"github.com/iliyamo/coach-session-scheduler/internal/repository"
)

// UserStore is the read surface handlers need over users.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// SlotStore covers slot creation and the listing shapes of the
// availability endpoints.
type SlotStore interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id int64) (model.AvailabilitySlot, error)
	ListByCoach(ctx context.Context, coachID int64, includeBooked bool, dateRange *model.DateRange) ([]model.AvailabilitySlot, error)
	ListAvailableAfter(ctx context.Context, after time.Time) ([]repository.AvailableSlot, error)
	ListAvailableInRange(ctx context.Context, dateRange model.DateRange) ([]repository.AvailableSlot, error)
}

// BookingStore covers the booking transaction, feedback and the enriched
// read paths.
type BookingStore interface {
	Create(ctx context.Context, slotID, studentID int64) (model.Booking, error)
	GetDetail(ctx context.Context, id int64) (repository.BookingDetail, error)
	ListByCoach(ctx context.Context, coachID int64) ([]repository.BookingDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]repository.BookingDetail, error)
	SubmitFeedback(ctx context.Context, id int64, score int, notes string) (model.Booking, error)
}

var errBadDateParam = errors.New("invalid date format, expected MM/DD/YYYY")

// parseDateRange converts a MM/DD/YYYY query parameter into local-time day
// boundaries [00:00:00, 23:59:59]. No timezone normalization is applied;
// the caller and server must agree on locale.
func parseDateRange(param string) (model.DateRange, error) {
	parts := strings.Split(param, "/")
	if len(parts) != 3 {
		return model.DateRange{}, errBadDateParam
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return model.DateRange{}, errBadDateParam
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return model.DateRange{}, errBadDateParam
	}
	return model.DateRange{
		Start: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local),
		End:   time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local),
	}, nil
}

// idParam parses a numeric path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
