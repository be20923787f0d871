package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/coach-session-scheduler/internal/metrics"
	"github.com/iliyamo/coach-session-scheduler/internal/model"
)

// AvailabilityHandler implements slot publication and the slot listings.
type AvailabilityHandler struct {
	Users UserStore
	Slots SlotStore
	Log   *zap.Logger
}

func NewAvailabilityHandler(users UserStore, slots SlotStore, log *zap.Logger) *AvailabilityHandler {
	if users == nil || slots == nil {
		panic("nil store passed to NewAvailabilityHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityHandler{Users: users, Slots: slots, Log: log}
}

type createSlotRequest struct {
	CoachID   *int64 `json:"coach_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateSlot handles POST /availability. Validation runs before any
// mutation: the coach must exist with the coach role, both timestamps must
// parse, the start must be in the future and the window must span exactly
// two hours.
func (h *AvailabilityHandler) CreateSlot(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.CoachID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing coach_id"})
	}
	if req.StartTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing start_time"})
	}
	if req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing end_time"})
	}

	ctx := c.Request().Context()
	coach, err := h.Users.GetByID(ctx, *req.CoachID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "coach not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if coach.Role != model.RoleCoach {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not a coach"})
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format"})
	}
	if err := model.ValidateSlotWindow(start, end, time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	slot := model.AvailabilitySlot{CoachID: coach.ID, StartTime: start, EndTime: end}
	if err := h.Slots.Create(ctx, &slot); err != nil {
		h.Log.Error("create slot failed", zap.Int64("coach_id", coach.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	metrics.IncSlotPublished()
	h.Log.Info("slot published",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("coach_id", coach.ID),
		zap.Time("start_time", slot.StartTime))
	return c.JSON(http.StatusCreated, slot)
}

// GetCoachSlots handles GET /availability/coach/:coachId. The optional
// includeBooked flag defaults to false; the optional date parameter
// restricts results to a single local-time day.
func (h *AvailabilityHandler) GetCoachSlots(c echo.Context) error {
	coachID, err := idParam(c, "coachId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	includeBooked := c.QueryParam("includeBooked") == "true"

	var dateRange *model.DateRange
	if dateParam := c.QueryParam("date"); dateParam != "" {
		r, err := parseDateRange(dateParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		dateRange = &r
	}

	slots, err := h.Slots.ListByCoach(c.Request().Context(), coachID, includeBooked, dateRange)
	if err != nil {
		h.Log.Error("list coach slots failed", zap.Int64("coach_id", coachID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, slots)
}

// GetAvailableSlots handles GET /availability. With ?date=MM/DD/YYYY it
// lists free slots on that day; otherwise free slots from ?startAfter
// (default: now) onward. Results carry the coach's contact info.
func (h *AvailabilityHandler) GetAvailableSlots(c echo.Context) error {
	ctx := c.Request().Context()

	if dateParam := c.QueryParam("date"); dateParam != "" {
		r, err := parseDateRange(dateParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		slots, err := h.Slots.ListAvailableInRange(ctx, r)
		if err != nil {
			h.Log.Error("list available slots failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		return c.JSON(http.StatusOK, slots)
	}

	after := time.Now()
	if param := c.QueryParam("startAfter"); param != "" {
		parsed, err := time.Parse(time.RFC3339, param)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startAfter"})
		}
		after = parsed
	}
	slots, err := h.Slots.ListAvailableAfter(ctx, after)
	if err != nil {
		h.Log.Error("list available slots failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	return c.JSON(http.StatusOK, slots)
}
