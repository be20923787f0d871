package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
	"github.com/iliyamo/coach-session-scheduler/internal/queue"
	"github.com/iliyamo/coach-session-scheduler/internal/repository"
)

func student(id int64) model.User {
	return model.User{ID: id, Name: "Sam", Email: "sam@example.com", Role: model.RoleStudent}
}

func freeSlot(id int64) model.AvailabilitySlot {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	return model.AvailabilitySlot{ID: id, CoachID: 1, StartTime: start, EndTime: start.Add(2 * time.Hour)}
}

func TestCreateBooking(t *testing.T) {
	users := new(mockUserStore)
	slots := new(mockSlotStore)
	bookings := new(mockBookingStore)

	slot := freeSlot(5)
	booking := model.Booking{ID: 9, SlotID: 5, StudentID: 2, Status: model.BookingScheduled}
	coachName := "Dana"
	detail := repository.BookingDetail{
		Booking:   booking,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		CoachID:   1,
		CoachName: &coachName,
	}

	users.On("GetByID", mock.Anything, int64(2)).Return(student(2), nil)
	slots.On("GetByID", mock.Anything, int64(5)).Return(slot, nil)
	bookings.On("Create", mock.Anything, int64(5), int64(2)).Return(booking, nil)
	bookings.On("GetDetail", mock.Anything, int64(9)).Return(detail, nil)

	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)

	var published []queue.SessionBookedEvent
	h := NewBookingHandler(users, slots, bookings, nil)
	h.PublishEvent = func(ctx context.Context, ev queue.SessionBookedEvent) error {
		published = append(published, ev)
		return nil
	}

	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got repository.BookingDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, model.BookingScheduled, got.Status)
	require.NotNil(t, got.CoachName)
	assert.Equal(t, "Dana", *got.CoachName)

	require.Len(t, published, 1)
	assert.Equal(t, int64(9), published[0].BookingID)
	assert.Equal(t, "Dana", published[0].CoachName)
	bookings.AssertExpectations(t)
}

func TestCreateBookingMissingFields(t *testing.T) {
	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), new(mockBookingStore), nil)

	for name, body := range map[string]string{
		"missing slot_id":    `{"student_id":2}`,
		"missing student_id": `{"slot_id":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/bookings", body)
			require.NoError(t, h.CreateBooking(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBookingWrongRole(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByID", mock.Anything, int64(2)).
		Return(model.User{ID: 2, Role: model.RoleCoach}, nil)

	h := NewBookingHandler(users, new(mockSlotStore), new(mockBookingStore), nil)
	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user is not a student", errorBody(t, rec))
}

func TestCreateBookingSlotNotFound(t *testing.T) {
	users := new(mockUserStore)
	slots := new(mockSlotStore)
	users.On("GetByID", mock.Anything, int64(2)).Return(student(2), nil)
	slots.On("GetByID", mock.Anything, int64(5)).Return(model.AvailabilitySlot{}, sql.ErrNoRows)

	h := NewBookingHandler(users, slots, new(mockBookingStore), nil)
	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "slot not found", errorBody(t, rec))
}

func TestCreateBookingSlotAlreadyBooked(t *testing.T) {
	users := new(mockUserStore)
	slots := new(mockSlotStore)
	users.On("GetByID", mock.Anything, int64(2)).Return(student(2), nil)
	taken := freeSlot(5)
	taken.IsBooked = true
	slots.On("GetByID", mock.Anything, int64(5)).Return(taken, nil)

	h := NewBookingHandler(users, slots, new(mockBookingStore), nil)
	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "this slot is already booked", errorBody(t, rec))
}

func TestCreateBookingLostRace(t *testing.T) {
	users := new(mockUserStore)
	slots := new(mockSlotStore)
	bookings := new(mockBookingStore)
	users.On("GetByID", mock.Anything, int64(2)).Return(student(2), nil)
	// The pre-check sees a free slot but the transaction loses the race.
	slots.On("GetByID", mock.Anything, int64(5)).Return(freeSlot(5), nil)
	bookings.On("Create", mock.Anything, int64(5), int64(2)).
		Return(model.Booking{}, repository.ErrSlotUnavailable)

	h := NewBookingHandler(users, slots, bookings, nil)
	c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "this slot is already booked", errorBody(t, rec))
}

// raceBookingStore admits exactly one booking per slot, like the row lock
// does in production.
type raceBookingStore struct {
	mu     sync.Mutex
	nextID int64
	taken  map[int64]bool
}

func (s *raceBookingStore) Create(ctx context.Context, slotID, studentID int64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken[slotID] {
		return model.Booking{}, repository.ErrSlotUnavailable
	}
	if s.taken == nil {
		s.taken = map[int64]bool{}
	}
	s.taken[slotID] = true
	s.nextID++
	return model.Booking{ID: s.nextID, SlotID: slotID, StudentID: studentID, Status: model.BookingScheduled}, nil
}

func (s *raceBookingStore) GetDetail(ctx context.Context, id int64) (repository.BookingDetail, error) {
	return repository.BookingDetail{}, sql.ErrNoRows
}

func (s *raceBookingStore) ListByCoach(ctx context.Context, coachID int64) ([]repository.BookingDetail, error) {
	return nil, nil
}

func (s *raceBookingStore) ListByStudent(ctx context.Context, studentID int64) ([]repository.BookingDetail, error) {
	return nil, nil
}

func (s *raceBookingStore) SubmitFeedback(ctx context.Context, id int64, score int, notes string) (model.Booking, error) {
	return model.Booking{}, sql.ErrNoRows
}

func TestCreateBookingConcurrentOneWinner(t *testing.T) {
	users := new(mockUserStore)
	slots := new(mockSlotStore)
	users.On("GetByID", mock.Anything, mock.Anything).Return(student(2), nil)
	slots.On("GetByID", mock.Anything, int64(5)).Return(freeSlot(5), nil)

	h := NewBookingHandler(users, slots, &raceBookingStore{}, nil)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, rec := newJSONContext(http.MethodPost, "/bookings", `{"slot_id":5,"student_id":2}`)
			if err := h.CreateBooking(c); err != nil {
				t.Error(err)
				return
			}
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "exactly one request may win the slot")
	assert.Equal(t, n-1, conflicts, "all other requests must observe the conflict")
}

func TestGetBookingNotFound(t *testing.T) {
	bookings := new(mockBookingStore)
	bookings.On("GetDetail", mock.Anything, int64(9)).Return(repository.BookingDetail{}, sql.ErrNoRows)

	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), bookings, nil)
	c, rec := newJSONContext(http.MethodGet, "/bookings/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStudentBookings(t *testing.T) {
	bookings := new(mockBookingStore)
	want := []repository.BookingDetail{{Booking: model.Booking{ID: 1, SlotID: 5, StudentID: 2}}}
	bookings.On("ListByStudent", mock.Anything, int64(2)).Return(want, nil)

	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), bookings, nil)
	c, rec := newJSONContext(http.MethodGet, "/bookings/student/2", "")
	c.SetParamNames("studentId")
	c.SetParamValues("2")

	require.NoError(t, h.GetStudentBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	bookings.AssertExpectations(t)
}

func TestSubmitFeedback(t *testing.T) {
	bookings := new(mockBookingStore)
	score := 4
	notes := "great session"
	updated := model.Booking{
		ID: 9, SlotID: 5, StudentID: 2,
		Status:            model.BookingCompleted,
		SatisfactionScore: &score,
		Notes:             &notes,
	}
	bookings.On("SubmitFeedback", mock.Anything, int64(9), 4, "great session").Return(updated, nil)

	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), bookings, nil)
	c, rec := newJSONContext(http.MethodPut, "/bookings/9/feedback", `{"satisfaction_score":4,"notes":"great session"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.SubmitFeedback(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.BookingCompleted, got.Status)
	require.NotNil(t, got.SatisfactionScore)
	assert.Equal(t, 4, *got.SatisfactionScore)
	bookings.AssertExpectations(t)
}

func TestSubmitFeedbackScoreOutOfRange(t *testing.T) {
	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), new(mockBookingStore), nil)

	for name, body := range map[string]string{
		"missing score": `{"notes":"fine"}`,
		"score zero":    `{"satisfaction_score":0}`,
		"score six":     `{"satisfaction_score":6}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPut, "/bookings/9/feedback", body)
			c.SetParamNames("id")
			c.SetParamValues("9")
			require.NoError(t, h.SubmitFeedback(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "satisfaction score must be between 1 and 5", errorBody(t, rec))
		})
	}
}

func TestSubmitFeedbackBookingNotFound(t *testing.T) {
	bookings := new(mockBookingStore)
	bookings.On("SubmitFeedback", mock.Anything, int64(9), 3, "").Return(model.Booking{}, sql.ErrNoRows)

	h := NewBookingHandler(new(mockUserStore), new(mockSlotStore), bookings, nil)
	c, rec := newJSONContext(http.MethodPut, "/bookings/9/feedback", `{"satisfaction_score":3}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.SubmitFeedback(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
