package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
	"github.com/iliyamo/coach-session-scheduler/internal/repository"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserStore) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]model.User), args.Error(1)
}

type mockSlotStore struct{ mock.Mock }

func (m *mockSlotStore) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *mockSlotStore) GetByID(ctx context.Context, id int64) (model.AvailabilitySlot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.AvailabilitySlot), args.Error(1)
}

func (m *mockSlotStore) ListByCoach(ctx context.Context, coachID int64, includeBooked bool, dateRange *model.DateRange) ([]model.AvailabilitySlot, error) {
	args := m.Called(ctx, coachID, includeBooked, dateRange)
	return args.Get(0).([]model.AvailabilitySlot), args.Error(1)
}

func (m *mockSlotStore) ListAvailableAfter(ctx context.Context, after time.Time) ([]repository.AvailableSlot, error) {
	args := m.Called(ctx, after)
	return args.Get(0).([]repository.AvailableSlot), args.Error(1)
}

func (m *mockSlotStore) ListAvailableInRange(ctx context.Context, dateRange model.DateRange) ([]repository.AvailableSlot, error) {
	args := m.Called(ctx, dateRange)
	return args.Get(0).([]repository.AvailableSlot), args.Error(1)
}

type mockBookingStore struct{ mock.Mock }

func (m *mockBookingStore) Create(ctx context.Context, slotID, studentID int64) (model.Booking, error) {
	args := m.Called(ctx, slotID, studentID)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockBookingStore) GetDetail(ctx context.Context, id int64) (repository.BookingDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.BookingDetail), args.Error(1)
}

func (m *mockBookingStore) ListByCoach(ctx context.Context, coachID int64) ([]repository.BookingDetail, error) {
	args := m.Called(ctx, coachID)
	return args.Get(0).([]repository.BookingDetail), args.Error(1)
}

func (m *mockBookingStore) ListByStudent(ctx context.Context, studentID int64) ([]repository.BookingDetail, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]repository.BookingDetail), args.Error(1)
}

func (m *mockBookingStore) SubmitFeedback(ctx context.Context, id int64, score int, notes string) (model.Booking, error) {
	args := m.Called(ctx, id, score, notes)
	return args.Get(0).(model.Booking), args.Error(1)
}
