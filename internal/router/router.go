package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/coach-session-scheduler/internal/handler"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Users        *handler.UserHandler
	Availability *handler.AvailabilityHandler
	Bookings     *handler.BookingHandler
}

// RegisterRoutes maps every API endpoint onto the provided Echo instance.
// The service is single-tenant with client-supplied identity, so no
// authentication middleware is applied; role checks happen in handlers
// against the users table.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Operational endpoints for load balancers and scrapers.
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// User directory.
	e.GET("/users", h.Users.ListUsers)
	e.GET("/users/:id", h.Users.GetUser)
	e.GET("/coaches", h.Users.ListCoaches)
	e.GET("/students", h.Users.ListStudents)

	// Availability publishing and browsing.
	e.POST("/availability", h.Availability.CreateSlot)
	e.GET("/availability", h.Availability.GetAvailableSlots)
	e.GET("/availability/coach/:coachId", h.Availability.GetCoachSlots)

	// Bookings and session feedback.
	e.POST("/bookings", h.Bookings.CreateBooking)
	e.GET("/bookings/:id", h.Bookings.GetBooking)
	e.GET("/bookings/coach/:coachId", h.Bookings.GetCoachBookings)
	e.GET("/bookings/student/:studentId", h.Bookings.GetStudentBookings)
	e.PUT("/bookings/:id/feedback", h.Bookings.SubmitFeedback)
}
