package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coach_scheduler",
			Name:      "slots_published_total",
			Help:      "Count of availability slots published by coaches.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coach_scheduler",
			Name:      "bookings_created_total",
			Help:      "Count of bookings successfully created.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coach_scheduler",
			Name:      "booking_conflicts_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	feedbackSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach_scheduler",
			Name:      "feedback_submitted_total",
			Help:      "Count of feedback submissions by satisfaction score.",
		},
		[]string{"score"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotsPublished, bookingsCreated, bookingConflicts, feedbackSubmitted)
	})
}

func IncSlotPublished() {
	slotsPublished.Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncFeedbackSubmitted(score string) {
	feedbackSubmitted.WithLabelValues(score).Inc()
}
