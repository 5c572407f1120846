package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "booking_created_total",
			Help:      "Count of appointments booked through the bot.",
		},
	)

	bookingFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "booking_failed_total",
			Help:      "Count of failed booking submissions by reason.",
		},
		[]string{"reason"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "booking_cancelled_total",
			Help:      "Count of appointments cancelled by users.",
		},
	)

	authFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "auth_failures_total",
			Help:      "Count of rejected or expired tokens.",
		},
	)

	staleAvailability = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "stale_availability_dropped_total",
			Help:      "Count of availability responses discarded because the selected date changed.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingFailed, bookingCancelled, authFailures, staleAvailability)
	})
}

func IncBookingCreated() { bookingCreated.Inc() }

func IncBookingFailed(reason string) { bookingFailed.WithLabelValues(reason).Inc() }

func IncBookingCancelled() { bookingCancelled.Inc() }

func IncAuthFailure() { authFailures.Inc() }

func IncStaleAvailabilityDropped() { staleAvailability.Inc() }
