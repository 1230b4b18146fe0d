package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackgods/medical-appointment-scheduling/internal/apperr"
)

// Outcome labels shared by the scheduling counters.
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// OutcomeFor maps a service error to its outcome label.
func OutcomeFor(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	switch {
	case errors.Is(err, apperr.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, apperr.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperr.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

// Scheduling exposes counters for availability and booking flows.
type Scheduling struct {
	bookings          *prometheus.CounterVec
	windowDefinitions *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	noShows           prometheus.Counter
	slotsPerListing   prometheus.Histogram
}

func NewScheduling(reg prometheus.Registerer) *Scheduling {
	m := &Scheduling{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		windowDefinitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "window_definitions_total",
			Help:      "Availability window definitions by outcome",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "status_changes_total",
			Help:      "Appointment status changes by target status",
		}, []string{"status"}),
		noShows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "noshow_marked_total",
			Help:      "Appointments moved to NoShow by the sweeper",
		}),
		slotsPerListing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Name:      "slots_per_listing",
			Help:      "Number of slots returned per slot listing",
			Buckets:   []float64{0, 4, 8, 16, 32, 64, 128},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookings, m.windowDefinitions, m.statusChanges, m.noShows, m.slotsPerListing)
	return m
}

func (m *Scheduling) ObserveBooking(err error) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(OutcomeFor(err)).Inc()
}

func (m *Scheduling) ObserveWindowDefinition(err error) {
	if m == nil {
		return
	}
	m.windowDefinitions.WithLabelValues(OutcomeFor(err)).Inc()
}

func (m *Scheduling) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Scheduling) AddNoShows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.noShows.Add(float64(n))
}

func (m *Scheduling) ObserveSlotListing(count int) {
	if m == nil {
		return
	}
	m.slotsPerListing.Observe(float64(count))
}

// HTTP records request latency per chi route pattern.
type HTTP struct {
	duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.duration)
	return m
}

func (m *HTTP) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.duration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
