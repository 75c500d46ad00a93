package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking core counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	BookingsCreated prometheus.Counter
	Transitions     *prometheus.CounterVec
	Conflicts       *prometheus.CounterVec
	LockWait        prometheus.Histogram
	ReviewsApproved prometheus.Counter
	QuizSubmissions prometheus.Counter
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by source and target status",
		}, []string{"from", "to"}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Rejected booking attempts by reason",
		}, []string{"reason"}),
		LockWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "specialist_lock_wait_seconds",
			Help:      "Time spent waiting for a specialist lock",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		ReviewsApproved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_approved_total",
			Help:      "Total number of approved reviews",
		}),
		QuizSubmissions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Total number of submitted quizzes",
		}),
	}
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Conflict(reason string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.LockWait.Observe(d.Seconds())
}

func (m *Metrics) ReviewApproved() {
	if m == nil {
		return
	}
	m.ReviewsApproved.Inc()
}

func (m *Metrics) QuizSubmitted() {
	if m == nil {
		return
	}
	m.QuizSubmissions.Inc()
}
