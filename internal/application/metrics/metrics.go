package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application module.
// Tracks submission outcomes per admission gate and decision flow health.
type Metrics struct {
	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec
	Decisions           *prometheus.CounterVec
	ApprovalReverts     prometheus.Counter
	SubmitLatency       prometheus.Histogram
	ReviewLatency       prometheus.Histogram
}

// New creates a new Metrics instance with all application module metrics registered.
func New() *Metrics {
	return &Metrics{
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubhub_applications_accepted_total",
			Help: "Total number of applications accepted",
		}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_applications_gated_total",
			Help: "Submissions rejected at admission, by gate reason",
		}, []string{"reason"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_application_decisions_total",
			Help: "Review decisions by outcome",
		}, []string{"decision"}),
		ApprovalReverts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubhub_approval_reverts_total",
			Help: "Approvals rolled back after membership projection failure",
		}),
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubhub_submit_application_duration_seconds",
			Help:    "Duration of application submissions including admission",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ReviewLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubhub_review_application_duration_seconds",
			Help:    "Duration of review decisions including membership projection",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementAccepted records an accepted submission.
func (m *Metrics) IncrementAccepted() {
	m.SubmissionsAccepted.Inc()
}

// IncrementGated records a submission rejected at admission.
func (m *Metrics) IncrementGated(reason string) {
	m.SubmissionsRejected.WithLabelValues(reason).Inc()
}

// IncrementDecision records a review decision outcome.
func (m *Metrics) IncrementDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}

// IncrementRevert records an approval rolled back to pending.
func (m *Metrics) IncrementRevert() {
	m.ApprovalReverts.Inc()
}

// ObserveSubmit records the duration of a submission.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitLatency.Observe(time.Since(start).Seconds())
}

// ObserveReview records the duration of a review decision.
func (m *Metrics) ObserveReview(start time.Time) {
	m.ReviewLatency.Observe(time.Since(start).Seconds())
}
