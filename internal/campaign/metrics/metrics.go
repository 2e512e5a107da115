package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the campaign module.
// Tracks lifecycle counts and read-path durations.
type Metrics struct {
	CampaignsCreated   prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	CampaignsDeleted   prometheus.Counter
	GetCampaignLatency prometheus.Histogram
	ListLatency        prometheus.Histogram
}

// New creates a new Metrics instance with all campaign module metrics registered.
func New() *Metrics {
	return &Metrics{
		CampaignsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubhub_campaigns_created_total",
			Help: "Total number of campaigns created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhub_campaign_status_transitions_total",
			Help: "Campaign status transitions by action",
		}, []string{"action"}),
		CampaignsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubhub_campaigns_deleted_total",
			Help: "Total number of campaigns deleted",
		}),
		GetCampaignLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubhub_get_campaign_duration_seconds",
			Help:    "Duration of campaign detail reads including statistics",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ListLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubhub_list_campaigns_duration_seconds",
			Help:    "Duration of campaign list reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful campaign creation.
func (m *Metrics) IncrementCreated() {
	m.CampaignsCreated.Inc()
}

// IncrementTransition records a status transition by action name.
func (m *Metrics) IncrementTransition(action string) {
	m.StatusTransitions.WithLabelValues(action).Inc()
}

// IncrementDeleted records a campaign deletion.
func (m *Metrics) IncrementDeleted() {
	m.CampaignsDeleted.Inc()
}

// ObserveGet records the duration of a campaign detail read.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGet(start time.Time) {
	m.GetCampaignLatency.Observe(time.Since(start).Seconds())
}

// ObserveList records the duration of a campaign list read.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListLatency.Observe(time.Since(start).Seconds())
}
