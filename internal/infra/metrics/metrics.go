package metrics

import (
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "livepoll"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	VotesApplied      prometheus.Counter
	VotesRejected     *prometheus.CounterVec
	VoteLatency       prometheus.Histogram
	StatusTransitions *prometheus.CounterVec
	Broadcasts        prometheus.Counter
	SessionsDropped   prometheus.Counter
	Sessions          prometheus.Gauge
	Rooms             prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "applied_total",
			Help:      "Total number of votes persisted",
		}),
		VotesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "rejected_total",
			Help:      "Total number of votes rejected, by error kind",
		}, []string{"kind"}),
		VoteLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "votes",
			Name:      "apply_seconds",
			Help:      "Time from lock acquisition request to broadcast of a vote",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "transitions_total",
			Help:      "Accepted lifecycle requests by source and target state",
		}, []string{"from", "to"}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "broadcasts_total",
			Help:      "Snapshots handed to the hub",
		}),
		SessionsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "sessions_dropped_total",
			Help:      "Sessions disconnected because their queue was full",
		}),
		Sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "sessions",
			Help:      "Connected realtime sessions",
		}),
		Rooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "rooms",
			Help:      "Polls with at least one subscriber",
		}),
	}
}

func (m *Metrics) VoteApplied(took time.Duration) {
	if m == nil {
		return
	}
	m.VotesApplied.Inc()
	m.VoteLatency.Observe(took.Seconds())
}

func (m *Metrics) VoteRejected(err error) {
	if m == nil {
		return
	}
	m.VotesRejected.WithLabelValues(string(model.KindOf(err))).Inc()
}

func (m *Metrics) StatusChanged(from, to model.Status) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) Broadcast() {
	if m == nil {
		return
	}
	m.Broadcasts.Inc()
}

func (m *Metrics) SessionDropped() {
	if m == nil {
		return
	}
	m.SessionsDropped.Inc()
}

func (m *Metrics) SetTopology(sessions, rooms int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(sessions))
	m.Rooms.Set(float64(rooms))
}
