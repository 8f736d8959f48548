package monitoring

import (
	"time"

	"huddle/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.MetricsRecorder on top of promauto
// collectors registered with the default registry.
type PrometheusCollector struct {
	// Gauges
	clientsConnected prometheus.Gauge
	callsActive      prometheus.Gauge

	// Counters
	connectionsTotal  prometheus.Counter
	messagesTotal     prometheus.Counter
	filesSharedTotal  prometheus.Counter
	pollsCreatedTotal prometheus.Counter
	votesCastTotal    prometheus.Counter
	sendQueueDrops    prometheus.Counter

	callsResolvedTotal *prometheus.CounterVec
	signalsRelayed     *prometheus.CounterVec

	callLifetime *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		clientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_clients_connected",
			Help: "Number of currently connected websocket clients",
		}),

		callsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_calls_active",
			Help: "Number of call sessions currently ringing or connected",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_connections_total",
			Help: "Total number of websocket connections accepted",
		}),

		messagesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_messages_posted_total",
			Help: "Total number of chat messages posted",
		}),

		filesSharedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_files_shared_total",
			Help: "Total number of file announcements relayed",
		}),

		pollsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_polls_created_total",
			Help: "Total number of polls created",
		}),

		votesCastTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_poll_votes_total",
			Help: "Total number of poll votes processed, retractions included",
		}),

		sendQueueDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huddle_send_queue_drops_total",
			Help: "Total number of clients dropped for send queue overflow",
		}),

		callsResolvedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_calls_resolved_total",
			Help: "Total number of call sessions resolved, by last state and outcome",
		}, []string{"state", "outcome"}),

		signalsRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_signals_relayed_total",
			Help: "Total number of signaling payloads relayed, by kind",
		}, []string{"kind"}),

		callLifetime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "huddle_call_lifetime_seconds",
			Help:    "Time from ring start to session teardown, by last state",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 3600},
		}, []string{"state"}),
	}
}

func (p *PrometheusCollector) RecordClientConnected() {
	p.clientsConnected.Inc()
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) RecordClientDisconnected() {
	p.clientsConnected.Dec()
}

func (p *PrometheusCollector) RecordMessagePosted() {
	p.messagesTotal.Inc()
}

func (p *PrometheusCollector) RecordFileShared() {
	p.filesSharedTotal.Inc()
}

func (p *PrometheusCollector) RecordCallRinging() {
	p.callsActive.Inc()
}

func (p *PrometheusCollector) RecordCallResolved(state domain.CallState, outcome string, lifetime time.Duration) {
	p.callsActive.Dec()
	p.callsResolvedTotal.WithLabelValues(string(state), outcome).Inc()
	p.callLifetime.WithLabelValues(string(state)).Observe(lifetime.Seconds())
}

func (p *PrometheusCollector) RecordSignalRelayed(kind string) {
	p.signalsRelayed.WithLabelValues(kind).Inc()
}

func (p *PrometheusCollector) RecordPollCreated() {
	p.pollsCreatedTotal.Inc()
}

func (p *PrometheusCollector) RecordVoteCast() {
	p.votesCastTotal.Inc()
}

func (p *PrometheusCollector) RecordSendQueueDrop() {
	p.sendQueueDrops.Inc()
}
