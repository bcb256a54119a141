package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Channel labels for the connection status gauge.
const (
	ChannelWebSocket = "websocket"
	ChannelLiveKit   = "livekit"
)

// statuses mirrors state.Status values; kept here to avoid an import cycle.
var statuses = []string{"disconnected", "connecting", "connected", "error"}

// Metrics holds Prometheus counters and gauges for the live state layer and
// the monitor HTTP surface.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal prometheus.Counter
	errorsTotal   prometheus.Counter

	connectAttemptsTotal     prometheus.Counter
	reconnectsScheduledTotal prometheus.Counter
	scoreMessagesTotal       prometheus.Counter
	malformedMessagesTotal   prometheus.Counter
	tokenRequestsTotal       prometheus.Counter
	tokenFailuresTotal       prometheus.Counter
	malformedMetadataTotal   prometheus.Counter
	channelStatus            *prometheus.GaugeVec
	streamSources            prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_monitor_requests_total",
			Help: "Total number of monitor HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_monitor_errors_total",
			Help: "Total number of monitor HTTP responses with error status (4xx or 5xx)",
		}),
		connectAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_socket_connect_attempts_total",
			Help: "Total number of score socket dial attempts",
		}),
		reconnectsScheduledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_socket_reconnects_scheduled_total",
			Help: "Total number of reconnect timers armed after a socket close",
		}),
		scoreMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_score_messages_total",
			Help: "Total number of score snapshots applied to the score store",
		}),
		malformedMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_score_messages_malformed_total",
			Help: "Total number of score frames dropped as malformed",
		}),
		tokenRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_token_requests_total",
			Help: "Total number of token fetches issued",
		}),
		tokenFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_token_failures_total",
			Help: "Total number of token fetches that failed",
		}),
		malformedMetadataTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_participant_metadata_malformed_total",
			Help: "Total number of participant metadata strings that failed to decode",
		}),
		streamSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hoops_stream_sources",
			Help: "Number of remote camera sources currently registered",
		}),
		channelStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hoops_channel_status",
			Help: "1 for the current status of each channel, 0 otherwise",
		}, []string{"channel", "status"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.connectAttemptsTotal,
		m.reconnectsScheduledTotal,
		m.scoreMessagesTotal,
		m.malformedMessagesTotal,
		m.tokenRequestsTotal,
		m.tokenFailuresTotal,
		m.malformedMetadataTotal,
		m.channelStatus,
		m.streamSources,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

func (m *Metrics) IncConnectAttempts() {
	if m == nil {
		return
	}
	m.connectAttemptsTotal.Inc()
}

func (m *Metrics) IncReconnectsScheduled() {
	if m == nil {
		return
	}
	m.reconnectsScheduledTotal.Inc()
}

func (m *Metrics) IncScoreMessages() {
	if m == nil {
		return
	}
	m.scoreMessagesTotal.Inc()
}

func (m *Metrics) IncMalformedMessages() {
	if m == nil {
		return
	}
	m.malformedMessagesTotal.Inc()
}

func (m *Metrics) IncTokenRequests() {
	if m == nil {
		return
	}
	m.tokenRequestsTotal.Inc()
}

func (m *Metrics) IncTokenFailures() {
	if m == nil {
		return
	}
	m.tokenFailuresTotal.Inc()
}

func (m *Metrics) IncMalformedMetadata() {
	if m == nil {
		return
	}
	m.malformedMetadataTotal.Inc()
}

// SetStreamSources sets the registered source gauge.
func (m *Metrics) SetStreamSources(n int) {
	if m == nil {
		return
	}
	m.streamSources.Set(float64(n))
}

// SetChannelStatus marks status as the current value for channel, zeroing the others.
func (m *Metrics) SetChannelStatus(channel, status string) {
	if m == nil {
		return
	}
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		m.channelStatus.WithLabelValues(channel, s).Set(v)
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
