package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExporterConfig configures the Prometheus exporter.
type ExporterConfig struct {
	// Namespace is the metrics namespace (default: "coopsync").
	Namespace string

	// Subsystem is the metrics subsystem (default: "net").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for message sizes in bytes.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// ExporterOption configures the Prometheus exporter.
type ExporterOption func(*ExporterConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) ExporterOption {
	return func(c *ExporterConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) ExporterOption {
	return func(c *ExporterConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) ExporterOption {
	return func(c *ExporterConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the message size histogram buckets.
func WithBuckets(buckets []float64) ExporterOption {
	return func(c *ExporterConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) ExporterOption {
	return func(c *ExporterConfig) {
		c.Registry = registry
	}
}

func defaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		Namespace: "coopsync",
		Subsystem: "net",
		Buckets:   prometheus.ExponentialBuckets(16, 4, 8), // 16B to 256KB
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Exporter publishes traffic counters as Prometheus metrics.
type Exporter struct {
	packets     *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	messageSize *prometheus.HistogramVec
	latency     *prometheus.GaugeVec
	dropped     *prometheus.CounterVec
	peers       prometheus.Gauge
}

// NewExporter registers the traffic collectors. Registering twice with the
// same registry panics, as promauto does.
func NewExporter(opts ...ExporterOption) *Exporter {
	config := defaultExporterConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Exporter{
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packets_total",
			Help:        "Total number of messages by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),

		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_total",
			Help:        "Total encoded bytes by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),

		messageSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "message_size_bytes",
			Help:        "Encoded message size in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),

		latency: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "peer_latency_seconds",
			Help:        "Last known round-trip latency per peer",
			ConstLabels: config.ConstLabels,
		}, []string{"peer"}),

		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dropped_frames_total",
			Help:        "Inbound frames discarded by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		peers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "peers",
			Help:        "Number of connected peers",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObservePacket counts one message.
func (e *Exporter) ObservePacket(dir Direction, msgType string, bytes int) {
	e.packets.WithLabelValues(string(dir), msgType).Inc()
	e.bytes.WithLabelValues(string(dir), msgType).Add(float64(bytes))
	e.messageSize.WithLabelValues(string(dir)).Observe(float64(bytes))
}

// ObserveLatency sets the latency gauge of peer.
func (e *Exporter) ObserveLatency(peer string, d time.Duration) {
	e.latency.WithLabelValues(peer).Set(d.Seconds())
}

// ForgetPeer removes the latency series of peer.
func (e *Exporter) ForgetPeer(peer string) {
	e.latency.DeleteLabelValues(peer)
}

// ObserveDrop counts a discarded inbound frame.
func (e *Exporter) ObserveDrop(reason string) {
	e.dropped.WithLabelValues(reason).Inc()
}

// SetPeers sets the connected peer gauge.
func (e *Exporter) SetPeers(n int) {
	e.peers.Set(float64(n))
}
