// Package telemetry observes network traffic: byte and packet counters per
// message type and direction, last-known peer latency, and a periodic
// snapshot. It never affects protocol behavior and never blocks or fails
// its callers.
package telemetry

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum time between automatic snapshots.
const DefaultInterval = 10 * time.Second

// minUptime is the uptime below which no snapshot is emitted.
const minUptime = time.Second

// Direction labels traffic flow.
type Direction string

const (
	Sent     Direction = "tx"
	Received Direction = "rx"
)

// Sink receives snapshots. A panicking sink is recovered.
type Sink func(Snapshot)

type typeCounter struct {
	packets atomic.Int64
	bytes   atomic.Int64
}

// Monitor aggregates traffic counters for one session.
type Monitor struct {
	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
	dropped       atomic.Int64

	sent     sync.Map // message type -> *typeCounter
	received sync.Map // message type -> *typeCounter
	latency  sync.Map // peer -> time.Duration

	start   atomic.Int64 // unix nanos
	limiter atomic.Pointer[rate.Limiter]

	interval time.Duration
	sink     Sink
	exporter *Exporter
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the minimum time between automatic snapshots.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithSink replaces the default log sink.
func WithSink(s Sink) Option {
	return func(m *Monitor) {
		if s != nil {
			m.sink = s
		}
	}
}

// WithLogger sets the logger used by the default sink.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithExporter mirrors every recorded event into Prometheus collectors.
func WithExporter(e *Exporter) Option {
	return func(m *Monitor) {
		m.exporter = e
	}
}

// withClock overrides time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor creates a monitor whose session starts now.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		interval: DefaultInterval,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sink == nil {
		m.sink = m.logSink
	}
	m.restart()
	return m
}

func (m *Monitor) restart() {
	now := m.now()
	m.start.Store(now.UnixNano())

	// The first automatic snapshot is due one interval after the start.
	lim := rate.NewLimiter(rate.Every(m.interval), 1)
	lim.AllowN(now, 1)
	m.limiter.Store(lim)
}

// RecordPacketSent counts an outgoing message of msgType.
func (m *Monitor) RecordPacketSent(bytes int, msgType string) {
	m.bytesSent.Add(int64(bytes))
	m.record(&m.sent, Sent, bytes, msgType)
}

// RecordPacketReceived counts an incoming message of msgType.
func (m *Monitor) RecordPacketReceived(bytes int, msgType string) {
	m.bytesReceived.Add(int64(bytes))
	m.record(&m.received, Received, bytes, msgType)
}

func (m *Monitor) record(table *sync.Map, dir Direction, bytes int, msgType string) {
	v, ok := table.Load(msgType)
	if !ok {
		v, _ = table.LoadOrStore(msgType, &typeCounter{})
	}
	c := v.(*typeCounter)
	c.packets.Add(1)
	c.bytes.Add(int64(bytes))

	if m.exporter != nil {
		m.exporter.ObservePacket(dir, msgType, bytes)
	}
	m.maybeSnapshot()
}

// RecordLatency stores the last-known round-trip latency of peer.
func (m *Monitor) RecordLatency(peer string, d time.Duration) {
	m.latency.Store(peer, d)
	if m.exporter != nil {
		m.exporter.ObserveLatency(peer, d)
	}
}

// ForgetPeer drops the latency entry of a disconnected peer.
func (m *Monitor) ForgetPeer(peer string) {
	m.latency.Delete(peer)
	if m.exporter != nil {
		m.exporter.ForgetPeer(peer)
	}
}

// RecordDropped counts an inbound frame discarded for reason.
func (m *Monitor) RecordDropped(reason string) {
	m.dropped.Add(1)
	if m.exporter != nil {
		m.exporter.ObserveDrop(reason)
	}
}

// SetPeers reports the number of connected peers.
func (m *Monitor) SetPeers(n int) {
	if m.exporter != nil {
		m.exporter.SetPeers(n)
	}
}

// maybeSnapshot emits when the interval has elapsed. The token is only
// spent once the session is old enough for LogSnapshot to emit, so an
// interval shorter than a second cannot lose the first snapshot.
func (m *Monitor) maybeSnapshot() {
	now := m.now()
	if now.Sub(time.Unix(0, m.start.Load())) < minUptime {
		return
	}
	if m.limiter.Load().AllowN(now, 1) {
		m.LogSnapshot()
	}
}

// LogSnapshot emits a snapshot to the sink now, unless the session is
// younger than one second.
func (m *Monitor) LogSnapshot() {
	snap := m.Snapshot()
	if snap.Uptime < minUptime {
		return
	}
	m.emit(snap)
}

func (m *Monitor) emit(snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("telemetry sink panicked", "panic", r)
		}
	}()
	m.sink(snap)
}

func (m *Monitor) logSink(s Snapshot) {
	m.logger.Info("net telemetry", "snapshot", s)
}

// Snapshot returns the current counters.
func (m *Monitor) Snapshot() Snapshot {
	now := m.now()
	s := Snapshot{
		Uptime:        now.Sub(time.Unix(0, m.start.Load())),
		BytesSent:     m.bytesSent.Load(),
		BytesReceived: m.bytesReceived.Load(),
		Dropped:       m.dropped.Load(),
		Latency:       make(map[string]time.Duration),
		Sent:          collect(&m.sent),
		Received:      collect(&m.received),
		CollectedAt:   now,
	}
	if secs := s.Uptime.Seconds(); secs > 0 {
		s.SentRate = float64(s.BytesSent) / secs / 1024
		s.ReceivedRate = float64(s.BytesReceived) / secs / 1024
	}
	m.latency.Range(func(k, v any) bool {
		s.Latency[k.(string)] = v.(time.Duration)
		return true
	})
	return s
}

func collect(table *sync.Map) map[string]TypeStats {
	out := make(map[string]TypeStats)
	table.Range(func(k, v any) bool {
		c := v.(*typeCounter)
		out[k.(string)] = TypeStats{Packets: c.packets.Load(), Bytes: c.bytes.Load()}
		return true
	})
	return out
}

// Reset zeroes every counter and restarts the session clock. Prometheus
// counters are monotonic and are not reset.
func (m *Monitor) Reset() {
	m.bytesSent.Store(0)
	m.bytesReceived.Store(0)
	m.dropped.Store(0)
	m.sent.Clear()
	m.received.Clear()
	m.latency.Clear()
	m.restart()
}
