package telemetry

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// TypeStats counts the traffic of one message type in one direction.
type TypeStats struct {
	Packets int64
	Bytes   int64
}

// Snapshot is a point-in-time copy of a Monitor's counters. Rates are in
// KB/s averaged over the uptime.
type Snapshot struct {
	Uptime        time.Duration
	BytesSent     int64
	BytesReceived int64
	SentRate      float64
	ReceivedRate  float64
	Dropped       int64
	Latency       map[string]time.Duration
	Sent          map[string]TypeStats
	Received      map[string]TypeStats
	CollectedAt   time.Time
}

// latencies returns the latency values in milliseconds, ordered by peer.
func (s Snapshot) latencies() []int64 {
	peers := make([]string, 0, len(s.Latency))
	for p := range s.Latency {
		peers = append(peers, p)
	}
	slices.Sort(peers)

	out := make([]int64, len(peers))
	for i, p := range peers {
		out[i] = s.Latency[p].Milliseconds()
	}
	return out
}

// String renders the one-line summary, for example:
//
//	uptime=12s tx=3KB rx=5KB tx_rate=0.3KB/s rx_rate=0.4KB/s latency=[40,52]ms msg_types_tx=4 msg_types_rx=6
//
// The latency field is omitted when no latency is known.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uptime=%.0fs ", s.Uptime.Seconds())
	fmt.Fprintf(&b, "tx=%dKB ", s.BytesSent/1024)
	fmt.Fprintf(&b, "rx=%dKB ", s.BytesReceived/1024)
	fmt.Fprintf(&b, "tx_rate=%.1fKB/s ", s.SentRate)
	fmt.Fprintf(&b, "rx_rate=%.1fKB/s ", s.ReceivedRate)

	if lat := s.latencies(); len(lat) > 0 {
		parts := make([]string, len(lat))
		for i, ms := range lat {
			parts[i] = fmt.Sprint(ms)
		}
		fmt.Fprintf(&b, "latency=[%s]ms ", strings.Join(parts, ","))
	}

	fmt.Fprintf(&b, "msg_types_tx=%d ", len(s.Sent))
	fmt.Fprintf(&b, "msg_types_rx=%d", len(s.Received))
	return b.String()
}

// LogValue implements slog.LogValuer.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("uptime", s.Uptime.Truncate(time.Second)),
		slog.Int64("tx_bytes", s.BytesSent),
		slog.Int64("rx_bytes", s.BytesReceived),
		slog.Float64("tx_kbps", s.SentRate),
		slog.Float64("rx_kbps", s.ReceivedRate),
		slog.Any("latency_ms", s.latencies()),
		slog.Int("msg_types_tx", len(s.Sent)),
		slog.Int("msg_types_rx", len(s.Received)),
		slog.Int64("dropped", s.Dropped),
	)
}
