package transport

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/telemetry"
)

const tracerName = "github.com/coopsync-dev/coopsync/pkg/transport"

// Defaults for Conn.
const (
	DefaultReadTimeout  = 60 * time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultMaxMalformed = 16
	DefaultMaxFrameSize = 1 << 20
)

// Config holds connection settings. Use the With* options to change them.
type Config struct {
	// PeerID identifies the remote peer to handlers and logs.
	PeerID uint32

	// Codec encodes and decodes envelopes (default: protocol.DefaultCodec).
	Codec *protocol.Codec

	// Monitor records traffic. Nil disables telemetry.
	Monitor *telemetry.Monitor

	// Logger receives connection events (default: slog.Default()).
	Logger *slog.Logger

	// TracerProvider creates the per-message spans
	// (default: the global provider).
	TracerProvider trace.TracerProvider

	// MaxMalformed is the number of malformed frames tolerated before the
	// peer is disconnected. Zero or negative disables the budget.
	MaxMalformed int

	// MaxFrameSize is the read limit for one websocket message.
	MaxFrameSize int64

	// InboundLimit and InboundBurst rate-limit inbound frames. Frames over
	// the limit are dropped. rate.Inf disables the limit.
	InboundLimit rate.Limit
	InboundBurst int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RelayOrigin marks a connection to a Hub. Inbound messages then carry
	// the origin peer id ahead of the envelope, and Frame.From reports it.
	RelayOrigin bool
}

// Option configures a connection.
type Option func(*Config)

// WithPeerID sets the remote peer id.
func WithPeerID(id uint32) Option {
	return func(c *Config) {
		c.PeerID = id
	}
}

// WithCodec sets the envelope codec.
func WithCodec(codec *protocol.Codec) Option {
	return func(c *Config) {
		if codec != nil {
			c.Codec = codec
		}
	}
}

// WithMonitor records traffic on m.
func WithMonitor(m *telemetry.Monitor) Option {
	return func(c *Config) {
		c.Monitor = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithTracerProvider sets the tracer provider used for message spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		if tp != nil {
			c.TracerProvider = tp
		}
	}
}

// WithMaxMalformed sets the malformed-frame budget.
func WithMaxMalformed(n int) Option {
	return func(c *Config) {
		c.MaxMalformed = n
	}
}

// WithMaxFrameSize sets the websocket read limit.
func WithMaxFrameSize(n int64) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxFrameSize = n
		}
	}
}

// WithInboundRate limits inbound frames to limit per second with burst.
func WithInboundRate(limit rate.Limit, burst int) Option {
	return func(c *Config) {
		c.InboundLimit = limit
		c.InboundBurst = burst
	}
}

// WithRelayOrigin reads the origin peer id the Hub stamps on every
// forwarded envelope.
func WithRelayOrigin() Option {
	return func(c *Config) {
		c.RelayOrigin = true
	}
}

// WithTimeouts sets the read and write deadlines. Zero keeps the default.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *Config) {
		if read > 0 {
			c.ReadTimeout = read
		}
		if write > 0 {
			c.WriteTimeout = write
		}
	}
}

func defaultConfig() Config {
	return Config{
		Codec:          protocol.DefaultCodec,
		Logger:         slog.Default(),
		TracerProvider: otel.GetTracerProvider(),
		MaxMalformed:   DefaultMaxMalformed,
		MaxFrameSize:   DefaultMaxFrameSize,
		InboundLimit:   rate.Inf,
		ReadTimeout:    DefaultReadTimeout,
		WriteTimeout:   DefaultWriteTimeout,
	}
}

func buildConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
