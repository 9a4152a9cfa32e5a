// Package transport carries envelopes over websockets: a peer connection,
// a relay hub that fans messages out to every other peer, and a dialer.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

var (
	// ErrClosed is returned when sending on a closed connection.
	ErrClosed = errors.New("transport: connection closed")

	// ErrTooManyMalformed is returned by ReadLoop when the peer exceeded its
	// malformed-frame budget and was disconnected.
	ErrTooManyMalformed = errors.New("transport: too many malformed frames")

	errShortOrigin = errors.New("transport: relayed frame shorter than its origin id")
)

// Drop reasons reported to telemetry.
const (
	dropEmpty       = "empty"
	dropMalformed   = "malformed"
	dropUnknownTag  = "unknown_tag"
	dropRateLimited = "rate_limited"
	dropText        = "text_frame"
)

// OriginSize is the length of the origin peer id a Hub puts in front of
// every forwarded envelope.
const OriginSize = 4

// Frame is one decoded inbound envelope.
type Frame struct {
	// From is the peer id of the connection the frame arrived on, or the
	// origin peer id stamped by the relay when RelayOrigin is set.
	From uint32

	// Data is the raw envelope.
	Data []byte

	// Message is the decoded message.
	Message protocol.Message
}

// Handler processes an inbound frame. An error is logged and recorded on
// the frame's span; it does not close the connection.
type Handler func(ctx context.Context, f Frame) error

// Conn is one websocket peer. Send is safe for concurrent use; ReadLoop must
// run on a single goroutine.
type Conn struct {
	ws     *websocket.Conn
	cfg    Config
	tracer trace.Tracer
	logger *slog.Logger

	limiter *rate.Limiter

	wmu       sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once

	malformed atomic.Int32
}

// NewConn wraps an established websocket connection.
func NewConn(ws *websocket.Conn, opts ...Option) *Conn {
	cfg := buildConfig(opts)
	c := &Conn{
		ws:     ws,
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(tracerName),
		logger: cfg.Logger.With("peer", cfg.PeerID, "remote", ws.RemoteAddr().String()),
	}
	if cfg.InboundLimit != rate.Inf {
		c.limiter = rate.NewLimiter(cfg.InboundLimit, cfg.InboundBurst)
	}
	ws.SetReadLimit(cfg.MaxFrameSize)
	ws.SetPongHandler(c.handlePong)
	return c
}

// PeerID returns the remote peer id.
func (c *Conn) PeerID() uint32 { return c.cfg.PeerID }

// label identifies the peer in telemetry.
func (c *Conn) label() string {
	return fmt.Sprintf("%d", c.cfg.PeerID)
}

// Send encodes m and writes it as one binary websocket message.
func (c *Conn) Send(ctx context.Context, m protocol.Message) error {
	name := protocol.Name(m)
	ctx, span := c.tracer.Start(ctx, "coopsync.send "+name,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("coopsync.message", name),
			attribute.Int64("coopsync.peer", int64(c.cfg.PeerID)),
		),
	)
	defer span.End()

	data, err := c.cfg.Codec.Encode(m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("transport: encode %s: %w", name, err)
	}
	span.SetAttributes(attribute.Int("coopsync.bytes", len(data)))

	if err := c.write(ctx, data, name); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// SendRaw writes an already encoded envelope. name labels it in telemetry.
func (c *Conn) SendRaw(ctx context.Context, data []byte, name string) error {
	return c.write(ctx, data, name)
}

func (c *Conn) write(ctx context.Context, data []byte, name string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.wmu.Lock()
	c.ws.SetWriteDeadline(deadline)
	err := c.ws.WriteMessage(websocket.BinaryMessage, data)
	c.wmu.Unlock()

	if err != nil {
		return fmt.Errorf("transport: write %s: %w", name, err)
	}
	if c.cfg.Monitor != nil {
		c.cfg.Monitor.RecordPacketSent(len(data), name)
	}
	return nil
}

// ReadLoop reads frames until the peer disconnects, ctx is cancelled, or
// the peer exceeds its malformed-frame budget. Empty frames, unknown tags
// and rate-limited frames are dropped; malformed frames are dropped and
// counted. A clean close returns nil.
func (c *Conn) ReadLoop(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			local := c.closed.Load()
			c.Close()
			switch {
			case local, ctx.Err() != nil:
				return nil
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				return nil
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		if kind != websocket.BinaryMessage {
			c.drop(dropText, slog.LevelDebug, nil)
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.drop(dropRateLimited, slog.LevelDebug, nil)
			continue
		}

		from := c.cfg.PeerID
		if c.cfg.RelayOrigin {
			if len(data) < OriginSize {
				c.drop(dropMalformed, slog.LevelWarn, errShortOrigin)
				continue
			}
			from = binary.BigEndian.Uint32(data)
			data = data[OriginSize:]
		}

		m, err := c.cfg.Codec.Decode(data)
		switch {
		case errors.Is(err, protocol.ErrEmptyInput):
			c.drop(dropEmpty, slog.LevelDebug, err)
			continue
		case err != nil:
			c.drop(dropMalformed, slog.LevelWarn, err)
			if n := c.malformed.Add(1); c.cfg.MaxMalformed > 0 && int(n) > c.cfg.MaxMalformed {
				c.closeWith(websocket.ClosePolicyViolation, "too many malformed frames")
				return ErrTooManyMalformed
			}
			continue
		case m == nil:
			c.drop(dropUnknownTag, slog.LevelDebug, nil)
			continue
		}

		name := protocol.Name(m)
		if c.cfg.Monitor != nil {
			c.cfg.Monitor.RecordPacketReceived(len(data), name)
		}
		c.deliver(ctx, h, Frame{From: from, Data: data, Message: m}, name)
	}
}

func (c *Conn) deliver(ctx context.Context, h Handler, f Frame, name string) {
	ctx, span := c.tracer.Start(ctx, "coopsync.recv "+name,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("coopsync.message", name),
			attribute.Int64("coopsync.peer", int64(f.From)),
			attribute.Int("coopsync.bytes", len(f.Data)),
		),
	)
	defer span.End()

	if err := h(ctx, f); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("handler error", "message", name, "error", err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (c *Conn) drop(reason string, level slog.Level, err error) {
	if c.cfg.Monitor != nil {
		c.cfg.Monitor.RecordDropped(reason)
	}
	if err != nil {
		c.logger.Log(context.Background(), level, "frame dropped", "reason", reason, "error", err)
		return
	}
	c.logger.Log(context.Background(), level, "frame dropped", "reason", reason)
}

// Malformed returns the number of malformed frames received so far.
func (c *Conn) Malformed() int {
	return int(c.malformed.Load())
}

// Ping sends a ping carrying the current time. The matching pong records
// the round-trip latency.
func (c *Conn) Ping() error {
	if c.closed.Load() {
		return ErrClosed
	}
	var payload [8]byte
	binary.BigEndian.PutUint64(payload[:], uint64(time.Now().UnixNano()))
	return c.ws.WriteControl(websocket.PingMessage, payload[:], time.Now().Add(c.cfg.WriteTimeout))
}

// KeepAlive pings the peer every interval until ctx is done or a ping fails.
func (c *Conn) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Ping(); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) handlePong(appData string) error {
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	if len(appData) != 8 || c.cfg.Monitor == nil {
		return nil
	}
	sent := int64(binary.BigEndian.Uint64([]byte(appData)))
	if rtt := time.Since(time.Unix(0, sent)); rtt >= 0 {
		c.cfg.Monitor.RecordLatency(c.label(), rtt)
	}
	return nil
}

// Close sends a normal close frame and closes the connection. It is safe to
// call more than once.
func (c *Conn) Close() error {
	return c.closeWith(websocket.CloseNormalClosure, "")
}

func (c *Conn) closeWith(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
		if c.cfg.Monitor != nil {
			c.cfg.Monitor.ForgetPeer(c.label())
		}
	})
	return err
}
