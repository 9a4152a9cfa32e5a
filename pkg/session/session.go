package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coopsync-dev/coopsync/pkg/authority"
	"github.com/coopsync-dev/coopsync/pkg/delta"
	"github.com/coopsync-dev/coopsync/pkg/dispatch"
	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/quant"
	"github.com/coopsync-dev/coopsync/pkg/telemetry"
)

var (
	// ErrNotHost is returned by operations reserved to the host.
	ErrNotHost = errors.New("session: not the host")

	// ErrNoReservation is returned when an orb spawns without a reserved id.
	ErrNoReservation = errors.New("session: no orb reservation")

	// ErrNoHost is returned by New for a client configured without a host id.
	ErrNoHost = errors.New("session: client needs a host id")
)

// Role is the part a participant plays in the session.
type Role uint8

const (
	RoleClient Role = iota
	RoleHost
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

// Sender delivers a message to the other participants.
type Sender interface {
	Send(ctx context.Context, m protocol.Message) error
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(ctx context.Context, m protocol.Message) error

// Send calls f(ctx, m).
func (f SenderFunc) Send(ctx context.Context, m protocol.Message) error { return f(ctx, m) }

// Config describes one participant.
type Config struct {
	// Self is this participant's id.
	Self uint32

	// Role selects the chest handshake side.
	Role Role

	// HostID is the host's participant id. A client accepts chest grants
	// and spawn announcements only from it. Ignored on the host.
	HostID uint32

	// WorldSize sets the quantization bounds to [-size/2, size/2].
	// Zero keeps the default bounds.
	WorldSize float32

	// DeltaThreshold is the orb movement threshold. Zero keeps the default.
	DeltaThreshold float32

	// TelemetryInterval is the snapshot interval. Zero keeps the default.
	TelemetryInterval time.Duration
}

type options struct {
	logger   *slog.Logger
	monitor  *telemetry.Monitor
	fallback dispatch.HandlerFunc
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger shared by the session's components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMonitor uses m instead of a session-owned monitor.
func WithMonitor(m *telemetry.Monitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithFallback handles every message the session does not handle itself.
func WithFallback(fn dispatch.HandlerFunc) Option {
	return func(o *options) {
		o.fallback = fn
	}
}

// Session is one participant. H is the handle type the game uses to refer
// to live orb objects.
type Session[H comparable] struct {
	self   uint32
	hostID uint32
	role   Role

	codec   *quant.Codec
	arbiter *authority.Arbiter
	host    *authority.Host
	client  *authority.Client
	orbs    *delta.OrbTracker[H]
	monitor *telemetry.Monitor
	router  *dispatch.Router

	// fallback receives the messages no session handler consumes, plus the
	// orb announcements the game must act on.
	fallback dispatch.HandlerFunc

	out    Sender
	logger *slog.Logger
}

// New creates a session that sends through out and locates orbs through loc.
func New[H comparable](cfg Config, out Sender, loc delta.Locator[H], opts ...Option) (*Session[H], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Role == RoleHost {
		cfg.HostID = cfg.Self
	} else if cfg.HostID == 0 || cfg.HostID == cfg.Self {
		return nil, ErrNoHost
	}
	logger := o.logger.With("self", cfg.Self, "role", cfg.Role.String())

	codec := quant.NewCodec(quant.DefaultBounds())
	if cfg.WorldSize != 0 {
		if err := codec.ConfigureWorldSize(cfg.WorldSize); err != nil {
			return nil, fmt.Errorf("session: world size: %w", err)
		}
	}

	monitor := o.monitor
	if monitor == nil {
		monitor = telemetry.NewMonitor(
			telemetry.WithInterval(cfg.TelemetryInterval),
			telemetry.WithLogger(logger),
		)
	}

	s := &Session[H]{
		self:    cfg.Self,
		hostID:  cfg.HostID,
		role:    cfg.Role,
		codec:   codec,
		arbiter: authority.New(authority.WithLogger(logger)),
		orbs: delta.NewOrbTracker(loc,
			delta.WithCodec(codec),
			delta.WithThreshold(cfg.DeltaThreshold),
			delta.WithLogger(logger),
		),
		monitor: monitor,
		out:     out,
		logger:  logger,
	}

	s.fallback = o.fallback
	if s.fallback == nil {
		s.fallback = s.unhandled
	}
	s.router = dispatch.NewRouter(dispatch.WithLogger(logger), dispatch.WithFallback(s.fallback))

	if cfg.Role == RoleHost {
		s.host = authority.NewHost(s.arbiter, cfg.Self)
		dispatch.Handle(s.router, s.onRequestChestOpen)
	} else {
		s.client = authority.NewClient(s.arbiter, cfg.Self, cfg.HostID)
		dispatch.Handle(s.router, s.onGrantChestOpen)
		dispatch.Handle(s.router, s.onSpawnedChest)
		dispatch.Handle(s.router, s.onFinalBossOrbSpawned)
	}
	dispatch.Handle(s.router, s.onChestOpened)
	dispatch.Handle(s.router, s.onFinalBossOrbDestroyed)

	return s, nil
}

// Self returns this participant's id.
func (s *Session[H]) Self() uint32 { return s.self }

// HostID returns the host's participant id.
func (s *Session[H]) HostID() uint32 { return s.hostID }

// Role returns this participant's role.
func (s *Session[H]) Role() Role { return s.role }

// Codec returns the session's quantization codec.
func (s *Session[H]) Codec() *quant.Codec { return s.codec }

// Arbiter returns the chest arbiter.
func (s *Session[H]) Arbiter() *authority.Arbiter { return s.arbiter }

// Orbs returns the orb tracker.
func (s *Session[H]) Orbs() *delta.OrbTracker[H] { return s.orbs }

// Monitor returns the telemetry monitor.
func (s *Session[H]) Monitor() *telemetry.Monitor { return s.monitor }

// Router returns the message router. Games register handlers for the
// messages the session does not consume.
func (s *Session[H]) Router() *dispatch.Router { return s.router }

// ConfigureWorldSize changes the quantization bounds, for example when a new
// map loads.
func (s *Session[H]) ConfigureWorldSize(size float32) error {
	return s.codec.ConfigureWorldSize(size)
}

// Handle processes a message received from peer from.
func (s *Session[H]) Handle(ctx context.Context, from uint32, m protocol.Message) error {
	return s.router.Dispatch(ctx, from, m)
}

// ResetForNextLevel clears chest claims, chest ids, tracked orbs and
// outstanding chest requests.
func (s *Session[H]) ResetForNextLevel() {
	s.arbiter.ResetForNextLevel()
	s.orbs.Reset()
	if s.client != nil {
		s.client.Reset()
	}
	s.logger.Info("session reset for next level")
}

func (s *Session[H]) send(ctx context.Context, m protocol.Message) error {
	if err := s.out.Send(ctx, m); err != nil {
		return fmt.Errorf("session: send %s: %w", m.Tag(), err)
	}
	return nil
}

func (s *Session[H]) unhandled(_ context.Context, from uint32, m protocol.Message) error {
	s.logger.Debug("unhandled message", "tag", m.Tag(), "from", from)
	return nil
}
