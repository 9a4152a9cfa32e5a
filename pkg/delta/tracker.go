// Package delta tracks the final boss orbs and produces the subset of orb
// positions that moved enough to be worth sending.
package delta

import (
	"cmp"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// DefaultThreshold is the world-space distance an orb must move before it is
// sent again.
const DefaultThreshold float32 = 0.1

// Locator reports the current world position of a handle. ok is false once
// the handle no longer refers to a live object.
type Locator[H comparable] interface {
	Locate(h H) (pos quant.Vec3, ok bool)
}

// LocatorFunc adapts a function to a Locator.
type LocatorFunc[H comparable] func(h H) (quant.Vec3, bool)

// Locate calls f(h).
func (f LocatorFunc[H]) Locate(h H) (quant.Vec3, bool) { return f(h) }

// Reservation pairs a target participant with the orb id reserved for it.
type Reservation struct {
	TargetID uint32
	OrbID    uint32
}

type orb[H comparable] struct {
	id     uint32
	target uint32
	handle H
}

// OrbTracker maps orb ids to world handles and remembers the last position
// sent for each orb.
//
// PeekNextTarget and NextTargetAndOrbID pair up in FIFO order. That pairing is
// only meaningful with a single producer per session.
type OrbTracker[H comparable] struct {
	loc       Locator[H]
	codec     *quant.Codec
	threshold float32
	logger    *slog.Logger

	lastID atomic.Uint32

	mu       deadlock.RWMutex
	byID     map[uint32]orb[H]
	byHandle map[H]uint32
	sent     map[uint32]quant.Vector3
	queued   []uint32
	pending  []Reservation
}

// Option configures an OrbTracker.
type Option func(*options)

type options struct {
	codec     *quant.Codec
	threshold float32
	logger    *slog.Logger
}

// WithCodec sets the quantization codec. The default is quant.Default.
func WithCodec(c *quant.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithThreshold sets the minimum movement that produces a delta.
// Non-positive values are ignored.
func WithThreshold(t float32) Option {
	return func(o *options) {
		if t > 0 {
			o.threshold = t
		}
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrbTracker creates a tracker that resolves handles through loc.
func NewOrbTracker[H comparable](loc Locator[H], opts ...Option) *OrbTracker[H] {
	o := options{
		codec:     quant.Default,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &OrbTracker[H]{
		loc:       loc,
		codec:     o.codec,
		threshold: o.threshold,
		logger:    o.logger,
		byID:      make(map[uint32]orb[H]),
		byHandle:  make(map[H]uint32),
		sent:      make(map[uint32]quant.Vector3),
	}
}

// Threshold returns the configured delta threshold.
func (t *OrbTracker[H]) Threshold() float32 { return t.threshold }

// QueueTarget queues a participant as the target of the next orb.
func (t *OrbTracker[H]) QueueTarget(targetID uint32) {
	t.mu.Lock()
	t.queued = append(t.queued, targetID)
	t.mu.Unlock()
}

// ClearQueuedTargets drops queued targets. Outstanding reservations stay.
func (t *OrbTracker[H]) ClearQueuedTargets() {
	t.mu.Lock()
	t.queued = nil
	t.mu.Unlock()
}

// PeekNextTarget reserves a fresh orb id for the oldest queued target. The
// target stays queued, so repeated peeks reserve one id each.
func (t *OrbTracker[H]) PeekNextTarget() (Reservation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queued) == 0 {
		return Reservation{}, false
	}
	r := Reservation{TargetID: t.queued[0], OrbID: t.lastID.Add(1)}
	t.pending = append(t.pending, r)
	return r, true
}

// NextTargetAndOrbID consumes the oldest outstanding reservation.
func (t *OrbTracker[H]) NextTargetAndOrbID() (Reservation, bool) {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		t.logger.Warn("orb spawned without a reserved target")
		return Reservation{}, false
	}
	r := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()
	return r, true
}

// SetOrbTarget starts tracking handle as orb orbID chasing targetID. A handle
// already tracked under another id is moved to orbID.
func (t *OrbTracker[H]) SetOrbTarget(targetID uint32, handle H, orbID uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.byHandle[handle]; ok && old != orbID {
		delete(t.byID, old)
		delete(t.sent, old)
	}
	if prev, ok := t.byID[orbID]; ok && prev.handle != handle {
		delete(t.byHandle, prev.handle)
	}
	t.byID[orbID] = orb[H]{id: orbID, target: targetID, handle: handle}
	t.byHandle[handle] = orbID
}

// RemoveOrbTarget stops tracking handle and returns its orb id.
func (t *OrbTracker[H]) RemoveOrbTarget(handle H) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.byHandle[handle]
	if !ok {
		return 0, false
	}
	delete(t.byHandle, handle)
	delete(t.byID, id)
	delete(t.sent, id)
	return id, true
}

// OrbByID returns the handle tracked as orb id.
func (t *OrbTracker[H]) OrbByID(id uint32) (H, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	o, ok := t.byID[id]
	return o.handle, ok
}

// TargetIDByHandle returns the target of the orb tracked as handle.
func (t *OrbTracker[H]) TargetIDByHandle(handle H) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byHandle[handle]
	if !ok {
		return 0, false
	}
	return t.byID[id].target, true
}

// Contains reports whether handle is tracked.
func (t *OrbTracker[H]) Contains(handle H) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byHandle[handle]
	return ok
}

// Len returns the number of tracked orbs.
func (t *OrbTracker[H]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

type located struct {
	id  uint32
	pos quant.Vector3
}

// locate resolves every tracked orb. The lock is released before the
// Locator is called.
func (t *OrbTracker[H]) locate(b quant.WorldBounds) []located {
	t.mu.RLock()
	orbs := make([]orb[H], 0, len(t.byID))
	for _, o := range t.byID {
		orbs = append(orbs, o)
	}
	t.mu.RUnlock()

	slices.SortFunc(orbs, func(a, b orb[H]) int { return cmp.Compare(a.id, b.id) })

	out := make([]located, 0, len(orbs))
	for _, o := range orbs {
		pos, ok := t.loc.Locate(o.handle)
		if !ok {
			continue
		}
		out = append(out, located{id: o.id, pos: b.QuantizeVec3(pos)})
	}
	return out
}

// AllOrbs returns every live orb with its current position, ordered by id.
func (t *OrbTracker[H]) AllOrbs() []protocol.BossOrbModel {
	cur := t.locate(t.codec.Bounds())
	out := make([]protocol.BossOrbModel, 0, len(cur))
	for _, c := range cur {
		out = append(out, protocol.BossOrbModel{ID: c.id, Position: c.pos})
	}
	return out
}

// DeltaAndUpdate returns the orbs that are new or moved more than the
// threshold since they were last returned, and records what it returns.
// Snapshots of orbs that are no longer tracked are dropped. The result is
// ordered by id and never nil.
func (t *OrbTracker[H]) DeltaAndUpdate() []protocol.BossOrbModel {
	bounds := t.codec.Bounds()
	cur := t.locate(bounds)

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]protocol.BossOrbModel, 0, len(cur))
	live := make(map[uint32]struct{}, len(cur))
	for _, c := range cur {
		if _, tracked := t.byID[c.id]; !tracked {
			continue
		}
		live[c.id] = struct{}{}

		prev, seen := t.sent[c.id]
		if seen && !t.moved(bounds, prev, c.pos) {
			continue
		}
		t.sent[c.id] = c.pos
		out = append(out, protocol.BossOrbModel{ID: c.id, Position: c.pos})
	}
	for id := range t.sent {
		if _, ok := live[id]; !ok {
			delete(t.sent, id)
		}
	}
	return out
}

func (t *OrbTracker[H]) moved(b quant.WorldBounds, prev, cur quant.Vector3) bool {
	d := quant.Distance(b.DequantizeVector3(prev), b.DequantizeVector3(cur))
	return d > t.threshold
}

// Reset clears every table and restarts orb ids at 1.
func (t *OrbTracker[H]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.byID)
	clear(t.byHandle)
	clear(t.sent)
	t.queued = nil
	t.pending = nil
	t.lastID.Store(0)
}
