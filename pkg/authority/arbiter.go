// Package authority decides which participant owns a contested world object,
// such as the right to open a chest.
//
// Claims are first-writer-wins and terminal until ResetForNextLevel. Losing a
// race is ordinary control flow: TryClaim returns false, never an error.
package authority

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
)

// Arbiter holds the claim table and the chest id allocator of one session.
// All methods are safe for concurrent use and never block on I/O.
type Arbiter struct {
	claims sync.Map // object id -> claimant id
	live   sync.Map // chest id -> struct{}

	// lastID is the most recently allocated chest id; -1 before the first.
	lastID atomic.Int64

	mu       deadlock.Mutex
	expected []uint32

	logger *slog.Logger
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an empty arbiter.
func New(opts ...Option) *Arbiter {
	a := &Arbiter{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.lastID.Store(-1)
	return a
}

// TryClaim records requesterID as the claimant of objectID if nobody has
// claimed it yet. It returns true only for the call that wins; every later
// call for the same object returns false, including a repeat by the winner.
func (a *Arbiter) TryClaim(objectID, requesterID uint32) bool {
	_, loaded := a.claims.LoadOrStore(objectID, requesterID)
	return !loaded
}

// Claimant returns the recorded claimant of objectID.
func (a *Arbiter) Claimant(objectID uint32) (uint32, bool) {
	v, ok := a.claims.Load(objectID)
	if !ok {
		return 0, false
	}
	return v.(uint32), true
}

// IsClaimedBy reports whether id is the recorded claimant of objectID.
func (a *Arbiter) IsClaimedBy(objectID, id uint32) bool {
	c, ok := a.Claimant(objectID)
	return ok && c == id
}

// Allocate assigns the next chest id. Ids start at 0 and are never reused
// within a level.
func (a *Arbiter) Allocate() uint32 {
	id := uint32(a.lastID.Add(1))
	a.live.Store(id, struct{}{})
	return id
}

// Expect queues a chest id announced by the host. The next locally spawned
// chest adopts it.
func (a *Arbiter) Expect(id uint32) {
	a.mu.Lock()
	a.expected = append(a.expected, id)
	a.mu.Unlock()
}

// Adopt binds the oldest expected id to a locally spawned chest. It reports
// false, and logs a warning, when the host has not announced any id.
func (a *Arbiter) Adopt() (uint32, bool) {
	a.mu.Lock()
	if len(a.expected) == 0 {
		a.mu.Unlock()
		a.logger.Warn("chest spawned without an announced id")
		return 0, false
	}
	id := a.expected[0]
	a.expected = a.expected[1:]
	a.mu.Unlock()

	a.live.Store(id, struct{}{})
	return id, true
}

// Pending returns the number of announced ids not yet adopted.
func (a *Arbiter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.expected)
}

// Contains reports whether id is a live chest.
func (a *Arbiter) Contains(id uint32) bool {
	_, ok := a.live.Load(id)
	return ok
}

// Remove forgets a despawned chest. Its claim, if any, stays recorded.
func (a *Arbiter) Remove(id uint32) {
	a.live.Delete(id)
}

// ResetForNextLevel clears claims, live chests, queued ids and the id
// counter. Callers invoke it at a level transition, when no claim traffic for
// the old level is in flight.
func (a *Arbiter) ResetForNextLevel() {
	a.claims.Clear()
	a.live.Clear()
	a.lastID.Store(-1)

	a.mu.Lock()
	a.expected = nil
	a.mu.Unlock()
}
