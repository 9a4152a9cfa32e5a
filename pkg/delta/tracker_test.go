package delta

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// world is a Locator backed by a map of handle positions.
type world struct {
	mu  sync.Mutex
	pos map[string]quant.Vec3
}

func newWorld() *world { return &world{pos: make(map[string]quant.Vec3)} }

func (w *world) set(h string, p quant.Vec3) {
	w.mu.Lock()
	w.pos[h] = p
	w.mu.Unlock()
}

func (w *world) kill(h string) {
	w.mu.Lock()
	delete(w.pos, h)
	w.mu.Unlock()
}

func (w *world) Locate(h string) (quant.Vec3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pos[h]
	return p, ok
}

func ids(t *testing.T, tr *OrbTracker[string]) []uint32 {
	t.Helper()
	var out []uint32
	for _, m := range tr.DeltaAndUpdate() {
		out = append(out, m.ID)
	}
	return out
}

func TestDeltaThreshold(t *testing.T) {
	w := newWorld()
	tr := NewOrbTracker[string](w, WithCodec(quant.NewCodec(quant.DefaultBounds())))

	w.set("a", quant.Vec3{X: 10, Y: 0, Z: 10})
	tr.SetOrbTarget(2, "a", 1)

	if got := ids(t, tr); len(got) != 1 || got[0] != 1 {
		t.Fatalf("first DeltaAndUpdate() ids = %v, want [1]", got)
	}
	if got := ids(t, tr); len(got) != 0 {
		t.Errorf("unchanged orb re-sent: %v", got)
	}

	w.set("a", quant.Vec3{X: 10.05, Y: 0, Z: 10})
	if got := ids(t, tr); len(got) != 0 {
		t.Errorf("movement below threshold sent: %v", got)
	}

	w.set("a", quant.Vec3{X: 10.2, Y: 0, Z: 10})
	if got := ids(t, tr); len(got) != 1 {
		t.Errorf("movement above threshold not sent: %v", got)
	}
}

func TestDeltaComparesAgainstLastSent(t *testing.T) {
	w := newWorld()
	tr := NewOrbTracker[string](w)
	w.set("a", quant.Vec3{})
	tr.SetOrbTarget(2, "a", 1)
	tr.DeltaAndUpdate()

	// Small steps accumulate against the last sent position.
	sent := 0
	for i := 1; i <= 10; i++ {
		w.set("a", quant.Vec3{X: float32(i) * 0.04})
		sent += len(tr.DeltaAndUpdate())
	}
	if sent == 0 {
		t.Error("accumulated movement never sent")
	}
	if sent > 4 {
		t.Errorf("sent %d updates for 0.4 of movement in 0.04 steps", sent)
	}
}

func TestDeltaCustomThreshold(t *testing.T) {
	w := newWorld()
	tr := NewOrbTracker[string](w, WithThreshold(5))
	if got := tr.Threshold(); got != 5 {
		t.Fatalf("Threshold() = %v, want 5", got)
	}
	w.set("a", quant.Vec3{})
	tr.SetOrbTarget(2, "a", 1)
	tr.DeltaAndUpdate()

	w.set("a", quant.Vec3{X: 3})
	if got := ids(t, tr); len(got) != 0 {
		t.Errorf("movement of 3 sent with threshold 5: %v", got)
	}
}

func TestDeltaSkipsDeadAndPrunes(t *testing.T) {
	w := newWorld()
	tr := NewOrbTracker[string](w)
	w.set("a", quant.Vec3{X: 1})
	w.set("b", quant.Vec3{X: 2})
	tr.SetOrbTarget(2, "a", 1)
	tr.SetOrbTarget(2, "b", 2)

	if got := ids(t, tr); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", got)
	}

	w.kill("a")
	if got := ids(t, tr); len(got) != 0 {
		t.Errorf("ids after kill = %v, want none", got)
	}

	// The dead orb's snapshot was dropped, so it is new again when it returns.
	w.set("a", quant.Vec3{X: 1})
	if got := ids(t, tr); len(got) != 1 || got[0] != 1 {
		t.Errorf("ids after revive = %v, want [1]", got)
	}
}

func TestDeltaNeverNil(t *testing.T) {
	tr := NewOrbTracker[string](newWorld())
	if got := tr.DeltaAndUpdate(); got == nil {
		t.Error("DeltaAndUpdate() = nil, want empty slice")
	}
}

func TestAllOrbsUnfiltered(t *testing.T) {
	w := newWorld()
	tr := NewOrbTracker[string](w)
	w.set("a", quant.Vec3{X: 1})
	w.set("b", quant.Vec3{X: 2})
	tr.SetOrbTarget(2, "b", 5)
	tr.SetOrbTarget(2, "a", 3)
	tr.SetOrbTarget(2, "ghost", 4)
	tr.DeltaAndUpdate()

	all := tr.AllOrbs()
	if len(all) != 2 || all[0].ID != 3 || all[1].ID != 5 {
		t.Fatalf("AllOrbs() = %+v, want ids [3 5]", all)
	}
	if want := quant.Default.QuantizeVec3(quant.Vec3{X: 2}); all[1].Position != want {
		t.Errorf("AllOrbs()[1].Position = %+v, want %+v", all[1].Position, want)
	}
}

func TestReservationFIFO(t *testing.T) {
	tr := NewOrbTracker[string](newWorld())

	if _, ok := tr.PeekNextTarget(); ok {
		t.Fatal("PeekNextTarget() with empty queue = true")
	}

	tr.QueueTarget(7)
	r1, ok1 := tr.PeekNextTarget()
	r2, ok2 := tr.PeekNextTarget()
	if !ok1 || !ok2 {
		t.Fatal("PeekNextTarget() = false with a queued target")
	}
	if r1 != (Reservation{TargetID: 7, OrbID: 1}) || r2 != (Reservation{TargetID: 7, OrbID: 2}) {
		t.Fatalf("reservations = %+v %+v, want {7 1} {7 2}", r1, r2)
	}

	for _, want := range []Reservation{r1, r2} {
		got, ok := tr.NextTargetAndOrbID()
		if !ok || got != want {
			t.Fatalf("NextTargetAndOrbID() = %+v, %v, want %+v", got, ok, want)
		}
	}
}

func TestNextWithoutReservationWarns(t *testing.T) {
	var buf bytes.Buffer
	tr := NewOrbTracker[string](newWorld(), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	if _, ok := tr.NextTargetAndOrbID(); ok {
		t.Fatal("NextTargetAndOrbID() with nothing reserved = true")
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}

func TestClearQueuedTargetsKeepsReservations(t *testing.T) {
	tr := NewOrbTracker[string](newWorld())
	tr.QueueTarget(3)
	tr.PeekNextTarget()
	tr.ClearQueuedTargets()

	if _, ok := tr.PeekNextTarget(); ok {
		t.Error("PeekNextTarget() after clear = true")
	}
	if r, ok := tr.NextTargetAndOrbID(); !ok || r.TargetID != 3 {
		t.Errorf("NextTargetAndOrbID() = %+v, %v, want target 3", r, ok)
	}
}

func TestOrbLookups(t *testing.T) {
	tr := NewOrbTracker[string](newWorld())
	tr.SetOrbTarget(9, "a", 1)

	if h, ok := tr.OrbByID(1); !ok || h != "a" {
		t.Errorf("OrbByID(1) = %q, %v", h, ok)
	}
	if id, ok := tr.TargetIDByHandle("a"); !ok || id != 9 {
		t.Errorf("TargetIDByHandle(a) = %d, %v", id, ok)
	}
	if !tr.Contains("a") || tr.Contains("b") {
		t.Error("Contains mismatch")
	}

	// Re-binding a handle moves it to the new id.
	tr.SetOrbTarget(9, "a", 2)
	if _, ok := tr.OrbByID(1); ok {
		t.Error("old id still tracked after re-binding the handle")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}

	id, ok := tr.RemoveOrbTarget("a")
	if !ok || id != 2 {
		t.Errorf("RemoveOrbTarget(a) = %d, %v, want 2, true", id, ok)
	}
	if _, ok := tr.RemoveOrbTarget("a"); ok {
		t.Error("second RemoveOrbTarget(a) = true")
	}
	if _, ok := tr.TargetIDByHandle("a"); ok {
		t.Error("TargetIDByHandle after removal = true")
	}
}

func TestReset(t *testing.T) {
	w := newWorld()
	w.set("a", quant.Vec3{})
	tr := NewOrbTracker[string](w)
	tr.QueueTarget(1)
	tr.PeekNextTarget()
	tr.PeekNextTarget()
	tr.SetOrbTarget(1, "a", 1)
	tr.DeltaAndUpdate()

	tr.Reset()

	if tr.Len() != 0 {
		t.Errorf("Len() after Reset = %d", tr.Len())
	}
	if _, ok := tr.NextTargetAndOrbID(); ok {
		t.Error("reservation survived Reset")
	}
	tr.QueueTarget(1)
	if r, _ := tr.PeekNextTarget(); r.OrbID != 1 {
		t.Errorf("first orb id after Reset = %d, want 1", r.OrbID)
	}
}

func TestLocatorCalledWithoutLock(t *testing.T) {
	w := newWorld()
	w.set("a", quant.Vec3{X: 1})
	w.set("b", quant.Vec3{X: 2})

	var tr *OrbTracker[string]
	tr = NewOrbTracker[string](LocatorFunc[string](func(h string) (quant.Vec3, bool) {
		if h == "a" {
			// Mutating the tracker from inside the locator must not deadlock.
			tr.RemoveOrbTarget("b")
		}
		return w.Locate(h)
	}))
	tr.SetOrbTarget(1, "a", 1)
	tr.SetOrbTarget(1, "b", 2)

	got := ids(t, tr)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("ids = %v, want [1]", got)
	}
}

func TestConcurrentReservations(t *testing.T) {
	tr := NewOrbTracker[string](newWorld())
	tr.QueueTarget(1)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.PeekNextTarget()
		}()
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for {
		r, ok := tr.NextTargetAndOrbID()
		if !ok {
			break
		}
		if seen[r.OrbID] {
			t.Fatalf("orb id %d reserved twice", r.OrbID)
		}
		seen[r.OrbID] = true
	}
	if len(seen) != n {
		t.Errorf("%d reservations, want %d", len(seen), n)
	}
}
