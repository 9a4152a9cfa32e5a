package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

type peer struct {
	conn   *Conn
	frames chan Frame
}

// joinHub connects to the hub as peer id; zero lets the hub assign one.
func joinHub(t *testing.T, url string, id uint32) *peer {
	t.Helper()
	var conn *Conn
	if id == 0 {
		conn = dial(t, url, WithRelayOrigin())
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := DialRelay(ctx, url, id, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("DialRelay(%d) error: %v", id, err)
		}
		t.Cleanup(func() { c.Close() })
		conn = c
	}
	p := &peer{conn: conn, frames: make(chan Frame, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go p.conn.ReadLoop(ctx, func(_ context.Context, f Frame) error {
		p.frames <- f
		return nil
	})
	return p
}

func TestHubRelays(t *testing.T) {
	mon := quietMonitor()
	hub := NewHub(WithHubLogger(quietLogger()), WithHubMonitor(mon))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	url := wsURL(srv)

	host := joinHub(t, url, 1)
	alice := joinHub(t, url, 2)
	bob := joinHub(t, url, 3)
	eventually(t, "three peers", func() bool { return hub.Len() == 3 })

	req := &protocol.RequestChestOpen{ChestID: 5, RequestingPlayerID: 2}
	if err := alice.conn.Send(context.Background(), req); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	for name, p := range map[string]*peer{"host": host, "bob": bob} {
		f := recvFrame(t, p.frames)
		if !reflect.DeepEqual(f.Message, req) {
			t.Errorf("%s received %+v, want %+v", name, f.Message, req)
		}
		if f.From != 2 {
			t.Errorf("%s received frame from %d, want origin 2", name, f.From)
		}
	}
	select {
	case f := <-alice.frames:
		t.Errorf("sender received its own message: %+v", f.Message)
	case <-time.After(50 * time.Millisecond):
	}

	eventually(t, "relay telemetry", func() bool {
		s := mon.Snapshot()
		return s.Received["RequestChestOpen"].Packets == 1 && s.Sent["RequestChestOpen"].Packets == 2
	})
}

func TestHubDropsInvalid(t *testing.T) {
	hub := NewHub(WithHubLogger(quietLogger()))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	url := wsURL(srv)

	a := joinHub(t, url, 0)
	b := joinHub(t, url, 0)
	eventually(t, "two peers", func() bool { return hub.Len() == 2 })

	ctx := context.Background()
	a.conn.SendRaw(ctx, []byte{0xFF, 0xFF, 0x00, 0x00}, "unknown")
	a.conn.SendRaw(ctx, []byte{0x00, 0x04, 0x00, 0x09}, "truncated")
	a.conn.Send(ctx, &protocol.StormStarted{})

	f := recvFrame(t, b.frames)
	if _, ok := f.Message.(*protocol.StormStarted); !ok {
		t.Errorf("first relayed frame = %T, want *protocol.StormStarted", f.Message)
	}
}

func TestHubPeerLeaves(t *testing.T) {
	hub := NewHub(WithHubLogger(quietLogger()))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	url := wsURL(srv)

	a := joinHub(t, url, 0)
	joinHub(t, url, 0)
	eventually(t, "two peers", func() bool { return hub.Len() == 2 })

	a.conn.Close()
	eventually(t, "peer removal", func() bool { return hub.Len() == 1 })

	hub.Close()
	eventually(t, "hub drained", func() bool { return hub.Len() == 0 })
}

func TestHubKeepAliveMeasuresLatency(t *testing.T) {
	mon := quietMonitor()
	hub := NewHub(WithHubLogger(quietLogger()), WithHubMonitor(mon), WithKeepAlive(10*time.Millisecond))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	joinHub(t, wsURL(srv), 0)
	eventually(t, "latency sample", func() bool {
		_, ok := mon.Snapshot().Latency["1"]
		return ok
	})
}

func TestHubPeerIDs(t *testing.T) {
	hub := NewHub(WithHubLogger(quietLogger()))
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	url := wsURL(srv)

	// A declared id is kept, and assigned ids skip it.
	joinHub(t, url, 1)
	auto := joinHub(t, url, 0)
	eventually(t, "two peers", func() bool { return hub.Len() == 2 })

	declared := joinHub(t, url, 9)
	eventually(t, "three peers", func() bool { return hub.Len() == 3 })
	if err := auto.conn.Send(context.Background(), &protocol.StormStopped{}); err != nil {
		t.Fatal(err)
	}
	if f := recvFrame(t, declared.frames); f.From != 2 {
		t.Errorf("assigned peer id = %d, want 2", f.From)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tests := []struct {
		name  string
		url   string
		id    uint32
		error string
	}{
		{"duplicate", url, 9, "409"},
		{"zero query", url + "?peer=0", 0, "400"},
		{"garbage query", url + "?peer=host", 0, "400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.id != 0 {
				_, err = DialRelay(ctx, tt.url, tt.id)
			} else {
				_, err = Dial(ctx, tt.url)
			}
			if err == nil || !strings.Contains(err.Error(), tt.error) {
				t.Errorf("dial error = %v, want status %s", err, tt.error)
			}
		})
	}
	if hub.Len() != 3 {
		t.Errorf("Len() = %d after rejected dials, want 3", hub.Len())
	}
}

func TestHubClosesPeerOnWriteFailure(t *testing.T) {
	hub := NewHub(
		WithHubLogger(quietLogger()),
		WithConnOptions(WithTimeouts(0, 50*time.Millisecond)),
	)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	url := wsURL(srv)

	sender := joinHub(t, url, 1)

	// This peer never reads, so the hub's writes to it eventually time out.
	header := http.Header{}
	header.Set(PeerHeader, "2")
	stalled, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { stalled.Close() })
	eventually(t, "two peers", func() bool { return hub.Len() == 2 })

	big := &protocol.Introduced{ConnectionID: 1, Name: strings.Repeat("x", 512*1024)}
	ctx := context.Background()
	deadline := time.Now().Add(10 * time.Second)
	for hub.Len() == 2 {
		if time.Now().After(deadline) {
			t.Fatal("stalled peer was never dropped")
		}
		if err := sender.conn.Send(ctx, big); err != nil {
			t.Fatalf("Send() error: %v", err)
		}
	}
	if hub.Len() != 1 {
		t.Errorf("Len() = %d, want 1", hub.Len())
	}
}
