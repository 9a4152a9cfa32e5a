package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/telemetry"
)

// Hub is a relay: every valid envelope a peer sends is forwarded to every
// other connected peer, prefixed with the sender's peer id so receivers can
// tell the host's messages from everyone else's. The hub does not interpret
// messages; peers dial with WithRelayOrigin to read the prefix.
type Hub struct {
	upgrader websocket.Upgrader
	connOpts []Option
	monitor  *telemetry.Monitor
	logger   *slog.Logger

	keepAlive time.Duration

	lastID atomic.Uint32

	mu    deadlock.RWMutex
	peers map[uint32]*Conn
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithConnOptions applies opts to every accepted connection.
func WithConnOptions(opts ...Option) HubOption {
	return func(h *Hub) {
		h.connOpts = append(h.connOpts, opts...)
	}
}

// WithHubMonitor records relay traffic and the peer count on m.
func WithHubMonitor(m *telemetry.Monitor) HubOption {
	return func(h *Hub) {
		h.monitor = m
	}
}

// WithHubLogger sets the hub logger.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCheckOrigin sets the upgrader's origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// WithKeepAlive pings every peer at interval so latency is measured. Zero
// disables pings.
func WithKeepAlive(interval time.Duration) HubOption {
	return func(h *Hub) {
		h.keepAlive = interval
	}
}

// NewHub creates an empty relay.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		logger: slog.Default(),
		peers:  make(map[uint32]*Conn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PeerHeader is the handshake header in which a peer declares its id. The
// "peer" query parameter is accepted as well. Peers that declare nothing get
// the next free id.
const PeerHeader = "X-Coopsync-Peer"

// ServeHTTP upgrades the request and relays the peer's frames until it
// disconnects. A declared id that is malformed is rejected with 400, one
// already connected with 409.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, declared, err := declaredPeer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if declared {
		if !h.reserve(id) {
			http.Error(w, fmt.Sprintf("peer %d already connected", id), http.StatusConflict)
			return
		}
	} else {
		id = h.assign()
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release(id)
		h.logger.Debug("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	opts := append([]Option{WithLogger(h.logger), WithMonitor(h.monitor)}, h.connOpts...)
	opts = append(opts, WithPeerID(id))
	conn := NewConn(ws, opts...)

	n := h.add(id, conn)
	h.logger.Info("peer connected", "peer", id, "remote", r.RemoteAddr, "peers", n)

	ctx, cancel := context.WithCancel(r.Context())
	if h.keepAlive > 0 {
		go conn.KeepAlive(ctx, h.keepAlive)
	}
	err = conn.ReadLoop(ctx, h.forward)
	cancel()

	n = h.remove(id)
	if err != nil {
		h.logger.Warn("peer disconnected", "peer", id, "error", err, "peers", n)
		return
	}
	h.logger.Info("peer disconnected", "peer", id, "peers", n)
}

func declaredPeer(r *http.Request) (uint32, bool, error) {
	v := r.Header.Get(PeerHeader)
	if v == "" {
		v = r.URL.Query().Get("peer")
	}
	if v == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return 0, false, fmt.Errorf("invalid peer id %q", v)
	}
	return uint32(id), true, nil
}

// reserve claims id for a connection that is being upgraded. Reserved ids
// hold a nil Conn until add.
func (h *Hub) reserve(id uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, taken := h.peers[id]; taken {
		return false
	}
	h.peers[id] = nil
	return true
}

// assign reserves the next id not already declared by another peer.
func (h *Hub) assign() uint32 {
	for {
		id := h.lastID.Add(1)
		if id != 0 && h.reserve(id) {
			return id
		}
	}
}

func (h *Hub) release(id uint32) {
	h.mu.Lock()
	delete(h.peers, id)
	h.mu.Unlock()
}

func (h *Hub) add(id uint32, c *Conn) int {
	h.mu.Lock()
	h.peers[id] = c
	n := h.connected()
	h.mu.Unlock()
	h.reportPeers(n)
	return n
}

func (h *Hub) remove(id uint32) int {
	h.mu.Lock()
	delete(h.peers, id)
	n := h.connected()
	h.mu.Unlock()
	h.reportPeers(n)
	return n
}

// connected counts upgraded peers. h.mu must be held.
func (h *Hub) connected() int {
	n := 0
	for _, c := range h.peers {
		if c != nil {
			n++
		}
	}
	return n
}

func (h *Hub) reportPeers(n int) {
	if h.monitor != nil {
		h.monitor.SetPeers(n)
	}
}

// others returns every connected peer except id.
func (h *Hub) others(id uint32) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.peers))
	for pid, c := range h.peers {
		if pid != id && c != nil {
			out = append(out, c)
		}
	}
	return out
}

// forward stamps the sender's id on the envelope and writes it to every
// other peer. A peer whose write fails is closed: after a write timeout its
// websocket is unusable.
func (h *Hub) forward(ctx context.Context, f Frame) error {
	name := protocol.Name(f.Message)
	out := make([]byte, OriginSize+len(f.Data))
	binary.BigEndian.PutUint32(out, f.From)
	copy(out[OriginSize:], f.Data)

	for _, c := range h.others(f.From) {
		if err := c.SendRaw(ctx, out, name); err != nil {
			h.logger.Warn("forward failed, closing peer", "to", c.PeerID(), "message", name, "error", err)
			c.Close()
		}
	}
	return nil
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connected()
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.RLock()
	peers := make([]*Conn, 0, len(h.peers))
	for _, c := range h.peers {
		if c != nil {
			peers = append(peers, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range peers {
		c.closeWith(websocket.CloseGoingAway, "relay shutting down")
	}
}
