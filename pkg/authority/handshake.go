package authority

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

// ErrNotAuthoritative is returned when a claim arrives from a participant
// that cannot decide it.
var ErrNotAuthoritative = errors.New("authority: sender cannot decide this claim")

// Host answers chest-open requests on the authoritative participant. It is
// the only side that claims on behalf of another participant.
type Host struct {
	arb *Arbiter
	id  uint32
}

// NewHost creates the authoritative side of the handshake. hostID is the
// host's own participant id.
func NewHost(arb *Arbiter, hostID uint32) *Host {
	return &Host{arb: arb, id: hostID}
}

// HandleRequest claims the chest for the requester. The grant is returned
// when the requester won, and again when the recorded claimant repeats its
// request (its first grant may have been lost). A losing request gets no
// grant.
func (h *Host) HandleRequest(req *protocol.RequestChestOpen) (*protocol.GrantChestOpen, bool) {
	if req == nil {
		return nil, false
	}
	if !h.arb.TryClaim(req.ChestID, req.RequestingPlayerID) &&
		!h.arb.IsClaimedBy(req.ChestID, req.RequestingPlayerID) {
		return nil, false
	}
	return &protocol.GrantChestOpen{
		ChestID:         req.ChestID,
		GrantedPlayerID: req.RequestingPlayerID,
	}, true
}

// ClaimLocal claims a chest for the host itself.
func (h *Host) ClaimLocal(chestID uint32) bool {
	return h.arb.TryClaim(chestID, h.id)
}

// CanOpen reports whether the host is the recorded claimant.
func (h *Host) CanOpen(chestID uint32) bool {
	return h.arb.IsClaimedBy(chestID, h.id)
}

// Client drives the non-authoritative side of the handshake. Its arbiter
// mirrors the claims it has observed from the host.
type Client struct {
	arb     *Arbiter
	id      uint32
	host    uint32
	pending sync.Map // chest id -> struct{}
}

// NewClient creates the requesting side of the handshake for participant id.
// Grants are accepted only from hostID.
func NewClient(arb *Arbiter, id, hostID uint32) *Client {
	return &Client{arb: arb, id: id, host: hostID}
}

// Request returns the request to send for chestID. It returns false when a
// request is already outstanding or the claim is already decided, so callers
// can invoke it every frame while the player touches the chest.
func (c *Client) Request(chestID uint32) (*protocol.RequestChestOpen, bool) {
	if _, decided := c.arb.Claimant(chestID); decided {
		return nil, false
	}
	if _, loaded := c.pending.LoadOrStore(chestID, struct{}{}); loaded {
		return nil, false
	}
	return &protocol.RequestChestOpen{ChestID: chestID, RequestingPlayerID: c.id}, true
}

// HandleGrant records the claimant named by a grant received from peer from
// and reports whether the grant makes this client the claimant. Any grant
// from the host settles this client's request for the chest. A grant from
// any other peer is rejected with ErrNotAuthoritative and changes nothing.
func (c *Client) HandleGrant(from uint32, g *protocol.GrantChestOpen) (bool, error) {
	if g == nil {
		return false, nil
	}
	if from != c.host {
		return false, fmt.Errorf("%w: grant for chest %d from %d", ErrNotAuthoritative, g.ChestID, from)
	}
	c.arb.TryClaim(g.ChestID, g.GrantedPlayerID)
	c.pending.Delete(g.ChestID)
	return c.arb.IsClaimedBy(g.ChestID, c.id), nil
}

// HandleOpened records that a participant opened a chest, which also settles
// any request this client still has outstanding for it. The host may report
// any owner. Another peer is believed only when it reports itself as the
// owner and the host already granted it the chest.
func (c *Client) HandleOpened(from uint32, m *protocol.ChestOpened) error {
	if m == nil {
		return nil
	}
	if from != c.host && (from != m.OwnerID || !c.arb.IsClaimedBy(m.ChestID, m.OwnerID)) {
		return fmt.Errorf("%w: chest %d opened by %d, reported by %d", ErrNotAuthoritative, m.ChestID, m.OwnerID, from)
	}
	c.arb.TryClaim(m.ChestID, m.OwnerID)
	c.pending.Delete(m.ChestID)
	return nil
}

// IsGranted reports whether this client has observed itself as the claimant.
// A chest is usable only once this is true.
func (c *Client) IsGranted(chestID uint32) bool {
	return c.arb.IsClaimedBy(chestID, c.id)
}

// IsPending reports whether a request for chestID is outstanding.
func (c *Client) IsPending(chestID uint32) bool {
	_, ok := c.pending.Load(chestID)
	return ok
}

// Reset drops outstanding requests at a level transition.
func (c *Client) Reset() {
	c.pending.Clear()
}
