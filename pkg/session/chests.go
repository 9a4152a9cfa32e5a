package session

import (
	"context"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// SpawnChest allocates an id for a chest the host spawned and announces it.
func (s *Session[H]) SpawnChest(ctx context.Context, pos quant.Vec3, rot quant.Quat) (uint32, error) {
	if s.role != RoleHost {
		return 0, ErrNotHost
	}
	id := s.arbiter.Allocate()
	err := s.send(ctx, &protocol.SpawnedChest{Position: pos, Rotation: rot, ChestID: id})
	return id, err
}

// AdoptChest binds a chest spawned locally on a client to the oldest id the
// host announced.
func (s *Session[H]) AdoptChest() (uint32, bool) {
	return s.arbiter.Adopt()
}

// DespawnChest forgets a chest that left the world.
func (s *Session[H]) DespawnChest(chestID uint32) {
	s.arbiter.Remove(chestID)
}

// OpenChest is called when the local player interacts with a chest. It
// reports true when the player may open it now, in which case the opening
// is announced. Otherwise a client sends a request to the host (at most one
// outstanding per chest) and the caller retries after the grant arrives.
func (s *Session[H]) OpenChest(ctx context.Context, chestID uint32) (bool, error) {
	if s.role == RoleHost {
		if !s.host.ClaimLocal(chestID) && !s.host.CanOpen(chestID) {
			return false, nil
		}
		return true, s.send(ctx, &protocol.ChestOpened{ChestID: chestID, OwnerID: s.self})
	}

	if s.client.IsGranted(chestID) {
		return true, s.send(ctx, &protocol.ChestOpened{ChestID: chestID, OwnerID: s.self})
	}
	if req, ok := s.client.Request(chestID); ok {
		return false, s.send(ctx, req)
	}
	return false, nil
}

// ChestPending reports whether a request for chestID is outstanding.
func (s *Session[H]) ChestPending(chestID uint32) bool {
	return s.client != nil && s.client.IsPending(chestID)
}

// ChestOwner returns the recorded claimant of chestID.
func (s *Session[H]) ChestOwner(chestID uint32) (uint32, bool) {
	return s.arbiter.Claimant(chestID)
}

func (s *Session[H]) onRequestChestOpen(ctx context.Context, from uint32, m *protocol.RequestChestOpen) error {
	if from != m.RequestingPlayerID {
		s.logger.Warn("chest request on behalf of another player",
			"chest", m.ChestID,
			"requester", m.RequestingPlayerID,
			"from", from)
		return nil
	}
	grant, ok := s.host.HandleRequest(m)
	if !ok {
		owner, _ := s.arbiter.Claimant(m.ChestID)
		s.logger.Debug("chest request lost",
			"chest", m.ChestID,
			"requester", m.RequestingPlayerID,
			"owner", owner,
			"from", from)
		return nil
	}
	return s.send(ctx, grant)
}

func (s *Session[H]) onGrantChestOpen(_ context.Context, from uint32, m *protocol.GrantChestOpen) error {
	won, err := s.client.HandleGrant(from, m)
	if err != nil {
		s.logger.Warn("chest grant rejected", "chest", m.ChestID, "granted", m.GrantedPlayerID, "from", from, "error", err)
		return nil
	}
	if won {
		s.logger.Debug("chest granted", "chest", m.ChestID)
	}
	return nil
}

func (s *Session[H]) onSpawnedChest(_ context.Context, from uint32, m *protocol.SpawnedChest) error {
	if from != s.hostID {
		s.logger.Warn("chest spawn not from host", "chest", m.ChestID, "from", from)
		return nil
	}
	s.arbiter.Expect(m.ChestID)
	return nil
}

func (s *Session[H]) onChestOpened(_ context.Context, from uint32, m *protocol.ChestOpened) error {
	if s.client != nil {
		if err := s.client.HandleOpened(from, m); err != nil {
			s.logger.Warn("chest open report rejected", "chest", m.ChestID, "owner", m.OwnerID, "from", from, "error", err)
		}
		return nil
	}
	// The host granted this claim already; a mismatch means a client opened
	// a chest it was never granted.
	if owner, ok := s.arbiter.Claimant(m.ChestID); !ok || owner != m.OwnerID || from != m.OwnerID {
		s.logger.Warn("chest opened without grant", "chest", m.ChestID, "owner", m.OwnerID, "from", from)
	}
	return nil
}
