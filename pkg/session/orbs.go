package session

import (
	"context"

	"github.com/coopsync-dev/coopsync/pkg/delta"
	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

// QueueOrbTarget queues a player as the target of the next boss orb.
func (s *Session[H]) QueueOrbTarget(targetID uint32) {
	s.orbs.QueueTarget(targetID)
}

// ReserveOrb reserves an orb id for the oldest queued target, before the
// game commits to spawning the orb.
func (s *Session[H]) ReserveOrb() (delta.Reservation, bool) {
	return s.orbs.PeekNextTarget()
}

// OrbSpawned binds the oldest reservation to a newly spawned orb and
// announces it.
func (s *Session[H]) OrbSpawned(ctx context.Context, handle H, kind protocol.Orb) (uint32, error) {
	r, ok := s.orbs.NextTargetAndOrbID()
	if !ok {
		return 0, ErrNoReservation
	}
	s.orbs.SetOrbTarget(r.TargetID, handle, r.OrbID)
	err := s.send(ctx, &protocol.FinalBossOrbSpawned{OrbType: kind, Target: r.TargetID, OrbID: r.OrbID})
	return r.OrbID, err
}

// TrackOrb starts tracking an orb announced by another participant.
func (s *Session[H]) TrackOrb(targetID uint32, handle H, orbID uint32) {
	s.orbs.SetOrbTarget(targetID, handle, orbID)
}

// OrbDestroyed stops tracking handle and announces the destruction. It
// does nothing for an untracked handle.
func (s *Session[H]) OrbDestroyed(ctx context.Context, handle H) error {
	id, ok := s.orbs.RemoveOrbTarget(handle)
	if !ok {
		return nil
	}
	return s.send(ctx, &protocol.FinalBossOrbDestroyed{OrbID: id, SenderID: s.self})
}

// LobbySnapshot builds the periodic bulk update. Boss orbs are limited to
// those that moved past the delta threshold since the previous snapshot.
func (s *Session[H]) LobbySnapshot(players []protocol.Player, enemies []protocol.EnemyModel, deaths []uint32) *protocol.LobbyUpdates {
	return &protocol.LobbyUpdates{
		Players:      nonNil(players),
		Enemies:      nonNil(enemies),
		BossOrbs:     s.orbs.DeltaAndUpdate(),
		RecentDeaths: nonNil(deaths),
	}
}

func (s *Session[H]) onFinalBossOrbSpawned(ctx context.Context, from uint32, m *protocol.FinalBossOrbSpawned) error {
	if from != s.hostID {
		s.logger.Warn("orb spawn not from host", "orb", m.OrbID, "from", from)
		return nil
	}
	// The game spawns the local object and calls TrackOrb; pass the
	// announcement on to it.
	return s.forward(ctx, from, m)
}

func (s *Session[H]) onFinalBossOrbDestroyed(ctx context.Context, from uint32, m *protocol.FinalBossOrbDestroyed) error {
	if handle, ok := s.orbs.OrbByID(m.OrbID); ok {
		s.orbs.RemoveOrbTarget(handle)
	}
	return s.forward(ctx, from, m)
}

// forward hands a message the session observed to the fallback handler so
// the game can react to it as well.
func (s *Session[H]) forward(ctx context.Context, from uint32, m protocol.Message) error {
	return s.fallback(ctx, from, m)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
