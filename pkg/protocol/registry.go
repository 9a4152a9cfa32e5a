package protocol

import (
	"fmt"
	"slices"
	"strings"
)

// Registration describes one message variant.
type Registration struct {
	Tag  Tag
	Name string
	New  func() Message
}

var (
	registry = make(map[Tag]Registration)
	names    = make(map[string]Tag)
)

// register adds the variant *T to the registry. It panics when the tag or the
// name is already taken, so a duplicate can never reach the wire.
func register[T any, P interface {
	*T
	Message
}]() {
	newFn := func() Message { return P(new(T)) }
	m := newFn()
	tag := m.Tag()
	name := strings.TrimPrefix(fmt.Sprintf("%T", m), "*protocol.")

	if prev, dup := registry[tag]; dup {
		panic(fmt.Sprintf("protocol: tag %d registered for both %s and %s", tag, prev.Name, name))
	}
	if _, dup := names[name]; dup {
		panic(fmt.Sprintf("protocol: %s registered twice", name))
	}
	registry[tag] = Registration{Tag: tag, Name: name, New: newFn}
	names[name] = tag
}

func init() {
	register[RequestChestOpen]()
	register[GrantChestOpen]()
	register[SpawnedChest]()
	register[ChestOpened]()
	register[Introduced]()
	register[ClientInGameReady]()
	register[SelectedCharacter]()
	register[PlayerDisconnected]()
	register[RunStarted]()
	register[GameOver]()
	register[TimerStarted]()
	register[LobbyUpdates]()
	register[PlayerUpdate]()
	register[PlayerDied]()
	register[PlayerRespawned]()
	register[SpawnedReviver]()
	register[HatChanged]()
	register[SpawnedObject]()
	register[SpawnedObjectInCrypt]()
	register[InteractableUsed]()
	register[StartingChargingShrine]()
	register[StoppingChargingShrine]()
	register[StartingChargingPylon]()
	register[StoppingChargingPylon]()
	register[StartingChargingLamp]()
	register[StoppingChargingLamp]()
	register[InteractableCharacterFightEnemySpawned]()
	register[SpawnedEnemy]()
	register[EnemyDied]()
	register[EnemyDamaged]()
	register[EnemyExploder]()
	register[SpawnedEnemySpecialAttack]()
	register[RetargetedEnemies]()
	register[StartedSwarmEvent]()
	register[LightningStrike]()
	register[FinalBossOrbSpawned]()
	register[FinalBossOrbDestroyed]()
	register[SpawnedProjectile]()
	register[SpawnedAxeProjectile]()
	register[SpawnedBlackHoleProjectile]()
	register[SpawnedRocketProjectile]()
	register[SpawnedShotgunProjectile]()
	register[SpawnedDexecutionerProjectile]()
	register[SpawnedFireFieldProjectile]()
	register[SpawnedCringeSwordProjectile]()
	register[SpawnedHeroSwordProjectile]()
	register[SpawnedRevolverProjectile]()
	register[SpawnedSniperProjectile]()
	register[ProjectileDone]()
	register[ProjectilesUpdate]()
	register[SpawnedPickupOrb]()
	register[SpawnedPickup]()
	register[PickupApplied]()
	register[PickupFollowingPlayer]()
	register[WantToStartFollowingPickup]()
	register[WeaponAdded]()
	register[TomeAdded]()
	register[ItemAdded]()
	register[ItemRemoved]()
	register[WeaponToggled]()
	register[TornadoesSpawned]()
	register[StormStarted]()
	register[StormStopped]()
	register[TumbleWeedSpawned]()
	register[TumbleWeedsUpdate]()
	register[TumbleWeedDespawned]()
}

// Lookup returns the registration for tag.
func Lookup(tag Tag) (Registration, bool) {
	r, ok := registry[tag]
	return r, ok
}

// LookupName returns the registration for a variant name.
func LookupName(name string) (Registration, bool) {
	tag, ok := names[name]
	if !ok {
		return Registration{}, false
	}
	return registry[tag], true
}

// Registrations returns every registered variant ordered by tag.
func Registrations() []Registration {
	out := make([]Registration, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Registration) int {
		return int(a.Tag) - int(b.Tag)
	})
	return out
}
