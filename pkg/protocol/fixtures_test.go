package protocol

import (
	"math"
	"strings"

	"github.com/coopsync-dev/coopsync/pkg/quant"
)

// Boundary values shared by the fixtures.
var (
	minV3  = quant.Vector3{X: math.MinInt16, Y: -1, Z: 0}
	maxV3  = quant.Vector3{X: math.MaxInt16, Y: 1, Z: 16383}
	v4     = quant.Vector4{X: math.MinInt16, Y: 0, Z: 12, W: math.MaxInt16}
	negVec = quant.Vec3{X: -1, Y: -0.5, Z: -math.MaxFloat32}
	posVec = quant.Vec3{X: 1.25, Y: math.SmallestNonzeroFloat32, Z: math.MaxFloat32}
	ident  = quant.Quat{X: 0, Y: 0, Z: 0, W: 1}
	long   = strings.Repeat("orb-", 250)
)

func spawn(id uint32) ProjectileSpawn {
	return ProjectileSpawn{Position: minV3, ID: id, OwnerID: math.MaxUint32, Weapon: math.MinInt32, Rotation: maxV3}
}

// fixtures returns one populated value per registered variant, keyed by tag.
// Values exercise boundary integers, negative floats, empty sequences and
// both empty and long strings.
func fixtures() map[Tag]Message {
	list := []Message{
		&RequestChestOpen{ChestID: 42, RequestingPlayerID: 7},
		&GrantChestOpen{ChestID: math.MaxUint32, GrantedPlayerID: 1},
		&SpawnedChest{Position: negVec, Rotation: ident, ChestID: 0},
		&ChestOpened{ChestID: 3, OwnerID: math.MaxUint32},

		&Introduced{ConnectionID: 1, Name: "", IsHost: true},
		&ClientInGameReady{ConnectionID: math.MaxUint32},
		&SelectedCharacter{ConnectionID: 2, Character: 5, Skin: "Golden"},
		&PlayerDisconnected{ConnectionID: 9},
		&RunStarted{MapData: math.MinInt32, StageData: long, MapTierIndex: -1, MusicTrackIndex: math.MaxInt32, ChallengeName: ""},
		&GameOver{},
		&TimerStarted{IsDungeonTimer: true, SenderID: 4},
		&LobbyUpdates{
			Players: []Player{
				{ConnectionID: 1, IsHost: true, Character: 2, Name: "host", Hp: 100, MaxHp: 100, Position: maxV3, Yaw: math.MaxUint16},
				{ConnectionID: math.MaxUint32, Name: "", Position: minV3},
			},
			Enemies:      []EnemyModel{{ID: 1, Hp: -0.5, Position: minV3, Yaw: 90}},
			BossOrbs:     []BossOrbModel{},
			RecentDeaths: []uint32{0, 1, math.MaxUint32},
		},
		&PlayerUpdate{
			ConnectionID: 77,
			Position:     maxV3,
			Movement:     MovementState{AxisInput: quant.Vector2{X: -32767, Y: 32767}, CameraForward: minV3, CameraRight: maxV3},
			Animator:     AnimGrounded | AnimJumping,
			Inventory: InventoryInfo{
				Weapons: []WeaponInfo{{Weapon: 3, Level: 1}, {Weapon: math.MinInt32, Level: math.MaxInt32}},
				Tomes:   []TomeInfo{},
			},
			Name:      "Player One",
			Hp:        0,
			MaxHp:     math.MaxUint32,
			Shield:    12,
			MaxShield: 50,
		},
		&PlayerDied{PlayerID: 5},
		&PlayerRespawned{OwnerID: 5, Position: minV3},
		&SpawnedReviver{Position: posVec, OwnerConnectionID: 5, ReviverID: 11},
		&HatChanged{OwnerID: 2, Hat: -1},

		&SpawnedObject{Position: quant.Vec3{X: 1, Y: 2, Z: 3}, Rotation: ident, Scale: quant.Vec3{X: 2, Y: 2, Z: 2}, PrefabName: "ShadyGuy", ID: 99, SpecificData: Specific{ShadyGuyRarity: 5}},
		&SpawnedObjectInCrypt{NetplayID: 8, Position: maxV3, IsCryptLeave: true},
		&InteractableUsed{NetplayID: 42, Action: InteractableInteract, IsPortal: true, IsFinalPortal: false, IsCryptKey: true, OwnerID: 5},
		&StartingChargingShrine{ShrineNetplayID: 1, PlayerChargingID: 2},
		&StoppingChargingShrine{ShrineNetplayID: 1, PlayerChargingID: 2},
		&StartingChargingPylon{PylonNetplayID: 3, PlayerChargingID: 4},
		&StoppingChargingPylon{PylonNetplayID: 3, PlayerChargingID: 4},
		&StartingChargingLamp{LampNetplayID: math.MaxUint32, PlayerChargingID: 0},
		&StoppingChargingLamp{LampNetplayID: math.MaxUint32, PlayerChargingID: 0},
		&InteractableCharacterFightEnemySpawned{NetplayID: 15},
		&TornadoesSpawned{Amount: 3},
		&StormStarted{StormOverAtTime: 125.5},
		&StormStopped{},
		&TumbleWeedSpawned{NetplayID: 1, Position: minV3, Velocity: maxV3},
		&TumbleWeedsUpdate{TumbleWeeds: []TumbleWeedModel{{NetplayID: 1, Position: minV3}, {NetplayID: 2, Position: maxV3}}},
		&TumbleWeedDespawned{NetplayID: 2},

		&SpawnedEnemy{Name: 1, ID: 42, ShouldForce: true, Flag: 3, Position: quant.Vec3{X: 10, Y: 20, Z: 30}, Wave: 5, CanBeElite: true, TargetID: 7, Hp: 1e6, ExtraSizeMultiplier: -1, ReviverID: 0},
		&EnemyDied{EnemyID: 42, DiedByOwnerID: math.MaxUint32},
		&EnemyDamaged{EnemyID: 1, Damage: -1, DamageEffect: 2, DamageBlockedByArmor: -3, DamageSource: "Axe", DamageProcCoefficient: 0.5, DamageElement: 1, DamageFlags: math.MinInt32, DamageKnockback: 3.5, DamageIsCrit: true, AttackerID: 6},
		&EnemyExploder{EnemyID: 9, SenderID: 1},
		&SpawnedEnemySpecialAttack{EnemyID: 9, AttackName: "Charge", TargetID: 2},
		&RetargetedEnemies{Targets: []EnemyTarget{{EnemyID: 1, TargetID: 2}, {EnemyID: math.MaxUint32, TargetID: 0}}},
		&StartedSwarmEvent{Duration: 30},
		&LightningStrike{EnemyID: 1, Bounces: 3, Damage: 50, DamageSource: "Lightning", DamageIsCrit: true, DamageProcCoefficient: 1, DamageElement: 2, BounceRange: 10, BounceProcCoefficient: 0.5, OwnerID: 4},
		&FinalBossOrbSpawned{OrbType: OrbFollowing, Target: 5, OrbID: 10},
		&FinalBossOrbDestroyed{OrbID: 10, SenderID: 5},

		&SpawnedProjectile{ProjectileSpawn: spawn(1)},
		&SpawnedAxeProjectile{ProjectileSpawn: spawn(2), StartPosition: minV3, DesiredPosition: maxV3},
		&SpawnedBlackHoleProjectile{ProjectileSpawn: spawn(3), StartPosition: maxV3, DesiredPosition: minV3, StartScaleSize: 2.5},
		&SpawnedRocketProjectile{ProjectileSpawn: spawn(4), RocketPosition: maxV3, RocketRotation: v4},
		&SpawnedShotgunProjectile{ProjectileSpawn: spawn(5), MuzzlePosition: minV3, MuzzleRotation: v4},
		&SpawnedDexecutionerProjectile{ProjectileSpawn: spawn(6), ProjectileDistance: 12, ForwardOffset: -0.25, UpOffset: 1, AttackDir: maxV3, Chance: 0.1, UseAudio: true},
		&SpawnedFireFieldProjectile{ProjectileSpawn: spawn(7), ExpirationTime: 4.5},
		&SpawnedCringeSwordProjectile{ProjectileSpawn: spawn(8), MovingProjectilePosition: minV3, MovingProjectileRotation: v4},
		&SpawnedHeroSwordProjectile{ProjectileSpawn: spawn(9), MovingProjectilePosition: maxV3, MovingProjectileRotation: v4},
		&SpawnedRevolverProjectile{ProjectileSpawn: spawn(10), MuzzlePosition: maxV3, MuzzleRotation: v4},
		&SpawnedSniperProjectile{ProjectileSpawn: spawn(math.MaxUint32), MuzzlePosition: minV3, MuzzleRotation: v4},
		&ProjectileDone{ProjectileID: 10},
		&ProjectilesUpdate{Projectiles: []Projectile{{ID: 1, Position: minV3, ForwardVector: maxV3}}},

		&SpawnedPickupOrb{Pickup: 2, Position: negVec},
		&SpawnedPickup{ID: 100, Pickup: 1, Position: posVec, Value: -5},
		&PickupApplied{PickupID: 100, OwnerID: 2},
		&PickupFollowingPlayer{PickupID: 100, PlayerID: 2},
		&WantToStartFollowingPickup{PickupID: 100, OwnerID: 2},
		&WeaponAdded{Weapon: 4, OwnerID: 1, Upgrades: []StatModifier{{StatType: 1, Value: -0.5, ModificationType: 2}}},
		&TomeAdded{Tome: 2, OwnerID: 1, Upgrades: []StatModifier{}, Rarity: 3},
		&ItemAdded{Item: 17, OwnerID: 3},
		&ItemRemoved{Item: 17, OwnerID: 3},
		&WeaponToggled{OwnerID: 3, Enabled: false, Weapon: 4},
	}

	out := make(map[Tag]Message, len(list))
	for _, m := range list {
		out[m.Tag()] = m
	}
	return out
}
