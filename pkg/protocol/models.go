package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// Player is one roster entry of a LobbyUpdates snapshot.
type Player struct {
	ConnectionID uint32
	IsHost       bool
	Character    uint32
	Name         string
	Hp           uint32
	MaxHp        uint32
	Position     quant.Vector3
	Yaw          quant.Angle
}

func writePlayer(e *Encoder, p Player) {
	e.WriteUint32(p.ConnectionID)
	e.WriteBool(p.IsHost)
	e.WriteUint32(p.Character)
	e.WriteString(p.Name)
	e.WriteUint32(p.Hp)
	e.WriteUint32(p.MaxHp)
	e.WriteVector3(p.Position)
	e.WriteAngle(p.Yaw)
}

func readPlayer(d *Decoder) Player {
	return Player{
		ConnectionID: d.ReadUint32(),
		IsHost:       d.ReadBool(),
		Character:    d.ReadUint32(),
		Name:         d.ReadString(),
		Hp:           d.ReadUint32(),
		MaxHp:        d.ReadUint32(),
		Position:     d.ReadVector3(),
		Yaw:          d.ReadAngle(),
	}
}

// EnemyModel is one roster entry of enemy state.
type EnemyModel struct {
	ID       uint32
	Hp       float32
	Position quant.Vector3
	Yaw      quant.Angle
}

func writeEnemyModel(e *Encoder, m EnemyModel) {
	e.WriteUint32(m.ID)
	e.WriteFloat32(m.Hp)
	e.WriteVector3(m.Position)
	e.WriteAngle(m.Yaw)
}

func readEnemyModel(d *Decoder) EnemyModel {
	return EnemyModel{
		ID:       d.ReadUint32(),
		Hp:       d.ReadFloat32(),
		Position: d.ReadVector3(),
		Yaw:      d.ReadAngle(),
	}
}

// BossOrbModel is the synchronized state of one final-boss orb.
type BossOrbModel struct {
	ID       uint32
	Position quant.Vector3
}

func writeBossOrbModel(e *Encoder, m BossOrbModel) {
	e.WriteUint32(m.ID)
	e.WriteVector3(m.Position)
}

func readBossOrbModel(d *Decoder) BossOrbModel {
	return BossOrbModel{ID: d.ReadUint32(), Position: d.ReadVector3()}
}

// Projectile is the synchronized state of one moving projectile.
type Projectile struct {
	ID            uint32
	Position      quant.Vector3
	ForwardVector quant.Vector3
}

func writeProjectile(e *Encoder, p Projectile) {
	e.WriteUint32(p.ID)
	e.WriteVector3(p.Position)
	e.WriteVector3(p.ForwardVector)
}

func readProjectile(d *Decoder) Projectile {
	return Projectile{ID: d.ReadUint32(), Position: d.ReadVector3(), ForwardVector: d.ReadVector3()}
}

// TumbleWeedModel is the synchronized state of one tumbleweed.
type TumbleWeedModel struct {
	NetplayID uint32
	Position  quant.Vector3
}

func writeTumbleWeedModel(e *Encoder, m TumbleWeedModel) {
	e.WriteUint32(m.NetplayID)
	e.WriteVector3(m.Position)
}

func readTumbleWeedModel(d *Decoder) TumbleWeedModel {
	return TumbleWeedModel{NetplayID: d.ReadUint32(), Position: d.ReadVector3()}
}

// StatModifier is one upgrade applied by a weapon or tome.
type StatModifier struct {
	StatType         int32
	Value            float32
	ModificationType int32
}

func writeStatModifier(e *Encoder, m StatModifier) {
	e.WriteInt32(m.StatType)
	e.WriteFloat32(m.Value)
	e.WriteInt32(m.ModificationType)
}

func readStatModifier(d *Decoder) StatModifier {
	return StatModifier{StatType: d.ReadInt32(), Value: d.ReadFloat32(), ModificationType: d.ReadInt32()}
}

// WeaponInfo and TomeInfo summarise an inventory slot.
type WeaponInfo struct {
	Weapon int32
	Level  int32
}

type TomeInfo struct {
	Tome  int32
	Level int32
}

// InventoryInfo is the inventory summary carried by PlayerUpdate.
type InventoryInfo struct {
	Weapons []WeaponInfo
	Tomes   []TomeInfo
}

func writeInventory(e *Encoder, inv InventoryInfo) {
	writeSeq(e, inv.Weapons, func(e *Encoder, w WeaponInfo) {
		e.WriteInt32(w.Weapon)
		e.WriteInt32(w.Level)
	})
	writeSeq(e, inv.Tomes, func(e *Encoder, t TomeInfo) {
		e.WriteInt32(t.Tome)
		e.WriteInt32(t.Level)
	})
}

func readInventory(d *Decoder) InventoryInfo {
	return InventoryInfo{
		Weapons: readSeq(d, func(d *Decoder) WeaponInfo {
			return WeaponInfo{Weapon: d.ReadInt32(), Level: d.ReadInt32()}
		}),
		Tomes: readSeq(d, func(d *Decoder) TomeInfo {
			return TomeInfo{Tome: d.ReadInt32(), Level: d.ReadInt32()}
		}),
	}
}

// MovementState carries the local input and camera basis of a player.
type MovementState struct {
	AxisInput     quant.Vector2
	CameraForward quant.Vector3
	CameraRight   quant.Vector3
}

func writeMovementState(e *Encoder, m MovementState) {
	e.WriteVector2(m.AxisInput)
	e.WriteVector3(m.CameraForward)
	e.WriteVector3(m.CameraRight)
}

func readMovementState(d *Decoder) MovementState {
	return MovementState{
		AxisInput:     d.ReadVector2(),
		CameraForward: d.ReadVector3(),
		CameraRight:   d.ReadVector3(),
	}
}

// AnimatorState packs independent animation flags into one byte.
type AnimatorState uint8

const (
	AnimGrounded AnimatorState = 1 << iota
	AnimMoving
	AnimIdle
	AnimGrinding
	AnimJumping
)

// Has reports whether every bit of flag is set.
func (s AnimatorState) Has(flag AnimatorState) bool {
	return s&flag == flag
}

// With returns s with flag set or cleared.
func (s AnimatorState) With(flag AnimatorState, on bool) AnimatorState {
	if on {
		return s | flag
	}
	return s &^ flag
}

func (s AnimatorState) Grounded() bool { return s.Has(AnimGrounded) }
func (s AnimatorState) Moving() bool { return s.Has(AnimMoving) }
func (s AnimatorState) Idle() bool { return s.Has(AnimIdle) }
func (s AnimatorState) Grinding() bool { return s.Has(AnimGrinding) }
func (s AnimatorState) Jumping() bool { return s.Has(AnimJumping) }

// Specific carries prefab-specific spawn data.
type Specific struct {
	ShadyGuyRarity int32
}

// EnemyTarget pairs an enemy with its new target.
type EnemyTarget struct {
	EnemyID  uint32
	TargetID uint32
}

// InteractableAction is what a player did to an interactable.
type InteractableAction uint8

const (
	InteractableInteract InteractableAction = iota
	InteractableDestroy
)

// Orb is the behaviour of a final-boss orb.
type Orb uint8

const (
	OrbFollowing Orb = iota
	OrbShooting
	OrbBleed
)

func writeEnemyTarget(e *Encoder, t EnemyTarget) {
	e.WriteUint32(t.EnemyID)
	e.WriteUint32(t.TargetID)
}

func readEnemyTarget(d *Decoder) EnemyTarget {
	return EnemyTarget{EnemyID: d.ReadUint32(), TargetID: d.ReadUint32()}
}
