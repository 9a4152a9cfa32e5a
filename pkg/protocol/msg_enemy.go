package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// SpawnedEnemy replicates an enemy spawned by the host. Name is the enemy
// kind enumeration of the game.
type SpawnedEnemy struct {
	Name                int32
	ID                  uint32
	ShouldForce         bool
	Flag                int32
	Position            quant.Vec3
	Wave                int32
	CanBeElite          bool
	TargetID            uint32
	Hp                  float32
	ExtraSizeMultiplier float32
	ReviverID           uint32
}

func (*SpawnedEnemy) Tag() Tag { return TagSpawnedEnemy }

func (m *SpawnedEnemy) encodeBody(e *Encoder) {
	e.WriteInt32(m.Name)
	e.WriteUint32(m.ID)
	e.WriteBool(m.ShouldForce)
	e.WriteInt32(m.Flag)
	e.WriteVec3(m.Position)
	e.WriteInt32(m.Wave)
	e.WriteBool(m.CanBeElite)
	e.WriteUint32(m.TargetID)
	e.WriteFloat32(m.Hp)
	e.WriteFloat32(m.ExtraSizeMultiplier)
	e.WriteUint32(m.ReviverID)
}

func (m *SpawnedEnemy) decodeBody(d *Decoder) error {
	m.Name = d.ReadInt32()
	m.ID = d.ReadUint32()
	m.ShouldForce = d.ReadBool()
	m.Flag = d.ReadInt32()
	m.Position = d.ReadVec3()
	m.Wave = d.ReadInt32()
	m.CanBeElite = d.ReadBool()
	m.TargetID = d.ReadUint32()
	m.Hp = d.ReadFloat32()
	m.ExtraSizeMultiplier = d.ReadFloat32()
	m.ReviverID = d.ReadUint32()
	return d.Err()
}

type EnemyDied struct {
	EnemyID       uint32
	DiedByOwnerID uint32
}

func (*EnemyDied) Tag() Tag { return TagEnemyDied }

func (m *EnemyDied) encodeBody(e *Encoder) {
	e.WriteUint32(m.EnemyID)
	e.WriteUint32(m.DiedByOwnerID)
}

func (m *EnemyDied) decodeBody(d *Decoder) error {
	m.EnemyID = d.ReadUint32()
	m.DiedByOwnerID = d.ReadUint32()
	return d.Err()
}

// EnemyDamaged carries one damage application, mirroring the game's damage
// container.
type EnemyDamaged struct {
	EnemyID               uint32
	Damage                float32
	DamageEffect          int32
	DamageBlockedByArmor  int32
	DamageSource          string
	DamageProcCoefficient float32
	DamageElement         int32
	DamageFlags           int32
	DamageKnockback       float32
	DamageIsCrit          bool
	AttackerID            uint32
}

func (*EnemyDamaged) Tag() Tag { return TagEnemyDamaged }

func (m *EnemyDamaged) encodeBody(e *Encoder) {
	e.WriteUint32(m.EnemyID)
	e.WriteFloat32(m.Damage)
	e.WriteInt32(m.DamageEffect)
	e.WriteInt32(m.DamageBlockedByArmor)
	e.WriteString(m.DamageSource)
	e.WriteFloat32(m.DamageProcCoefficient)
	e.WriteInt32(m.DamageElement)
	e.WriteInt32(m.DamageFlags)
	e.WriteFloat32(m.DamageKnockback)
	e.WriteBool(m.DamageIsCrit)
	e.WriteUint32(m.AttackerID)
}

func (m *EnemyDamaged) decodeBody(d *Decoder) error {
	m.EnemyID = d.ReadUint32()
	m.Damage = d.ReadFloat32()
	m.DamageEffect = d.ReadInt32()
	m.DamageBlockedByArmor = d.ReadInt32()
	m.DamageSource = d.ReadString()
	m.DamageProcCoefficient = d.ReadFloat32()
	m.DamageElement = d.ReadInt32()
	m.DamageFlags = d.ReadInt32()
	m.DamageKnockback = d.ReadFloat32()
	m.DamageIsCrit = d.ReadBool()
	m.AttackerID = d.ReadUint32()
	return d.Err()
}

type EnemyExploder struct {
	EnemyID  uint32
	SenderID uint32
}

func (*EnemyExploder) Tag() Tag { return TagEnemyExploder }

func (m *EnemyExploder) encodeBody(e *Encoder) {
	e.WriteUint32(m.EnemyID)
	e.WriteUint32(m.SenderID)
}

func (m *EnemyExploder) decodeBody(d *Decoder) error {
	m.EnemyID = d.ReadUint32()
	m.SenderID = d.ReadUint32()
	return d.Err()
}

type SpawnedEnemySpecialAttack struct {
	EnemyID    uint32
	AttackName string
	TargetID   uint32
}

func (*SpawnedEnemySpecialAttack) Tag() Tag { return TagSpawnedEnemySpecialAttack }

func (m *SpawnedEnemySpecialAttack) encodeBody(e *Encoder) {
	e.WriteUint32(m.EnemyID)
	e.WriteString(m.AttackName)
	e.WriteUint32(m.TargetID)
}

func (m *SpawnedEnemySpecialAttack) decodeBody(d *Decoder) error {
	m.EnemyID = d.ReadUint32()
	m.AttackName = d.ReadString()
	m.TargetID = d.ReadUint32()
	return d.Err()
}

// RetargetedEnemies reassigns enemy targets in bulk.
type RetargetedEnemies struct {
	Targets []EnemyTarget
}

func (*RetargetedEnemies) Tag() Tag { return TagRetargetedEnemies }

func (m *RetargetedEnemies) encodeBody(e *Encoder) {
	writeSeq(e, m.Targets, writeEnemyTarget)
}

func (m *RetargetedEnemies) decodeBody(d *Decoder) error {
	m.Targets = readSeq(d, readEnemyTarget)
	return d.Err()
}

type StartedSwarmEvent struct {
	Duration float32
}

func (*StartedSwarmEvent) Tag() Tag { return TagStartedSwarmEvent }

func (m *StartedSwarmEvent) encodeBody(e *Encoder) {
	e.WriteFloat32(m.Duration)
}

func (m *StartedSwarmEvent) decodeBody(d *Decoder) error {
	m.Duration = d.ReadFloat32()
	return d.Err()
}

// LightningStrike is a chained lightning hit starting at EnemyID.
type LightningStrike struct {
	EnemyID               uint32
	Bounces               int32
	Damage                float32
	DamageEffect          int32
	DamageBlockedByArmor  int32
	DamageSource          string
	DamageProcCoefficient float32
	DamageElement         int32
	DamageFlags           int32
	DamageKnockback       float32
	DamageIsCrit          bool
	BounceRange           float32
	BounceProcCoefficient float32
	OwnerID               uint32
}

func (*LightningStrike) Tag() Tag { return TagLightningStrike }

func (m *LightningStrike) encodeBody(e *Encoder) {
	e.WriteUint32(m.EnemyID)
	e.WriteInt32(m.Bounces)
	e.WriteFloat32(m.Damage)
	e.WriteInt32(m.DamageEffect)
	e.WriteInt32(m.DamageBlockedByArmor)
	e.WriteString(m.DamageSource)
	e.WriteFloat32(m.DamageProcCoefficient)
	e.WriteInt32(m.DamageElement)
	e.WriteInt32(m.DamageFlags)
	e.WriteFloat32(m.DamageKnockback)
	e.WriteBool(m.DamageIsCrit)
	e.WriteFloat32(m.BounceRange)
	e.WriteFloat32(m.BounceProcCoefficient)
	e.WriteUint32(m.OwnerID)
}

func (m *LightningStrike) decodeBody(d *Decoder) error {
	m.EnemyID = d.ReadUint32()
	m.Bounces = d.ReadInt32()
	m.Damage = d.ReadFloat32()
	m.DamageEffect = d.ReadInt32()
	m.DamageBlockedByArmor = d.ReadInt32()
	m.DamageSource = d.ReadString()
	m.DamageProcCoefficient = d.ReadFloat32()
	m.DamageElement = d.ReadInt32()
	m.DamageFlags = d.ReadInt32()
	m.DamageKnockback = d.ReadFloat32()
	m.DamageIsCrit = d.ReadBool()
	m.BounceRange = d.ReadFloat32()
	m.BounceProcCoefficient = d.ReadFloat32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

// FinalBossOrbSpawned announces an orb created for Target under the id
// reserved by the host.
type FinalBossOrbSpawned struct {
	OrbType Orb
	Target  uint32
	OrbID   uint32
}

func (*FinalBossOrbSpawned) Tag() Tag { return TagFinalBossOrbSpawned }

func (m *FinalBossOrbSpawned) encodeBody(e *Encoder) {
	e.WriteUint8(uint8(m.OrbType))
	e.WriteUint32(m.Target)
	e.WriteUint32(m.OrbID)
}

func (m *FinalBossOrbSpawned) decodeBody(d *Decoder) error {
	m.OrbType = Orb(d.ReadUint8())
	m.Target = d.ReadUint32()
	m.OrbID = d.ReadUint32()
	return d.Err()
}

type FinalBossOrbDestroyed struct {
	OrbID    uint32
	SenderID uint32
}

func (*FinalBossOrbDestroyed) Tag() Tag { return TagFinalBossOrbDestroyed }

func (m *FinalBossOrbDestroyed) encodeBody(e *Encoder) {
	e.WriteUint32(m.OrbID)
	e.WriteUint32(m.SenderID)
}

func (m *FinalBossOrbDestroyed) decodeBody(d *Decoder) error {
	m.OrbID = d.ReadUint32()
	m.SenderID = d.ReadUint32()
	return d.Err()
}
