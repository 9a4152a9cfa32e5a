package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// ProjectileSpawn is the state shared by every projectile spawn message.
type ProjectileSpawn struct {
	Position quant.Vector3
	ID       uint32
	OwnerID  uint32
	Weapon   int32
	Rotation quant.Vector3
}

func (p ProjectileSpawn) encode(e *Encoder) {
	e.WriteVector3(p.Position)
	e.WriteUint32(p.ID)
	e.WriteUint32(p.OwnerID)
	e.WriteInt32(p.Weapon)
	e.WriteVector3(p.Rotation)
}

func readProjectileSpawn(d *Decoder) ProjectileSpawn {
	return ProjectileSpawn{
		Position: d.ReadVector3(),
		ID:       d.ReadUint32(),
		OwnerID:  d.ReadUint32(),
		Weapon:   d.ReadInt32(),
		Rotation: d.ReadVector3(),
	}
}

// SpawnedProjectile is a projectile with no weapon-specific state.
type SpawnedProjectile struct {
	ProjectileSpawn
}

func (*SpawnedProjectile) Tag() Tag { return TagSpawnedProjectile }

func (m *SpawnedProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
}

func (m *SpawnedProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	return d.Err()
}

type SpawnedAxeProjectile struct {
	ProjectileSpawn

	StartPosition   quant.Vector3
	DesiredPosition quant.Vector3
}

func (*SpawnedAxeProjectile) Tag() Tag { return TagSpawnedAxeProjectile }

func (m *SpawnedAxeProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.StartPosition)
	e.WriteVector3(m.DesiredPosition)
}

func (m *SpawnedAxeProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.StartPosition = d.ReadVector3()
	m.DesiredPosition = d.ReadVector3()
	return d.Err()
}

type SpawnedBlackHoleProjectile struct {
	ProjectileSpawn

	StartPosition   quant.Vector3
	DesiredPosition quant.Vector3
	StartScaleSize  float32
}

func (*SpawnedBlackHoleProjectile) Tag() Tag { return TagSpawnedBlackHoleProjectile }

func (m *SpawnedBlackHoleProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.StartPosition)
	e.WriteVector3(m.DesiredPosition)
	e.WriteFloat32(m.StartScaleSize)
}

func (m *SpawnedBlackHoleProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.StartPosition = d.ReadVector3()
	m.DesiredPosition = d.ReadVector3()
	m.StartScaleSize = d.ReadFloat32()
	return d.Err()
}

type SpawnedRocketProjectile struct {
	ProjectileSpawn

	RocketPosition quant.Vector3
	RocketRotation quant.Vector4
}

func (*SpawnedRocketProjectile) Tag() Tag { return TagSpawnedRocketProjectile }

func (m *SpawnedRocketProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.RocketPosition)
	e.WriteVector4(m.RocketRotation)
}

func (m *SpawnedRocketProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.RocketPosition = d.ReadVector3()
	m.RocketRotation = d.ReadVector4()
	return d.Err()
}

// Muzzle-based projectiles carry the muzzle transform so remote clients
// can draw the muzzle flash.
type SpawnedShotgunProjectile struct {
	ProjectileSpawn

	MuzzlePosition quant.Vector3
	MuzzleRotation quant.Vector4
}

func (*SpawnedShotgunProjectile) Tag() Tag { return TagSpawnedShotgunProjectile }

func (m *SpawnedShotgunProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.MuzzlePosition)
	e.WriteVector4(m.MuzzleRotation)
}

func (m *SpawnedShotgunProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.MuzzlePosition = d.ReadVector3()
	m.MuzzleRotation = d.ReadVector4()
	return d.Err()
}

type SpawnedDexecutionerProjectile struct {
	ProjectileSpawn

	ProjectileDistance float32
	ForwardOffset      float32
	UpOffset           float32
	AttackDir          quant.Vector3
	Chance             float32
	UseAudio           bool
}

func (*SpawnedDexecutionerProjectile) Tag() Tag { return TagSpawnedDexecutionerProjectile }

func (m *SpawnedDexecutionerProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteFloat32(m.ProjectileDistance)
	e.WriteFloat32(m.ForwardOffset)
	e.WriteFloat32(m.UpOffset)
	e.WriteVector3(m.AttackDir)
	e.WriteFloat32(m.Chance)
	e.WriteBool(m.UseAudio)
}

func (m *SpawnedDexecutionerProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.ProjectileDistance = d.ReadFloat32()
	m.ForwardOffset = d.ReadFloat32()
	m.UpOffset = d.ReadFloat32()
	m.AttackDir = d.ReadVector3()
	m.Chance = d.ReadFloat32()
	m.UseAudio = d.ReadBool()
	return d.Err()
}

type SpawnedFireFieldProjectile struct {
	ProjectileSpawn

	ExpirationTime float32
}

func (*SpawnedFireFieldProjectile) Tag() Tag { return TagSpawnedFireFieldProjectile }

func (m *SpawnedFireFieldProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteFloat32(m.ExpirationTime)
}

func (m *SpawnedFireFieldProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.ExpirationTime = d.ReadFloat32()
	return d.Err()
}

type SpawnedCringeSwordProjectile struct {
	ProjectileSpawn

	MovingProjectilePosition quant.Vector3
	MovingProjectileRotation quant.Vector4
}

func (*SpawnedCringeSwordProjectile) Tag() Tag { return TagSpawnedCringeSwordProjectile }

func (m *SpawnedCringeSwordProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.MovingProjectilePosition)
	e.WriteVector4(m.MovingProjectileRotation)
}

func (m *SpawnedCringeSwordProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.MovingProjectilePosition = d.ReadVector3()
	m.MovingProjectileRotation = d.ReadVector4()
	return d.Err()
}

type SpawnedHeroSwordProjectile struct {
	ProjectileSpawn

	MovingProjectilePosition quant.Vector3
	MovingProjectileRotation quant.Vector4
}

func (*SpawnedHeroSwordProjectile) Tag() Tag { return TagSpawnedHeroSwordProjectile }

func (m *SpawnedHeroSwordProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.MovingProjectilePosition)
	e.WriteVector4(m.MovingProjectileRotation)
}

func (m *SpawnedHeroSwordProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.MovingProjectilePosition = d.ReadVector3()
	m.MovingProjectileRotation = d.ReadVector4()
	return d.Err()
}

type SpawnedRevolverProjectile struct {
	ProjectileSpawn

	MuzzlePosition quant.Vector3
	MuzzleRotation quant.Vector4
}

func (*SpawnedRevolverProjectile) Tag() Tag { return TagSpawnedRevolverProjectile }

func (m *SpawnedRevolverProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.MuzzlePosition)
	e.WriteVector4(m.MuzzleRotation)
}

func (m *SpawnedRevolverProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.MuzzlePosition = d.ReadVector3()
	m.MuzzleRotation = d.ReadVector4()
	return d.Err()
}

type SpawnedSniperProjectile struct {
	ProjectileSpawn

	MuzzlePosition quant.Vector3
	MuzzleRotation quant.Vector4
}

func (*SpawnedSniperProjectile) Tag() Tag { return TagSpawnedSniperProjectile }

func (m *SpawnedSniperProjectile) encodeBody(e *Encoder) {
	m.ProjectileSpawn.encode(e)
	e.WriteVector3(m.MuzzlePosition)
	e.WriteVector4(m.MuzzleRotation)
}

func (m *SpawnedSniperProjectile) decodeBody(d *Decoder) error {
	m.ProjectileSpawn = readProjectileSpawn(d)
	m.MuzzlePosition = d.ReadVector3()
	m.MuzzleRotation = d.ReadVector4()
	return d.Err()
}

type ProjectileDone struct {
	ProjectileID uint32
}

func (*ProjectileDone) Tag() Tag { return TagProjectileDone }

func (m *ProjectileDone) encodeBody(e *Encoder) {
	e.WriteUint32(m.ProjectileID)
}

func (m *ProjectileDone) decodeBody(d *Decoder) error {
	m.ProjectileID = d.ReadUint32()
	return d.Err()
}

// ProjectilesUpdate is the periodic snapshot of moving projectiles.
type ProjectilesUpdate struct {
	Projectiles []Projectile
}

func (*ProjectilesUpdate) Tag() Tag { return TagProjectilesUpdate }

func (m *ProjectilesUpdate) encodeBody(e *Encoder) {
	writeSeq(e, m.Projectiles, writeProjectile)
}

func (m *ProjectilesUpdate) decodeBody(d *Decoder) error {
	m.Projectiles = readSeq(d, readProjectile)
	return d.Err()
}
