package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

type SpawnedPickupOrb struct {
	Pickup   int32
	Position quant.Vec3
}

func (*SpawnedPickupOrb) Tag() Tag { return TagSpawnedPickupOrb }

func (m *SpawnedPickupOrb) encodeBody(e *Encoder) {
	e.WriteInt32(m.Pickup)
	e.WriteVec3(m.Position)
}

func (m *SpawnedPickupOrb) decodeBody(d *Decoder) error {
	m.Pickup = d.ReadInt32()
	m.Position = d.ReadVec3()
	return d.Err()
}

// SpawnedPickup replicates an xp, gold or health pickup.
type SpawnedPickup struct {
	ID       uint32
	Pickup   int32
	Position quant.Vec3
	Value    int32
}

func (*SpawnedPickup) Tag() Tag { return TagSpawnedPickup }

func (m *SpawnedPickup) encodeBody(e *Encoder) {
	e.WriteUint32(m.ID)
	e.WriteInt32(m.Pickup)
	e.WriteVec3(m.Position)
	e.WriteInt32(m.Value)
}

func (m *SpawnedPickup) decodeBody(d *Decoder) error {
	m.ID = d.ReadUint32()
	m.Pickup = d.ReadInt32()
	m.Position = d.ReadVec3()
	m.Value = d.ReadInt32()
	return d.Err()
}

type PickupApplied struct {
	PickupID uint32
	OwnerID  uint32
}

func (*PickupApplied) Tag() Tag { return TagPickupApplied }

func (m *PickupApplied) encodeBody(e *Encoder) {
	e.WriteUint32(m.PickupID)
	e.WriteUint32(m.OwnerID)
}

func (m *PickupApplied) decodeBody(d *Decoder) error {
	m.PickupID = d.ReadUint32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

type PickupFollowingPlayer struct {
	PickupID uint32
	PlayerID uint32
}

func (*PickupFollowingPlayer) Tag() Tag { return TagPickupFollowingPlayer }

func (m *PickupFollowingPlayer) encodeBody(e *Encoder) {
	e.WriteUint32(m.PickupID)
	e.WriteUint32(m.PlayerID)
}

func (m *PickupFollowingPlayer) decodeBody(d *Decoder) error {
	m.PickupID = d.ReadUint32()
	m.PlayerID = d.ReadUint32()
	return d.Err()
}

// WantToStartFollowingPickup asks the host to attach a pickup to a player.
type WantToStartFollowingPickup struct {
	PickupID uint32
	OwnerID  uint32
}

func (*WantToStartFollowingPickup) Tag() Tag { return TagWantToStartFollowingPickup }

func (m *WantToStartFollowingPickup) encodeBody(e *Encoder) {
	e.WriteUint32(m.PickupID)
	e.WriteUint32(m.OwnerID)
}

func (m *WantToStartFollowingPickup) decodeBody(d *Decoder) error {
	m.PickupID = d.ReadUint32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

type WeaponAdded struct {
	Weapon   int32
	OwnerID  uint32
	Upgrades []StatModifier
}

func (*WeaponAdded) Tag() Tag { return TagWeaponAdded }

func (m *WeaponAdded) encodeBody(e *Encoder) {
	e.WriteInt32(m.Weapon)
	e.WriteUint32(m.OwnerID)
	writeSeq(e, m.Upgrades, writeStatModifier)
}

func (m *WeaponAdded) decodeBody(d *Decoder) error {
	m.Weapon = d.ReadInt32()
	m.OwnerID = d.ReadUint32()
	m.Upgrades = readSeq(d, readStatModifier)
	return d.Err()
}

type TomeAdded struct {
	Tome     int32
	OwnerID  uint32
	Upgrades []StatModifier
	Rarity   int32
}

func (*TomeAdded) Tag() Tag { return TagTomeAdded }

func (m *TomeAdded) encodeBody(e *Encoder) {
	e.WriteInt32(m.Tome)
	e.WriteUint32(m.OwnerID)
	writeSeq(e, m.Upgrades, writeStatModifier)
	e.WriteInt32(m.Rarity)
}

func (m *TomeAdded) decodeBody(d *Decoder) error {
	m.Tome = d.ReadInt32()
	m.OwnerID = d.ReadUint32()
	m.Upgrades = readSeq(d, readStatModifier)
	m.Rarity = d.ReadInt32()
	return d.Err()
}

type ItemAdded struct {
	Item    int32
	OwnerID uint32
}

func (*ItemAdded) Tag() Tag { return TagItemAdded }

func (m *ItemAdded) encodeBody(e *Encoder) {
	e.WriteInt32(m.Item)
	e.WriteUint32(m.OwnerID)
}

func (m *ItemAdded) decodeBody(d *Decoder) error {
	m.Item = d.ReadInt32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

type ItemRemoved struct {
	Item    int32
	OwnerID uint32
}

func (*ItemRemoved) Tag() Tag { return TagItemRemoved }

func (m *ItemRemoved) encodeBody(e *Encoder) {
	e.WriteInt32(m.Item)
	e.WriteUint32(m.OwnerID)
}

func (m *ItemRemoved) decodeBody(d *Decoder) error {
	m.Item = d.ReadInt32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

type WeaponToggled struct {
	OwnerID uint32
	Enabled bool
	Weapon  int32
}

func (*WeaponToggled) Tag() Tag { return TagWeaponToggled }

func (m *WeaponToggled) encodeBody(e *Encoder) {
	e.WriteUint32(m.OwnerID)
	e.WriteBool(m.Enabled)
	e.WriteInt32(m.Weapon)
}

func (m *WeaponToggled) decodeBody(d *Decoder) error {
	m.OwnerID = d.ReadUint32()
	m.Enabled = d.ReadBool()
	m.Weapon = d.ReadInt32()
	return d.Err()
}
