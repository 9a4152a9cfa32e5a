package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// RequestChestOpen asks the authoritative participant for the right to open
// a chest. It is sent by a participant that has not yet observed itself as the
// chest's claimant.
type RequestChestOpen struct {
	ChestID            uint32
	RequestingPlayerID uint32
}

func (*RequestChestOpen) Tag() Tag { return TagRequestChestOpen }

func (m *RequestChestOpen) encodeBody(e *Encoder) {
	e.WriteUint32(m.ChestID)
	e.WriteUint32(m.RequestingPlayerID)
}

func (m *RequestChestOpen) decodeBody(d *Decoder) error {
	m.ChestID = d.ReadUint32()
	m.RequestingPlayerID = d.ReadUint32()
	return d.Err()
}

// GrantChestOpen tells GrantedPlayerID that it won the claim on ChestID.
type GrantChestOpen struct {
	ChestID         uint32
	GrantedPlayerID uint32
}

func (*GrantChestOpen) Tag() Tag { return TagGrantChestOpen }

func (m *GrantChestOpen) encodeBody(e *Encoder) {
	e.WriteUint32(m.ChestID)
	e.WriteUint32(m.GrantedPlayerID)
}

func (m *GrantChestOpen) decodeBody(d *Decoder) error {
	m.ChestID = d.ReadUint32()
	m.GrantedPlayerID = d.ReadUint32()
	return d.Err()
}

// SpawnedChest announces a chest spawned by the host with its allocated id.
type SpawnedChest struct {
	Position quant.Vec3
	Rotation quant.Quat
	ChestID  uint32
}

func (*SpawnedChest) Tag() Tag { return TagSpawnedChest }

func (m *SpawnedChest) encodeBody(e *Encoder) {
	e.WriteVec3(m.Position)
	e.WriteQuat(m.Rotation)
	e.WriteUint32(m.ChestID)
}

func (m *SpawnedChest) decodeBody(d *Decoder) error {
	m.Position = d.ReadVec3()
	m.Rotation = d.ReadQuat()
	m.ChestID = d.ReadUint32()
	return d.Err()
}

// ChestOpened is broadcast once the claimant opens the chest.
type ChestOpened struct {
	ChestID uint32
	OwnerID uint32
}

func (*ChestOpened) Tag() Tag { return TagChestOpened }

func (m *ChestOpened) encodeBody(e *Encoder) {
	e.WriteUint32(m.ChestID)
	e.WriteUint32(m.OwnerID)
}

func (m *ChestOpened) decodeBody(d *Decoder) error {
	m.ChestID = d.ReadUint32()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}
