package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// Introduced is the first message a participant sends after connecting.
type Introduced struct {
	ConnectionID uint32
	Name         string
	IsHost       bool
}

func (*Introduced) Tag() Tag { return TagIntroduced }

func (m *Introduced) encodeBody(e *Encoder) {
	e.WriteUint32(m.ConnectionID)
	e.WriteString(m.Name)
	e.WriteBool(m.IsHost)
}

func (m *Introduced) decodeBody(d *Decoder) error {
	m.ConnectionID = d.ReadUint32()
	m.Name = d.ReadString()
	m.IsHost = d.ReadBool()
	return d.Err()
}

// ClientInGameReady reports that a client finished loading the level.
type ClientInGameReady struct {
	ConnectionID uint32
}

func (*ClientInGameReady) Tag() Tag { return TagClientInGameReady }

func (m *ClientInGameReady) encodeBody(e *Encoder) {
	e.WriteUint32(m.ConnectionID)
}

func (m *ClientInGameReady) decodeBody(d *Decoder) error {
	m.ConnectionID = d.ReadUint32()
	return d.Err()
}

// SelectedCharacter reports a character and skin choice in the lobby.
type SelectedCharacter struct {
	ConnectionID uint32
	Character    uint32
	Skin         string
}

func (*SelectedCharacter) Tag() Tag { return TagSelectedCharacter }

func (m *SelectedCharacter) encodeBody(e *Encoder) {
	e.WriteUint32(m.ConnectionID)
	e.WriteUint32(m.Character)
	e.WriteString(m.Skin)
}

func (m *SelectedCharacter) decodeBody(d *Decoder) error {
	m.ConnectionID = d.ReadUint32()
	m.Character = d.ReadUint32()
	m.Skin = d.ReadString()
	return d.Err()
}

// PlayerDisconnected is relayed when a participant leaves.
type PlayerDisconnected struct {
	ConnectionID uint32
}

func (*PlayerDisconnected) Tag() Tag { return TagPlayerDisconnected }

func (m *PlayerDisconnected) encodeBody(e *Encoder) {
	e.WriteUint32(m.ConnectionID)
}

func (m *PlayerDisconnected) decodeBody(d *Decoder) error {
	m.ConnectionID = d.ReadUint32()
	return d.Err()
}

// RunStarted carries the host's run configuration to every client.
type RunStarted struct {
	MapData         int32
	StageData       string
	MapTierIndex    int32
	MusicTrackIndex int32
	ChallengeName   string
}

func (*RunStarted) Tag() Tag { return TagRunStarted }

func (m *RunStarted) encodeBody(e *Encoder) {
	e.WriteInt32(m.MapData)
	e.WriteString(m.StageData)
	e.WriteInt32(m.MapTierIndex)
	e.WriteInt32(m.MusicTrackIndex)
	e.WriteString(m.ChallengeName)
}

func (m *RunStarted) decodeBody(d *Decoder) error {
	m.MapData = d.ReadInt32()
	m.StageData = d.ReadString()
	m.MapTierIndex = d.ReadInt32()
	m.MusicTrackIndex = d.ReadInt32()
	m.ChallengeName = d.ReadString()
	return d.Err()
}

// GameOver ends the run for everyone.
type GameOver struct{}

func (*GameOver) Tag() Tag { return TagGameOver }

func (*GameOver) encodeBody(*Encoder) {}

func (*GameOver) decodeBody(d *Decoder) error { return d.Err() }

// TimerStarted starts the stage or dungeon timer.
type TimerStarted struct {
	IsDungeonTimer bool
	SenderID       uint32
}

func (*TimerStarted) Tag() Tag { return TagTimerStarted }

func (m *TimerStarted) encodeBody(e *Encoder) {
	e.WriteBool(m.IsDungeonTimer)
	e.WriteUint32(m.SenderID)
}

func (m *TimerStarted) decodeBody(d *Decoder) error {
	m.IsDungeonTimer = d.ReadBool()
	m.SenderID = d.ReadUint32()
	return d.Err()
}

// LobbyUpdates is the periodic bulk-state snapshot sent by the host. BossOrbs
// holds only the orbs that moved beyond the delta threshold since the previous
// snapshot.
type LobbyUpdates struct {
	Players      []Player
	Enemies      []EnemyModel
	BossOrbs     []BossOrbModel
	RecentDeaths []uint32
}

func (*LobbyUpdates) Tag() Tag { return TagLobbyUpdates }

func (m *LobbyUpdates) encodeBody(e *Encoder) {
	writeSeq(e, m.Players, writePlayer)
	writeSeq(e, m.Enemies, writeEnemyModel)
	writeSeq(e, m.BossOrbs, writeBossOrbModel)
	writeUint32s(e, m.RecentDeaths)
}

func (m *LobbyUpdates) decodeBody(d *Decoder) error {
	m.Players = readSeq(d, readPlayer)
	m.Enemies = readSeq(d, readEnemyModel)
	m.BossOrbs = readSeq(d, readBossOrbModel)
	m.RecentDeaths = readUint32s(d)
	return d.Err()
}

// PlayerUpdate carries one participant's frame state.
type PlayerUpdate struct {
	ConnectionID uint32
	Position     quant.Vector3
	Movement     MovementState
	Animator     AnimatorState
	Inventory    InventoryInfo
	Name         string
	Hp           uint32
	MaxHp        uint32
	Shield       uint32
	MaxShield    uint32
}

func (*PlayerUpdate) Tag() Tag { return TagPlayerUpdate }

func (m *PlayerUpdate) encodeBody(e *Encoder) {
	e.WriteUint32(m.ConnectionID)
	e.WriteVector3(m.Position)
	writeMovementState(e, m.Movement)
	e.WriteUint8(uint8(m.Animator))
	writeInventory(e, m.Inventory)
	e.WriteString(m.Name)
	e.WriteUint32(m.Hp)
	e.WriteUint32(m.MaxHp)
	e.WriteUint32(m.Shield)
	e.WriteUint32(m.MaxShield)
}

func (m *PlayerUpdate) decodeBody(d *Decoder) error {
	m.ConnectionID = d.ReadUint32()
	m.Position = d.ReadVector3()
	m.Movement = readMovementState(d)
	m.Animator = AnimatorState(d.ReadUint8())
	m.Inventory = readInventory(d)
	m.Name = d.ReadString()
	m.Hp = d.ReadUint32()
	m.MaxHp = d.ReadUint32()
	m.Shield = d.ReadUint32()
	m.MaxShield = d.ReadUint32()
	return d.Err()
}

// PlayerDied reports the death of a participant.
type PlayerDied struct {
	PlayerID uint32
}

func (*PlayerDied) Tag() Tag { return TagPlayerDied }

func (m *PlayerDied) encodeBody(e *Encoder) {
	e.WriteUint32(m.PlayerID)
}

func (m *PlayerDied) decodeBody(d *Decoder) error {
	m.PlayerID = d.ReadUint32()
	return d.Err()
}

type PlayerRespawned struct {
	OwnerID  uint32
	Position quant.Vector3
}

func (*PlayerRespawned) Tag() Tag { return TagPlayerRespawned }

func (m *PlayerRespawned) encodeBody(e *Encoder) {
	e.WriteUint32(m.OwnerID)
	e.WriteVector3(m.Position)
}

func (m *PlayerRespawned) decodeBody(d *Decoder) error {
	m.OwnerID = d.ReadUint32()
	m.Position = d.ReadVector3()
	return d.Err()
}

// SpawnedReviver announces the revive totem dropped by a dead participant.
type SpawnedReviver struct {
	Position          quant.Vec3
	OwnerConnectionID uint32
	ReviverID         uint32
}

func (*SpawnedReviver) Tag() Tag { return TagSpawnedReviver }

func (m *SpawnedReviver) encodeBody(e *Encoder) {
	e.WriteVec3(m.Position)
	e.WriteUint32(m.OwnerConnectionID)
	e.WriteUint32(m.ReviverID)
}

func (m *SpawnedReviver) decodeBody(d *Decoder) error {
	m.Position = d.ReadVec3()
	m.OwnerConnectionID = d.ReadUint32()
	m.ReviverID = d.ReadUint32()
	return d.Err()
}

type HatChanged struct {
	OwnerID uint32
	Hat     int32
}

func (*HatChanged) Tag() Tag { return TagHatChanged }

func (m *HatChanged) encodeBody(e *Encoder) {
	e.WriteUint32(m.OwnerID)
	e.WriteInt32(m.Hat)
}

func (m *HatChanged) decodeBody(d *Decoder) error {
	m.OwnerID = d.ReadUint32()
	m.Hat = d.ReadInt32()
	return d.Err()
}
