package protocol

import "github.com/coopsync-dev/coopsync/pkg/quant"

// SpawnedObject replicates a host-spawned prefab.
type SpawnedObject struct {
	Position     quant.Vec3
	Rotation     quant.Quat
	Scale        quant.Vec3
	PrefabName   string
	ID           uint32
	SpecificData Specific
}

func (*SpawnedObject) Tag() Tag { return TagSpawnedObject }

func (m *SpawnedObject) encodeBody(e *Encoder) {
	e.WriteVec3(m.Position)
	e.WriteQuat(m.Rotation)
	e.WriteVec3(m.Scale)
	e.WriteString(m.PrefabName)
	e.WriteUint32(m.ID)
	e.WriteInt32(m.SpecificData.ShadyGuyRarity)
}

func (m *SpawnedObject) decodeBody(d *Decoder) error {
	m.Position = d.ReadVec3()
	m.Rotation = d.ReadQuat()
	m.Scale = d.ReadVec3()
	m.PrefabName = d.ReadString()
	m.ID = d.ReadUint32()
	m.SpecificData = Specific{ShadyGuyRarity: d.ReadInt32()}
	return d.Err()
}

type SpawnedObjectInCrypt struct {
	NetplayID    uint32
	Position     quant.Vector3
	IsCryptLeave bool
}

func (*SpawnedObjectInCrypt) Tag() Tag { return TagSpawnedObjectInCrypt }

func (m *SpawnedObjectInCrypt) encodeBody(e *Encoder) {
	e.WriteUint32(m.NetplayID)
	e.WriteVector3(m.Position)
	e.WriteBool(m.IsCryptLeave)
}

func (m *SpawnedObjectInCrypt) decodeBody(d *Decoder) error {
	m.NetplayID = d.ReadUint32()
	m.Position = d.ReadVector3()
	m.IsCryptLeave = d.ReadBool()
	return d.Err()
}

// InteractableUsed reports a player interaction with a shared interactable.
type InteractableUsed struct {
	NetplayID     uint32
	Action        InteractableAction
	IsPortal      bool
	IsFinalPortal bool
	IsCryptKey    bool
	OwnerID       uint32
}

func (*InteractableUsed) Tag() Tag { return TagInteractableUsed }

func (m *InteractableUsed) encodeBody(e *Encoder) {
	e.WriteUint32(m.NetplayID)
	e.WriteUint8(uint8(m.Action))
	e.WriteBool(m.IsPortal)
	e.WriteBool(m.IsFinalPortal)
	e.WriteBool(m.IsCryptKey)
	e.WriteUint32(m.OwnerID)
}

func (m *InteractableUsed) decodeBody(d *Decoder) error {
	m.NetplayID = d.ReadUint32()
	m.Action = InteractableAction(d.ReadUint8())
	m.IsPortal = d.ReadBool()
	m.IsFinalPortal = d.ReadBool()
	m.IsCryptKey = d.ReadBool()
	m.OwnerID = d.ReadUint32()
	return d.Err()
}

// Charging messages bracket the time a player stands in a shrine, pylon or
// lamp charge zone.
type StartingChargingShrine struct {
	ShrineNetplayID  uint32
	PlayerChargingID uint32
}

func (*StartingChargingShrine) Tag() Tag { return TagStartingChargingShrine }

func (m *StartingChargingShrine) encodeBody(e *Encoder) {
	e.WriteUint32(m.ShrineNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StartingChargingShrine) decodeBody(d *Decoder) error {
	m.ShrineNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type StoppingChargingShrine struct {
	ShrineNetplayID  uint32
	PlayerChargingID uint32
}

func (*StoppingChargingShrine) Tag() Tag { return TagStoppingChargingShrine }

func (m *StoppingChargingShrine) encodeBody(e *Encoder) {
	e.WriteUint32(m.ShrineNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StoppingChargingShrine) decodeBody(d *Decoder) error {
	m.ShrineNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type StartingChargingPylon struct {
	PylonNetplayID   uint32
	PlayerChargingID uint32
}

func (*StartingChargingPylon) Tag() Tag { return TagStartingChargingPylon }

func (m *StartingChargingPylon) encodeBody(e *Encoder) {
	e.WriteUint32(m.PylonNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StartingChargingPylon) decodeBody(d *Decoder) error {
	m.PylonNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type StoppingChargingPylon struct {
	PylonNetplayID   uint32
	PlayerChargingID uint32
}

func (*StoppingChargingPylon) Tag() Tag { return TagStoppingChargingPylon }

func (m *StoppingChargingPylon) encodeBody(e *Encoder) {
	e.WriteUint32(m.PylonNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StoppingChargingPylon) decodeBody(d *Decoder) error {
	m.PylonNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type StartingChargingLamp struct {
	LampNetplayID    uint32
	PlayerChargingID uint32
}

func (*StartingChargingLamp) Tag() Tag { return TagStartingChargingLamp }

func (m *StartingChargingLamp) encodeBody(e *Encoder) {
	e.WriteUint32(m.LampNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StartingChargingLamp) decodeBody(d *Decoder) error {
	m.LampNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type StoppingChargingLamp struct {
	LampNetplayID    uint32
	PlayerChargingID uint32
}

func (*StoppingChargingLamp) Tag() Tag { return TagStoppingChargingLamp }

func (m *StoppingChargingLamp) encodeBody(e *Encoder) {
	e.WriteUint32(m.LampNetplayID)
	e.WriteUint32(m.PlayerChargingID)
}

func (m *StoppingChargingLamp) decodeBody(d *Decoder) error {
	m.LampNetplayID = d.ReadUint32()
	m.PlayerChargingID = d.ReadUint32()
	return d.Err()
}

type InteractableCharacterFightEnemySpawned struct {
	NetplayID uint32
}

func (*InteractableCharacterFightEnemySpawned) Tag() Tag { return TagInteractableCharacterFightEnemySpawned }

func (m *InteractableCharacterFightEnemySpawned) encodeBody(e *Encoder) {
	e.WriteUint32(m.NetplayID)
}

func (m *InteractableCharacterFightEnemySpawned) decodeBody(d *Decoder) error {
	m.NetplayID = d.ReadUint32()
	return d.Err()
}

// TornadoesSpawned starts a tornado wave of Amount tornadoes.
type TornadoesSpawned struct {
	Amount int32
}

func (*TornadoesSpawned) Tag() Tag { return TagTornadoesSpawned }

func (m *TornadoesSpawned) encodeBody(e *Encoder) {
	e.WriteInt32(m.Amount)
}

func (m *TornadoesSpawned) decodeBody(d *Decoder) error {
	m.Amount = d.ReadInt32()
	return d.Err()
}

// StormStarted starts a storm lasting until StormOverAtTime (stage seconds).
type StormStarted struct {
	StormOverAtTime float32
}

func (*StormStarted) Tag() Tag { return TagStormStarted }

func (m *StormStarted) encodeBody(e *Encoder) {
	e.WriteFloat32(m.StormOverAtTime)
}

func (m *StormStarted) decodeBody(d *Decoder) error {
	m.StormOverAtTime = d.ReadFloat32()
	return d.Err()
}

type StormStopped struct{}

func (*StormStopped) Tag() Tag { return TagStormStopped }

func (*StormStopped) encodeBody(*Encoder) {}

func (*StormStopped) decodeBody(d *Decoder) error { return d.Err() }

type TumbleWeedSpawned struct {
	NetplayID uint32
	Position  quant.Vector3
	Velocity  quant.Vector3
}

func (*TumbleWeedSpawned) Tag() Tag { return TagTumbleWeedSpawned }

func (m *TumbleWeedSpawned) encodeBody(e *Encoder) {
	e.WriteUint32(m.NetplayID)
	e.WriteVector3(m.Position)
	e.WriteVector3(m.Velocity)
}

func (m *TumbleWeedSpawned) decodeBody(d *Decoder) error {
	m.NetplayID = d.ReadUint32()
	m.Position = d.ReadVector3()
	m.Velocity = d.ReadVector3()
	return d.Err()
}

// TumbleWeedsUpdate is the periodic position snapshot of live tumbleweeds.
type TumbleWeedsUpdate struct {
	TumbleWeeds []TumbleWeedModel
}

func (*TumbleWeedsUpdate) Tag() Tag { return TagTumbleWeedsUpdate }

func (m *TumbleWeedsUpdate) encodeBody(e *Encoder) {
	writeSeq(e, m.TumbleWeeds, writeTumbleWeedModel)
}

func (m *TumbleWeedsUpdate) decodeBody(d *Decoder) error {
	m.TumbleWeeds = readSeq(d, readTumbleWeedModel)
	return d.Err()
}

type TumbleWeedDespawned struct {
	NetplayID uint32
}

func (*TumbleWeedDespawned) Tag() Tag { return TagTumbleWeedDespawned }

func (m *TumbleWeedDespawned) encodeBody(e *Encoder) {
	e.WriteUint32(m.NetplayID)
}

func (m *TumbleWeedDespawned) decodeBody(d *Decoder) error {
	m.NetplayID = d.ReadUint32()
	return d.Err()
}
