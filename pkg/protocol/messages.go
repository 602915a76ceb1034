package protocol

import "fmt"

// MessageType is the one-byte tag that starts every datagram.
type MessageType uint8

const (
	MsgConnectRequest MessageType = iota + 1
	MsgConnectAccept
	MsgConnectReject
	MsgDisconnect
	MsgUpdateState
	MsgGameState
	MsgHeartbeat
)

func (t MessageType) String() string {
	switch t {
	case MsgConnectRequest:
		return "connect-request"
	case MsgConnectAccept:
		return "connect-accept"
	case MsgConnectReject:
		return "connect-reject"
	case MsgDisconnect:
		return "disconnect"
	case MsgUpdateState:
		return "update-state"
	case MsgGameState:
		return "game-state"
	case MsgHeartbeat:
		return "heartbeat"
	}
	return fmt.Sprintf("message(%d)", uint8(t))
}

// Message is implemented by the pointer types of this package only.
type Message interface {
	Type() MessageType
	encode(w *Writer)
	decode(r *Reader)
}

// ==================================================================
// Client to server
// ==================================================================

type ConnectRequest struct{}

func (*ConnectRequest) Type() MessageType { return MsgConnectRequest }
func (*ConnectRequest) encode(*Writer)    {}
func (*ConnectRequest) decode(*Reader)    {}

type Disconnect struct{}

func (*Disconnect) Type() MessageType { return MsgDisconnect }
func (*Disconnect) encode(*Writer)    {}
func (*Disconnect) decode(*Reader)    {}

type Heartbeat struct{}

func (*Heartbeat) Type() MessageType { return MsgHeartbeat }
func (*Heartbeat) encode(*Writer)    {}
func (*Heartbeat) decode(*Reader)    {}

// UpdateStateMessage carries a client's latest position and missiles.
type UpdateStateMessage struct {
	X, Y int32
	missileList
}

func (*UpdateStateMessage) Type() MessageType { return MsgUpdateState }

func (m *UpdateStateMessage) encode(w *Writer) {
	w.WriteInt32(m.X)
	w.WriteInt32(m.Y)
	m.missileList.encode(w)
}

func (m *UpdateStateMessage) decode(r *Reader) {
	m.X = r.ReadInt32()
	m.Y = r.ReadInt32()
	m.missileList.decode(r)
}

// ==================================================================
// Server to client
// ==================================================================

type ConnectAcceptData struct {
	ClientID       uint32
	SpawnX, SpawnY int32
}

func (*ConnectAcceptData) Type() MessageType { return MsgConnectAccept }

func (m *ConnectAcceptData) encode(w *Writer) {
	w.WriteUint32(m.ClientID)
	w.WriteInt32(m.SpawnX)
	w.WriteInt32(m.SpawnY)
}

func (m *ConnectAcceptData) decode(r *Reader) {
	m.ClientID = r.ReadUint32()
	m.SpawnX = r.ReadInt32()
	m.SpawnY = r.ReadInt32()
}

type ConnectReject struct {
	Code int32
}

func (*ConnectReject) Type() MessageType { return MsgConnectReject }
func (m *ConnectReject) encode(w *Writer) { w.WriteInt32(m.Code) }
func (m *ConnectReject) decode(r *Reader) { m.Code = r.ReadInt32() }

// GameStateMessage is the per-tick snapshot broadcast to every client.
type GameStateMessage struct {
	ClientCount uint32
	Clients     [MaxClients]ClientState

	MobCount uint32
	Mobs     [MaxMobs]MobState

	CountdownTimer float32
	CurrentWave    uint32
	WaveActive     bool
}

func (*GameStateMessage) Type() MessageType { return MsgGameState }

// AddClient appends s, reporting false once MaxClients entries are present.
func (m *GameStateMessage) AddClient(s ClientState) bool {
	if m.ClientCount >= MaxClients {
		return false
	}
	m.Clients[m.ClientCount] = s
	m.ClientCount++
	return true
}

// AddMob appends s, reporting false once MaxMobs entries are present.
func (m *GameStateMessage) AddMob(s MobState) bool {
	if m.MobCount >= MaxMobs {
		return false
	}
	m.Mobs[m.MobCount] = s
	m.MobCount++
	return true
}

func (m *GameStateMessage) ClientList() []ClientState {
	return m.Clients[:min(m.ClientCount, MaxClients)]
}

func (m *GameStateMessage) MobList() []MobState {
	return m.Mobs[:min(m.MobCount, MaxMobs)]
}

func (m *GameStateMessage) encode(w *Writer) {
	clients := min(m.ClientCount, MaxClients)
	w.WriteUint32(clients)
	for i := range clients {
		m.Clients[i].encode(w)
	}

	mobs := min(m.MobCount, MaxMobs)
	w.WriteUint32(mobs)
	for i := range mobs {
		m.Mobs[i].encode(w)
	}

	w.WriteFloat32(m.CountdownTimer)
	w.WriteUint32(m.CurrentWave)
	w.WriteBool(m.WaveActive)
}

func (m *GameStateMessage) decode(r *Reader) {
	m.ClientCount = r.ReadCount(MaxClients)
	for i := range m.ClientCount {
		m.Clients[i].decode(r)
	}

	m.MobCount = r.ReadCount(MaxMobs)
	for i := range m.MobCount {
		m.Mobs[i].decode(r)
	}

	m.CountdownTimer = r.ReadFloat32()
	m.CurrentWave = r.ReadUint32()
	m.WaveActive = r.ReadBool()
}
