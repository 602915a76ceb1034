package protocol

import (
	"errors"
	"testing"
)

func testMissile(i int) Missile {
	f := float32(i)
	return Missile{
		Position:      Vector2{X: f, Y: -f},
		Rect:          Rectangle{X: 25, Y: 128, Width: 31, Height: 22},
		CurrentFrame:  uint32(i % 5),
		FramesSpeed:   8,
		FramesCounter: uint32(i),
	}
}

func fullClientState(id uint32) ClientState {
	s := ClientState{ClientID: id, X: -12, Y: 1 << 30}
	for i := range MaxMissilesClient {
		s.AddMissile(testMissile(i))
	}
	return s
}

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	got, err := Decode(Encode(msg))
	if err != nil {
		t.Fatalf("decode %s: %v", msg.Type(), err)
	}
	if got.Type() != msg.Type() {
		t.Fatalf("expected %s, got %s", msg.Type(), got.Type())
	}
	return got
}

// TestRoundTripMinimal tests every message type with empty arrays.
func TestRoundTripMinimal(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"connect request", &ConnectRequest{}},
		{"disconnect", &Disconnect{}},
		{"heartbeat", &Heartbeat{}},
		{"connect accept", &ConnectAcceptData{}},
		{"connect reject", &ConnectReject{}},
		{"update state", &UpdateStateMessage{}},
		{"game state", &GameStateMessage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.msg)
			switch want := tt.msg.(type) {
			case *ConnectAcceptData:
				if *got.(*ConnectAcceptData) != *want {
					t.Errorf("expected %+v, got %+v", *want, *got.(*ConnectAcceptData))
				}
			case *ConnectReject:
				if *got.(*ConnectReject) != *want {
					t.Errorf("expected %+v, got %+v", *want, *got.(*ConnectReject))
				}
			case *UpdateStateMessage:
				if *got.(*UpdateStateMessage) != *want {
					t.Error("update state changed in round trip")
				}
			case *GameStateMessage:
				if *got.(*GameStateMessage) != *want {
					t.Error("game state changed in round trip")
				}
			}
		})
	}
}

// TestRoundTripMaximal tests messages with every array filled to its maximum.
func TestRoundTripMaximal(t *testing.T) {
	accept := &ConnectAcceptData{ClientID: 1<<32 - 1, SpawnX: -1 << 31, SpawnY: 1<<31 - 1}
	if got := roundTrip(t, accept).(*ConnectAcceptData); *got != *accept {
		t.Errorf("connect accept: expected %+v, got %+v", *accept, *got)
	}

	reject := &ConnectReject{Code: ServerFullCode}
	if got := roundTrip(t, reject).(*ConnectReject); *got != *reject {
		t.Errorf("connect reject: expected %+v, got %+v", *reject, *got)
	}

	update := &UpdateStateMessage{X: 750, Y: -3}
	for i := range MaxMissilesClient {
		if !update.AddMissile(testMissile(i)) {
			t.Fatalf("missile %d rejected", i)
		}
	}
	if update.AddMissile(testMissile(0)) {
		t.Error("AddMissile accepted more than the maximum")
	}
	if got := roundTrip(t, update).(*UpdateStateMessage); *got != *update {
		t.Error("full update state changed in round trip")
	}

	state := &GameStateMessage{CountdownTimer: 1.5, CurrentWave: 3, WaveActive: true}
	for i := range MaxClients {
		state.AddClient(fullClientState(uint32(i + 1)))
	}
	for i := range MaxMobs {
		state.AddMob(MobState{ID: uint32(i), X: float32(i) * 3.5, Y: 100, Active: i%2 == 0})
	}
	if state.AddClient(ClientState{}) || state.AddMob(MobState{}) {
		t.Error("snapshot accepted more entries than the maximum")
	}

	data := Encode(state)
	if len(data) > MaxDatagramSize {
		t.Errorf("full snapshot is %d bytes, above %d", len(data), MaxDatagramSize)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if *got.(*GameStateMessage) != *state {
		t.Error("full game state changed in round trip")
	}
}

// TestWireLayout tests the exact bytes of a small message.
func TestWireLayout(t *testing.T) {
	data := Encode(&ConnectAcceptData{ClientID: 2, SpawnX: 750, SpawnY: -1})
	want := []byte{
		byte(MsgConnectAccept),
		2, 0, 0, 0,
		0xee, 0x02, 0, 0,
		0xff, 0xff, 0xff, 0xff,
	}
	if string(data) != string(want) {
		t.Errorf("expected % x, got % x", want, data)
	}
}

// TestDecodeClampsCounts tests that oversized count fields never read past
// the fixed arrays.
func TestDecodeClampsCounts(t *testing.T) {
	w := &Writer{}
	w.WriteUint8(uint8(MsgUpdateState))
	w.WriteInt32(1)
	w.WriteInt32(2)
	w.WriteUint32(1_000_000)
	for i := range MaxMissilesClient {
		m := testMissile(i)
		m.encode(w)
	}

	msg, err := Decode(w.Bytes())
	if err != nil {
		t.Fatalf("expected clamped decode, got %v", err)
	}
	update := msg.(*UpdateStateMessage)
	if update.MissileCount != MaxMissilesClient {
		t.Errorf("expected count clamped to %d, got %d", MaxMissilesClient, update.MissileCount)
	}
	if update.Missiles[MaxMissilesClient-1] != testMissile(MaxMissilesClient-1) {
		t.Error("last missile decoded incorrectly")
	}

	w.Reset()
	w.WriteUint8(uint8(MsgGameState))
	w.WriteUint32(999)
	for i := range MaxClients {
		s := ClientState{ClientID: uint32(i)}
		s.encode(w)
	}
	w.WriteUint32(0)
	w.WriteFloat32(0)
	w.WriteUint32(0)
	w.WriteBool(false)

	msg, err = Decode(w.Bytes())
	if err != nil {
		t.Fatalf("expected clamped decode, got %v", err)
	}
	if n := msg.(*GameStateMessage).ClientCount; n != MaxClients {
		t.Errorf("expected client count clamped to %d, got %d", MaxClients, n)
	}
}

// TestDecodeMalformed tests that bad datagrams produce errors and no panics.
func TestDecodeMalformed(t *testing.T) {
	full := Encode(&GameStateMessage{ClientCount: 1, Clients: [MaxClients]ClientState{fullClientState(9)}})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrShortBuffer},
		{"unknown tag", []byte{0}, ErrUnknownMessageType},
		{"tag past range", []byte{200, 1, 2, 3}, ErrUnknownMessageType},
		{"truncated accept", []byte{byte(MsgConnectAccept), 1, 0}, ErrShortBuffer},
		{"truncated update count", []byte{byte(MsgUpdateState), 0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0}, ErrShortBuffer},
		{"truncated snapshot", full[:len(full)/2], ErrShortBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if msg != nil {
				t.Errorf("expected no message, got %T", msg)
			}
		})
	}
}

// TestEncodeClampsCounts tests that a corrupted count is never written as is.
func TestEncodeClampsCounts(t *testing.T) {
	update := &UpdateStateMessage{}
	update.MissileCount = 5000

	got := roundTrip(t, update).(*UpdateStateMessage)
	if got.MissileCount != MaxMissilesClient {
		t.Errorf("expected %d, got %d", MaxMissilesClient, got.MissileCount)
	}
	if len(update.MissileList()) != MaxMissilesClient {
		t.Error("MissileList not clamped")
	}
}

func TestMessageTypeString(t *testing.T) {
	if MsgGameState.String() != "game-state" {
		t.Errorf("unexpected name %q", MsgGameState.String())
	}
	if MessageType(99).String() != "message(99)" {
		t.Errorf("unexpected name %q", MessageType(99).String())
	}
}
