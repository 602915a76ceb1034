package spectate

import "github.com/QYUbit/Tickline/pkg/protocol"

// Frame is the msgpack document sent to spectators for every broadcast
// snapshot.
type Frame struct {
	Tick       uint64   `msgpack:"tick"`
	Players    []Player `msgpack:"players"`
	Mobs       []Mob    `msgpack:"mobs"`
	Countdown  float32  `msgpack:"countdown"`
	Wave       uint32   `msgpack:"wave"`
	WaveActive bool     `msgpack:"wave_active"`
}

type Player struct {
	ID       uint32    `msgpack:"id"`
	X        int32     `msgpack:"x"`
	Y        int32     `msgpack:"y"`
	Missiles []Missile `msgpack:"missiles,omitempty"`
}

type Missile struct {
	X     float32 `msgpack:"x"`
	Y     float32 `msgpack:"y"`
	Frame uint32  `msgpack:"frame"`
}

type Mob struct {
	ID uint32  `msgpack:"id"`
	X  float32 `msgpack:"x"`
	Y  float32 `msgpack:"y"`
}

func newFrame(tick uint64, snap *protocol.GameStateMessage) Frame {
	f := Frame{
		Tick:       tick,
		Countdown:  snap.CountdownTimer,
		Wave:       snap.CurrentWave,
		WaveActive: snap.WaveActive,
	}

	for _, cs := range snap.ClientList() {
		p := Player{ID: cs.ClientID, X: cs.X, Y: cs.Y}
		for _, m := range cs.MissileList() {
			p.Missiles = append(p.Missiles, Missile{X: m.Position.X, Y: m.Position.Y, Frame: m.CurrentFrame})
		}
		f.Players = append(f.Players, p)
	}

	for _, mob := range snap.MobList() {
		if mob.Active {
			f.Mobs = append(f.Mobs, Mob{ID: mob.ID, X: mob.X, Y: mob.Y})
		}
	}
	return f
}
