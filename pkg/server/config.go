package server

import (
	"context"
	"time"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
)

// Spawn is a player start position.
type Spawn struct {
	X, Y int32
}

// DefaultSpawns are the four playfield corners.
var DefaultSpawns = []Spawn{
	{X: 50, Y: 50},
	{X: protocol.GameWidth - 100, Y: 50},
	{X: 50, Y: protocol.GameHeight - 100},
	{X: protocol.GameWidth - 100, Y: protocol.GameHeight - 100},
}

// Observer receives every snapshot after it was broadcast. Publish runs on
// the tick goroutine and must not retain snap.
type Observer interface {
	Publish(tick uint64, snap *protocol.GameStateMessage)
}

type Config struct {
	Conn   transport.PacketConn
	Logger tlog.Logger

	TickRate     int
	MaxClients   int
	TimeoutTicks uint64
	Spawns       []Spawn

	// FirstClientID is the id handed to the first client. Zero means 1.
	FirstClientID uint32

	// MobSpawnInterval is the number of ticks between mob spawns. Negative
	// disables mobs.
	MobSpawnInterval int

	Observer Observer

	// Now and Sleep drive the pacing in Run.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

func (c *Config) setDefaults() {
	c.Logger = tlog.OrNop(c.Logger)

	if c.TickRate <= 0 {
		c.TickRate = protocol.TickRate
	}
	if c.MaxClients <= 0 || c.MaxClients > protocol.MaxClients {
		c.MaxClients = protocol.MaxClients
	}
	if c.TimeoutTicks == 0 {
		c.TimeoutTicks = protocol.ClientTimeoutTicks
	}
	if c.Spawns == nil {
		c.Spawns = DefaultSpawns
	}
	if c.FirstClientID == 0 {
		c.FirstClientID = 1
	}
	if c.MobSpawnInterval == 0 {
		c.MobSpawnInterval = protocol.MobSpawnInterval
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
