package client

import (
	"context"
	"time"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
)

// Close codes stored when the client gives up on the server. A reject from
// the server stores the code it carried.
const (
	CloseCodeUnreachable int32 = -1
	CloseCodeLost        int32 = 0
)

const (
	MaxAddressLength = 15

	DefaultFPS                 = 100
	DefaultHeartbeatInterval   = 30
	DefaultConnectTimeoutTicks = 300
)

// Dialer opens a conn whose default peer is the server at addr.
type Dialer func(ctx context.Context, addr string) (transport.PacketConn, error)

type Config struct {
	Dial     Dialer
	Input    Input
	Renderer Renderer
	Logger   tlog.Logger

	// Address prefills the address screen.
	Address string
	Port    int

	TickRate int
	FPS      int

	HeartbeatInterval   uint64
	ConnectTimeoutTicks uint64
	LostTimeoutTicks    uint64

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

func (c *Config) setDefaults() {
	c.Logger = tlog.OrNop(c.Logger)

	if c.Port == 0 {
		c.Port = protocol.DefaultPort
	}
	if c.TickRate <= 0 {
		c.TickRate = protocol.TickRate
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ConnectTimeoutTicks == 0 {
		c.ConnectTimeoutTicks = DefaultConnectTimeoutTicks
	}
	if c.LostTimeoutTicks == 0 {
		c.LostTimeoutTicks = protocol.ClientTimeoutTicks
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
