// Package client runs the player side of the game: menu screens, a
// fixed-tick network loop with local prediction and a frame loop that
// renders through a Renderer.
package client

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
)

type Screen int

const (
	ScreenTitle Screen = iota
	ScreenAddress
	ScreenGameplay
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenAddress:
		return "address"
	case ScreenGameplay:
		return "gameplay"
	}
	return "unknown"
}

// Client is not safe for concurrent use apart from Stop.
type Client struct {
	cfg    Config
	logger tlog.Logger
	input  Input
	render Renderer

	world *game.ClientWorld

	screen  Screen
	address []rune
	frames  uint64

	conn         transport.PacketConn
	connected    bool
	spawned      bool
	disconnected bool
	closeCode    int32
	clientID     uint32

	x, y      int32
	player    ecs.Entity
	fireHeld  bool
	remotes   map[uint32]ecs.Entity
	mobs      map[uint32]ecs.Entity
	seen      map[uint32]struct{}
	wave      uint32
	countdown float32

	tick         uint64
	connectTick  uint64
	lastHeard    uint64
	accumulator  time.Duration
	tickDuration time.Duration

	buf     []byte
	running atomic.Bool
}

func New(cfg Config) (*Client, error) {
	if cfg.Dial == nil {
		return nil, ErrMissingDialer
	}
	if cfg.Input == nil {
		return nil, ErrMissingInput
	}
	cfg.setDefaults()

	c := &Client{
		cfg:          cfg,
		logger:       cfg.Logger,
		input:        cfg.Input,
		render:       cfg.Renderer,
		world:        game.NewClientWorld(cfg.Renderer),
		address:      []rune(cfg.Address),
		remotes:      make(map[uint32]ecs.Entity),
		mobs:         make(map[uint32]ecs.Entity),
		seen:         make(map[uint32]struct{}),
		tickDuration: time.Second / time.Duration(cfg.TickRate),
		buf:          make([]byte, protocol.MaxDatagramSize),
	}
	if len(c.address) > MaxAddressLength {
		c.address = c.address[:MaxAddressLength]
	}
	return c, nil
}

// Run renders frames at the configured rate until ctx ends, Stop is called
// or the player presses escape. It always closes the client on return.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	frame := time.Second / time.Duration(c.cfg.FPS)
	last := c.cfg.Now()

	for c.running.Load() && ctx.Err() == nil {
		start := c.cfg.Now()
		c.Frame(start.Sub(last))
		last = start

		if elapsed := c.cfg.Now().Sub(start); elapsed < frame {
			c.cfg.Sleep(ctx, frame-elapsed)
		}
	}

	return c.Close()
}

func (c *Client) Stop() {
	c.running.Store(false)
}

// Frame handles one rendered frame: menu input, as many fixed ticks as the
// accumulated time allows, then drawing. It returns the number of ticks run.
func (c *Client) Frame(dt time.Duration) int {
	c.frames++
	ticks := 0

	if c.input.IsKeyPressed(KeyEscape) {
		c.Stop()
	}

	switch c.screen {
	case ScreenTitle:
		if c.input.IsKeyPressed(KeyEnter) {
			c.screen = ScreenAddress
		}

	case ScreenAddress:
		c.updateAddress()

	case ScreenGameplay:
		c.accumulator += dt
		for c.accumulator >= c.tickDuration {
			c.Tick()
			c.accumulator -= c.tickDuration
			ticks++
		}
	}

	c.draw()
	c.input.EndFrame()
	return ticks
}

func (c *Client) updateAddress() {
	for _, r := range c.input.CharsPressed() {
		if r >= 32 && r <= 125 && len(c.address) < MaxAddressLength {
			c.address = append(c.address, r)
		}
	}

	if c.input.IsKeyPressed(KeyBackspace) && len(c.address) > 0 {
		c.address = c.address[:len(c.address)-1]
	}

	if c.input.IsKeyPressed(KeyEnter) {
		c.Connect(context.Background(), string(c.address))
	}
}

// Connect dials host and switches to the gameplay screen. A failed dial
// leaves the client disconnected with CloseCodeUnreachable.
func (c *Client) Connect(ctx context.Context, host string) {
	c.screen = ScreenGameplay
	c.connectTick = c.tick
	c.lastHeard = c.tick

	addr := c.serverAddress(host)
	conn, err := c.cfg.Dial(ctx, addr)
	if err != nil {
		c.logger.Warn("failed to connect", "addr", addr, "error", err)
		c.disconnect(CloseCodeUnreachable)
		return
	}

	c.conn = conn
	c.logger.Info("connecting to server", "addr", addr)
}

func (c *Client) serverAddress(host string) string {
	if host == "" {
		host = "127.0.0.1"
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(c.cfg.Port))
}

// Tick runs one fixed simulation step of the gameplay screen.
func (c *Client) Tick() {
	c.tick++

	if c.conn == nil || c.disconnected {
		return
	}

	c.receive()
	if c.disconnected {
		return
	}

	if !c.connected {
		if c.tick-c.connectTick > c.cfg.ConnectTimeoutTicks {
			c.logger.Warn("server unreachable", "ticks", c.tick-c.connectTick)
			c.disconnect(CloseCodeUnreachable)
			return
		}
		c.send(&protocol.ConnectRequest{})
		return
	}

	if c.tick-c.lastHeard > c.cfg.LostTimeoutTicks {
		c.logger.Warn("connection lost", "client", c.clientID, "last_heard", c.lastHeard)
		c.disconnect(CloseCodeLost)
		return
	}

	c.updateLocal()
	c.world.UpdateAllSystems()
	c.sendState()

	if c.tick%c.cfg.HeartbeatInterval == 0 {
		c.send(&protocol.Heartbeat{})
	}
}

// Close tells a connected server goodbye and releases the conn.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	if c.connected && !c.disconnected {
		c.send(&protocol.Disconnect{})
		c.logger.Info("disconnected", "client", c.clientID)
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) disconnect(code int32) {
	c.disconnected = true
	c.closeCode = code
}

// ==================================================================
// Network
// ==================================================================

func (c *Client) receive() {
	for {
		n, from, err := c.conn.Poll(c.buf)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				c.disconnect(CloseCodeLost)
			}
			c.logger.Warn("poll failed", "error", err)
			return
		}
		if n == 0 && from == nil {
			return
		}

		msg, err := protocol.Decode(c.buf[:n])
		if err != nil {
			c.logger.Debug("dropping malformed datagram", "size", n, "error", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.ConnectAcceptData:
		if c.connected {
			return
		}
		c.connected = true
		c.spawned = true
		c.clientID = m.ClientID
		c.x, c.y = m.SpawnX, m.SpawnY
		c.lastHeard = c.tick
		c.spawnPlayer()
		c.logger.Info("connected", "client", m.ClientID, "spawn_x", m.SpawnX, "spawn_y", m.SpawnY)

	case *protocol.ConnectReject:
		c.logger.Warn("connection rejected", "code", m.Code)
		c.disconnect(m.Code)

	case *protocol.GameStateMessage:
		if !c.connected {
			return
		}
		c.lastHeard = c.tick
		c.applySnapshot(m)

	default:
		c.logger.Debug("ignoring unexpected message", "type", msg.Type())
	}
}

func (c *Client) send(msg protocol.Message) {
	if err := c.conn.WriteTo(protocol.Encode(msg), nil); err != nil {
		c.logger.Warn("send failed", "type", msg.Type(), "error", err)
	}
}

func (c *Client) sendState() {
	update := &protocol.UpdateStateMessage{X: c.x, Y: c.y}

	for _, e := range c.world.Missiles.Entities() {
		pos := ecs.GetComponent[game.Position](c.world.World, e)
		anim := ecs.GetComponent[game.Animation](c.world.World, e)
		m := protocol.Missile{
			Position:      protocol.Vector2{X: pos.X, Y: pos.Y},
			Rect:          anim.Rect(),
			CurrentFrame:  anim.CurrentFrame,
			FramesSpeed:   anim.FramesSpeed,
			FramesCounter: anim.FramesCounter,
		}
		if !update.AddMissile(m) {
			break
		}
	}

	c.send(update)
}

// ==================================================================
// Accessors
// ==================================================================

func (c *Client) Screen() Screen         { return c.screen }
func (c *Client) Address() string        { return string(c.address) }
func (c *Client) Connected() bool        { return c.connected }
func (c *Client) Disconnected() bool     { return c.disconnected }
func (c *Client) CloseCode() int32       { return c.closeCode }
func (c *Client) ClientID() uint32       { return c.clientID }
func (c *Client) Position() (x, y int32) { return c.x, c.y }
func (c *Client) World() *ecs.World      { return c.world.World }
