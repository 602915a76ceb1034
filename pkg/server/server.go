// Package server runs the authoritative fixed-tick simulation: it accepts
// connections, tracks client state, moves mobs and broadcasts a snapshot
// every tick.
package server

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
	"github.com/QYUbit/Tickline/pkg/transport"
	"github.com/google/uuid"
)

// Server is driven by a single goroutine, either Run or a caller of Tick.
// Only Stop and CurrentTick may be called from other goroutines.
type Server struct {
	cfg    Config
	conn   transport.PacketConn
	logger tlog.Logger
	runID  string

	table *ConnectionTable
	world *game.ServerWorld
	mobs  *mobDirector

	tick    atomic.Uint64
	running atomic.Bool

	buf      []byte
	snapshot protocol.GameStateMessage
	stats    trafficStats
}

type trafficStats struct {
	received  uint64
	sent      uint64
	malformed uint64
	sendFails uint64
}

func New(cfg Config) (*Server, error) {
	if cfg.Conn == nil {
		return nil, ErrMissingPacketConn
	}
	if cfg.Spawns != nil && len(cfg.Spawns) == 0 {
		return nil, ErrInvalidSpawnPoints
	}
	cfg.setDefaults()

	runID := uuid.NewString()
	logger := cfg.Logger

	world := game.NewServerWorld()

	s := &Server{
		cfg:    cfg,
		conn:   cfg.Conn,
		logger: logger,
		runID:  runID,
		table:  NewConnectionTable(cfg.MaxClients, cfg.FirstClientID),
		world:  world,
		mobs:   newMobDirector(world, cfg.MobSpawnInterval, cfg.TickRate, logger),
		buf:    make([]byte, protocol.MaxDatagramSize),
	}
	return s, nil
}

// Run ticks until ctx ends or Stop is called. The tick in progress always
// completes.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	period := time.Second / time.Duration(s.cfg.TickRate)

	s.logger.Info("server running",
		"run", s.runID,
		"addr", s.conn.LocalAddr(),
		"tick_rate", s.cfg.TickRate,
		"max_clients", s.cfg.MaxClients,
	)

	for s.running.Load() && ctx.Err() == nil {
		start := s.cfg.Now()
		s.Tick()

		if elapsed := s.cfg.Now().Sub(start); elapsed < period {
			s.cfg.Sleep(ctx, period-elapsed)
		}
	}

	s.logger.Info("server stopped", "run", s.runID, "tick", s.CurrentTick())
	return nil
}

// Stop asks Run to return after the current tick.
func (s *Server) Stop() {
	s.running.Store(false)
}

func (s *Server) CurrentTick() uint64 {
	return s.tick.Load()
}

// Table exposes the connection table to the tick goroutine.
func (s *Server) Table() *ConnectionTable {
	return s.table
}

// Snapshot returns the snapshot built by the last tick.
func (s *Server) Snapshot() *protocol.GameStateMessage {
	return &s.snapshot
}

// Tick runs one simulation step.
func (s *Server) Tick() {
	tick := s.tick.Load()

	s.receive(tick)
	s.sweepTimeouts(tick)

	s.mobs.update(s.table.Len() > 0)
	s.world.UpdateAllSystems()

	s.broadcast(tick)

	if tick > 0 && tick%uint64(s.cfg.TickRate) == 0 {
		s.logStats()
	}
	s.tick.Store(tick + 1)
}

// ==================================================================
// Inbound
// ==================================================================

func (s *Server) receive(tick uint64) {
	for {
		n, from, err := s.conn.Poll(s.buf)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				s.logger.Error("packet conn closed, stopping", "run", s.runID)
				s.Stop()
			} else {
				s.logger.Warn("poll failed", "error", err)
			}
			return
		}
		if n == 0 && from == nil {
			return
		}
		s.stats.received++

		msg, err := protocol.Decode(s.buf[:n])
		if err != nil {
			s.stats.malformed++
			s.logger.Debug("dropping malformed datagram", "from", from, "size", n, "error", err)
			continue
		}

		s.handle(tick, from, msg)
	}
}

func (s *Server) handle(tick uint64, from net.Addr, msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.ConnectRequest:
		s.handleConnect(tick, from)

	case *protocol.UpdateStateMessage:
		c, ok := s.table.ByAddr(from)
		if !ok {
			return
		}
		c.LastHeardTick = tick
		c.State.X = m.X
		c.State.Y = m.Y
		c.State.MissileCount = min(m.MissileCount, protocol.MaxMissilesClient)
		c.State.Missiles = m.Missiles

	case *protocol.Heartbeat:
		if c, ok := s.table.ByAddr(from); ok {
			c.LastHeardTick = tick
		}

	case *protocol.Disconnect:
		if c, ok := s.table.ByAddr(from); ok {
			s.table.Remove(c)
			s.logger.Info("client disconnected", "client", c.ID, "addr", from)
		}

	default:
		s.logger.Debug("ignoring unexpected message", "type", msg.Type(), "from", from)
	}
}

func (s *Server) handleConnect(tick uint64, from net.Addr) {
	if c, ok := s.table.ByAddr(from); ok {
		// The accept may have been lost; repeating it changes nothing.
		s.send(from, s.accept(c))
		return
	}

	c, err := s.table.Add(from, tick)
	if err != nil {
		if errors.Is(err, ErrClientIDsExhausted) {
			s.logger.Error("refusing connection", "addr", from, "error", err)
		} else {
			s.logger.Info("refusing connection", "addr", from, "error", err)
		}
		s.send(from, &protocol.ConnectReject{Code: protocol.ServerFullCode})
		return
	}

	spawn := s.spawnFor(c.ID)
	c.State = protocol.ClientState{ClientID: c.ID, X: spawn.X, Y: spawn.Y}

	s.send(from, s.accept(c))
	s.logger.Info("client connected",
		"client", c.ID,
		"addr", from,
		"spawn_x", spawn.X,
		"spawn_y", spawn.Y,
		"clients", s.table.Len(),
	)
}

func (s *Server) accept(c *Client) *protocol.ConnectAcceptData {
	spawn := s.spawnFor(c.ID)
	return &protocol.ConnectAcceptData{ClientID: c.ID, SpawnX: spawn.X, SpawnY: spawn.Y}
}

func (s *Server) spawnFor(id uint32) Spawn {
	return s.cfg.Spawns[id%uint32(len(s.cfg.Spawns))]
}

func (s *Server) sweepTimeouts(tick uint64) {
	for _, c := range s.table.Expired(tick, s.cfg.TimeoutTicks) {
		s.table.Remove(c)
		s.logger.Info("client timed out",
			"client", c.ID,
			"addr", c.Addr,
			"last_heard", c.LastHeardTick,
			"tick", tick,
		)
	}
}

// ==================================================================
// Outbound
// ==================================================================

func (s *Server) broadcast(tick uint64) {
	snap := &s.snapshot
	*snap = protocol.GameStateMessage{}

	for _, c := range s.table.Clients() {
		snap.AddClient(c.State)
	}
	s.mobs.fill(snap)

	if s.table.Len() > 0 {
		data := protocol.Encode(snap)
		for _, c := range s.table.Clients() {
			s.write(c.Addr, data)
		}
	}

	if s.cfg.Observer != nil {
		s.cfg.Observer.Publish(tick, snap)
	}
}

func (s *Server) send(to net.Addr, msg protocol.Message) {
	s.write(to, protocol.Encode(msg))
}

// write logs send failures and moves on; a peer that is really gone is
// removed by the timeout sweep.
func (s *Server) write(to net.Addr, data []byte) {
	if err := s.conn.WriteTo(data, to); err != nil {
		s.stats.sendFails++
		s.logger.Warn("send failed", "to", to, "size", len(data), "error", err)
		return
	}
	s.stats.sent++
}

func (s *Server) logStats() {
	s.logger.Debug("traffic",
		"tick", s.tick.Load(),
		"clients", s.table.Len(),
		"mobs", s.mobs.active(),
		"received", s.stats.received,
		"sent", s.stats.sent,
		"malformed", s.stats.malformed,
		"send_failures", s.stats.sendFails,
	)
	s.stats = trafficStats{}
}
