package client

import (
	"slices"

	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

// applySnapshot makes the mirrored remote players and mobs match snap.
// Anything tracked but absent from snap is destroyed.
func (c *Client) applySnapshot(snap *protocol.GameStateMessage) {
	clear(c.seen)
	for _, cs := range snap.ClientList() {
		if cs.ClientID == c.clientID {
			continue
		}
		c.seen[cs.ClientID] = struct{}{}
		c.mirrorRemote(cs)
	}
	c.prune(c.remotes)

	clear(c.seen)
	for _, mob := range snap.MobList() {
		if !mob.Active {
			continue
		}
		c.seen[mob.ID] = struct{}{}
		c.mirrorMob(mob)
	}
	c.prune(c.mobs)

	c.wave = snap.CurrentWave
	c.countdown = snap.CountdownTimer
}

func (c *Client) mirrorRemote(cs protocol.ClientState) {
	w := c.world.World

	e, ok := c.remotes[cs.ClientID]
	if !ok {
		var err error
		if e, err = w.TryCreateEntity(); err != nil {
			c.logger.Warn("cannot mirror remote player", "client", cs.ClientID, "error", err)
			return
		}
		ecs.AddComponent(w, e, game.Position{})
		ecs.AddComponent(w, e, game.Sprite{
			Texture: game.TexturePlayer,
			Source:  game.PlayerSource,
			Width:   game.PlayerSource.Width * game.SpriteScale,
			Height:  game.PlayerSource.Height * game.SpriteScale,
		})
		ecs.AddComponent(w, e, game.RemotePlayer{ClientID: cs.ClientID})
		c.remotes[cs.ClientID] = e
		c.logger.Debug("remote player appeared", "client", cs.ClientID)
	}

	pos := ecs.GetComponent[game.Position](w, e)
	pos.X, pos.Y = float32(cs.X), float32(cs.Y)

	remote := ecs.GetComponent[game.RemotePlayer](w, e)
	remote.Missiles = append(remote.Missiles[:0], cs.MissileList()...)
}

func (c *Client) mirrorMob(mob protocol.MobState) {
	w := c.world.World

	e, ok := c.mobs[mob.ID]
	if !ok {
		var err error
		if e, err = w.TryCreateEntity(); err != nil {
			c.logger.Warn("cannot mirror mob", "mob", mob.ID, "error", err)
			return
		}
		ecs.AddComponent(w, e, game.Position{})
		ecs.AddComponent(w, e, game.Sprite{
			Texture: game.TextureMob,
			Source:  game.MobSource,
			Width:   protocol.MobWidth,
			Height:  protocol.MobHeight,
		})
		ecs.AddComponent(w, e, game.MobTag{ID: mob.ID})
		c.mobs[mob.ID] = e
	}

	pos := ecs.GetComponent[game.Position](w, e)
	pos.X, pos.Y = mob.X, mob.Y
}

func (c *Client) prune(tracked map[uint32]ecs.Entity) {
	for id, e := range tracked {
		if _, ok := c.seen[id]; ok {
			continue
		}
		c.world.DestroyEntity(e)
		delete(tracked, id)
	}
}

// RemoteIDs returns the ids of mirrored remote players in ascending order.
func (c *Client) RemoteIDs() []uint32 {
	ids := make([]uint32, 0, len(c.remotes))
	for id := range c.remotes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RemoteEntity returns the mirror entity of a remote player.
func (c *Client) RemoteEntity(id uint32) (ecs.Entity, bool) {
	e, ok := c.remotes[id]
	return e, ok
}

// MobIDs returns the ids of mirrored mobs in ascending order.
func (c *Client) MobIDs() []uint32 {
	ids := make([]uint32, 0, len(c.mobs))
	for id := range c.mobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
