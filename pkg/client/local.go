package client

import (
	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

func (c *Client) spawnPlayer() {
	e, err := c.world.TryCreateEntity()
	if err != nil {
		c.logger.Error("cannot create player entity", "error", err)
		return
	}
	c.player = e

	ecs.AddComponent(c.world.World, e, game.Position{X: float32(c.x), Y: float32(c.y)})
	ecs.AddComponent(c.world.World, e, game.Sprite{
		Texture: game.TexturePlayer,
		Source:  game.PlayerSource,
		Width:   game.PlayerSource.Width * game.SpriteScale,
		Height:  game.PlayerSource.Height * game.SpriteScale,
		Outline: true,
	})
	ecs.AddComponent(c.world.World, e, game.LocalPlayer{})
}

// updateLocal applies this tick's input to the predicted position and fires
// on the space bar's down edge.
func (c *Client) updateLocal() {
	down := c.input.IsKeyDown

	if down(KeySpace) {
		if !c.fireHeld {
			c.fireHeld = true
			c.fire()
		}
	} else {
		c.fireHeld = false
	}

	const (
		maxX = protocol.GameWidth - game.PlayerSize
		maxY = protocol.GameHeight - game.PlayerSize
	)

	switch {
	case down(KeyUp) || down(KeyW):
		c.y = max(0, c.y-game.PlayerSpeed)
	case down(KeyDown) || down(KeyS):
		c.y = min(maxY, c.y+game.PlayerSpeed)
	}

	switch {
	case down(KeyLeft) || down(KeyA):
		c.x = max(0, c.x-game.PlayerSpeed)
	case down(KeyRight) || down(KeyD):
		c.x = min(maxX, c.x+game.PlayerSpeed)
	}

	if c.world.Alive(c.player) && ecs.HasComponent[game.LocalPlayer](c.world.World, c.player) {
		pos := ecs.GetComponent[game.Position](c.world.World, c.player)
		pos.X, pos.Y = float32(c.x), float32(c.y)
	}
}

func (c *Client) fire() {
	e, err := c.world.TryCreateEntity()
	if err != nil {
		c.logger.Warn("cannot fire missile", "error", err)
		return
	}

	anim := game.Animation{Frames: game.MissileFrames, FramesSpeed: game.MissileFramesSpeed}
	src := anim.Rect()

	ecs.AddComponent(c.world.World, e, game.Position{X: float32(c.x), Y: float32(c.y)})
	ecs.AddComponent(c.world.World, e, anim)
	ecs.AddComponent(c.world.World, e, game.MissileTag{})
	ecs.AddComponent(c.world.World, e, game.Sprite{
		Texture: game.TextureMissile,
		Source:  src,
		Width:   src.Width * game.SpriteScale,
		Height:  src.Height * game.SpriteScale,
	})

	c.logger.Debug("missile fired", "x", c.x, "y", c.y)
}
