package game

import "github.com/QYUbit/Tickline/pkg/protocol"

// Texture is an opaque handle to an image owned by the renderer.
type Texture uint8

const (
	TexturePlayer Texture = iota
	TextureMissile
	TextureMob
	TextureBackground
)

func (t Texture) String() string {
	switch t {
	case TexturePlayer:
		return "player"
	case TextureMissile:
		return "missile"
	case TextureMob:
		return "mob"
	case TextureBackground:
		return "background"
	}
	return "unknown"
}

// Canvas receives draw calls from render systems.
type Canvas interface {
	DrawSprite(tex Texture, src, dst protocol.Rectangle, outline bool)
}

// Source rectangles in the sprite sheets.
var (
	PlayerSource = protocol.Rectangle{X: 0, Y: 30, Width: 32, Height: 22}
	MobSource    = protocol.Rectangle{X: 22, Y: 115, Width: 33, Height: 29}

	MissileFrames = []protocol.Rectangle{
		{X: 0, Y: 128, Width: 25, Height: 22},
		{X: 25, Y: 128, Width: 31, Height: 22},
		{X: 56, Y: 128, Width: 40, Height: 22},
		{X: 96, Y: 128, Width: 55, Height: 22},
		{X: 151, Y: 128, Width: 72, Height: 22},
	}
)

const (
	// PlayerSize bounds the playfield area a player may occupy.
	PlayerSize  = 50
	PlayerSpeed = 5

	MissileSpeed       = 5
	MissileFramesSpeed = 8

	// AnimationFPS is the rate animation speeds are expressed against.
	AnimationFPS = 100

	// SpriteScale is applied to player and missile source rectangles.
	SpriteScale = 2
)
