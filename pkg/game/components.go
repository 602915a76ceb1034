// Package game holds the components and systems shared by the server and
// client worlds.
package game

import (
	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	X, Y float32
}

// Animation cycles a sprite through a fixed list of source rectangles.
type Animation struct {
	Frames        []protocol.Rectangle
	CurrentFrame  uint32
	FramesSpeed   uint32
	FramesCounter uint32
}

// Rect returns the source rectangle of the current frame.
func (a *Animation) Rect() protocol.Rectangle {
	if len(a.Frames) == 0 {
		return protocol.Rectangle{}
	}
	return a.Frames[int(a.CurrentFrame)%len(a.Frames)]
}

// Sprite is what the render system draws at an entity's Position.
type Sprite struct {
	Texture Texture
	Source  protocol.Rectangle
	Width   float32
	Height  float32
	Outline bool
}

// MissileTag marks a missile owned by the local client.
type MissileTag struct{}

// MobTag carries the id a mob is known by on the wire.
type MobTag struct {
	ID uint32
}

// RemotePlayer mirrors another client's entry in the latest snapshot.
type RemotePlayer struct {
	ClientID uint32
	Missiles []protocol.Missile
}

// LocalPlayer marks the entity driven by this client's input.
type LocalPlayer struct{}

// ComponentTypes are the signature bits of every game component in one world.
type ComponentTypes struct {
	Position     ecs.ComponentType
	Velocity     ecs.ComponentType
	Animation    ecs.ComponentType
	Sprite       ecs.ComponentType
	MissileTag   ecs.ComponentType
	MobTag       ecs.ComponentType
	RemotePlayer ecs.ComponentType
	LocalPlayer  ecs.ComponentType
}

// RegisterComponents registers every game component in a fixed order.
func RegisterComponents(w *ecs.World) ComponentTypes {
	return ComponentTypes{
		Position:     ecs.RegisterComponent[Position](w),
		Velocity:     ecs.RegisterComponent[Velocity](w),
		Animation:    ecs.RegisterComponent[Animation](w),
		Sprite:       ecs.RegisterComponent[Sprite](w),
		MissileTag:   ecs.RegisterComponent[MissileTag](w),
		MobTag:       ecs.RegisterComponent[MobTag](w),
		RemotePlayer: ecs.RegisterComponent[RemotePlayer](w),
		LocalPlayer:  ecs.RegisterComponent[LocalPlayer](w),
	}
}
