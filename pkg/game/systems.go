package game

import (
	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/protocol"
)

// VelocitySystem moves every entity with a Velocity.
type VelocitySystem struct {
	ecs.SystemBase
}

func (s *VelocitySystem) Update(w *ecs.World) {
	for _, e := range s.Entities() {
		pos := ecs.GetComponent[Position](w, e)
		vel := ecs.GetComponent[Velocity](w, e)
		pos.X += vel.X
		pos.Y += vel.Y
	}
}

// MissileSystem advances local missiles and destroys those past the right
// edge.
type MissileSystem struct {
	ecs.SystemBase
}

func (s *MissileSystem) Update(w *ecs.World) {
	for _, e := range s.Entities() {
		pos := ecs.GetComponent[Position](w, e)
		anim := ecs.GetComponent[Animation](w, e)

		AdvanceAnimation(anim)
		pos.X += MissileSpeed

		if sprite, ok := ecs.LookupComponent[Sprite](w, e); ok {
			sprite.Source = anim.Rect()
			sprite.Width = sprite.Source.Width * SpriteScale
			sprite.Height = sprite.Source.Height * SpriteScale
		}

		if pos.X > protocol.GameWidth {
			w.DestroyEntity(e)
		}
	}
}

// AdvanceAnimation steps a by one tick.
func AdvanceAnimation(a *Animation) {
	if a.FramesSpeed == 0 {
		return
	}

	a.FramesCounter++
	if a.FramesCounter >= AnimationFPS/a.FramesSpeed {
		a.FramesCounter = 0
		a.CurrentFrame++
		if len(a.Frames) > 0 && int(a.CurrentFrame) >= len(a.Frames) {
			a.CurrentFrame = 0
		}
	}
}

// MobCullSystem destroys mobs that left the playfield on the left.
type MobCullSystem struct {
	ecs.SystemBase
}

func (s *MobCullSystem) Update(w *ecs.World) {
	for _, e := range s.Entities() {
		if ecs.GetComponent[Position](w, e).X < -protocol.MobWidth {
			w.DestroyEntity(e)
		}
	}
}

// RenderSystem draws every sprite.
type RenderSystem struct {
	ecs.SystemBase
	Canvas Canvas
}

func NewRenderSystem(canvas Canvas) *RenderSystem {
	s := &RenderSystem{Canvas: canvas}
	s.Phase = ecs.PhaseRender
	return s
}

func (s *RenderSystem) Update(w *ecs.World) {
	if s.Canvas == nil {
		return
	}
	for _, e := range s.Entities() {
		pos := ecs.GetComponent[Position](w, e)
		sprite := ecs.GetComponent[Sprite](w, e)
		dst := protocol.Rectangle{X: pos.X, Y: pos.Y, Width: sprite.Width, Height: sprite.Height}
		s.Canvas.DrawSprite(sprite.Texture, sprite.Source, dst, sprite.Outline)
	}
}

// RemoteMissileRenderSystem draws the missiles other clients reported.
type RemoteMissileRenderSystem struct {
	ecs.SystemBase
	Canvas Canvas
}

func NewRemoteMissileRenderSystem(canvas Canvas) *RemoteMissileRenderSystem {
	s := &RemoteMissileRenderSystem{Canvas: canvas}
	s.Phase = ecs.PhaseRender
	s.Order = 1
	return s
}

func (s *RemoteMissileRenderSystem) Update(w *ecs.World) {
	if s.Canvas == nil {
		return
	}
	for _, e := range s.Entities() {
		for _, m := range ecs.GetComponent[RemotePlayer](w, e).Missiles {
			dst := protocol.Rectangle{
				X:      m.Position.X,
				Y:      m.Position.Y,
				Width:  m.Rect.Width * SpriteScale,
				Height: m.Rect.Height * SpriteScale,
			}
			s.Canvas.DrawSprite(TextureMissile, m.Rect, dst, false)
		}
	}
}
