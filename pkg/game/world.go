package game

import "github.com/QYUbit/Tickline/pkg/ecs"

// ServerWorld is the authoritative simulation: mobs move and get culled.
type ServerWorld struct {
	*ecs.World
	Types ComponentTypes

	Velocity *VelocitySystem
	MobCull  *MobCullSystem
}

func NewServerWorld() *ServerWorld {
	w := ecs.NewWorld()
	types := RegisterComponents(w)

	velocity := ecs.RegisterSystem(w, &VelocitySystem{})
	ecs.SetSystemSignature[*VelocitySystem](w, ecs.NewSignature(types.Position, types.Velocity))

	cull := ecs.RegisterSystem(w, &MobCullSystem{})
	cull.Order = 10
	ecs.SetSystemSignature[*MobCullSystem](w, ecs.NewSignature(types.Position, types.MobTag))

	return &ServerWorld{
		World:    w,
		Types:    types,
		Velocity: velocity,
		MobCull:  cull,
	}
}

// ClientWorld holds local missiles and mirrors of remote players and mobs.
type ClientWorld struct {
	*ecs.World
	Types ComponentTypes

	Missiles       *MissileSystem
	Render         *RenderSystem
	RemoteMissiles *RemoteMissileRenderSystem
}

func NewClientWorld(canvas Canvas) *ClientWorld {
	w := ecs.NewWorld()
	types := RegisterComponents(w)

	missiles := ecs.RegisterSystem(w, &MissileSystem{})
	ecs.SetSystemSignature[*MissileSystem](w, ecs.NewSignature(types.Position, types.Animation, types.MissileTag))

	render := ecs.RegisterSystem(w, NewRenderSystem(canvas))
	ecs.SetSystemSignature[*RenderSystem](w, ecs.NewSignature(types.Position, types.Sprite))

	remote := ecs.RegisterSystem(w, NewRemoteMissileRenderSystem(canvas))
	ecs.SetSystemSignature[*RemoteMissileRenderSystem](w, ecs.NewSignature(types.RemotePlayer))

	return &ClientWorld{
		World:          w,
		Types:          types,
		Missiles:       missiles,
		Render:         render,
		RemoteMissiles: remote,
	}
}

// SetCanvas points both render systems at canvas.
func (w *ClientWorld) SetCanvas(canvas Canvas) {
	w.Render.Canvas = canvas
	w.RemoteMissiles.Canvas = canvas
}
