package server

import (
	"github.com/QYUbit/Tickline/pkg/ecs"
	"github.com/QYUbit/Tickline/pkg/game"
	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
)

// WaveSize is the number of spawns that make up one wave.
const WaveSize = 5

// mobLanes are the y positions new mobs cycle through.
var mobLanes = []float32{80, 200, 320, 440, 520, 140, 380}

// mobDirector spawns mobs on the server world and reports them in snapshots.
type mobDirector struct {
	world    *game.ServerWorld
	logger   tlog.Logger
	interval int
	tickRate int

	untilSpawn int
	spawned    uint64
	nextID     uint32
}

func newMobDirector(world *game.ServerWorld, interval, tickRate int, logger tlog.Logger) *mobDirector {
	return &mobDirector{
		world:      world,
		logger:     logger,
		interval:   interval,
		tickRate:   tickRate,
		untilSpawn: interval,
	}
}

func (d *mobDirector) enabled() bool {
	return d.interval > 0
}

// update counts down to the next spawn while players are present.
func (d *mobDirector) update(playersPresent bool) {
	if !d.enabled() || !playersPresent {
		return
	}

	d.untilSpawn--
	if d.untilSpawn > 0 {
		return
	}
	d.untilSpawn = d.interval

	if d.active() >= protocol.MaxMobs {
		return
	}
	d.spawn()
}

func (d *mobDirector) spawn() {
	e, err := d.world.TryCreateEntity()
	if err != nil {
		d.logger.Warn("cannot spawn mob", "error", err)
		return
	}

	lane := mobLanes[d.spawned%uint64(len(mobLanes))]
	id := d.nextID
	d.nextID++
	d.spawned++

	ecs.AddComponent(d.world.World, e, game.Position{X: protocol.GameWidth, Y: lane})
	ecs.AddComponent(d.world.World, e, game.Velocity{X: -protocol.MobSpeed})
	ecs.AddComponent(d.world.World, e, game.MobTag{ID: id})

	d.logger.Debug("mob spawned", "mob", id, "wave", d.wave())
}

func (d *mobDirector) active() int {
	return d.world.MobCull.Len()
}

func (d *mobDirector) wave() uint32 {
	return uint32((d.spawned + WaveSize - 1) / WaveSize)
}

// fill appends every live mob and the wave fields to snap.
func (d *mobDirector) fill(snap *protocol.GameStateMessage) {
	for _, e := range d.world.MobCull.Entities() {
		pos := ecs.GetComponent[game.Position](d.world.World, e)
		tag := ecs.GetComponent[game.MobTag](d.world.World, e)
		snap.AddMob(protocol.MobState{ID: tag.ID, X: pos.X, Y: pos.Y, Active: true})
	}

	snap.CurrentWave = d.wave()
	snap.WaveActive = d.active() > 0
	if d.enabled() {
		snap.CountdownTimer = float32(d.untilSpawn) / float32(d.tickRate)
	}
}
