// Package sim steps a player, a crowd of agents and the shared navigation
// structures over one tile grid.
package sim

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/collision"
	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/crowd"
	"github.com/milk9111/tilecrowd/ecs"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/nav"
)

// World owns one level and everything moving in it.
type World struct {
	cfg   Config
	grid  *level.Grid
	index *collision.Index
	flow  *nav.FlowField
	sep   *crowd.Separator

	reg    *ecs.World
	agents *ecs.SparseSet[Agent]
	sched  *ecs.Scheduler

	player       kinematic.Body
	playerParams kinematic.Params
	playerEnt    ecs.Entity
	intents      kinematic.Intents
	spawn        cp.Vector
	checkpoint   cp.Vector

	flowTimer float64
	frame     uint64

	// last separation pass: discs[i] belongs to order[i]
	discs     []crowd.Disc
	order     []ecs.Entity
	neighbors []int
}

// stepFunc adapts a World method to the ecs scheduler.
type stepFunc func(dt float64)

func (f stepFunc) Update(_ *ecs.World, dt float64) { f(dt) }

// NewWorld checks g and places the player on its spawn cell.
func NewWorld(g *level.Grid, cfg Config) (*World, error) {
	if err := g.Check(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	cfg = cfg.withDefaults()
	w := &World{
		cfg:          cfg,
		grid:         g,
		index:        collision.NewIndex(g, cfg.TileSize, collision.Merged),
		flow:         nav.NewFlowField(g, cfg.TileSize),
		sep:          crowd.NewSeparator(cfg.Separator),
		reg:          ecs.NewWorld(),
		playerParams: cfg.Player,
	}
	w.flow.SnapRadius = cfg.SnapRadius
	w.agents = ecs.NewStore[Agent](w.reg)

	cell, _ := g.Spawn()
	w.spawn = w.standPos(cell, cfg.PlayerHalfH)
	w.checkpoint = w.spawn
	w.player = kinematic.NewBody(w.spawn, cfg.PlayerHalfW, cfg.PlayerHalfH, cfg.Player)
	w.playerEnt = ecs.CreateEntity(w.reg)

	// player before the field, field before agents, agents before separation
	w.sched = ecs.NewScheduler(
		stepFunc(w.stepPlayer),
		stepFunc(w.stepFlow),
		stepFunc(w.stepAgents),
		stepFunc(w.stepSeparation),
	)
	return w, nil
}

// standPos is the centre of a body of half height halfH resting on the
// floor under cell.
func (w *World) standPos(cell level.Cell, halfH float64) cp.Vector {
	t := w.cfg.TileSize
	return cp.Vector{X: float64(cell.Col)*t + t/2, Y: float64(cell.Row+1)*t - halfH}
}

// Step advances the world by dt seconds, clamped to the configured maximum.
func (w *World) Step(dt float64, in kinematic.Intents) {
	dt = common.Clamp(dt, 0, w.cfg.StepClamp)
	if dt <= 0 {
		return
	}
	w.intents = in
	w.sched.Update(w.reg, dt)
	w.frame++
}

func (w *World) stepPlayer(dt float64) {
	p := &w.player
	*p = kinematic.Advance(*p, w.intents, dt, w.playerParams, w.index)
	w.clampToBounds(p)

	switch {
	case w.fellOut(*p):
		w.reg.Events().Push(ecs.Event{Kind: ecs.EventFellOut, Entity: w.playerEnt})
		w.respawn(w.playerEnt, p, w.checkpoint)
	case w.index.TouchesHazard(p.Box()):
		w.reg.Events().Push(ecs.Event{Kind: ecs.EventHitHazard, Entity: w.playerEnt})
		w.checkpoint = w.spawn
		w.respawn(w.playerEnt, p, w.spawn)
	case p.Grounded:
		w.checkpoint = p.Pos
	}
}

func (w *World) stepFlow(dt float64) {
	w.flowTimer += dt
	if w.flow.Valid() && w.flowTimer < 1/w.cfg.FlowRebuildHz {
		return
	}
	w.flowTimer = 0
	w.flow.Rebuild(w.player.Pos)
}

// clampToBounds keeps a body horizontally inside the grid.
func (w *World) clampToBounds(b *kinematic.Body) {
	right := float64(w.grid.Cols) * w.cfg.TileSize
	if b.Pos.X-b.HalfW < 0 {
		b.Pos.X = b.HalfW
		b.Vel.X = 0
	} else if b.Pos.X+b.HalfW > right {
		b.Pos.X = right - b.HalfW
		b.Vel.X = 0
	}
}

func (w *World) fellOut(b kinematic.Body) bool {
	bottom := float64(w.grid.Rows) * w.cfg.TileSize
	return b.Pos.Y-b.HalfH > bottom+w.cfg.FallMargin*w.cfg.TileSize
}

func (w *World) respawn(e ecs.Entity, b *kinematic.Body, pos cp.Vector) {
	b.Respawn(pos)
	w.reg.Events().Push(ecs.Event{Kind: ecs.EventRespawned, Entity: e, Data: pos})
	w.cfg.Logger.Printf("sim: frame=%d entity=%v respawn at (%.0f, %.0f)", w.frame, e, pos.X, pos.Y)
}

// SetPlayerParams swaps the player's movement constants, e.g. after a reload.
// A grounded player gets the new charges at once, an airborne one on landing.
func (w *World) SetPlayerParams(p kinematic.Params) {
	w.playerParams = p
	b := &w.player
	b.MaxJumps, b.MaxAirDashes = p.MaxJumps, p.AirDashes
	b.JumpsLeft = min(b.JumpsLeft, p.MaxJumps)
	b.AirDashesLeft = min(b.AirDashesLeft, p.AirDashes)
	if b.Grounded {
		b.ResetJumps()
		b.AirDashesLeft = b.MaxAirDashes
	}
}

func (w *World) Player() kinematic.Body         { return w.player }
func (w *World) PlayerEntity() ecs.Entity       { return w.playerEnt }
func (w *World) PlayerParams() kinematic.Params { return w.playerParams }
func (w *World) Checkpoint() cp.Vector          { return w.checkpoint }
func (w *World) Grid() *level.Grid              { return w.grid }
func (w *World) Index() *collision.Index        { return w.index }
func (w *World) Flow() *nav.FlowField           { return w.flow }
func (w *World) Frame() uint64                  { return w.frame }
func (w *World) Events() *ecs.EventQueue        { return w.reg.Events() }
