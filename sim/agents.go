package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/brain"
	"github.com/milk9111/tilecrowd/collision"
	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/crowd"
	"github.com/milk9111/tilecrowd/ecs"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/reach"
)

var ErrSpawnBlocked = errors.New("sim: agent spawn overlaps a solid")

// AgentSpec describes an agent to spawn. A nil Brain gets a Chase built
// from Chase.
type AgentSpec struct {
	Kind   string
	Radius float64
	Chase  brain.Config
	Brain  brain.Brain
}

// Agent is the component stored per autonomous agent.
type Agent struct {
	Kind   string
	Body   kinematic.Body
	Radius float64
	Params kinematic.Params
	Brain  brain.Brain
	Home   cp.Vector
	// slot is the agent's index in the last separation pass, -1 if absent.
	slot int
}

// SpawnAgent places a new agent centred on pos. It fails with
// ErrSpawnBlocked when the agent's box would overlap a solid.
func (w *World) SpawnAgent(spec AgentSpec, pos cp.Vector) (ecs.Entity, error) {
	if spec.Radius <= 0 {
		spec.Radius = 16
	}
	cfg := spec.Chase.OrDefault()
	params := cfg.Params(w.cfg.Player)
	body := kinematic.NewBody(pos, spec.Radius, spec.Radius, params)
	if overlapsAny(body.Box(), w.index.SolidsNear(body.Box())) {
		return 0, fmt.Errorf("%w: kind %q at (%.0f, %.0f)", ErrSpawnBlocked, spec.Kind, pos.X, pos.Y)
	}
	if spec.Brain == nil {
		spec.Brain = brain.NewChase(cfg)
	}

	e := ecs.CreateEntity(w.reg)
	err := ecs.Add(w.reg, w.agents, e, Agent{
		Kind:   spec.Kind,
		Body:   body,
		Radius: spec.Radius,
		Params: params,
		Brain:  spec.Brain,
		Home:   pos,
		slot:   -1,
	})
	if err != nil {
		ecs.DestroyEntity(w.reg, e)
		return 0, fmt.Errorf("sim: spawn agent: %w", err)
	}
	return e, nil
}

// RemoveAgent destroys e, reporting whether it was a live agent.
func (w *World) RemoveAgent(e ecs.Entity) bool {
	if !w.agents.Has(e) {
		return false
	}
	return ecs.DestroyEntity(w.reg, e)
}

// Agent returns a copy of e's component.
func (w *World) Agent(e ecs.Entity) (Agent, bool) {
	a := w.agents.Get(e)
	if a == nil {
		return Agent{}, false
	}
	return *a, true
}

func (w *World) AgentCount() int {
	return w.agents.Len()
}

// EachAgent visits agents in storage order.
func (w *World) EachAgent(fn func(ecs.Entity, Agent)) {
	ecs.ForEach(w.agents, func(e ecs.Entity, a *Agent) { fn(e, *a) })
}

// Respawn returns e to pos with its charges refilled.
func (w *World) Respawn(e ecs.Entity, pos cp.Vector) bool {
	if e == w.playerEnt {
		w.respawn(e, &w.player, pos)
		return true
	}
	a := w.agents.Get(e)
	if a == nil {
		return false
	}
	w.respawn(e, &a.Body, pos)
	return true
}

func (w *World) stepAgents(dt float64) {
	var ns []brain.Neighbor
	ecs.ForEach(w.agents, func(e ecs.Entity, a *Agent) {
		ns = w.neighborsOf(a, ns[:0])
		in := a.Brain.Think(brain.View{
			Body:      a.Body,
			Radius:    a.Radius,
			Target:    w.player.Pos,
			Flow:      w.flow,
			Neighbors: ns,
			TileSize:  w.cfg.TileSize,
			Dt:        dt,
		})
		a.Body = kinematic.Advance(a.Body, in, dt, a.Params, w.index)
		w.clampToBounds(&a.Body)
		if w.fellOut(a.Body) {
			w.reg.Events().Push(ecs.Event{Kind: ecs.EventFellOut, Entity: e})
			w.respawn(e, &a.Body, a.Home)
		}
	})
}

// neighborsOf reads the positions settled by the previous separation pass.
func (w *World) neighborsOf(a *Agent, dst []brain.Neighbor) []brain.Neighbor {
	if a.slot < 0 {
		return dst
	}
	w.neighbors = w.sep.Neighbors(w.neighbors[:0], a.slot)
	for _, j := range w.neighbors {
		if !w.agents.Has(w.order[j]) {
			continue
		}
		d := w.discs[j]
		dst = append(dst, brain.Neighbor{Pos: d.Pos, Radius: d.Radius})
	}
	return dst
}

func (w *World) stepSeparation(float64) {
	w.discs = w.discs[:0]
	w.order = w.order[:0]
	ecs.ForEach(w.agents, func(e ecs.Entity, a *Agent) {
		a.slot = len(w.discs)
		w.discs = append(w.discs, crowd.Disc{Pos: a.Body.Pos, Vel: a.Body.Vel, Radius: a.Radius})
		w.order = append(w.order, e)
	})
	if len(w.discs) == 0 {
		return
	}
	w.sep.Resolve(w.discs, w.cfg.BucketSize)

	var near []cp.BB
	for i, e := range w.order {
		a := w.agents.Get(e)
		moved := a.Body
		moved.Pos, moved.Vel = w.discs[i].Pos, w.discs[i].Vel
		// never push a body into the level
		near = w.index.AppendSolidsNear(near[:0], moved.Box())
		if overlapsAny(moved.Box(), near) {
			moved.Pos = a.Body.Pos
			w.discs[i].Pos = a.Body.Pos
		}
		a.Body = moved
	}
}

func overlapsAny(box cp.BB, rects []cp.BB) bool {
	for _, r := range rects {
		if collision.Overlaps(box, r) {
			return true
		}
	}
	return false
}

// AgentSpawns picks up to n standable cells at least minDist tiles
// (Manhattan) from the player's spawn, deterministically from seed, and
// returns floor positions for agents of the given radius.
func (w *World) AgentSpawns(n int, radius float64, minDist int, seed int64) []cp.Vector {
	spawn, _ := w.grid.Spawn()
	surf := reach.FindSurfaces(w.grid)
	var cells []level.Cell
	for r := 0; r < w.grid.Rows; r++ {
		for _, c := range surf.Row(r) {
			if common.AbsInt(c-spawn.Col)+common.AbsInt(r-spawn.Row) < minDist {
				continue
			}
			cells = append(cells, level.Cell{Col: c, Row: r})
		}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	out := make([]cp.Vector, 0, min(n, len(cells)))
	for _, c := range cells[:min(n, len(cells))] {
		out = append(out, w.standPos(c, radius))
	}
	return out
}
