// Package brain turns what an agent can see into movement intents.
package brain

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/collision"
	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/nav"
)

// Config tunes one agent kind.
type Config struct {
	Speed        float64 `yaml:"speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	JumpCooldown float64 `yaml:"jump_cooldown"`
	// ClimbTiles is how close horizontally a target above must be to trigger a jump.
	ClimbTiles float64 `yaml:"climb_tiles"`
	// SepRange is the separation radius as a multiple of the agent radius.
	SepRange    float64 `yaml:"sep_range"`
	SepStrength float64 `yaml:"sep_strength"`
	// MaxSpeedScale bounds chase plus steering as a multiple of Speed.
	MaxSpeedScale float64 `yaml:"max_speed_scale"`
	// DeadZone is the horizontal distance under which direct chase stops.
	DeadZone float64 `yaml:"dead_zone"`
}

func DefaultConfig() Config {
	return Config{
		Speed:         230,
		JumpSpeed:     780,
		JumpCooldown:  0.22,
		ClimbTiles:    4,
		SepRange:      3,
		SepStrength:   420,
		MaxSpeedScale: 1.35,
		DeadZone:      6,
	}
}

// Params derives body parameters for this kind from the shared base. Agents
// reach their chase speed at once and have a single jump and no dash.
func (c Config) Params(base kinematic.Params) kinematic.Params {
	p := base
	p.RunSpeed = c.Speed
	p.JumpSpeed = c.JumpSpeed
	p.GroundAccel = 1e6
	p.AirAccel = 1e6
	p.MaxJumps = 1
	p.CoyoteTime = 0
	p.JumpBuffer = common.MaxStep
	p.AirDashes = 0
	return p
}

// Neighbor is another agent near the one thinking.
type Neighbor struct {
	Pos    cp.Vector
	Radius float64
}

// View is everything a brain may read for one step.
type View struct {
	Body      kinematic.Body
	Radius    float64
	Target    cp.Vector
	Flow      *nav.FlowField
	Neighbors []Neighbor
	TileSize  float64
	Dt        float64
}

// Brain produces intents for one agent. Implementations keep per-agent
// state, so each agent owns its own Brain.
type Brain interface {
	Think(v View) kinematic.Intents
}

// senses are the derived facts both brains decide from.
type senses struct {
	dir          cp.Vector
	dx, dy       float64
	chase        int
	steer        float64
	blockedWall  bool
	blockedAgent bool
	targetAbove  bool
	flowUp       bool
}

func sense(v View, cfg Config) senses {
	b := v.Body
	s := senses{dx: v.Target.X - b.Pos.X, dy: v.Target.Y - b.Pos.Y}
	if v.Flow != nil {
		s.dir = v.Flow.DirectionAt(b.Pos)
	}

	switch {
	case math.Abs(s.dir.X) > 0.2:
		s.chase = int(common.Sign(s.dir.X))
	case math.Abs(s.dx) > cfg.DeadZone:
		s.chase = int(common.Sign(s.dx))
	}
	s.flowUp = s.dir.Y < -0.5 && math.Abs(s.dir.X) < 0.5

	tile := v.TileSize
	if tile <= 0 {
		tile = common.TileSize
	}
	s.targetAbove = v.Target.Y < b.Pos.Y-v.Radius-tile/2 && math.Abs(s.dx) < tile*cfg.ClimbTiles
	s.blockedWall = (s.chase > 0 && b.WallRight) || (s.chase < 0 && b.WallLeft)
	s.blockedAgent = blockedByAgent(b.Pos, v.Radius, s.chase, v.Neighbors)
	s.steer = separation(b.Pos, v.Radius, v.Neighbors, cfg, v.Dt)
	return s
}

// separation is the horizontal push away from close neighbours, in px/s.
func separation(pos cp.Vector, radius float64, ns []Neighbor, cfg Config, dt float64) float64 {
	rng := radius * cfg.SepRange
	if rng <= 0 {
		return 0
	}
	var push float64
	for _, n := range ns {
		d := pos.Sub(n.Pos)
		dist := d.Length()
		if dist <= 0.001 || dist >= rng {
			continue
		}
		push += d.X / dist * (1 - dist/rng)
	}
	return push * cfg.SepStrength * dt
}

// blockedByAgent probes just ahead at chest height for another agent.
func blockedByAgent(pos cp.Vector, radius float64, dir int, ns []Neighbor) bool {
	if dir == 0 {
		return false
	}
	off := float64(dir) * (radius + 6)
	probe := cp.BB{
		L: pos.X - radius + off,
		B: pos.Y - radius + radius*0.35,
		R: pos.X + radius + off,
		T: pos.Y - radius + radius*0.35 + radius*0.9,
	}
	for _, n := range ns {
		box := cp.BB{L: n.Pos.X - n.Radius, B: n.Pos.Y - n.Radius, R: n.Pos.X + n.Radius, T: n.Pos.Y + n.Radius}
		if collision.Overlaps(probe, box) {
			return true
		}
	}
	return false
}

// intents combines a move decision with steering, keeping the run target
// within MaxSpeedScale of Speed.
func intents(move int, jump bool, s senses, cfg Config) kinematic.Intents {
	limit := cfg.Speed * cfg.MaxSpeedScale
	target := common.Clamp(float64(move)*cfg.Speed+s.steer, -limit, limit)
	return kinematic.Intents{
		MoveAxis:    move,
		JumpPressed: jump,
		JumpHeld:    jump,
		Steer:       target - float64(move)*cfg.Speed,
	}
}

// OrDefault fills unset fields from DefaultConfig.
func (c Config) OrDefault() Config {
	d := DefaultConfig()
	if c.Speed <= 0 {
		c.Speed = d.Speed
	}
	if c.JumpSpeed <= 0 {
		c.JumpSpeed = d.JumpSpeed
	}
	if c.JumpCooldown <= 0 {
		c.JumpCooldown = d.JumpCooldown
	}
	if c.ClimbTiles <= 0 {
		c.ClimbTiles = d.ClimbTiles
	}
	if c.SepRange <= 0 {
		c.SepRange = d.SepRange
	}
	if c.SepStrength <= 0 {
		c.SepStrength = d.SepStrength
	}
	if c.MaxSpeedScale <= 0 {
		c.MaxSpeedScale = d.MaxSpeedScale
	}
	if c.DeadZone <= 0 {
		c.DeadZone = d.DeadZone
	}
	return c
}
