package kinematic

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/envelope"
)

// StateID names the movement state a body is in.
type StateID uint8

const (
	Grounded StateID = iota
	Airborne
	WallContact
	Dashing
)

func (s StateID) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Airborne:
		return "airborne"
	case WallContact:
		return "wall"
	case Dashing:
		return "dash"
	}
	return "unknown"
}

// Params are the movement constants shared by every body type.
type Params struct {
	Gravity     float64 `yaml:"gravity"`
	MaxFall     float64 `yaml:"max_fall"`
	RunSpeed    float64 `yaml:"run_speed"`
	GroundAccel float64 `yaml:"ground_accel"`
	AirAccel    float64 `yaml:"air_accel"`
	JumpSpeed   float64 `yaml:"jump_speed"`
	MaxJumps    int     `yaml:"max_jumps"`

	CoyoteTime float64 `yaml:"coyote_time"`
	JumpBuffer float64 `yaml:"jump_buffer"`
	JumpCut    float64 `yaml:"jump_cut"`

	WallSlide    float64 `yaml:"wall_slide_speed"`
	WallJumpPush float64 `yaml:"wall_jump_push"`
	WallLock     float64 `yaml:"wall_lock"`

	DashSpeed    float64 `yaml:"dash_speed"`
	DashTime     float64 `yaml:"dash_time"`
	DashCooldown float64 `yaml:"dash_cooldown"`
	AirDashes    int     `yaml:"air_dashes"`
}

func DefaultParams() Params {
	return Params{
		Gravity:      2600,
		MaxFall:      2400,
		RunSpeed:     380,
		GroundAccel:  6000,
		AirAccel:     3600,
		JumpSpeed:    820,
		MaxJumps:     2,
		CoyoteTime:   0.10,
		JumpBuffer:   0.12,
		JumpCut:      0.45,
		WallSlide:    220,
		WallJumpPush: 380,
		WallLock:     0.16,
		DashSpeed:    560,
		DashTime:     0.14,
		DashCooldown: 0.55,
		AirDashes:    1,
	}
}

// Kinematics is the subset the movement envelope is derived from.
func (p Params) Kinematics() envelope.Kinematics {
	return envelope.Kinematics{Gravity: p.Gravity, JumpSpeed: p.JumpSpeed, RunSpeed: p.RunSpeed}
}

// WithStacks applies movement modifiers on top of p.
func (p Params) WithStacks(s envelope.Stacks) Params {
	stats := s.Apply(p.Kinematics(), p.MaxJumps, envelope.Dash{
		Speed:      p.DashSpeed,
		Duration:   p.DashTime,
		Cooldown:   p.DashCooldown,
		AirCharges: p.AirDashes,
	})
	p.RunSpeed = stats.Kinematics.RunSpeed
	p.JumpSpeed = stats.Kinematics.JumpSpeed
	p.MaxJumps = stats.MaxJumps
	p.DashSpeed = stats.Dash.Speed
	p.DashTime = stats.Dash.Duration
	p.DashCooldown = stats.Dash.Cooldown
	p.AirDashes = stats.Dash.AirCharges
	return p
}

// Intents is what a controller asks of a body for one step. Steer is added
// to the run target speed, in px/s; agents use it for crowd spacing.
type Intents struct {
	MoveAxis     int
	JumpPressed  bool
	JumpReleased bool
	JumpHeld     bool
	DashPressed  bool
	Steer        float64
}

// Body is the movement state owned by one agent. Pos is the box centre.
type Body struct {
	Pos    cp.Vector
	Vel    cp.Vector
	HalfW  float64
	HalfH  float64
	Facing int
	State  StateID

	Grounded  bool
	WallLeft  bool
	WallRight bool

	JumpsLeft     int
	AirDashesLeft int
	MaxJumps      int
	MaxAirDashes  int

	DashTimer    float64
	DashCooldown float64
	DashDir      float64
	// DashGrounded records that the current dash began on the ground.
	DashGrounded bool

	Coyote   float64
	Buffer   float64
	WallLock float64
}

// NewBody places a body at rest with full charges. It counts as airborne
// until its first downward collision.
func NewBody(pos cp.Vector, halfW, halfH float64, p Params) Body {
	b := Body{Pos: pos, HalfW: halfW, HalfH: halfH, Facing: 1, State: Airborne}
	b.MaxJumps, b.MaxAirDashes = p.MaxJumps, p.AirDashes
	Refill(&b)
	return b
}

// Box is the body's bounding box in world pixels.
func (b Body) Box() cp.BB {
	return cp.BB{L: b.Pos.X - b.HalfW, B: b.Pos.Y - b.HalfH, R: b.Pos.X + b.HalfW, T: b.Pos.Y + b.HalfH}
}

func (b Body) TouchingWall() bool {
	return b.WallLeft || b.WallRight
}

// Dashable is implemented by anything with jump and dash charges that a
// respawn or pickup can refill.
type Dashable interface {
	ResetJumps()
	ResetDash()
}

var _ Dashable = (*Body)(nil)

func (b *Body) ResetJumps() {
	b.JumpsLeft = b.MaxJumps
}

func (b *Body) ResetDash() {
	b.AirDashesLeft = b.MaxAirDashes
	b.DashTimer = 0
	b.DashCooldown = 0
	b.DashGrounded = false
}

// Respawn moves the body to pos at rest and refills its charges.
func (b *Body) Respawn(pos cp.Vector) {
	b.Pos = pos
	b.Vel = cp.Vector{}
	b.State = Airborne
	b.Grounded, b.WallLeft, b.WallRight = false, false, false
	b.Coyote, b.Buffer, b.WallLock = 0, 0, 0
	Refill(b)
}

// Refill restores every jump and dash charge of d.
func Refill(d Dashable) {
	d.ResetJumps()
	d.ResetDash()
}
