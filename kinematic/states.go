package kinematic

import (
	"math"

	"github.com/milk9111/tilecrowd/common"
)

// state is one node of the movement machine. HandleInput runs before
// integration and may change state; Update sets the velocity to integrate.
type state interface {
	ID() StateID
	Enter(s *step)
	Exit(s *step)
	HandleInput(s *step)
	Update(s *step)
}

// State singletons (avoid allocations on transitions).
var (
	stateGrounded state = &groundedState{}
	stateAirborne state = &airborneState{}
	stateWall     state = &wallState{}
	stateDash     state = &dashState{}
)

func stateFor(id StateID) state {
	switch id {
	case Grounded:
		return stateGrounded
	case WallContact:
		return stateWall
	case Dashing:
		return stateDash
	}
	return stateAirborne
}

type groundedState struct{}

type airborneState struct{}

type wallState struct{}

type dashState struct{}

func (groundedState) ID() StateID { return Grounded }
func (groundedState) Enter(s *step) {
	s.b.ResetJumps()
	s.b.AirDashesLeft = s.b.MaxAirDashes
	s.b.Coyote = 0
}
func (groundedState) Exit(s *step) {}
func (groundedState) HandleInput(s *step) {
	if s.tryDash() {
		return
	}
	if s.b.Buffer > 0 && s.b.JumpsLeft > 0 {
		s.jump()
	}
}
func (groundedState) Update(s *step) {
	s.run(s.p.GroundAccel)
	s.fall(s.p.MaxFall)
}

func (airborneState) ID() StateID   { return Airborne }
func (airborneState) Enter(s *step) {}
func (airborneState) Exit(s *step)  {}
func (airborneState) HandleInput(s *step) {
	if s.tryDash() {
		return
	}
	b := s.b
	switch {
	case b.Coyote > 0 && b.Buffer > 0:
		// walking off took the ground charge; refund it for this jump
		b.JumpsLeft++
		s.jump()
	case s.in.JumpPressed && b.JumpsLeft > 0:
		s.jump()
	}
	s.cutJump()
}
func (airborneState) Update(s *step) {
	if s.b.WallLock <= 0 {
		s.run(s.p.AirAccel)
	}
	s.fall(s.p.MaxFall)
}

func (wallState) ID() StateID   { return WallContact }
func (wallState) Enter(s *step) {}
func (wallState) Exit(s *step)  {}
func (wallState) HandleInput(s *step) {
	if s.tryDash() {
		return
	}
	b := s.b
	if b.Buffer > 0 && b.JumpsLeft > 0 {
		away := 1.0
		if b.WallRight {
			away = -1
		}
		s.jump()
		b.Vel.X = away * s.p.WallJumpPush
		b.Facing = int(away)
		b.WallLock = s.p.WallLock
		b.WallLeft, b.WallRight = false, false
	}
}
func (wallState) Update(s *step) {
	s.run(s.p.AirAccel)
	s.fall(s.p.WallSlide)
}

func (dashState) ID() StateID { return Dashing }
func (dashState) Enter(s *step) {
	b := s.b
	b.DashGrounded = b.Grounded
	if !b.Grounded {
		b.AirDashesLeft--
	}
	b.DashDir = float64(b.Facing)
	if s.in.MoveAxis != 0 {
		b.DashDir = common.Sign(float64(s.in.MoveAxis))
	}
	b.DashTimer = s.p.DashTime
	b.DashCooldown = s.p.DashCooldown
	b.Buffer = 0
}
func (dashState) Exit(s *step) {
	b := s.b
	b.DashTimer = 0
	b.DashGrounded = false
	b.Vel.X = common.Clamp(b.Vel.X, -s.p.RunSpeed, s.p.RunSpeed)
}
func (dashState) HandleInput(s *step) {}
func (dashState) Update(s *step) {
	b := s.b
	b.Vel.X = b.DashDir * s.p.DashSpeed
	b.Vel.Y = 0
	b.DashTimer -= s.dt
}

// tryDash starts a dash when one is off cooldown and a charge remains.
func (s *step) tryDash() bool {
	b := s.b
	if !s.in.DashPressed || b.DashCooldown > 0 {
		return false
	}
	if !b.Grounded && b.AirDashesLeft <= 0 {
		return false
	}
	s.change(stateDash)
	return true
}

func (s *step) jump() {
	b := s.b
	b.Vel.Y = -s.p.JumpSpeed
	b.JumpsLeft--
	b.Buffer = 0
	b.Coyote = 0
	b.Grounded = false
	s.change(stateAirborne)
}

// cutJump truncates upward speed when the jump input is released.
func (s *step) cutJump() {
	if s.in.JumpReleased && s.b.Vel.Y < 0 {
		s.b.Vel.Y *= s.p.JumpCut
	}
}

func (s *step) run(accel float64) {
	target := float64(s.in.MoveAxis)*s.p.RunSpeed + s.in.Steer
	s.b.Vel.X = common.Approach(s.b.Vel.X, target, accel*s.dt)
}

func (s *step) fall(limit float64) {
	s.b.Vel.Y = math.Min(s.b.Vel.Y+s.p.Gravity*s.dt, limit)
}
