package kinematic

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/collision"
)

// Solids is the collision query a body moves against.
type Solids interface {
	SolidsNear(box cp.BB) []cp.BB
}

type step struct {
	b  *Body
	in Intents
	dt float64
	p  Params
}

func (s *step) change(next state) {
	cur := stateFor(s.b.State)
	if cur == next {
		return
	}
	cur.Exit(s)
	s.b.State = next.ID()
	next.Enter(s)
}

// Advance moves b by one step of dt seconds and returns the result. It
// reads nothing but its arguments, so equal inputs give equal outputs.
func Advance(b Body, in Intents, dt float64, p Params, solids Solids) Body {
	if dt <= 0 {
		return b
	}
	b.MaxJumps, b.MaxAirDashes = p.MaxJumps, p.AirDashes
	s := &step{b: &b, in: in, dt: dt, p: p}

	b.Coyote = math.Max(0, b.Coyote-dt)
	b.WallLock = math.Max(0, b.WallLock-dt)
	b.DashCooldown = math.Max(0, b.DashCooldown-dt)
	if in.JumpPressed {
		b.Buffer = p.JumpBuffer
	} else {
		b.Buffer = math.Max(0, b.Buffer-dt)
	}
	if in.MoveAxis > 0 {
		b.Facing = 1
	} else if in.MoveAxis < 0 {
		b.Facing = -1
	}

	stateFor(b.State).HandleInput(s)
	stateFor(b.State).Update(s)

	var rects []cp.BB
	if solids != nil {
		rects = solids.SolidsNear(sweep(b.Box(), b.Vel.X*dt, b.Vel.Y*dt))
	}
	wasGrounded := b.Grounded
	moveX(&b, rects, b.Vel.X*dt)
	moveY(&b, rects, b.Vel.Y*dt)
	b.WallLeft = touching(b.Box(), rects, -1)
	b.WallRight = touching(b.Box(), rects, 1)

	s.settle(wasGrounded)
	return b
}

// settle applies the contact-driven transitions after collision.
func (s *step) settle(wasGrounded bool) {
	b := s.b
	switch {
	case b.State == Dashing:
		if b.DashTimer <= 0 {
			fromGround := b.DashGrounded
			if b.Grounded {
				s.change(stateGrounded)
				return
			}
			s.change(stateAirborne)
			if fromGround {
				s.leftGround()
			}
		}
	case b.Grounded:
		s.change(stateGrounded)
	case b.State == Grounded:
		s.change(stateAirborne)
		if wasGrounded {
			s.leftGround()
		}
	case b.TouchingWall() && b.Vel.Y >= 0 && b.WallLock <= 0:
		s.change(stateWall)
	case b.State == WallContact:
		s.change(stateAirborne)
	}
}

// leftGround starts coyote time for a body that left the ground without jumping.
func (s *step) leftGround() {
	s.b.Coyote = s.p.CoyoteTime
	s.b.JumpsLeft = max(0, s.b.JumpsLeft-1)
}

func sweep(box cp.BB, dx, dy float64) cp.BB {
	return cp.BB{
		L: box.L - math.Abs(dx) - 1,
		B: box.B - math.Abs(dy) - 1,
		R: box.R + math.Abs(dx) + 1,
		T: box.T + math.Abs(dy) + 1,
	}
}

// moveX integrates X and snaps out of any solid entered, zeroing X velocity.
func moveX(b *Body, rects []cp.BB, dx float64) {
	if dx == 0 {
		return
	}
	b.Pos.X += dx
	for _, r := range rects {
		if !collision.Overlaps(b.Box(), r) {
			continue
		}
		if dx > 0 {
			b.Pos.X = r.L - b.HalfW
		} else {
			b.Pos.X = r.R + b.HalfW
		}
		b.Vel.X = 0
	}
}

// moveY integrates Y the same way; only a downward hit grounds the body.
func moveY(b *Body, rects []cp.BB, dy float64) {
	if dy == 0 {
		b.Grounded = below(b.Box(), rects)
		return
	}
	b.Grounded = false
	b.Pos.Y += dy
	for _, r := range rects {
		if !collision.Overlaps(b.Box(), r) {
			continue
		}
		if dy > 0 {
			b.Pos.Y = r.B - b.HalfH
			b.Grounded = true
		} else {
			b.Pos.Y = r.T + b.HalfH
		}
		b.Vel.Y = 0
	}
}

// below reports a solid directly under box, for steps with no vertical motion.
func below(box cp.BB, rects []cp.BB) bool {
	probe := cp.BB{L: box.L + 1, B: box.B + 1, R: box.R - 1, T: box.T + 1}
	for _, r := range rects {
		if collision.Overlaps(probe, r) {
			return true
		}
	}
	return false
}

// touching probes one pixel to the side given by dir.
func touching(box cp.BB, rects []cp.BB, dir float64) bool {
	probe := cp.BB{L: box.L + dir, B: box.B + 1, R: box.R + dir, T: box.T - 1}
	for _, r := range rects {
		if collision.Overlaps(probe, r) {
			return true
		}
	}
	return false
}
