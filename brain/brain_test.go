package brain

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/nav"
)

const dt = 1.0 / 60.0

func groundedBody(pos cp.Vector) kinematic.Body {
	b := kinematic.NewBody(pos, 16, 16, DefaultConfig().Params(kinematic.DefaultParams()))
	b.State = kinematic.Grounded
	b.Grounded = true
	return b
}

func view(b kinematic.Body, target cp.Vector) View {
	return View{Body: b, Radius: 16, Target: target, TileSize: 48, Dt: dt}
}

func TestChaseDirect(t *testing.T) {
	tests := []struct {
		name    string
		targetX float64
		want    int
	}{
		{"right", 400, 1},
		{"left", 10, -1},
		{"dead_zone", 203, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChase(DefaultConfig())
			b := groundedBody(cp.Vector{X: 200, Y: 300})
			got := c.Think(view(b, cp.Vector{X: tc.targetX, Y: 300}))
			if got.MoveAxis != tc.want {
				t.Fatalf("move = %d, want %d", got.MoveAxis, tc.want)
			}
			if got.JumpPressed {
				t.Fatalf("jumped on open level ground")
			}
		})
	}
}

func TestChaseFollowsFlow(t *testing.T) {
	g, err := level.Parse(`
#######
#.....#
#.###.#
#.#.#.#
#...#.#
#######
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ff := nav.NewFlowField(g, 48)
	// the target is right of the agent but the only way round starts left
	target := cp.Vector{X: 5*48 + 24, Y: 4*48 + 24}
	ff.Rebuild(target)

	c := NewChase(DefaultConfig())
	b := groundedBody(cp.Vector{X: 3*48 + 24, Y: 4*48 + 24})
	v := view(b, target)
	if got := c.Think(v); got.MoveAxis != 1 {
		t.Fatalf("direct chase move = %d, want 1", got.MoveAxis)
	}
	v.Flow = ff
	if got := c.Think(v); got.MoveAxis != -1 {
		t.Fatalf("flow move = %d, want -1", got.MoveAxis)
	}
}

func TestChaseJumpTriggers(t *testing.T) {
	pos := cp.Vector{X: 200, Y: 300}
	tests := []struct {
		name   string
		mutate func(v *View)
		want   bool
	}{
		{"wall_ahead", func(v *View) { v.Body.WallRight = true }, true},
		{"wall_behind", func(v *View) { v.Body.WallLeft = true }, false},
		{"agent_ahead", func(v *View) {
			v.Neighbors = []Neighbor{{Pos: cp.Vector{X: pos.X + 30, Y: pos.Y}, Radius: 16}}
		}, true},
		{"target_above_close", func(v *View) { v.Target = cp.Vector{X: pos.X + 48, Y: pos.Y - 100} }, true},
		{"target_above_far", func(v *View) { v.Target = cp.Vector{X: pos.X + 400, Y: pos.Y - 100} }, false},
		{"airborne", func(v *View) {
			v.Body.WallRight = true
			v.Body.Grounded = false
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChase(DefaultConfig())
			v := view(groundedBody(pos), cp.Vector{X: 500, Y: pos.Y})
			tc.mutate(&v)
			if got := c.Think(v).JumpPressed; got != tc.want {
				t.Fatalf("jump = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChaseJumpCooldown(t *testing.T) {
	cfg := DefaultConfig()
	c := NewChase(cfg)
	v := view(groundedBody(cp.Vector{X: 200, Y: 300}), cp.Vector{X: 500, Y: 300})
	v.Body.WallRight = true

	if !c.Think(v).JumpPressed {
		t.Fatalf("first jump refused")
	}
	if c.Think(v).JumpPressed {
		t.Fatalf("jumped again inside the cooldown")
	}
	frames := int(cfg.JumpCooldown/dt) + 1
	jumped := false
	for i := 0; i < frames && !jumped; i++ {
		jumped = c.Think(v).JumpPressed
	}
	if !jumped {
		t.Fatalf("cooldown never expired")
	}
}

func TestSeparationSteer(t *testing.T) {
	cfg := DefaultConfig()
	pos := cp.Vector{X: 200, Y: 300}
	v := view(groundedBody(pos), pos)

	v.Neighbors = []Neighbor{{Pos: cp.Vector{X: pos.X - 20, Y: pos.Y}, Radius: 16}}
	got := NewChase(cfg).Think(v)
	want := (1 - 20.0/48.0) * cfg.SepStrength * dt
	if got.MoveAxis != 0 || got.Steer < want-1e-9 || got.Steer > want+1e-9 {
		t.Fatalf("steer = %v move = %d, want %v and 0", got.Steer, got.MoveAxis, want)
	}

	v.Neighbors = []Neighbor{{Pos: cp.Vector{X: pos.X - 60, Y: pos.Y}, Radius: 16}}
	if got := NewChase(cfg).Think(v); got.Steer != 0 {
		t.Fatalf("neighbour out of range still pushed: %v", got.Steer)
	}

	// a crowd on one side cannot push the run target past the speed limit
	v.Target = cp.Vector{X: 600, Y: pos.Y}
	v.Dt = 0.5
	v.Neighbors = nil
	for i := 0; i < 20; i++ {
		v.Neighbors = append(v.Neighbors, Neighbor{Pos: cp.Vector{X: pos.X - 5, Y: pos.Y}, Radius: 16})
	}
	got = NewChase(cfg).Think(v)
	total := float64(got.MoveAxis)*cfg.Speed + got.Steer
	if limit := cfg.Speed * cfg.MaxSpeedScale; total > limit+1e-9 {
		t.Fatalf("run target %v exceeds %v", total, limit)
	}
}

const hopperSrc = `
move := chase
jump := false
if can_jump && (blocked_wall || dx < 100 && dx > -100) {
	jump = true
}
`

func TestScriptThink(t *testing.T) {
	s, err := NewScript("hopper", []byte(hopperSrc), DefaultConfig(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	pos := cp.Vector{X: 200, Y: 300}

	far := s.Think(view(groundedBody(pos), cp.Vector{X: 500, Y: 300}))
	if far.MoveAxis != 1 || far.JumpPressed {
		t.Fatalf("far target: %+v", far)
	}

	near := s.Think(view(groundedBody(pos), cp.Vector{X: 260, Y: 300}))
	if !near.JumpPressed {
		t.Fatalf("near target should hop: %+v", near)
	}
	again := s.Think(view(groundedBody(pos), cp.Vector{X: 260, Y: 300}))
	if again.JumpPressed {
		t.Fatalf("script bypassed the jump cooldown")
	}

	other := s.Clone()
	if !other.Think(view(groundedBody(pos), cp.Vector{X: 260, Y: 300})).JumpPressed {
		t.Fatalf("clone shares the original's cooldown")
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		missing bool
	}{
		{"no_outputs", `x := dx`, true},
		{"no_jump", `move := 1`, true},
		{"syntax", `move := (`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewScript(tc.name, []byte(tc.src), DefaultConfig(), nil)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, ErrScriptMissingOutput); got != tc.missing {
				t.Fatalf("missing output = %v, want %v (%v)", got, tc.missing, err)
			}
		})
	}
}

func TestScriptRuntimeFailureLogsOnce(t *testing.T) {
	src := `
move := chase
jump := false
if grounded {
	f := 1
	f()
}
`
	var buf bytes.Buffer
	s, err := NewScript("broken", []byte(src), DefaultConfig(), log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	v := view(groundedBody(cp.Vector{X: 200, Y: 300}), cp.Vector{X: 500, Y: 300})
	for i := 0; i < 3; i++ {
		got := s.Think(v)
		if got.MoveAxis != 0 || got.JumpPressed {
			t.Fatalf("failed script still moved: %+v", got)
		}
	}
	if n := strings.Count(buf.String(), "brain: script broken"); n != 1 {
		t.Fatalf("logged %d times, want 1:\n%s", n, buf.String())
	}
}

func TestParamsForAgents(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Params(kinematic.DefaultParams())
	if p.RunSpeed != cfg.Speed || p.JumpSpeed != cfg.JumpSpeed || p.MaxJumps != 1 || p.AirDashes != 0 {
		t.Fatalf("params = %+v", p)
	}
}

func TestConfigOrDefault(t *testing.T) {
	d := DefaultConfig()
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"zero", Config{}, d},
		{"partial", Config{Speed: 200, JumpSpeed: 700, JumpCooldown: 0.45}, Config{
			Speed: 200, JumpSpeed: 700, JumpCooldown: 0.45,
			ClimbTiles: d.ClimbTiles, SepRange: d.SepRange, SepStrength: d.SepStrength,
			MaxSpeedScale: d.MaxSpeedScale, DeadZone: d.DeadZone,
		}},
		{"negative_strength", Config{SepStrength: -1}, d},
		{"set", Config{Speed: 1, JumpSpeed: 2, JumpCooldown: 3, ClimbTiles: 4, SepRange: 5, SepStrength: 6, MaxSpeedScale: 7, DeadZone: 8},
			Config{Speed: 1, JumpSpeed: 2, JumpCooldown: 3, ClimbTiles: 4, SepRange: 5, SepStrength: 6, MaxSpeedScale: 7, DeadZone: 8}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.OrDefault(); got != tc.want {
				t.Fatalf("OrDefault = %+v, want %+v", got, tc.want)
			}
		})
	}
}
