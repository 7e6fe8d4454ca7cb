package crowd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestResolveTwoAgents(t *testing.T) {
	cases := []struct {
		name string
		a, b cp.Vector
	}{
		{"horizontal", cp.Vector{X: 100, Y: 100}, cp.Vector{X: 110, Y: 100}},
		{"diagonal", cp.Vector{X: 100, Y: 100}, cp.Vector{X: 106, Y: 108}},
		{"coincident", cp.Vector{X: 50, Y: 50}, cp.Vector{X: 50, Y: 50}},
		{"across_bucket_edge", cp.Vector{X: 60, Y: 10}, cp.Vector{X: 70, Y: 10}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			agents := []Disc{
				{Pos: c.a, Vel: cp.Vector{X: 10}, Radius: 16},
				{Pos: c.b, Vel: cp.Vector{X: -10}, Radius: 16},
			}
			s := NewSeparator(DefaultConfig())
			if n := s.Resolve(agents, 64); n != 1 {
				t.Fatalf("resolved %d pairs, want 1", n)
			}
			if d := agents[0].Pos.Distance(agents[1].Pos); d < 32-1e-9 {
				t.Fatalf("centres %v apart, want >= 32", d)
			}
			if agents[0].Vel.X != 10*0.85 || agents[1].Vel.X != -10*0.85 {
				t.Fatalf("velocities not damped: %v %v", agents[0].Vel, agents[1].Vel)
			}

			before := []cp.Vector{agents[0].Pos, agents[1].Pos}
			if n := s.Resolve(agents, 64); n != 0 {
				t.Fatalf("second pass resolved %d pairs, want 0", n)
			}
			if agents[0].Pos != before[0] || agents[1].Pos != before[1] {
				t.Fatalf("second pass moved agents")
			}
		})
	}
}

func TestResolveSplitsEvenly(t *testing.T) {
	agents := []Disc{
		{Pos: cp.Vector{X: 0, Y: 0}, Radius: 16},
		{Pos: cp.Vector{X: 10, Y: 0}, Radius: 16},
	}
	NewSeparator(DefaultConfig()).Resolve(agents, 64)
	if agents[0].Pos.X != -11 || agents[1].Pos.X != 21 {
		t.Fatalf("positions = %v, %v, want -11 and 21", agents[0].Pos, agents[1].Pos)
	}
}

func TestResolveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var agents []Disc
	for i := 0; i < 40; i++ {
		base := cp.Vector{X: float64(i%8) * 200, Y: float64(i/8) * 200}
		off := cp.Vector{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		agents = append(agents,
			Disc{Pos: base, Radius: 16},
			Disc{Pos: base.Add(off), Radius: 16},
		)
	}
	s := NewSeparator(DefaultConfig())
	s.Resolve(agents, 64)
	for i := range agents {
		for j := i + 1; j < len(agents); j++ {
			overlap := agents[i].Radius + agents[j].Radius - agents[i].Pos.Distance(agents[j].Pos)
			if overlap > 0.01+1e-9 {
				t.Fatalf("agents %d and %d still overlap by %v", i, j, overlap)
			}
		}
	}
}

func TestResolveSmallBucketWidens(t *testing.T) {
	agents := []Disc{
		{Pos: cp.Vector{X: 0, Y: 0}, Radius: 16},
		{Pos: cp.Vector{X: 30, Y: 0}, Radius: 16},
	}
	s := NewSeparator(DefaultConfig())
	if n := s.Resolve(agents, 4); n != 1 {
		t.Fatalf("resolved %d pairs with a tiny bucket, want 1", n)
	}
	if s.BucketSize() != 32 {
		t.Fatalf("bucket size = %v, want widened to 32", s.BucketSize())
	}
}

func TestResolveCrowdConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	agents := make([]Disc, 60)
	for i := range agents {
		agents[i] = Disc{Pos: cp.Vector{X: rng.Float64() * 200, Y: rng.Float64() * 200}, Radius: 16}
	}
	s := NewSeparator(DefaultConfig())
	worst := func() float64 {
		w := 0.0
		for i := range agents {
			for j := i + 1; j < len(agents); j++ {
				w = math.Max(w, 32-agents[i].Pos.Distance(agents[j].Pos))
			}
		}
		return w
	}
	start := worst()
	for pass := 0; pass < 200; pass++ {
		s.Resolve(agents, 64)
	}
	if end := worst(); end >= start || end > 2 {
		t.Fatalf("worst overlap %v -> %v, want it to shrink below 2px", start, end)
	}
}

func TestNeighbors(t *testing.T) {
	agents := []Disc{
		{Pos: cp.Vector{X: 10, Y: 10}, Radius: 16},
		{Pos: cp.Vector{X: 70, Y: 10}, Radius: 16},
		{Pos: cp.Vector{X: 1000, Y: 1000}, Radius: 16},
	}
	s := NewSeparator(DefaultConfig())
	s.Rebuild(agents, 64)
	got := s.Neighbors(nil, 0)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("Neighbors(0) = %v, want [1]", got)
	}
	if got := s.Neighbors(nil, 2); len(got) != 0 {
		t.Fatalf("Neighbors(2) = %v, want none", got)
	}
	if got := s.Neighbors(nil, 9); len(got) != 0 {
		t.Fatalf("Neighbors(out of range) = %v, want none", got)
	}
}
