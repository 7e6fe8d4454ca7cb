package crowd

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Disc is the circular footprint of one agent.
type Disc struct {
	Pos    cp.Vector
	Vel    cp.Vector
	Radius float64
}

type Config struct {
	// Damping scales both velocities of a pair that had to be pushed apart.
	Damping float64 `yaml:"damping"`
	// Epsilon is the overlap left alone, in pixels.
	Epsilon float64 `yaml:"epsilon"`
}

func DefaultConfig() Config {
	return Config{Damping: 0.85, Epsilon: 0.01}
}

type cellKey struct {
	X, Y int
}

// Separator buckets agents into square cells and resolves overlaps
// between agents in the same or adjacent cells.
type Separator struct {
	cfg Config

	bucketSize float64
	buckets    map[cellKey][]int
	cellOf     []cellKey
}

func NewSeparator(cfg Config) *Separator {
	if cfg.Damping <= 0 || cfg.Damping > 1 {
		cfg.Damping = 1
	}
	if cfg.Epsilon < 0 {
		cfg.Epsilon = 0
	}
	return &Separator{cfg: cfg, buckets: make(map[cellKey][]int)}
}

// BucketSize is the cell size used by the last rebuild.
func (s *Separator) BucketSize() float64 {
	return s.bucketSize
}

// Rebuild re-buckets every agent. The cell size is raised to the widest
// diameter so any overlapping pair lands in adjacent cells.
func (s *Separator) Rebuild(agents []Disc, bucketSize float64) {
	for _, a := range agents {
		bucketSize = math.Max(bucketSize, 2*a.Radius)
	}
	if bucketSize <= 0 {
		bucketSize = 1
	}
	s.bucketSize = bucketSize

	for k, list := range s.buckets {
		if len(list) == 0 {
			delete(s.buckets, k)
			continue
		}
		s.buckets[k] = list[:0]
	}
	if cap(s.cellOf) < len(agents) {
		s.cellOf = make([]cellKey, len(agents))
	}
	s.cellOf = s.cellOf[:len(agents)]

	for i, a := range agents {
		k := s.keyFor(a.Pos)
		s.cellOf[i] = k
		s.buckets[k] = append(s.buckets[k], i)
	}
}

func (s *Separator) keyFor(p cp.Vector) cellKey {
	return cellKey{X: int(math.Floor(p.X / s.bucketSize)), Y: int(math.Floor(p.Y / s.bucketSize))}
}

// Resolve pushes overlapping pairs apart along their centre line, half
// each, and returns how many pairs were moved.
func (s *Separator) Resolve(agents []Disc, bucketSize float64) int {
	s.Rebuild(agents, bucketSize)

	resolved := 0
	for i := range agents {
		home := s.cellOf[i]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				for _, j := range s.buckets[cellKey{X: home.X + dx, Y: home.Y + dy}] {
					if j <= i {
						continue
					}
					if s.separate(&agents[i], &agents[j]) {
						resolved++
					}
				}
			}
		}
	}
	return resolved
}

func (s *Separator) separate(a, b *Disc) bool {
	delta := b.Pos.Sub(a.Pos)
	dist := delta.Length()
	minDist := a.Radius + b.Radius
	overlap := minDist - dist
	if overlap <= s.cfg.Epsilon {
		return false
	}

	var n cp.Vector
	if dist < 1e-9 {
		// coincident centres: push along x
		n = cp.Vector{X: 1}
	} else {
		n = delta.Mult(1 / dist)
	}

	push := n.Mult(overlap * 0.5)
	a.Pos = a.Pos.Sub(push)
	b.Pos = b.Pos.Add(push)
	a.Vel = a.Vel.Mult(s.cfg.Damping)
	b.Vel = b.Vel.Mult(s.cfg.Damping)
	return true
}

// Neighbors appends the agents bucketed in or next to agent i's cell at the
// last rebuild, excluding i itself.
func (s *Separator) Neighbors(dst []int, i int) []int {
	if i < 0 || i >= len(s.cellOf) {
		return dst
	}
	home := s.cellOf[i]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, j := range s.buckets[cellKey{X: home.X + dx, Y: home.Y + dy}] {
				if j != i {
					dst = append(dst, j)
				}
			}
		}
	}
	return dst
}
