package reach

import (
	"math"

	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/level"
	"github.com/zyedidia/generic/mapset"
)

// Tolerance widens or narrows the envelope when judging an edge.
// The defaults are tuned by hand rather than derived.
type Tolerance struct {
	RiseMin   float64 `yaml:"rise_min"`
	RiseMax   float64 `yaml:"rise_max"`
	WalkTiles int     `yaml:"walk_tiles"`
	DropRows  int     `yaml:"drop_rows"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{RiseMin: 0.70, RiseMax: 1.20, WalkTiles: 2}
}

// Surfaces indexes standable cells by row. Columns in a row are ascending.
type Surfaces struct {
	rows  [][]int
	count int
}

func FindSurfaces(g *level.Grid) Surfaces {
	s := Surfaces{}
	if g == nil {
		return s
	}
	s.rows = make([][]int, g.Rows)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.Standable(c, r) {
				s.rows[r] = append(s.rows[r], c)
				s.count++
			}
		}
	}
	return s
}

func (s Surfaces) Len() int {
	return s.count
}

// Row returns the standable columns of row r.
func (s Surfaces) Row(r int) []int {
	if r < 0 || r >= len(s.rows) {
		return nil
	}
	return s.rows[r]
}

// Nearest returns the surface cell closest to target by Manhattan distance.
func (s Surfaces) Nearest(target level.Cell) (level.Cell, bool) {
	best, bestD := level.Cell{}, math.MaxInt
	for r, cols := range s.rows {
		for _, c := range cols {
			d := common.AbsInt(c-target.Col) + common.AbsInt(r-target.Row)
			if d < bestD {
				best, bestD = level.Cell{Col: c, Row: r}, d
			}
		}
	}
	return best, bestD != math.MaxInt
}

// Validator answers whether a goal band can be reached from spawn.
type Validator struct {
	Envelope  envelope.Envelope
	TileSize  float64
	Tolerance Tolerance
}

func NewValidator(env envelope.Envelope, tol Tolerance) Validator {
	return Validator{Envelope: env, TileSize: common.TileSize, Tolerance: tol}
}

// Validate runs the default validator.
func Validate(g *level.Grid, spawn level.Cell, goalRow int, env envelope.Envelope) bool {
	return NewValidator(env, DefaultTolerance()).Reachable(g, spawn, goalRow)
}

// Reachable performs a breadth-first search over standable cells and
// stops at the first visited cell whose row is at or above goalRow.
func (v Validator) Reachable(g *level.Grid, spawn level.Cell, goalRow int) bool {
	_, ok := v.Search(g, spawn, goalRow)
	return ok
}

// Search is Reachable that also returns the cell chain that reached the goal.
func (v Validator) Search(g *level.Grid, spawn level.Cell, goalRow int) ([]level.Cell, bool) {
	surfaces := FindSurfaces(g)
	start, ok := surfaces.Nearest(spawn)
	if !ok {
		return nil, false
	}

	up, down := v.window()
	parent := map[level.Cell]level.Cell{}
	visited := mapset.New[level.Cell]()
	visited.Put(start)
	queue := []level.Cell{start}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.Row <= goalRow {
			return chain(parent, start, cur), true
		}
		lo := max(0, cur.Row-up)
		hi := min(g.Rows-1, cur.Row+down)
		for r := lo; r <= hi; r++ {
			for _, c := range surfaces.Row(r) {
				next := level.Cell{Col: c, Row: r}
				if visited.Has(next) || !v.edge(cur, next) {
					continue
				}
				visited.Put(next)
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil, false
}

func (v Validator) window() (up, down int) {
	up = int(math.Ceil(v.Tolerance.RiseMax * float64(v.Envelope.MaxGapTiles)))
	down = v.Tolerance.DropRows
	if down <= 0 {
		down = 2*v.Envelope.MaxGapTiles + 2
	}
	return up, down
}

// edge reports whether b can be reached from a in one move.
func (v Validator) edge(a, b level.Cell) bool {
	dx := float64(common.AbsInt(b.Col - a.Col))
	dy := a.Row - b.Row
	if dy <= 0 {
		return dx <= float64(v.Tolerance.WalkTiles)
	}

	rise := float64(dy)
	lo := v.Tolerance.RiseMin * float64(v.Envelope.MinGapTiles)
	hi := v.Tolerance.RiseMax * float64(v.Envelope.MaxGapTiles)
	if rise < lo || rise > hi {
		return false
	}
	if rise <= v.Envelope.SingleJumpTiles(v.TileSize) {
		return dx <= v.Envelope.MaxHorizontalSingleJumpTiles
	}
	return dx <= v.Envelope.MaxHorizontalDoubleJumpTiles
}

func chain(parent map[level.Cell]level.Cell, start, end level.Cell) []level.Cell {
	out := []level.Cell{end}
	for cur := end; cur != start; {
		cur = parent[cur]
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
