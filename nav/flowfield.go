package nav

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/level"
)

// Unreached marks blocked cells and cells the flood fill never touched.
const Unreached = -1

// DefaultSnapRadius bounds the search for an open cell when the target sits in a wall.
const DefaultSnapRadius = 8

// Neighbour offsets: 4-connected first, diagonals last as tie-breakers.
var descentOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FlowField is a shared distance field rooted at a moving target.
// Agents read it; only Rebuild writes it.
type FlowField struct {
	Cols, Rows int
	TileSize   float64
	SnapRadius int

	// Distances holds steps to the target per cell, Unreached otherwise.
	Distances []int

	// Cache state
	TargetCol, TargetRow int
	valid                bool

	blocked []bool
	// Reusable BFS queue of flat indices
	queue []int
}

// NewFlowField snapshots walkability from g; tiles never change at runtime.
func NewFlowField(g *level.Grid, tileSize float64) *FlowField {
	f := &FlowField{TileSize: tileSize, SnapRadius: DefaultSnapRadius, TargetCol: -1, TargetRow: -1}
	if g == nil {
		return f
	}
	f.Cols, f.Rows = g.Cols, g.Rows
	size := g.Cols * g.Rows
	f.Distances = make([]int, size)
	f.blocked = make([]bool, size)
	f.queue = make([]int, 0, size/4)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			f.blocked[r*g.Cols+c] = !g.Walkable(c, r)
		}
	}
	for i := range f.Distances {
		f.Distances[i] = Unreached
	}
	return f
}

// Valid is false until a rebuild found an open target cell.
func (f *FlowField) Valid() bool {
	return f.valid
}

func (f *FlowField) isBlocked(col, row int) bool {
	if col < 0 || row < 0 || col >= f.Cols || row >= f.Rows {
		return true
	}
	return f.blocked[row*f.Cols+col]
}

// CellAt converts a world position to a cell. The cell may be out of bounds.
func (f *FlowField) CellAt(pos cp.Vector) (int, int) {
	if f.TileSize <= 0 {
		return -1, -1
	}
	return int(math.Floor(pos.X / f.TileSize)), int(math.Floor(pos.Y / f.TileSize))
}

// Rebuild recomputes every distance by 4-connected flood fill from the
// target's cell. A target outside the grid is clamped to it, and a target
// inside a wall snaps to the nearest open cell within SnapRadius.
func (f *FlowField) Rebuild(target cp.Vector) {
	f.valid = false
	if f.Cols == 0 || f.Rows == 0 {
		return
	}
	for i := range f.Distances {
		f.Distances[i] = Unreached
	}

	tc, tr := f.CellAt(target)
	tc = min(max(tc, 0), f.Cols-1)
	tr = min(max(tr, 0), f.Rows-1)
	if f.isBlocked(tc, tr) {
		var ok bool
		tc, tr, ok = f.nearestOpen(tc, tr)
		if !ok {
			return
		}
	}
	f.TargetCol, f.TargetRow = tc, tr

	start := tr*f.Cols + tc
	f.Distances[start] = 0
	f.queue = append(f.queue[:0], start)
	for head := 0; head < len(f.queue); head++ {
		idx := f.queue[head]
		x, y := idx%f.Cols, idx/f.Cols
		d := f.Distances[idx]
		for _, o := range descentOffsets[:4] {
			nx, ny := x+o[0], y+o[1]
			if f.isBlocked(nx, ny) {
				continue
			}
			nidx := ny*f.Cols + nx
			if f.Distances[nidx] != Unreached {
				continue
			}
			f.Distances[nidx] = d + 1
			f.queue = append(f.queue, nidx)
		}
	}
	f.valid = true
}

// nearestOpen scans square rings of growing radius around (col,row).
func (f *FlowField) nearestOpen(col, row int) (int, int, bool) {
	for r := 1; r <= f.SnapRadius; r++ {
		for oy := -r; oy <= r; oy++ {
			for ox := -r; ox <= r; ox++ {
				if !f.isBlocked(col+ox, row+oy) {
					return col + ox, row + oy, true
				}
			}
		}
	}
	return 0, 0, false
}

// DistanceAt returns the step count to the target, Unreached if invalid or blocked.
func (f *FlowField) DistanceAt(col, row int) int {
	if !f.valid || col < 0 || row < 0 || col >= f.Cols || row >= f.Rows {
		return Unreached
	}
	return f.Distances[row*f.Cols+col]
}

// DirectionAt returns a unit vector toward the neighbour with the strictly
// smallest distance, or the zero vector when the cell is unreached or no
// neighbour is closer.
func (f *FlowField) DirectionAt(pos cp.Vector) cp.Vector {
	col, row := f.CellAt(pos)
	cur := f.DistanceAt(col, row)
	if cur == Unreached {
		return cp.Vector{}
	}

	best := cur
	var dir cp.Vector
	for _, o := range descentOffsets {
		nd := f.DistanceAt(col+o[0], row+o[1])
		if nd != Unreached && nd < best {
			best = nd
			dir = cp.Vector{X: float64(o[0]), Y: float64(o[1])}
		}
	}
	if dir.X == 0 && dir.Y == 0 {
		return cp.Vector{}
	}
	return dir.Normalize()
}
