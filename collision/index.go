package collision

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/level"
)

// Mode selects how solid tiles become rectangles.
type Mode uint8

const (
	// Merged greedily joins contiguous solids, width first then height.
	Merged Mode = iota
	// PerTile keeps one rectangle per solid tile.
	PerTile
)

// Index answers rectangle queries against a static grid. Boxes use
// world pixels with y growing downward, so B is the top edge and T the bottom.
type Index struct {
	cols, rows int
	tile       float64

	solids  []cp.BB
	hazards []cp.BB
	// owner maps a tile to its rectangle in solids or hazards, -1 if none.
	solidOwner  []int32
	hazardOwner []int32
}

func NewIndex(g *level.Grid, tileSize float64, mode Mode) *Index {
	ix := &Index{tile: tileSize}
	if g == nil || tileSize <= 0 {
		return ix
	}
	ix.cols, ix.rows = g.Cols, g.Rows
	n := g.Cols * g.Rows
	ix.solidOwner = make([]int32, n)
	ix.hazardOwner = make([]int32, n)
	for i := range ix.solidOwner {
		ix.solidOwner[i] = -1
		ix.hazardOwner[i] = -1
	}

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			idx := y*g.Cols + x
			switch g.At(x, y) {
			case level.Hazard:
				ix.hazardOwner[idx] = int32(len(ix.hazards))
				ix.hazards = append(ix.hazards, HazardRect(x, y, tileSize))
			case level.Solid:
				if ix.solidOwner[idx] >= 0 {
					continue
				}
				w, h := 1, 1
				if mode == Merged {
					w, h = ix.grow(g, x, y)
				}
				id := int32(len(ix.solids))
				ix.solids = append(ix.solids, TileRect(x, y, w, h, tileSize))
				for yy := y; yy < y+h; yy++ {
					for xx := x; xx < x+w; xx++ {
						ix.solidOwner[yy*g.Cols+xx] = id
					}
				}
			}
		}
	}
	return ix
}

// grow expands a rectangle of unclaimed solids from (x,y), width then height.
func (ix *Index) grow(g *level.Grid, x, y int) (int, int) {
	free := func(cx, cy int) bool {
		return g.IsSolid(cx, cy) && g.InBounds(cx, cy) && ix.solidOwner[cy*g.Cols+cx] < 0
	}
	w := 1
	for x+w < g.Cols && free(x+w, y) {
		w++
	}
	h := 1
heightLoop:
	for y+h < g.Rows {
		for xi := x; xi < x+w; xi++ {
			if !free(xi, y+h) {
				break heightLoop
			}
		}
		h++
	}
	return w, h
}

// TileRect covers the w x h tiles starting at (col,row).
func TileRect(col, row, w, h int, tileSize float64) cp.BB {
	x0 := float64(col) * tileSize
	y0 := float64(row) * tileSize
	return cp.BB{L: x0, B: y0, R: x0 + float64(w)*tileSize, T: y0 + float64(h)*tileSize}
}

// HazardRect is the inset hurt box of a hazard tile.
func HazardRect(col, row int, tileSize float64) cp.BB {
	x0 := float64(col)*tileSize + tileSize/6
	y0 := float64(row)*tileSize + tileSize/3
	return cp.BB{L: x0, B: y0, R: x0 + tileSize*2/3, T: y0 + tileSize*2/3}
}

// Overlaps is a strict intersection test: shared edges do not count.
func Overlaps(a, b cp.BB) bool {
	return a.L < b.R && a.R > b.L && a.B < b.T && a.T > b.B
}

func (ix *Index) TileSize() float64 {
	return ix.tile
}

// Solids returns every solid rectangle.
func (ix *Index) Solids() []cp.BB {
	return ix.solids
}

func (ix *Index) Hazards() []cp.BB {
	return ix.hazards
}

// SolidsNear returns the solid rectangles touching a one-tile padded window around box.
func (ix *Index) SolidsNear(box cp.BB) []cp.BB {
	return ix.AppendSolidsNear(nil, box)
}

func (ix *Index) AppendSolidsNear(dst []cp.BB, box cp.BB) []cp.BB {
	return ix.appendNear(dst, box, ix.solidOwner, ix.solids)
}

func (ix *Index) HazardsNear(box cp.BB) []cp.BB {
	return ix.appendNear(nil, box, ix.hazardOwner, ix.hazards)
}

// TouchesHazard reports a strict overlap between box and any hazard.
func (ix *Index) TouchesHazard(box cp.BB) bool {
	for _, h := range ix.HazardsNear(box) {
		if Overlaps(box, h) {
			return true
		}
	}
	return false
}

func (ix *Index) appendNear(dst []cp.BB, box cp.BB, owner []int32, rects []cp.BB) []cp.BB {
	if ix.cols == 0 || ix.rows == 0 {
		return dst
	}
	c0, r0, c1, r1, ok := ix.window(box)
	if !ok {
		return dst
	}
	var seen []int32
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			id := owner[r*ix.cols+c]
			if id < 0 || contains(seen, id) {
				continue
			}
			seen = append(seen, id)
			dst = append(dst, rects[id])
		}
	}
	return dst
}

// window is the padded tile range under box, clamped to the grid.
func (ix *Index) window(box cp.BB) (c0, r0, c1, r1 int, ok bool) {
	if math.IsNaN(box.L) || math.IsNaN(box.B) || math.IsNaN(box.R) || math.IsNaN(box.T) {
		return 0, 0, 0, 0, false
	}
	c0 = int(math.Floor(box.L/ix.tile)) - 1
	c1 = int(math.Floor(box.R/ix.tile)) + 1
	r0 = int(math.Floor(box.B/ix.tile)) - 1
	r1 = int(math.Floor(box.T/ix.tile)) + 1
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, ix.cols-1), min(r1, ix.rows-1)
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}

func contains(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
