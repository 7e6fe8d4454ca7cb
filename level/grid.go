package level

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the single-character kind of one tile.
type Kind byte

const (
	Empty  Kind = '.'
	Solid  Kind = '#'
	Hazard Kind = '^'
	Spawn  Kind = 'P'
)

var (
	ErrEmpty         = errors.New("level: empty grid")
	ErrRagged        = errors.New("level: rows have different lengths")
	ErrNoSpawn       = errors.New("level: no spawn cell")
	ErrMultipleSpawn = errors.New("level: more than one spawn cell")
	ErrOpenBorder    = errors.New("level: border cell is not solid")
)

// Cell addresses one tile by column and row.
type Cell struct {
	Col int
	Row int
}

// Grid is a rectangular tile map stored row-major. Row 0 is the top.
type Grid struct {
	Cols  int
	Rows  int
	tiles []Kind
}

// New returns a cols x rows grid filled with Empty.
func New(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{Cols: cols, Rows: rows, tiles: make([]Kind, cols*rows)}
	for i := range g.tiles {
		g.tiles[i] = Empty
	}
	return g
}

func (g *Grid) InBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.Cols && row < g.Rows
}

// At returns the kind at (col,row). Outside the grid reads as Solid.
func (g *Grid) At(col, row int) Kind {
	if !g.InBounds(col, row) {
		return Solid
	}
	return g.tiles[row*g.Cols+col]
}

func (g *Grid) Set(col, row int, k Kind) {
	if !g.InBounds(col, row) {
		return
	}
	g.tiles[row*g.Cols+col] = k
}

func (g *Grid) IsSolid(col, row int) bool {
	return g.At(col, row) == Solid
}

func (g *Grid) IsHazard(col, row int) bool {
	return g.At(col, row) == Hazard
}

// Walkable reports whether an agent body may occupy the cell.
func (g *Grid) Walkable(col, row int) bool {
	return g.InBounds(col, row) && !g.IsSolid(col, row)
}

// Standable reports an empty or spawn cell resting on a solid cell.
func (g *Grid) Standable(col, row int) bool {
	if !g.InBounds(col, row) {
		return false
	}
	k := g.At(col, row)
	if k != Empty && k != Spawn {
		return false
	}
	return g.IsSolid(col, row+1) && g.InBounds(col, row+1)
}

// Spawn returns the first spawn cell in row-major order.
func (g *Grid) Spawn() (Cell, bool) {
	if g == nil {
		return Cell{}, false
	}
	for i, k := range g.tiles {
		if k == Spawn {
			return Cell{Col: i % g.Cols, Row: i / g.Cols}, true
		}
	}
	return Cell{}, false
}

// Fill sets every cell of the inclusive rectangle.
func (g *Grid) Fill(c0, r0, c1, r1 int, k Kind) {
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.Set(c, r, k)
		}
	}
}

// Border makes the outer ring solid.
func (g *Grid) Border() {
	for c := 0; c < g.Cols; c++ {
		g.Set(c, 0, Solid)
		g.Set(c, g.Rows-1, Solid)
	}
	for r := 0; r < g.Rows; r++ {
		g.Set(0, r, Solid)
		g.Set(g.Cols-1, r, Solid)
	}
}

func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Cols: g.Cols, Rows: g.Rows, tiles: make([]Kind, len(g.tiles))}
	copy(out.tiles, g.tiles)
	return out
}

// Check returns an error unless the grid has a solid border and exactly one spawn.
func (g *Grid) Check() error {
	if g == nil || g.Cols == 0 || g.Rows == 0 {
		return ErrEmpty
	}
	for c := 0; c < g.Cols; c++ {
		if !g.IsSolid(c, 0) || !g.IsSolid(c, g.Rows-1) {
			return fmt.Errorf("%w: column %d", ErrOpenBorder, c)
		}
	}
	for r := 0; r < g.Rows; r++ {
		if !g.IsSolid(0, r) || !g.IsSolid(g.Cols-1, r) {
			return fmt.Errorf("%w: row %d", ErrOpenBorder, r)
		}
	}
	spawns := 0
	for _, k := range g.tiles {
		if k == Spawn {
			spawns++
		}
	}
	switch {
	case spawns == 0:
		return ErrNoSpawn
	case spawns > 1:
		return fmt.Errorf("%w: found %d", ErrMultipleSpawn, spawns)
	}
	return nil
}

// String renders the grid as newline-separated rows.
func (g *Grid) String() string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	b.Grow((g.Cols + 1) * g.Rows)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			b.WriteByte(byte(g.At(c, r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse reads rows of tile characters. 'C' and 'M' are read as Solid
// and unknown characters as Empty.
func Parse(src string) (*Grid, error) {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	rows := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if l == "" {
			continue
		}
		rows = append(rows, l)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	g := New(len(rows[0]), len(rows))
	for r, line := range rows {
		if len(line) != g.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRagged, r, len(line), g.Cols)
		}
		for c := 0; c < len(line); c++ {
			g.Set(c, r, kindOf(line[c]))
		}
	}
	return g, nil
}

func kindOf(ch byte) Kind {
	switch ch {
	case '#', 'C', 'M':
		return Solid
	case '^':
		return Hazard
	case 'P':
		return Spawn
	}
	return Empty
}
