package collision

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/level"
)

const arena = `
##########
#........#
#..####..#
#..####..#
#.^....^.#
#P.......#
##########
`

func parseArena(t *testing.T) *level.Grid {
	t.Helper()
	g, err := level.Parse(arena)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestIndexCoversGrid(t *testing.T) {
	g := parseArena(t)
	for _, mode := range []struct {
		name string
		mode Mode
	}{{"merged", Merged}, {"per_tile", PerTile}} {
		t.Run(mode.name, func(t *testing.T) {
			ix := NewIndex(g, 48, mode.mode)
			for r := 0; r < g.Rows; r++ {
				for c := 0; c < g.Cols; c++ {
					center := cp.Vector{X: (float64(c) + 0.5) * 48, Y: (float64(r) + 0.5) * 48}
					covered := 0
					for _, bb := range ix.Solids() {
						if center.X > bb.L && center.X < bb.R && center.Y > bb.B && center.Y < bb.T {
							covered++
						}
					}
					want := 0
					if g.IsSolid(c, r) {
						want = 1
					}
					if covered != want {
						t.Fatalf("cell %d,%d covered by %d solids, want %d", c, r, covered, want)
					}
				}
			}
			solids := ix.Solids()
			for i := range solids {
				for j := i + 1; j < len(solids); j++ {
					if Overlaps(solids[i], solids[j]) {
						t.Fatalf("solids %v and %v overlap", solids[i], solids[j])
					}
				}
				for _, h := range ix.Hazards() {
					if Overlaps(solids[i], h) {
						t.Fatalf("solid %v overlaps hazard %v", solids[i], h)
					}
				}
			}
		})
	}
}

func TestMergedIsSmaller(t *testing.T) {
	g := parseArena(t)
	merged := NewIndex(g, 48, Merged)
	tiles := NewIndex(g, 48, PerTile)
	if len(merged.Solids()) >= len(tiles.Solids()) {
		t.Fatalf("merged %d rects, per tile %d", len(merged.Solids()), len(tiles.Solids()))
	}
	if len(merged.Hazards()) != 2 || len(tiles.Hazards()) != 2 {
		t.Fatalf("hazards = %d/%d, want 2", len(merged.Hazards()), len(tiles.Hazards()))
	}
}

func TestSolidsNear(t *testing.T) {
	g := parseArena(t)
	ix := NewIndex(g, 48, PerTile)

	cases := []struct {
		name    string
		box     cp.BB
		wantMin int
		wantMax int
	}{
		{"open_middle", cp.BB{L: 5 * 48, B: 1 * 48, R: 5*48 + 20, T: 1*48 + 20}, 1, 12},
		{"outside_grid", cp.BB{L: -500, B: -500, R: -400, T: -400}, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ix.SolidsNear(c.box)
			if len(got) < c.wantMin || len(got) > c.wantMax {
				t.Fatalf("SolidsNear returned %d rects, want [%d, %d]", len(got), c.wantMin, c.wantMax)
			}
			for _, bb := range got {
				if bb.L > c.box.R+48 || bb.R < c.box.L-48 || bb.B > c.box.T+48 || bb.T < c.box.B-48 {
					t.Fatalf("rect %v outside the padded window of %v", bb, c.box)
				}
			}
		})
	}

	merged := NewIndex(g, 48, Merged)
	got := merged.SolidsNear(cp.BB{L: 48, B: 48, R: 9 * 48, T: 6 * 48})
	seen := map[cp.BB]bool{}
	for _, bb := range got {
		if seen[bb] {
			t.Fatalf("rect %v returned twice", bb)
		}
		seen[bb] = true
	}
}

func TestTouchesHazard(t *testing.T) {
	g := parseArena(t)
	ix := NewIndex(g, 48, Merged)
	hz := HazardRect(2, 4, 48)
	inside := cp.BB{L: hz.L + 2, B: hz.B + 2, R: hz.L + 10, T: hz.B + 10}
	if !ix.TouchesHazard(inside) {
		t.Fatalf("box inside hazard not detected")
	}
	edge := cp.BB{L: hz.R, B: hz.B, R: hz.R + 10, T: hz.T}
	if ix.TouchesHazard(edge) {
		t.Fatalf("box sharing only an edge should not touch")
	}
}

func TestOverlapsStrict(t *testing.T) {
	a := cp.BB{L: 0, B: 0, R: 10, T: 10}
	cases := []struct {
		name string
		b    cp.BB
		want bool
	}{
		{"inside", cp.BB{L: 2, B: 2, R: 4, T: 4}, true},
		{"shared_edge", cp.BB{L: 10, B: 0, R: 20, T: 10}, false},
		{"shared_corner", cp.BB{L: 10, B: 10, R: 20, T: 20}, false},
		{"apart", cp.BB{L: 30, B: 0, R: 40, T: 10}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(a, c.b); got != c.want {
				t.Fatalf("Overlaps = %v, want %v", got, c.want)
			}
		})
	}
}
