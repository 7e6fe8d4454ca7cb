package levelgen

import (
	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/level"
)

// buildFallback lays long platforms every MinGapTiles rows, alternating
// sides with a two-column overlap, from the floor to the goal band.
func buildFallback(cols, rows, goalRow int, env envelope.Envelope) (*level.Grid, level.Cell, []level.Platform) {
	g := level.New(cols, rows)
	ground := rows - 2
	g.Fill(0, ground, cols-1, rows-1, level.Solid)
	g.Border()

	spawn := level.Cell{Col: 2, Row: ground - 1}
	step := max(1, env.MinGapTiles)
	half := cols / 2

	var path []level.Platform
	right := true
	for row := ground - step; row >= 2 && topStandRow(path, spawn) > goalRow; row -= step {
		p := level.Platform{Row: row, Start: 1, End: min(cols-1, half+1)}
		if right {
			p = level.Platform{Row: row, Start: max(1, half-1), End: cols - 1}
		}
		p.Stamp(g)
		path = append(path, p)
		right = !right
	}

	g.Set(spawn.Col, spawn.Row, level.Spawn)
	return g, spawn, path
}

// topStandRow is the standing row of the highest platform so far.
func topStandRow(path []level.Platform, spawn level.Cell) int {
	if len(path) == 0 {
		return spawn.Row
	}
	return path[len(path)-1].Row - 1
}
