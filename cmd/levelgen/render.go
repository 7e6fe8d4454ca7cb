package main

import (
	"strings"

	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/levelgen"
)

// pathMark replaces solid tiles that belong to the critical path.
const pathMark = '='

// render draws the grid as ASCII, optionally marking critical path platforms.
func render(res levelgen.Result, showPath bool) string {
	if res.Grid == nil {
		return ""
	}
	if !showPath {
		return res.Grid.String()
	}
	rows := strings.Split(strings.TrimSuffix(res.Grid.String(), "\n"), "\n")
	onPath := pathCells(res)
	var b strings.Builder
	for r, line := range rows {
		for c := 0; c < len(line); c++ {
			if onPath[level.Cell{Col: c, Row: r}] && line[c] == byte(level.Solid) {
				b.WriteByte(pathMark)
				continue
			}
			b.WriteByte(line[c])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pathCells(res levelgen.Result) map[level.Cell]bool {
	out := make(map[level.Cell]bool)
	for _, p := range res.Path {
		for c := p.Start; c < p.End; c++ {
			out[level.Cell{Col: c, Row: p.Row}] = true
		}
	}
	return out
}
