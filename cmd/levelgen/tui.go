package main

import (
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/levelgen"
	"github.com/milk9111/tilecrowd/nav"
)

var (
	styleEmpty  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleSolid  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorGray)
	stylePath   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleHazard = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleSpawn  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGoal   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// preview holds what the terminal view shows.
type preview struct {
	screen tcell.Screen
	gen    *levelgen.Generator
	opt    options
	res    levelgen.Result
	flow   *nav.FlowField
	path   map[level.Cell]bool

	showFlow bool
	showPath bool
	offX     int
	offY     int
}

func runTUI(opt options) error {
	opt.quiet = true
	gen, err := newGenerator(opt)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	// keep logging from scribbling over the screen
	log.SetOutput(io.Discard)

	p := &preview{screen: screen, gen: gen, opt: opt, showPath: true}
	p.regenerate(opt.seed)
	for {
		p.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !p.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case nil:
			return nil
		}
	}
}

func (p *preview) regenerate(seed int64) {
	if seed == 0 {
		seed = rand.Int63()
	}
	p.opt.seed = seed
	p.res = run(p.gen, p.opt)
	p.path = pathCells(p.res)

	tile := p.gen.Config().TileSize
	p.flow = nav.NewFlowField(p.res.Grid, tile)
	p.flow.Rebuild(cp.Vector{
		X: float64(p.res.Spawn.Col)*tile + tile/2,
		Y: float64(p.res.Spawn.Row)*tile + tile/2,
	})
}

func (p *preview) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		p.offX = max(0, p.offX-4)
	case tcell.KeyRight:
		p.offX = min(max(0, p.res.Grid.Cols-4), p.offX+4)
	case tcell.KeyUp:
		p.offY = max(0, p.offY-2)
	case tcell.KeyDown:
		p.offY = min(max(0, p.res.Grid.Rows-2), p.offY+2)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			p.regenerate(0)
		case 'n':
			p.regenerate(p.opt.seed + 1)
		case 'f':
			p.showFlow = !p.showFlow
		case 'p':
			p.showPath = !p.showPath
		}
	}
	return true
}

func (p *preview) draw() {
	s := p.screen
	s.Clear()
	w, h := s.Size()
	g := p.res.Grid
	for y := 0; y < h-1; y++ {
		row := y + p.offY
		if row >= g.Rows {
			break
		}
		for x := 0; x < w; x++ {
			col := x + p.offX
			if col >= g.Cols {
				break
			}
			ch, style := p.cell(col, row)
			s.SetContent(x, y, ch, nil, style)
		}
	}

	status := fmt.Sprintf(" seed=%d %s attempts=%d goal=%d  [r]andom [n]ext [f]low [p]ath arrows q ",
		p.res.Seed, p.res.Outcome, p.res.Attempts, p.res.GoalRow)
	for x, r := range []rune(status) {
		if x >= w {
			break
		}
		s.SetContent(x, h-1, r, nil, styleStatus)
	}
	s.Show()
}

func (p *preview) cell(col, row int) (rune, tcell.Style) {
	g := p.res.Grid
	switch k := g.At(col, row); k {
	case level.Solid:
		if p.showPath && p.path[level.Cell{Col: col, Row: row}] {
			return pathMark, stylePath
		}
		return rune(k), styleSolid
	case level.Hazard:
		return rune(k), styleHazard
	case level.Spawn:
		return rune(k), styleSpawn
	}
	if p.showFlow {
		if d := p.flow.DistanceAt(col, row); d != nav.Unreached {
			return rune('0' + d%10), flowStyle(d)
		}
	}
	if row == p.res.GoalRow {
		return '-', styleGoal
	}
	return '.', styleEmpty
}

// flowStyle shades distances from green near the target to blue far away.
func flowStyle(d int) tcell.Style {
	t := min(d, 60)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(40+t*2), int32(220-t*3), int32(80+t*2)))
}
