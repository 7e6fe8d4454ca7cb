package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilecrowd/ecs"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/nav"
	"github.com/milk9111/tilecrowd/sim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

var hudFace text.Face = text.NewGoXFace(basicfont.Face7x13)

// kindColors tint agents by their position in the sorted kind list.
var kindColors = []color.Color{colornames.Orange, colornames.Violet, colornames.Lightgreen, colornames.Khaki}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	g.drawTiles(screen)
	if g.showFlow {
		g.drawFlow(screen)
	}
	if g.debug {
		g.drawColliders(screen)
	}
	g.drawAgents(screen)
	g.drawBody(screen, g.world.Player().Box(), colornames.Dodgerblue)
	g.drawHUD(screen)
}

// visible returns the tile window the camera can see.
func (g *Game) visible() (c0, r0, c1, r1 int) {
	tile := g.world.Index().TileSize()
	tl := g.camera.ViewTopLeft()
	grid := g.world.Grid()
	c0 = max(0, int(tl.X/tile))
	r0 = max(0, int(tl.Y/tile))
	c1 = min(grid.Cols-1, int((tl.X+baseWidth/g.camera.Zoom())/tile)+1)
	r1 = min(grid.Rows-1, int((tl.Y+baseHeight/g.camera.Zoom())/tile)+1)
	return c0, r0, c1, r1
}

func (g *Game) tileRect(screen *ebiten.Image, col, row int, clr color.Color) {
	tile := g.world.Index().TileSize()
	x, y := g.camera.ToScreen(cp.Vector{X: float64(col) * tile, Y: float64(row) * tile})
	size := float32(tile * g.camera.Zoom())
	vector.FillRect(screen, x, y, size, size, clr, false)
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	grid := g.world.Grid()
	c0, r0, c1, r1 := g.visible()
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			switch grid.At(col, row) {
			case level.Solid:
				g.tileRect(screen, col, row, colornames.Slategray)
			case level.Hazard:
				g.tileRect(screen, col, row, colornames.Crimson)
			case level.Spawn:
				g.tileRect(screen, col, row, colornames.Darkgreen)
			default:
				if row == g.res.GoalRow {
					g.tileRect(screen, col, row, color.RGBA{R: 24, G: 20, A: 24})
				}
			}
		}
	}
	cpnt := g.world.Checkpoint()
	x, y := g.camera.ToScreen(cpnt)
	vector.StrokeLine(screen, x-6, y, x+6, y, 2, colornames.Gold, false)
}

// drawFlow shades reached cells, brighter closer to the player.
func (g *Game) drawFlow(screen *ebiten.Image) {
	flow := g.world.Flow()
	c0, r0, c1, r1 := g.visible()
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			d := flow.DistanceAt(col, row)
			if d == nav.Unreached {
				continue
			}
			a := uint8(max(8, 96-d*2))
			g.tileRect(screen, col, row, color.RGBA{G: a, B: a, A: a})
		}
	}
}

func (g *Game) drawColliders(screen *ebiten.Image) {
	ix := g.world.Index()
	for _, r := range ix.Solids() {
		g.strokeBB(screen, r, colornames.Lime)
	}
	for _, r := range ix.Hazards() {
		g.strokeBB(screen, r, colornames.Red)
	}
}

func (g *Game) strokeBB(screen *ebiten.Image, bb cp.BB, clr color.Color) {
	x, y := g.camera.ToScreen(cp.Vector{X: bb.L, Y: bb.B})
	z := g.camera.Zoom()
	vector.StrokeRect(screen, x, y, float32((bb.R-bb.L)*z), float32((bb.T-bb.B)*z), 1, clr, false)
}

func (g *Game) drawBody(screen *ebiten.Image, bb cp.BB, clr color.Color) {
	x, y := g.camera.ToScreen(cp.Vector{X: bb.L, Y: bb.B})
	z := g.camera.Zoom()
	vector.FillRect(screen, x, y, float32((bb.R-bb.L)*z), float32((bb.T-bb.B)*z), clr, false)
}

func (g *Game) drawAgents(screen *ebiten.Image) {
	names := g.kinds.Names()
	z := float32(g.camera.Zoom())
	g.world.EachAgent(func(_ ecs.Entity, a sim.Agent) {
		clr := kindColors[0]
		for i, n := range names {
			if n == a.Kind {
				clr = kindColors[i%len(kindColors)]
			}
		}
		x, y := g.camera.ToScreen(a.Body.Pos)
		vector.FillCircle(screen, x, y, float32(a.Radius)*z, clr, true)
		if g.debug {
			g.strokeBB(screen, a.Body.Box(), colornames.White)
		}
	})
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	p := g.world.Player()
	lines := []string{
		fmt.Sprintf("FPS %.1f  frame %d  seed %d  agents %d", ebiten.ActualFPS(), g.world.Frame(), g.res.Seed, g.world.AgentCount()),
		fmt.Sprintf("state %s  jumps %d/%d  dashes %d", p.State, p.JumpsLeft, p.MaxJumps, p.AirDashesLeft),
		"[R]egenerate [N]ew agent [F]low [C]opy grid [F3] debug",
	}
	if g.statusT > 0 {
		lines = append(lines, g.status)
	}
	if g.debug {
		lines = append(lines, g.events...)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.LineSpacing = 15
	op.ColorScale.ScaleWithColor(colornames.White)
	text.Draw(screen, strings.Join(lines, "\n"), hudFace, op)
}
