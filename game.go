package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tilecrowd/brain"
	"github.com/milk9111/tilecrowd/ecs"
	"github.com/milk9111/tilecrowd/levelgen"
	"github.com/milk9111/tilecrowd/sim"
	"github.com/milk9111/tilecrowd/tuning"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// agents never spawn closer than this many tiles to the player
	agentSpawnDist = 6
	maxEventLines  = 6
)

type options struct {
	cols, rows int
	seed       int64
	agents     int
	debug      bool
}

type Game struct {
	opt    options
	frames int

	input  Input
	camera *Camera
	world  *sim.World
	res    levelgen.Result

	kinds  tuning.AgentsSpec
	protos map[string]*brain.Script

	watcher   *tuning.Watcher
	clipboard bool

	debug    bool
	showFlow bool
	events   []string
	status   string
	statusT  int
}

func NewGame(opt options) (*Game, error) {
	g := &Game{opt: opt, debug: opt.debug, camera: NewCamera(baseWidth, baseHeight, 1)}
	if err := g.rebuild(opt.seed); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboard = true
	}

	if w, err := tuning.NewWatcher(); err != nil {
		log.Printf("%v, hot reload off", err)
	} else {
		g.watcher = w
	}
	return g, nil
}

// rebuild reloads every tuning file, generates a level and repopulates it.
func (g *Game) rebuild(seed int64) error {
	kin, err := tuning.LoadKinematics()
	if err != nil {
		return err
	}
	params, err := kin.PlayerParams()
	if err != nil {
		return err
	}
	genCfg, err := tuning.LoadGenerator()
	if err != nil {
		return err
	}
	crowdSpec, err := tuning.LoadCrowd()
	if err != nil {
		return err
	}
	kinds, err := tuning.LoadAgents()
	if err != nil {
		return err
	}
	protos, err := loadScripts(kinds)
	if err != nil {
		return err
	}

	genCfg.Kinematics = params.Kinematics()
	gen := levelgen.New(genCfg)
	var res levelgen.Result
	if seed == 0 {
		res = gen.GenerateRandom(g.opt.cols, g.opt.rows)
	} else {
		res = gen.Generate(g.opt.cols, g.opt.rows, seed)
	}

	world, err := sim.NewWorld(res.Grid, sim.Config{
		TileSize:      genCfg.TileSize,
		Player:        params,
		PlayerHalfW:   kin.Body.HalfW,
		PlayerHalfH:   kin.Body.HalfH,
		BucketSize:    crowdSpec.BucketSize,
		Separator:     crowdSpec.Separator,
		FlowRebuildHz: crowdSpec.FlowRebuildHz,
		SnapRadius:    crowdSpec.SnapRadius,
		StepClamp:     crowdSpec.StepClamp,
	})
	if err != nil {
		return err
	}

	g.kinds, g.protos = kinds, protos
	g.world, g.res = world, res
	g.events = g.events[:0]
	for i := 0; i < g.opt.agents; i++ {
		g.addAgent(res.Seed + int64(i))
	}

	tile := genCfg.TileSize
	g.camera.SetWorldBounds(float64(res.Grid.Cols)*tile, float64(res.Grid.Rows)*tile)
	g.camera.SnapTo(world.Player().Pos)
	g.setStatus(fmt.Sprintf("seed %d (%s after %d attempts)", res.Seed, res.Outcome, res.Attempts))
	return nil
}

// loadScripts compiles one prototype per script brain kind.
func loadScripts(kinds tuning.AgentsSpec) (map[string]*brain.Script, error) {
	out := make(map[string]*brain.Script)
	for _, name := range kinds.Names() {
		k := kinds.Kinds[name]
		if k.Brain != "script" {
			continue
		}
		src, err := tuning.LoadScript(k.Script)
		if err != nil {
			return nil, err
		}
		s, err := brain.NewScript(k.Script, src, k.Chase, nil)
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

// addAgent spawns one agent, cycling through the kinds after the default.
func (g *Game) addAgent(seed int64) {
	names := g.kinds.Names()
	if len(names) == 0 {
		return
	}
	name := g.kinds.Default
	if n := g.world.AgentCount(); n%3 == 2 {
		name = names[(n/3)%len(names)]
	}
	k := g.kinds.Kinds[name]

	pos := g.world.AgentSpawns(1, k.Radius, agentSpawnDist, seed)
	if len(pos) == 0 {
		return
	}
	spec := sim.AgentSpec{Kind: name, Radius: k.Radius, Chase: k.Chase}
	if proto, ok := g.protos[name]; ok {
		spec.Brain = proto.Clone()
	}
	if _, err := g.world.SpawnAgent(spec, pos[0]); err != nil {
		log.Printf("playground: %v", err)
	}
}

func (g *Game) Update() error {
	g.frames++
	g.input.Update()
	if g.input.Quit {
		return ebiten.Termination
	}

	g.pollTuning()

	switch {
	case g.input.Regenerate:
		if err := g.rebuild(0); err != nil {
			g.setStatus(err.Error())
		}
		return nil
	case g.input.AddAgent:
		g.addAgent(int64(g.frames))
	case g.input.CopyGrid:
		g.copyGrid()
	}
	if g.input.ToggleDebug {
		g.debug = !g.debug
	}
	if g.input.ToggleFlow {
		g.showFlow = !g.showFlow
	}

	g.world.Step(1.0/float64(ebiten.TPS()), g.input.Intents)
	for _, evt := range g.world.Events().Drain() {
		g.logEvent(evt)
	}
	g.camera.Update(g.world.Player().Pos)

	if g.statusT > 0 {
		g.statusT--
	}
	return nil
}

// pollTuning applies edits to tuning files without blocking the frame.
func (g *Game) pollTuning() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case c, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			g.reloadTuning(c)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("tuning: watch error: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reloadTuning(c tuning.Change) {
	base := c.Name()
	if c.Retunes() {
		if err := g.reloadKinematics(); err != nil {
			g.setStatus(fmt.Sprintf("%s: %v", base, err))
			return
		}
		g.setStatus("reloaded " + base)
		return
	}
	// generator, crowd, agent and script edits need a fresh level
	if err := g.rebuild(g.res.Seed); err != nil {
		g.setStatus(fmt.Sprintf("%s: %v", base, err))
		return
	}
	g.setStatus("reloaded " + base)
}

// reloadKinematics retunes the player in place without regenerating.
func (g *Game) reloadKinematics() error {
	kin, err := tuning.LoadKinematics()
	if err != nil {
		return err
	}
	params, err := kin.PlayerParams()
	if err != nil {
		return err
	}
	g.world.SetPlayerParams(params)
	return nil
}

func (g *Game) copyGrid() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(g.res.Grid.String()))
	g.setStatus(fmt.Sprintf("copied %dx%d grid", g.res.Grid.Cols, g.res.Grid.Rows))
}

func (g *Game) logEvent(evt ecs.Event) {
	if evt.Kind == ecs.EventSpawned || evt.Kind == ecs.EventDestroyed {
		return
	}
	line := fmt.Sprintf("%05d %s %v", g.world.Frame(), evt.Kind, evt.Entity)
	if evt.Entity == g.world.PlayerEntity() {
		line += " (player)"
	}
	g.events = append(g.events, line)
	if len(g.events) > maxEventLines {
		g.events = g.events[len(g.events)-maxEventLines:]
	}
}

func (g *Game) setStatus(s string) {
	log.Print(s)
	g.status = s
	g.statusT = 3 * ebiten.TPS()
}

func (g *Game) Close() {
	if g.watcher != nil {
		g.watcher.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
