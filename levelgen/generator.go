package levelgen

import (
	"math/rand"

	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/level"
	"github.com/milk9111/tilecrowd/reach"
)

// Outcome tags how a Result was produced.
type Outcome uint8

const (
	Validated Outcome = iota
	Fallback
)

func (o Outcome) String() string {
	if o == Fallback {
		return "fallback"
	}
	return "validated"
}

// Result is a generated grid together with how it was obtained.
type Result struct {
	Grid     *level.Grid
	Outcome  Outcome
	Attempts int
	// Seed is the seed passed to Generate; AttemptSeed produced Grid.
	Seed        int64
	AttemptSeed int64
	Spawn       level.Cell
	GoalRow     int
	Path        []level.Platform
}

type Generator struct {
	cfg       Config
	env       envelope.Envelope
	validator reach.Validator
}

func New(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	env := envelope.Compute(cfg.Kinematics, cfg.TileSize)
	return &Generator{
		cfg:       cfg,
		env:       env,
		validator: reach.Validator{Envelope: env, TileSize: cfg.TileSize, Tolerance: cfg.Tolerance},
	}
}

func (g *Generator) Envelope() envelope.Envelope {
	return g.env
}

func (g *Generator) Config() Config {
	return g.cfg
}

// GoalRow is the row a level must be climbable to.
func (g *Generator) GoalRow(rows int) int {
	return max(g.env.MinGapTiles, rows/6)
}

// GenerateRandom draws a seed from the process-wide source.
func (g *Generator) GenerateRandom(cols, rows int) Result {
	return g.Generate(cols, rows, rand.Int63())
}

// Generate builds a validated grid, retrying with fresh per-attempt seeds
// drawn from seed. After the attempt budget it returns the fallback
// template, which is reachable by construction.
func (g *Generator) Generate(cols, rows int, seed int64) Result {
	cols, rows = max(cols, MinCols), max(rows, MinRows)
	goal := g.GoalRow(rows)
	master := rand.New(rand.NewSource(seed))

	for attempt := 1; attempt <= g.cfg.Attempts; attempt++ {
		attemptSeed := master.Int63()
		b := newBuilder(g.cfg, g.env, cols, rows, goal, rand.New(rand.NewSource(attemptSeed)))
		b.build()
		if g.validator.Reachable(b.grid, b.spawn, goal) {
			return Result{
				Grid:        b.grid,
				Outcome:     Validated,
				Attempts:    attempt,
				Seed:        seed,
				AttemptSeed: attemptSeed,
				Spawn:       b.spawn,
				GoalRow:     goal,
				Path:        b.path,
			}
		}
		g.cfg.Logger.Printf("levelgen: seed=%d attempt=%d rejected: goal row %d unreachable", seed, attempt, goal)
	}

	g.cfg.Logger.Printf("levelgen: seed=%d exhausted %d attempts, using fallback", seed, g.cfg.Attempts)
	grid, spawn, path := buildFallback(cols, rows, goal, g.env)
	return Result{
		Grid:     grid,
		Outcome:  Fallback,
		Attempts: g.cfg.Attempts,
		Seed:     seed,
		Spawn:    spawn,
		GoalRow:  goal,
		Path:     path,
	}
}

// Generate runs a generator with DefaultConfig.
func Generate(cols, rows int, seed int64) Result {
	return New(DefaultConfig()).Generate(cols, rows, seed)
}

// FallbackGrid returns the deterministic template for the given size.
func FallbackGrid(cols, rows int, env envelope.Envelope) *level.Grid {
	cols, rows = max(cols, MinCols), max(rows, MinRows)
	grid, _, _ := buildFallback(cols, rows, max(env.MinGapTiles, rows/6), env)
	return grid
}
