package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/tilecrowd/collision"
	"github.com/milk9111/tilecrowd/levelgen"
	"github.com/milk9111/tilecrowd/reach"
	"github.com/milk9111/tilecrowd/tuning"
)

type options struct {
	cols, rows int
	seed       int64
	attempts   int
	tui        bool
	watch      bool
	merge      bool
	path       bool
	quiet      bool
}

func main() {
	var opt options
	flag.IntVar(&opt.cols, "cols", 60, "grid width in tiles")
	flag.IntVar(&opt.rows, "rows", 22, "grid height in tiles")
	flag.Int64Var(&opt.seed, "seed", 0, "generation seed (0 draws a random one)")
	flag.IntVar(&opt.attempts, "attempts", 0, "attempt budget before the fallback (0 keeps generator.yaml)")
	flag.BoolVar(&opt.tui, "tui", false, "preview the level in the terminal")
	flag.BoolVar(&opt.watch, "watch", false, "regenerate whenever a tuning file changes")
	flag.BoolVar(&opt.merge, "merge", false, "report merged versus per-tile collision rectangles")
	flag.BoolVar(&opt.path, "path", false, "mark the critical path in the output")
	flag.BoolVar(&opt.quiet, "q", false, "silence per-attempt logging")
	flag.Parse()

	if opt.tui {
		if err := runTUI(opt); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := generate(os.Stdout, opt); err != nil {
		log.Fatal(err)
	}
	if !opt.watch {
		return
	}

	dirs := tuning.WatchDirs()
	w, err := tuning.NewWatcher(dirs...)
	if err != nil {
		log.Fatalf("levelgen: %v", err)
	}
	defer w.Close()
	log.Printf("levelgen: watching %v", dirs)
	for {
		select {
		case c, ok := <-w.Changes:
			if !ok {
				return
			}
			log.Printf("levelgen: %s changed, regenerating", c.Name())
			if err := generate(os.Stdout, opt); err != nil {
				log.Printf("levelgen: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("levelgen: watch error: %v", err)
		}
	}
}

// newGenerator loads generator.yaml and applies flag overrides.
func newGenerator(opt options) (*levelgen.Generator, error) {
	cfg, err := tuning.LoadGenerator()
	if err != nil {
		return nil, err
	}
	if opt.attempts > 0 {
		cfg.Attempts = opt.attempts
	}
	if opt.quiet {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return levelgen.New(cfg), nil
}

func run(gen *levelgen.Generator, opt options) levelgen.Result {
	if opt.seed == 0 {
		return gen.GenerateRandom(opt.cols, opt.rows)
	}
	return gen.Generate(opt.cols, opt.rows, opt.seed)
}

func generate(out io.Writer, opt options) error {
	gen, err := newGenerator(opt)
	if err != nil {
		return err
	}
	res := run(gen, opt)
	return report(out, gen, res, opt)
}

func report(out io.Writer, gen *levelgen.Generator, res levelgen.Result, opt options) error {
	cfg := gen.Config()
	v := reach.NewValidator(gen.Envelope(), cfg.Tolerance)
	v.TileSize = cfg.TileSize
	ok := v.Reachable(res.Grid, res.Spawn, res.GoalRow)

	env := gen.Envelope()
	if _, err := fmt.Fprintf(out, "seed=%d attempt_seed=%d outcome=%s attempts=%d reachable=%v goal_row=%d\n",
		res.Seed, res.AttemptSeed, res.Outcome, res.Attempts, ok, res.GoalRow); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "envelope: jump=%.0fpx gap=%d..%d reach=%.2f/%.2f tiles\n",
		env.SingleJumpHeightPx, env.MinGapTiles, env.MaxGapTiles,
		env.MaxHorizontalSingleJumpTiles, env.MaxHorizontalDoubleJumpTiles); err != nil {
		return err
	}
	if opt.merge {
		merged := collision.NewIndex(res.Grid, cfg.TileSize, collision.Merged)
		tiles := collision.NewIndex(res.Grid, cfg.TileSize, collision.PerTile)
		if _, err := fmt.Fprintf(out, "collision: %d merged rects, %d tiles, %d hazards\n",
			len(merged.Solids()), len(tiles.Solids()), len(merged.Hazards())); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, render(res, opt.path))
	return err
}
