package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var opt options
	flag.IntVar(&opt.cols, "cols", 60, "level width in tiles")
	flag.IntVar(&opt.rows, "rows", 22, "level height in tiles")
	flag.Int64Var(&opt.seed, "seed", 0, "level seed (0 draws a random one)")
	flag.IntVar(&opt.agents, "agents", 12, "agents to spawn")
	flag.BoolVar(&opt.debug, "debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("tilecrowd")

	game, err := NewGame(opt)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
