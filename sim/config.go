package sim

import (
	"log"

	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/crowd"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/nav"
)

// Config holds the per-world constants. Zero fields take DefaultConfig values.
type Config struct {
	TileSize    float64
	Player      kinematic.Params
	PlayerHalfW float64
	PlayerHalfH float64

	BucketSize    float64
	Separator     crowd.Config
	FlowRebuildHz float64
	SnapRadius    int
	StepClamp     float64
	// FallMargin is how far below the grid, in tiles, a body counts as fallen out.
	FallMargin float64

	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		TileSize:      common.TileSize,
		Player:        kinematic.DefaultParams(),
		PlayerHalfW:   16,
		PlayerHalfH:   22,
		BucketSize:    64,
		Separator:     crowd.DefaultConfig(),
		FlowRebuildHz: 6,
		SnapRadius:    nav.DefaultSnapRadius,
		StepClamp:     common.MaxStep,
		FallMargin:    6,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TileSize <= 0 {
		c.TileSize = d.TileSize
	}
	if c.Player.Gravity <= 0 {
		c.Player = d.Player
	}
	if c.PlayerHalfW <= 0 || c.PlayerHalfH <= 0 {
		c.PlayerHalfW, c.PlayerHalfH = d.PlayerHalfW, d.PlayerHalfH
	}
	if c.BucketSize <= 0 {
		c.BucketSize = d.BucketSize
	}
	if c.Separator.Damping <= 0 {
		c.Separator = d.Separator
	}
	if c.FlowRebuildHz <= 0 {
		c.FlowRebuildHz = d.FlowRebuildHz
	}
	if c.SnapRadius <= 0 {
		c.SnapRadius = d.SnapRadius
	}
	if c.StepClamp <= 0 {
		c.StepClamp = d.StepClamp
	}
	if c.FallMargin <= 0 {
		c.FallMargin = d.FallMargin
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}
