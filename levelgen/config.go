package levelgen

import (
	"log"

	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/reach"
)

// Config controls grid synthesis. Unset sizing and physics fields fall
// back to DefaultConfig; zero counts and densities are honoured.
type Config struct {
	Attempts        int     `yaml:"attempts"`
	CandidateTries  int     `yaml:"candidate_tries"`
	MaxOverlapRatio float64 `yaml:"max_overlap_ratio"`

	PlatformMinLen int `yaml:"platform_min_len"`
	PlatformMaxLen int `yaml:"platform_max_len"`

	RoomsMin   int `yaml:"rooms_min"`
	RoomsMax   int `yaml:"rooms_max"`
	RoomMinW   int `yaml:"room_min_w"`
	RoomMaxW   int `yaml:"room_max_w"`
	RoomMinH   int `yaml:"room_min_h"`
	RoomMaxH   int `yaml:"room_max_h"`
	ExtrasMin  int `yaml:"extras_min"`
	ExtrasMax  int `yaml:"extras_max"`
	ColumnsMin int `yaml:"columns_min"`
	ColumnsMax int `yaml:"columns_max"`

	HazardDensity   float64 `yaml:"hazard_density"`
	SpawnSafeRadius int     `yaml:"spawn_safe_radius"`

	TileSize   float64             `yaml:"tile_size"`
	Kinematics envelope.Kinematics `yaml:"kinematics"`
	Tolerance  reach.Tolerance     `yaml:"tolerance"`

	Logger *log.Logger `yaml:"-"`
}

const (
	// MinCols and MinRows are the smallest grid the generator emits.
	MinCols = 8
	MinRows = 8
)

func DefaultConfig() Config {
	return Config{
		Attempts:        60,
		CandidateTries:  24,
		MaxOverlapRatio: 0.30,
		PlatformMinLen:  3,
		PlatformMaxLen:  7,
		RoomsMin:        2,
		RoomsMax:        5,
		RoomMinW:        6,
		RoomMaxW:        12,
		RoomMinH:        5,
		RoomMaxH:        7,
		ExtrasMin:       6,
		ExtrasMax:       12,
		ColumnsMin:      1,
		ColumnsMax:      3,
		HazardDensity:   0.008,
		SpawnSafeRadius: 10,
		TileSize:        common.TileSize,
		Kinematics:      envelope.Kinematics{Gravity: 2600, JumpSpeed: 820, RunSpeed: 380},
		Tolerance:       reach.DefaultTolerance(),
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Attempts <= 0 {
		c.Attempts = d.Attempts
	}
	if c.CandidateTries <= 0 {
		c.CandidateTries = d.CandidateTries
	}
	if c.MaxOverlapRatio <= 0 {
		c.MaxOverlapRatio = d.MaxOverlapRatio
	}
	if c.PlatformMinLen <= 0 {
		c.PlatformMinLen = d.PlatformMinLen
	}
	if c.PlatformMaxLen < c.PlatformMinLen {
		c.PlatformMaxLen = max(c.PlatformMinLen, d.PlatformMaxLen)
	}
	if c.RoomMinW < 5 {
		c.RoomMinW = d.RoomMinW
	}
	if c.RoomMaxW < c.RoomMinW {
		c.RoomMaxW = c.RoomMinW
	}
	if c.RoomMinH < 5 {
		c.RoomMinH = d.RoomMinH
	}
	if c.RoomMaxH < c.RoomMinH {
		c.RoomMaxH = c.RoomMinH
	}
	if c.RoomsMax < c.RoomsMin {
		c.RoomsMax = c.RoomsMin
	}
	if c.ExtrasMax < c.ExtrasMin {
		c.ExtrasMax = c.ExtrasMin
	}
	if c.ColumnsMax < c.ColumnsMin {
		c.ColumnsMax = c.ColumnsMin
	}
	if c.TileSize <= 0 {
		c.TileSize = d.TileSize
	}
	if c.Kinematics.Gravity <= 0 || c.Kinematics.JumpSpeed <= 0 {
		c.Kinematics = d.Kinematics
	}
	if c.Tolerance.RiseMax <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}
