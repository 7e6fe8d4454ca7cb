package envelope

import "math"

// Kinematics are the tunable constants an envelope is derived from.
type Kinematics struct {
	Gravity   float64 `yaml:"gravity"`
	JumpSpeed float64 `yaml:"jump_speed"`
	RunSpeed  float64 `yaml:"run_speed"`
}

// Envelope bounds what a single or double jump can cover.
type Envelope struct {
	SingleJumpHeightPx           float64
	MinGapTiles                  int
	MaxGapTiles                  int
	MaxHorizontalSingleJumpTiles float64
	MaxHorizontalDoubleJumpTiles float64
}

const (
	minGapFactor = 0.75
	maxGapFactor = 1.50

	minSingleReachTiles = 3.0
	doubleReachBonus    = 2.0
)

// Compute derives the movement envelope from projectile motion.
// Non-positive gravity or tile size collapse to the floors.
func Compute(k Kinematics, tileSize float64) Envelope {
	var height, tApex float64
	if k.Gravity > 0 {
		height = k.JumpSpeed * k.JumpSpeed / (2 * k.Gravity)
		tApex = math.Abs(k.JumpSpeed) / k.Gravity
	}

	heightTiles, reach := 0.0, 0.0
	if tileSize > 0 {
		heightTiles = height / tileSize
		reach = math.Abs(k.RunSpeed) * 2 * tApex / tileSize
	}

	minGap := int(math.Round(minGapFactor * heightTiles))
	if minGap < 1 {
		minGap = 1
	}
	maxGap := int(math.Round(maxGapFactor * heightTiles))
	if maxGap < minGap {
		maxGap = minGap
	}

	single := math.Max(minSingleReachTiles, reach)
	double := math.Max(2*single, single+doubleReachBonus)

	return Envelope{
		SingleJumpHeightPx:           height,
		MinGapTiles:                  minGap,
		MaxGapTiles:                  maxGap,
		MaxHorizontalSingleJumpTiles: single,
		MaxHorizontalDoubleJumpTiles: double,
	}
}

// SingleJumpTiles is the apex height of one jump in tiles.
func (e Envelope) SingleJumpTiles(tileSize float64) float64 {
	if tileSize <= 0 {
		return 0
	}
	return e.SingleJumpHeightPx / tileSize
}
