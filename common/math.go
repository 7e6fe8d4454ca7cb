package common

import "math"

// TileSize is the edge length of one grid cell in pixels.
const TileSize = 48

// MaxStep caps the frame delta handed to the kinematic step.
const MaxStep = 1.0 / 30.0

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Approach moves cur toward target by at most delta.
func Approach(cur, target, delta float64) float64 {
	if cur < target {
		return math.Min(cur+delta, target)
	}
	return math.Max(cur-delta, target)
}

func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func AbsInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ClampStep limits a frame delta to [0, MaxStep].
func ClampStep(dt float64) float64 {
	return Clamp(dt, 0, MaxStep)
}
