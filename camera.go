package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Camera follows a world point and clamps its view to the level.
type Camera struct {
	Pos cp.Vector

	screenW float64
	screenH float64
	zoom    float64
	// smooth is the follow factor per update, 0 snaps.
	smooth float64
	worldW float64
	worldH float64
}

func NewCamera(screenW, screenH int, zoom float64) *Camera {
	return &Camera{
		Pos:     cp.Vector{X: float64(screenW) / 2, Y: float64(screenH) / 2},
		screenW: float64(screenW),
		screenH: float64(screenH),
		zoom:    zoom,
		smooth:  0.15,
	}
}

// SetWorldBounds sets the level size in pixels, 0 leaves an axis unbounded.
func (c *Camera) SetWorldBounds(w, h float64) {
	c.worldW, c.worldH = w, h
}

func (c *Camera) Zoom() float64 {
	return c.zoom
}

// ViewTopLeft returns the world-space top-left of the current view.
func (c *Camera) ViewTopLeft() cp.Vector {
	return cp.Vector{X: c.Pos.X - c.screenW/c.zoom/2, Y: c.Pos.Y - c.screenH/c.zoom/2}
}

// ToScreen maps a world point into screen pixels.
func (c *Camera) ToScreen(p cp.Vector) (float32, float32) {
	tl := c.ViewTopLeft()
	return float32((p.X - tl.X) * c.zoom), float32((p.Y - tl.Y) * c.zoom)
}

// Update moves toward target. Call from the fixed-rate Update loop.
func (c *Camera) Update(target cp.Vector) {
	if c.smooth <= 0 {
		c.Pos = target
	} else {
		c.Pos = c.Pos.Add(target.Sub(c.Pos).Mult(c.smooth))
	}
	c.settle()
}

// SnapTo places the camera without smoothing, e.g. after a level load.
func (c *Camera) SnapTo(target cp.Vector) {
	c.Pos = target
	c.settle()
}

func (c *Camera) settle() {
	// align source texels to integer screen pixels
	c.Pos.X = math.Round(c.Pos.X*c.zoom) / c.zoom
	c.Pos.Y = math.Round(c.Pos.Y*c.zoom) / c.zoom

	halfW := c.screenW / c.zoom / 2
	halfH := c.screenH / c.zoom / 2
	c.Pos.X = clampAxis(c.Pos.X, halfW, c.worldW)
	c.Pos.Y = clampAxis(c.Pos.Y, halfH, c.worldH)
}

// clampAxis keeps a half-extent view inside [0, world], centring when the
// world is smaller than the view.
func clampAxis(v, half, world float64) float64 {
	if world <= 0 {
		return v
	}
	if world-half < half {
		return world / 2
	}
	return math.Max(half, math.Min(v, world-half))
}
