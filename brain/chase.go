package brain

import (
	"math"

	"github.com/milk9111/tilecrowd/kinematic"
)

// Chase follows the flow field toward the target and jumps to climb over
// walls, other agents, or up to a target standing close above.
type Chase struct {
	cfg      Config
	cooldown float64
}

func NewChase(cfg Config) *Chase {
	return &Chase{cfg: cfg}
}

func (c *Chase) Think(v View) kinematic.Intents {
	c.cooldown = math.Max(0, c.cooldown-v.Dt)
	s := sense(v, c.cfg)

	jump := false
	if v.Body.Grounded && c.cooldown <= 0 {
		if s.blockedWall || s.blockedAgent || s.targetAbove || s.flowUp {
			jump = true
			c.cooldown = c.cfg.JumpCooldown
		}
	}
	return intents(s.chase, jump, s, c.cfg)
}
