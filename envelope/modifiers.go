package envelope

import "math"

// Modifier identifies a movement upgrade that can be stacked.
type Modifier uint8

const (
	ModSpeed Modifier = iota
	ModAgility
	ModJump
	ModWing
	ModDashCore
	modCount
)

var modifierNames = [modCount]string{
	ModSpeed:    "speed",
	ModAgility:  "agility",
	ModJump:     "jump",
	ModWing:     "wing",
	ModDashCore: "dash_core",
}

func (m Modifier) String() string {
	if m >= modCount {
		return "unknown"
	}
	return modifierNames[m]
}

// ParseModifier maps a config name to its identifier.
func ParseModifier(name string) (Modifier, bool) {
	for i, n := range modifierNames {
		if n == name {
			return Modifier(i), true
		}
	}
	return 0, false
}

// Stacks holds an integer stack count per modifier.
type Stacks [modCount]int

func (s *Stacks) Add(m Modifier, n int) int {
	if m >= modCount {
		return 0
	}
	s[m] += n
	if s[m] < 0 {
		s[m] = 0
	}
	return s[m]
}

func (s Stacks) Count(m Modifier) int {
	if m >= modCount {
		return 0
	}
	return s[m]
}

// DiminishingReturns approaches limit as stacks grow: limit*(1-(1-per/limit)^stacks).
func DiminishingReturns(stacks int, perStack, limit float64) float64 {
	if stacks <= 0 {
		return 0
	}
	perStack = math.Max(0, perStack)
	limit = math.Max(1e-5, limit)
	base := math.Min(1, math.Max(0, 1-perStack/limit))
	return limit * (1 - math.Pow(base, float64(stacks)))
}

// Dash describes the dash burst derived from the dash_core stacks.
type Dash struct {
	Speed      float64
	Duration   float64
	Cooldown   float64
	AirCharges int
}

// Stats are the movement stats after applying stacks to a base.
type Stats struct {
	Kinematics Kinematics
	MaxJumps   int
	Dash       Dash
}

const minDashCooldown = 0.18

// Apply computes derived stats. base is never modified.
func (s Stacks) Apply(base Kinematics, maxJumps int, dash Dash) Stats {
	k := base
	k.RunSpeed += DiminishingReturns(s.Count(ModSpeed), 35, 220)
	k.RunSpeed += DiminishingReturns(s.Count(ModAgility), 18, 120)
	k.JumpSpeed += DiminishingReturns(s.Count(ModJump), 40, 200)

	wing := s.Count(ModWing)
	switch {
	case wing >= 5:
		maxJumps += 2
	case wing >= 2:
		maxJumps++
	}

	core := s.Count(ModDashCore)
	dash.Speed += DiminishingReturns(core, 35, 160)
	dash.Duration += DiminishingReturns(core, 0.01, 0.04)
	dash.Cooldown = math.Max(minDashCooldown, dash.Cooldown-DiminishingReturns(core, 0.07, 0.30))
	if core >= 4 {
		dash.AirCharges++
	}

	return Stats{Kinematics: k, MaxJumps: maxJumps, Dash: dash}
}
