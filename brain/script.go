package brain

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/tilecrowd/kinematic"
)

var ErrScriptMissingOutput = errors.New("brain: script does not define move and jump")

// scriptInputs are the globals a script reads each step.
var scriptInputs = []string{
	"dx", "dy", "dir_x", "dir_y", "chase",
	"grounded", "blocked_wall", "blocked_agent", "target_above", "flow_up", "can_jump",
}

// Script runs a tengo program to choose move and jump. Steering and the jump
// cooldown are still applied in Go so a script cannot break crowd spacing.
type Script struct {
	name     string
	cfg      Config
	compiled *tengo.Compiled
	logger   *log.Logger
	failed   bool
	cooldown float64
}

// NewScript compiles src and runs it once to check that it assigns move and jump.
func NewScript(name string, src []byte, cfg Config, logger *log.Logger) (*Script, error) {
	if logger == nil {
		logger = log.Default()
	}
	script := tengo.NewScript(src)
	for _, in := range scriptInputs {
		if err := script.Add(in, 0); err != nil {
			return nil, fmt.Errorf("brain: script %s: add %s: %w", name, in, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("brain: compile %s: %w", name, err)
	}
	sc := &Script{name: name, cfg: cfg, compiled: compiled, logger: logger}
	// outputs only become defined once the program has run
	if _, _, err := sc.run(senses{}, false, false); err != nil {
		return nil, fmt.Errorf("brain: run %s: %w", name, err)
	}
	return sc, nil
}

// Clone gives another agent its own globals over the same compiled program.
func (s *Script) Clone() *Script {
	c := *s
	c.compiled = s.compiled.Clone()
	c.failed = false
	c.cooldown = 0
	return &c
}

func (s *Script) Think(v View) kinematic.Intents {
	s.cooldown = math.Max(0, s.cooldown-v.Dt)
	sn := sense(v, s.cfg)
	canJump := v.Body.Grounded && s.cooldown <= 0

	move, jump, err := s.run(sn, v.Body.Grounded, canJump)
	if err != nil {
		if !s.failed {
			s.logger.Printf("brain: script %s: %v", s.name, err)
			s.failed = true
		}
		return intents(0, false, sn, s.cfg)
	}
	if jump && canJump {
		s.cooldown = s.cfg.JumpCooldown
	} else {
		jump = false
	}
	return intents(max(-1, min(1, move)), jump, sn, s.cfg)
}

func (s *Script) run(sn senses, grounded, canJump bool) (int, bool, error) {
	vals := map[string]any{
		"dx":            sn.dx,
		"dy":            sn.dy,
		"dir_x":         sn.dir.X,
		"dir_y":         sn.dir.Y,
		"chase":         sn.chase,
		"grounded":      grounded,
		"blocked_wall":  sn.blockedWall,
		"blocked_agent": sn.blockedAgent,
		"target_above":  sn.targetAbove,
		"flow_up":       sn.flowUp,
		"can_jump":      canJump,
	}
	for k, v := range vals {
		if err := s.compiled.Set(k, v); err != nil {
			return 0, false, err
		}
	}
	if err := s.compiled.Run(); err != nil {
		return 0, false, err
	}
	if !s.compiled.IsDefined("move") || !s.compiled.IsDefined("jump") {
		return 0, false, ErrScriptMissingOutput
	}
	return s.compiled.Get("move").Int(), s.compiled.Get("jump").Bool(), nil
}
