package tuning

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/tilecrowd/brain"
	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/crowd"
	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/levelgen"
	"gopkg.in/yaml.v3"
)

var ErrUnknownModifier = errors.New("tuning: unknown modifier")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("tuning: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("tuning: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type BodySpec struct {
	HalfW float64 `yaml:"half_w"`
	HalfH float64 `yaml:"half_h"`
}

type KinematicsSpec struct {
	TileSize  float64          `yaml:"tile_size"`
	Player    kinematic.Params `yaml:"player"`
	Body      BodySpec         `yaml:"body"`
	Modifiers map[string]int   `yaml:"modifiers"`
}

// Stacks parses the modifier table.
func (k KinematicsSpec) Stacks() (envelope.Stacks, error) {
	var s envelope.Stacks
	names := make([]string, 0, len(k.Modifiers))
	for name := range k.Modifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, ok := envelope.ParseModifier(name)
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
		}
		s.Add(m, k.Modifiers[name])
	}
	return s, nil
}

// PlayerParams is Player with the modifier stacks applied.
func (k KinematicsSpec) PlayerParams() (kinematic.Params, error) {
	s, err := k.Stacks()
	if err != nil {
		return kinematic.Params{}, err
	}
	return k.Player.WithStacks(s), nil
}

func LoadKinematics() (KinematicsSpec, error) {
	spec, err := LoadSpec[KinematicsSpec]("kinematics.yaml")
	if err != nil {
		return spec, err
	}
	if spec.TileSize <= 0 {
		spec.TileSize = common.TileSize
	}
	return spec, nil
}

// LoadGenerator reads generator.yaml over the built-in defaults.
func LoadGenerator() (levelgen.Config, error) {
	data, err := Load("generator.yaml")
	if err != nil {
		return levelgen.Config{}, fmt.Errorf("tuning: load generator.yaml: %w", err)
	}
	cfg := levelgen.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return levelgen.Config{}, fmt.Errorf("tuning: unmarshal generator.yaml: %w", err)
	}
	return cfg, nil
}

type CrowdSpec struct {
	BucketSize    float64      `yaml:"bucket_size"`
	Separator     crowd.Config `yaml:"separator"`
	FlowRebuildHz float64      `yaml:"flow_rebuild_hz"`
	SnapRadius    int          `yaml:"snap_radius"`
	StepClamp     float64      `yaml:"step_clamp"`
}

func LoadCrowd() (CrowdSpec, error) {
	return LoadSpec[CrowdSpec]("crowd.yaml")
}

type AgentSpec struct {
	Radius float64      `yaml:"radius"`
	Brain  string       `yaml:"brain"`
	Script string       `yaml:"script"`
	Chase  brain.Config `yaml:"chase"`
}

type AgentsSpec struct {
	Default string               `yaml:"default"`
	Kinds   map[string]AgentSpec `yaml:"kinds"`
}

func LoadAgents() (AgentsSpec, error) {
	spec, err := LoadSpec[AgentsSpec]("agents.yaml")
	if err != nil {
		return spec, err
	}
	for name, k := range spec.Kinds {
		if k.Brain == "script" && k.Script == "" {
			return spec, fmt.Errorf("tuning: agents.yaml: kind %s: script brain without script", name)
		}
		if k.Radius <= 0 {
			k.Radius = 16
		}
		k.Chase = k.Chase.OrDefault()
		spec.Kinds[name] = k
	}
	if _, ok := spec.Kinds[spec.Default]; !ok && len(spec.Kinds) > 0 {
		spec.Default = spec.Names()[0]
	}
	return spec, nil
}

// Names lists the agent kinds in a stable order.
func (a AgentsSpec) Names() []string {
	names := make([]string, 0, len(a.Kinds))
	for name := range a.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
