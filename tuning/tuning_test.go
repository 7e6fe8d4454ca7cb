package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/tilecrowd/brain"
	"github.com/milk9111/tilecrowd/crowd"
	"github.com/milk9111/tilecrowd/kinematic"
	"github.com/milk9111/tilecrowd/levelgen"
)

func useDiskDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := DiskDir
	DiskDir = dir
	t.Cleanup(func() { DiskDir = prev })
	return dir
}

func TestEmbeddedDefaultsMatchCode(t *testing.T) {
	useDiskDir(t)

	k, err := LoadKinematics()
	if err != nil {
		t.Fatalf("LoadKinematics: %v", err)
	}
	if k.Player != kinematic.DefaultParams() {
		t.Fatalf("kinematics.yaml player = %+v, want %+v", k.Player, kinematic.DefaultParams())
	}
	if k.Body.HalfW != 16 || k.Body.HalfH != 22 || k.TileSize != 48 {
		t.Fatalf("body = %+v tile = %v", k.Body, k.TileSize)
	}

	g, err := LoadGenerator()
	if err != nil {
		t.Fatalf("LoadGenerator: %v", err)
	}
	if g != levelgen.DefaultConfig() {
		t.Fatalf("generator.yaml = %+v, want %+v", g, levelgen.DefaultConfig())
	}

	c, err := LoadCrowd()
	if err != nil {
		t.Fatalf("LoadCrowd: %v", err)
	}
	if c.Separator != crowd.DefaultConfig() || c.BucketSize != 64 || c.FlowRebuildHz != 6 {
		t.Fatalf("crowd.yaml = %+v", c)
	}
}

func TestDiskOverride(t *testing.T) {
	dir := useDiskDir(t)
	if err := os.WriteFile(filepath.Join(dir, "generator.yaml"), []byte("attempts: 5\nhazard_density: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGenerator()
	if err != nil {
		t.Fatalf("LoadGenerator: %v", err)
	}
	if g.Attempts != 5 || g.HazardDensity != 0 {
		t.Fatalf("override ignored: attempts=%d density=%v", g.Attempts, g.HazardDensity)
	}
	if g.CandidateTries != levelgen.DefaultConfig().CandidateTries {
		t.Fatalf("unset fields should keep defaults, got %d", g.CandidateTries)
	}

	if err := os.WriteFile(filepath.Join(dir, "crowd.yaml"), []byte("bucket_size: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCrowd(); err == nil {
		t.Fatalf("expected an unmarshal error")
	}
}

func TestUnknownSpec(t *testing.T) {
	useDiskDir(t)
	_, err := LoadSpec[CrowdSpec]("missing.yaml")
	if !errors.Is(err, ErrUnknownSpec) {
		t.Fatalf("err = %v, want ErrUnknownSpec", err)
	}
	if _, err := LoadScript("missing.tengo"); !errors.Is(err, ErrUnknownSpec) {
		t.Fatalf("script err = %v, want ErrUnknownSpec", err)
	}
}

func TestModifierStacks(t *testing.T) {
	tests := []struct {
		name      string
		mods      map[string]int
		wantJumps int
		wantErr   bool
	}{
		{"none", nil, 2, false},
		{"wing_two", map[string]int{"wing": 2}, 3, false},
		{"wing_five", map[string]int{"wing": 5, "speed": 1}, 4, false},
		{"unknown", map[string]int{"rocket": 1}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k := KinematicsSpec{Player: kinematic.DefaultParams(), Modifiers: tc.mods}
			p, err := k.PlayerParams()
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownModifier) {
					t.Fatalf("err = %v, want ErrUnknownModifier", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlayerParams: %v", err)
			}
			if p.MaxJumps != tc.wantJumps {
				t.Fatalf("max jumps = %d, want %d", p.MaxJumps, tc.wantJumps)
			}
		})
	}
}

func TestAgentsCompile(t *testing.T) {
	useDiskDir(t)
	a, err := LoadAgents()
	if err != nil {
		t.Fatalf("LoadAgents: %v", err)
	}
	if a.Default != "chaser" {
		t.Fatalf("default = %q", a.Default)
	}
	hop, ok := a.Kinds["hopper"]
	if !ok || hop.Brain != "script" {
		t.Fatalf("hopper = %+v", hop)
	}
	if hop.Chase.SepStrength != brain.DefaultConfig().SepStrength {
		t.Fatalf("unset chase fields should default, got %+v", hop.Chase)
	}
	src, err := LoadScript(hop.Script)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if _, err := brain.NewScript(hop.Script, src, hop.Chase, nil); err != nil {
		t.Fatalf("NewScript: %v", err)
	}
}

func TestWatcherReportsSettledEdits(t *testing.T) {
	dir := t.TempDir()
	scripts := filepath.Join(dir, "scripts")
	if err := os.Mkdir(scripts, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(dir, scripts)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec := filepath.Join(dir, "crowd.yaml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(spec, []byte("bucket_size: 80\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	script := filepath.Join(scripts, "hopper.tengo")
	if err := os.WriteFile(script, []byte("move := 0\njump := false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(map[string]Change)
	deadline := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case c := <-w.Changes:
			if _, dup := got[c.Name()]; dup {
				t.Fatalf("%s reported twice for one burst of writes", c.Name())
			}
			got[c.Name()] = c
		case err := <-w.Errors:
			t.Fatalf("watch error: %v", err)
		case <-deadline:
			t.Fatalf("changes after timeout: %v", got)
		}
	}
	if c := got["crowd.yaml"]; c.Kind != SpecFile || c.Retunes() {
		t.Fatalf("crowd.yaml change = %+v", c)
	}
	if c := got["hopper.tengo"]; c.Kind != ScriptFile {
		t.Fatalf("hopper.tengo change = %+v", c)
	}
	if _, ok := got["notes.txt"]; ok {
		t.Fatalf("non-tuning file reported")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, ok := <-w.Changes; ok {
		t.Fatalf("Changes still open after Close")
	}
}

func TestChangeRetunes(t *testing.T) {
	tests := []struct {
		c    Change
		want bool
	}{
		{Change{Path: "tuning/kinematics.yaml", Kind: SpecFile}, true},
		{Change{Path: "tuning/generator.yaml", Kind: SpecFile}, false},
		{Change{Path: "tuning/scripts/kinematics.yaml", Kind: ScriptFile}, false},
	}
	for _, tc := range tests {
		t.Run(tc.c.Path, func(t *testing.T) {
			if got := tc.c.Retunes(); got != tc.want {
				t.Fatalf("Retunes = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewWatcherWithoutDirs(t *testing.T) {
	dir := useDiskDir(t)
	DiskDir = filepath.Join(dir, "missing")
	if _, err := NewWatcher(); !errors.Is(err, ErrNothingToWatch) {
		t.Fatalf("err = %v, want ErrNothingToWatch", err)
	}
}

func TestWatchDirs(t *testing.T) {
	dir := useDiskDir(t)
	if got := WatchDirs(); len(got) != 1 || got[0] != dir {
		t.Fatalf("WatchDirs = %v, want [%s]", got, dir)
	}
	if err := os.Mkdir(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := WatchDirs(); len(got) != 2 {
		t.Fatalf("WatchDirs = %v, want the scripts dir too", got)
	}

	DiskDir = filepath.Join(dir, "missing")
	if got := WatchDirs(); len(got) != 0 {
		t.Fatalf("WatchDirs = %v for a missing dir", got)
	}
}
