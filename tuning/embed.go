package tuning

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var SpecsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// DiskDir is checked before the embedded defaults, relative to the working
// directory, so specs can be edited without rebuilding.
var DiskDir = "tuning"

var ErrUnknownSpec = errors.New("tuning: unknown spec")

// Load returns the disk copy of name if present, else the embedded default.
func Load(name string) ([]byte, error) {
	clean := cleanSpecPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	data, err := SpecsFS.ReadFile(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownSpec
	}
	return data, err
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	data, err := ScriptsFS.ReadFile(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownSpec
	}
	return data, err
}

func cleanSpecPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "tuning/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := cleanSpecPath(path)
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	return "scripts/" + s
}

func diskPath(clean string) string {
	return filepath.Join(DiskDir, filepath.FromSlash(clean))
}
