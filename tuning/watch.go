package tuning

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var ErrNothingToWatch = errors.New("tuning: nothing to watch")

// FileKind tells yaml specs from brain scripts.
type FileKind uint8

const (
	SpecFile FileKind = iota + 1
	ScriptFile
)

// Change is one settled edit to a tuning file.
type Change struct {
	Path string
	Kind FileKind
}

func (c Change) Name() string {
	return filepath.Base(c.Path)
}

// Retunes reports whether the change only affects player movement constants.
func (c Change) Retunes() bool {
	return c.Kind == SpecFile && c.Name() == "kinematics.yaml"
}

const settleDelay = 100 * time.Millisecond

// Watcher batches file events and reports each edited file once it has
// been quiet for the settle delay. A save that writes a file several times
// yields a single Change.
type Watcher struct {
	Changes chan Change
	Errors  chan error

	fs     *fsnotify.Watcher
	settle time.Duration
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewWatcher watches dirs, or WatchDirs when none are given.
func NewWatcher(dirs ...string) (*Watcher, error) {
	if len(dirs) == 0 {
		dirs = WatchDirs()
	}
	if len(dirs) == 0 {
		return nil, ErrNothingToWatch
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tuning: watch: %w", err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("tuning: watch %s: %w", dir, err)
		}
	}

	w := &Watcher{
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		fs:      fsw,
		settle:  settleDelay,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes Changes and Errors. It is safe to call twice.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]FileKind)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			kind := kindOf(ev)
			if kind == 0 {
				continue
			}
			pending[ev.Name] = kind
			timer.Reset(w.settle)
		case <-timer.C:
			if !w.flush(pending) {
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.stop:
			return
		}
	}
}

// flush sends the pending changes in path order and empties the set.
func (w *Watcher) flush(pending map[string]FileKind) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		select {
		case w.Changes <- Change{Path: p, Kind: pending[p]}:
		case <-w.stop:
			return false
		}
		delete(pending, p)
	}
	return true
}

func kindOf(ev fsnotify.Event) FileKind {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return 0
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".yaml", ".yml":
		return SpecFile
	case ".tengo":
		return ScriptFile
	}
	return 0
}

// WatchDirs lists DiskDir and its scripts directory, skipping any that do not exist.
func WatchDirs() []string {
	var dirs []string
	for _, dir := range []string{DiskDir, filepath.Join(DiskDir, "scripts")} {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
