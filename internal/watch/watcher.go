// Package watch triggers rebuilds when project sources change.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Config selects what is watched.
type Config struct {
	// Root is the project directory.
	Root string

	// Include lists top-level entries below Root that trigger a rebuild.
	// Directories are watched recursively.
	Include []string

	// Ignore lists name patterns skipped at any depth.
	Ignore []string

	// Debounce collapses bursts of events into one rebuild.
	Debounce time.Duration
}

// DefaultConfig watches the sources, assets and build script of root.
func DefaultConfig(root string) Config {
	return Config{
		Root:    root,
		Include: []string{"sources", "assets", "CMakeLists.txt"},
		Ignore: []string{
			".git",
			"build",
			"packages",
			"libraries",
			"*.swp",
			"*~",
			".#*",
		},
		Debounce: 300 * time.Millisecond,
	}
}

// Watcher reports debounced batches of changed paths.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	log     *logrus.Logger
}

// New creates a watcher. Nothing is watched until Run.
func New(config Config, log *logrus.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{config: config, watcher: fsWatcher, log: log}, nil
}

// Run watches until ctx is cancelled, calling onChange with the sorted set
// of paths changed since the previous call. onChange runs on the watching
// goroutine; events arriving meanwhile are batched for the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	defer w.watcher.Close()

	// the root itself, for top-level files such as CMakeLists.txt
	if err := w.watcher.Add(w.config.Root); err != nil {
		return err
	}
	for _, name := range w.config.Include {
		dir := filepath.Join(w.config.Root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := w.addRecursive(dir); err != nil {
				return err
			}
		}
	}

	pending := map[string]bool{}
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Debugf("watch: cannot watch %s: %v", event.Name, err)
					}
				}
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debugf("watch: %s %s", event.Op, event.Name)
			pending[event.Name] = true
			fire = time.After(w.config.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("watch: event queue overflowed, some changes may be batched late")
				continue
			}
			w.log.Debugf("watch: %v", err)

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]bool{}
			onChange(ctx, paths)
		}
	}
}

// addRecursive adds a directory and all subdirectories to the watcher
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Relevant reports whether a change to path should trigger a rebuild.
func (w *Watcher) Relevant(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts {
		if w.ignored(part) {
			return false
		}
	}

	for _, name := range w.config.Include {
		if parts[0] == name {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(name string) bool {
	for _, pattern := range w.config.Ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
