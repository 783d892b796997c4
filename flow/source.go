package flow

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
)

// Loader produces the current graph from some backing store.
type Loader func(ctx context.Context) (graph.Graph, error)

// FileLoader reads the graph document at path.
func FileLoader(path string) Loader {
	return func(context.Context) (graph.Graph, error) {
		return graph.LoadFile(path)
	}
}

// Poll loads immediately and then once per interval until ctx is done.
func Poll(ctx context.Context, interval time.Duration, load Loader, state *State) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		g, err := load(ctx)
		_ = state.Update(g, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FileWatcher reloads a graph document whenever it changes on disk. The
// parent directory is watched so editors that replace the file are seen.
type FileWatcher struct {
	path     string
	state    *State
	debounce time.Duration
	log      *zap.SugaredLogger

	mu            sync.Mutex
	debounceTimer *time.Timer
}

func NewFileWatcher(path string, debounce time.Duration, state *State, log *zap.SugaredLogger) *FileWatcher {
	return &FileWatcher{path: filepath.Clean(path), state: state, debounce: debounce, log: log}
}

// Run loads the file once, then watches it until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(fw.path)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", fw.path)
	}

	fw.reload()

	for {
		select {
		case <-ctx.Done():
			fw.mu.Lock()
			if fw.debounceTimer != nil {
				fw.debounceTimer.Stop()
			}
			fw.mu.Unlock()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.log.Debugw("Flow file changed", "file", event.Name, "op", event.Op.String())
			fw.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.log.Warnw("Flow watcher error", "error", err)
		}
	}
}

// scheduleReload debounces rapid file changes into one reload.
func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounce, fw.reload)
}

func (fw *FileWatcher) reload() {
	g, err := graph.LoadFile(fw.path)
	_ = fw.state.Update(g, err)
}
