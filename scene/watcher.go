package scene

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/galaxyfield/aimcore/logging"
)

// GraphFileSuffix is the suffix of graph files exported by the layout tooling.
const GraphFileSuffix = ".data.json"

// Watcher reloads a graph file whenever it is written. The parent directory is watched rather
// than the file itself so that editors and exporters replacing the file by rename are seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  logging.Logger
}

// NewWatcher starts watching path.
func NewWatcher(path string, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", filepath.Dir(abs)), fsw.Close())
	}
	return &Watcher{path: abs, watcher: fsw, logger: logger}, nil
}

// Run delivers every successfully reloaded graph to onChange until ctx is done or the watcher is
// closed. Files that fail to load are logged and skipped; the previous graph stays in effect.
func (w *Watcher) Run(ctx context.Context, onChange func(*Graph)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("file watcher error", "error", err)
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			g, err := Load(w.path)
			if err != nil {
				w.logger.Warnw("cannot reload graph", "path", w.path, "error", err)
				continue
			}
			w.logger.Infow("graph reloaded", "path", w.path,
				"clusters", len(g.Clusters), "nodes", len(g.Nodes), "interactive", len(g.Interactive))
			onChange(g)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
