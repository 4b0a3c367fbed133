package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/syssam/modelgraph/load"
)

// debouncePeriod coalesces bursts of file events into one run.
var debouncePeriod = 200 * time.Millisecond

// watcher re-runs a function whenever descriptor files change. A single
// descriptor file is watched through its directory, so editors that save by
// renaming a new file over the old one keep triggering runs.
type watcher struct {
	fs   *fsnotify.Watcher
	file string
	skip string
	log  *zap.Logger
}

// newWatcher watches path, a descriptor file or directory. Events on skip,
// typically the graph output file, are ignored.
func newWatcher(path, skip string, log *zap.Logger) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", path)
	}
	w := &watcher{log: log}
	dir := abs
	if !info.IsDir() {
		w.file, dir = abs, filepath.Dir(abs)
	}
	if skip != "" {
		if w.skip, err = filepath.Abs(skip); err != nil {
			return nil, errors.Wrapf(err, "watch %s", path)
		}
	}
	if w.fs, err = fsnotify.NewWatcher(); err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := w.fs.Add(dir); err != nil {
		w.fs.Close()
		return nil, errors.Wrapf(err, "watch %s", path)
	}
	return w, nil
}

// Run calls fn after each burst of relevant changes until ctx is done.
// Errors returned by fn are logged and do not stop the watcher.
func (w *watcher) Run(ctx context.Context, fn func() error) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("schema changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debouncePeriod)
			} else {
				timer.Reset(debouncePeriod)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := fn(); err != nil {
				w.log.Error("extraction failed", zap.Error(err))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	switch {
	case name == w.skip:
		return false
	case w.file != "":
		return name == w.file
	default:
		return load.IsDescriptor(name)
	}
}

// Close stops watching.
func (w *watcher) Close() error { return w.fs.Close() }
