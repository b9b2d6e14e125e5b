package runner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mcncl/jsontyper/internal/errors"
)

// Watcher regenerates the mirror of a single .json file whenever it is
// created or written under src.
type Watcher struct {
	runner *Runner
	src    string
	dist   string
	fs     *fsnotify.Watcher

	// OnResult, when set, receives every regeneration result.
	OnResult func(Result)
}

// NewWatcher starts watching src and all of its subdirectories. Events are
// only processed once Run is called.
func (r *Runner) NewWatcher(src, dist string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewInputError("failed to start file watcher", err)
	}
	w := &Watcher{runner: r, src: src, dist: dist, fs: fw}
	if err := w.addTree(src); err != nil {
		_ = fw.Close()
		return nil, errors.NewInputError(fmt.Sprintf("watching %s", src), err)
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// Run processes events until ctx is done. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	lang := w.runner.gen.Language()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.runner.logger.Warn("watch error", slog.String("error", err.Error()))
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := w.addTree(ev.Name); err != nil {
					w.runner.logger.Warn("watch directory failed",
						slog.String("path", ev.Name),
						slog.String("error", err.Error()),
					)
				}
				continue
			}
			if !isJSON(ev.Name) {
				continue
			}

			job, err := directoryJob(w.src, w.dist, ev.Name, lang)
			if err != nil {
				continue
			}
			w.runner.logger.Debug("source changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			res := w.runner.RunJob(ctx, job)
			if w.OnResult != nil {
				w.OnResult(res)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Watch mirrors src into dist once and then keeps regenerating changed files
// until ctx is done.
func (r *Runner) Watch(ctx context.Context, src, dist string) error {
	jobs, err := PlanDirectory(src, dist, r.gen.Language())
	if err != nil {
		return err
	}
	w, err := r.NewWatcher(src, dist)
	if err != nil {
		return err
	}
	if report := r.Run(ctx, jobs); len(report.Failed()) > 0 {
		r.logger.Warn("initial generation had failures", slog.Int("failed", len(report.Failed())))
	}
	return w.Run(ctx)
}
