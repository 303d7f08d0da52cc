package seed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last file event before a
// re-import.
const DefaultDebounce = 200 * time.Millisecond

// Watch re-imports the seed file whenever it changes, until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file on save are followed. A burst of events triggers one import after
// debounce of quiet.
func (i *Importer) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(i.path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	i.logger.Info("seed watcher: started", slog.String("path", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			i.logger.Info("seed watcher: stopped")
			return nil

		case <-fire:
			if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
				// Removed; links stay until the file comes back.
				continue
			}
			if _, err := i.Import(ctx); err != nil && ctx.Err() == nil {
				i.logger.Warn("seed watcher: import failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			i.logger.Error("seed watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
