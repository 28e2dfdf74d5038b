package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses bursts of file events into one cache clear.
const watchDebounce = 200 * time.Millisecond

// watchDirs are the data directories Watch observes, relative to the site
// root.
var watchDirs = []string{
	"src/data/imoveis",
	"src/data/empreendimentos",
	path.Dir(ManifestPath),
}

// Watch clears the cache whenever a JSON document under the site's data
// directories changes, until ctx is done. A changed manifest is also
// reloaded on next use. Directories that do not exist are skipped.
func (l *Loader) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			slog.Warn("closing watcher", "error", cerr)
		}
	}()

	watched := 0
	for _, dir := range watchDirs {
		p := filepath.Join(root, filepath.FromSlash(dir))
		if err := w.Add(p); err != nil {
			slog.Warn("not watching data directory", "dir", p, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no data directories to watch under %s", root)
	}
	slog.Info("watching site data", "root", root, "dirs", watched)

	var (
		timer           *time.Timer
		fire            <-chan time.Time
		manifestChanged bool
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

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".json" || ev.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("site data changed", "path", ev.Name, "op", ev.Op.String())
			if filepath.Base(ev.Name) == path.Base(ManifestPath) {
				manifestChanged = true
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watching site data", "error", err)

		case <-fire:
			fire = nil
			if manifestChanged {
				l.forgetManifest()
				manifestChanged = false
			}
			l.ClearCache()
		}
	}
}

// forgetManifest drops the memoized manifest so the next load refetches it.
func (l *Loader) forgetManifest() {
	l.mu.Lock()
	l.manifest = nil
	l.mu.Unlock()
}
