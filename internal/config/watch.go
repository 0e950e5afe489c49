package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the bridge config whenever the file at path changes and
// hands each successfully loaded Config to onReload. A change that does not
// load (unreadable file, bad YAML, failed validation) is logged and dropped,
// so the bridge keeps running on its last good settings. Watch blocks until
// ctx is cancelled.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("watching bridge config", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !touchesContents(ev) {
				continue
			}

			// An atomic save (write temp file, rename over the target)
			// replaces the watched inode, so the path has to be registered
			// again before later edits are visible.
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				if err := w.Add(path); err != nil {
					slog.Error("bridge config vanished, cannot re-watch",
						"path", path, "err", err)
					continue
				}
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("bridge config change rejected, keeping last good settings",
					"path", path, "err", err)
				continue
			}
			slog.Info("bridge config reloaded", "path", path)
			onReload(cfg)

			// Some editors save via rename even when the event above read
			// as a plain write; a redundant Add is harmless.
			_ = w.Add(path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("bridge config watcher", "err", err)
		}
	}
}

// touchesContents reports whether ev can have altered what Load would read.
// Chmod-only events are ignored.
func touchesContents(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
