package config

import (
	"context"
	"path/filepath"

	"fortio.org/log"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written and delivers the new tunables.
// The parent directory is watched so editors that replace the file on save
// are seen too. Invalid files are logged and skipped. The channel is closed
// when ctx is done.
func Watch(ctx context.Context, path string) (<-chan Tunables, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan Tunables, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					log.Warnf("[Config] ignoring reload of %s: %v", path, err)
					continue
				}
				log.Infof("[Config] reloaded %s", path)
				t := cfg.Tunables()
				// keep only the latest pending update
				select {
				case <-out:
				default:
				}
				select {
				case out <- t:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("[Config] watcher error: %v", err)
			}
		}
	}()
	return out, nil
}
