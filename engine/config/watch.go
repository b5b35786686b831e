package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-render/engine/core"
)

// Watch reloads path whenever it is written and sends every configuration
// that differs from the previous one. Invalid files are logged and skipped.
// The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, initial Config) (<-chan Config, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	// Editors replace files on save, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	updates := make(chan Config)
	go func() {
		defer close(updates)
		defer w.Close()
		last := initial
		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					core.LogWarn("configuration not reloaded: %s", err)
					continue
				}
				if cfg == last {
					continue
				}
				select {
				case updates <- cfg:
					last = cfg
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				core.LogError(err.Error())
			case <-ctx.Done():
				return
			}
		}
	}()
	return updates, nil
}
