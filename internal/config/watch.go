package config

import (
	"context"
	"path/filepath"

	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever it changes and hands the fresh
// config to onChange. It watches the parent directory so editors that
// replace the file on save are still seen. Watch returns once the watcher
// is installed; the loop runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return err
	}

	log := logging.Or(nil).WithPrefix("config")

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := LoadFile(target)
				if err != nil {
					log.Warn("config reload failed", logging.Path(target), logging.Error(err))
					continue
				}
				log.Info("config reloaded", logging.Path(target), logging.Model(cfg.LLM.Model))
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", logging.Error(err))
			}
		}
	}()

	return nil
}
