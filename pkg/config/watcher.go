package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	onChange func(*Config)
	done     chan struct{}
}

// Watch starts watching path. onChange runs on the watcher goroutine with every
// successfully reloaded config; files that fail to parse are logged and skipped.
// The parent directory is watched so editors that replace the file are noticed.
func Watch(path string, logger *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		logger:   logger,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("ignoring invalid config change", zap.String("path", w.path), zap.Error(err))
				continue
			}

			w.logger.Info("config reloaded", zap.String("path", w.path))
			w.onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
