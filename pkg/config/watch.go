package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watchDebounce is how long Watch waits after the last file event before
// reloading. Editors and os.WriteFile truncate before writing, so the first
// event can see an empty file.
var watchDebounce = 100 * time.Millisecond

// Watch reloads the global configuration whenever the config file is
// written, created or renamed into place, and calls onChange with the new
// configuration. Invalid files are logged and the previous configuration
// stays in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*MetastoreConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are noticed
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logrus.WithField("path", path).Info("watching configuration file")

	target := filepath.Clean(path)
	reload := time.NewTimer(watchDebounce)
	if !reload.Stop() {
		<-reload.C
	}
	defer reload.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			reload.Reset(watchDebounce)
		case <-reload.C:
			cfg, err := Reload()
			if err != nil {
				logrus.WithError(err).Warn("configuration reload failed, keeping previous configuration")
				continue
			}
			logrus.WithField("path", path).Info("configuration reloaded")
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("configuration watcher error")
		}
	}
}
