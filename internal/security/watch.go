package security

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watchConfig reloads the manager's rules whenever the config file changes.
// The watch is on the containing directory because editors typically replace
// the file rather than write it in place.
func watchConfig(m *Manager, path string, logger *logrus.Logger) error {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				rules, err := LoadRules(path)
				if err != nil {
					logger.WithError(err).Warn("Security config changed but could not be reloaded")
					continue
				}
				m.Reload(rules)
				logger.WithField("deny_patterns", len(rules.AccessControl.DenyFiles)).Info("Security rules reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Debug("Security config watcher error")
			}
		}
	}()

	logger.WithField("path", path).Debug("Watching security config for changes")
	return nil
}
