package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/openpointing/glidepoint/gesture"
)

// loadTunables reads a tunables file, picking the codec by extension. The
// result starts from base so a partial file only overrides what it names.
func loadTunables(path string, base gesture.Tunables) (gesture.Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	out := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	case ".toml":
		err = toml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return base, fmt.Errorf("parse tunables %s: %w", path, err)
	}
	return out, nil
}

// watchTunables reloads the tunables file on every write and pushes the
// result through apply. The returned closer stops the watcher.
func watchTunables(path string, base gesture.Tunables, apply func(gesture.Tunables), logger *slog.Logger) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files rather than write in
	// place, which drops the watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	want := filepath.Clean(path)

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != want {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := loadTunables(path, base)
				if err != nil {
					logger.Warn("tunables reload failed", "path", path, "error", err)
					continue
				}
				apply(cfg)
				logger.Info("tunables reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("tunables watcher error", "error", err)
			}
		}
	}()
	return watcher.Close, nil
}
