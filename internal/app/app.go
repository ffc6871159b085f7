// Package app assembles the layerport application: the settings tree, its
// persistence sources, change watching and logging.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/layerport/layerport/internal/setting"
	"github.com/layerport/layerport/internal/setting/luadef"
	"github.com/layerport/layerport/internal/setting/persist"
	"github.com/layerport/layerport/internal/setting/source"
	"github.com/layerport/layerport/internal/setting/watch"
)

// Options configure the application.
type Options struct {
	// SettingsPath is the persistent settings file. Empty selects
	// settings.toml under the user config directory.
	SettingsPath string

	// DefinitionPath optionally names a Lua script that returns the
	// settings tree definition, replacing the built-in tree.
	DefinitionPath string

	// LogLevel is the minimum level to log ("debug", "info", "warn",
	// "error").
	LogLevel string

	// WatchSettings reloads persistent settings when the settings file
	// changes on disk. The reload runs on the watcher's goroutine and the
	// settings tree is not safe for concurrent use, so enable this only
	// when nothing else reads or mutates the tree while the watcher runs.
	WatchSettings bool
}

// App owns the settings tree and its persistence wiring.
type App struct {
	settings   *setting.Group
	registry   *persist.Registry
	session    *source.Memory
	persistent *source.TOML
	watcher    *watch.Watcher
	logger     *Logger
	watchLog   *Logger
}

// New creates the application: it builds the settings tree, registers the
// session and persistent sources, and optionally starts watching the
// settings file.
func New(opts Options) (*App, error) {
	cfg := DefaultLoggerConfig()
	cfg.Level = ParseLogLevel(opts.LogLevel)
	logger := NewLogger(cfg)

	settings, err := buildSettings(opts.DefinitionPath)
	if err != nil {
		return nil, fmt.Errorf("building settings tree: %w", err)
	}

	path := opts.SettingsPath
	if path == "" {
		path, err = defaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		settings:   settings,
		session:    source.NewMemory(SourceSession),
		persistent: source.NewTOML(SourcePersistent, path),
		logger:     logger,
		watchLog:   logger.WithComponent("watch"),
	}
	a.registry = persist.NewRegistry(a.session, a.persistent)

	if opts.WatchSettings {
		// The watcher registers the parent directory, which must exist.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
		w, err := watch.New(a.onSettingsFileChange, 250*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("starting settings watcher: %w", err)
		}
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("watching %q: %w", path, err)
		}
		a.watcher = w
	}

	return a, nil
}

func buildSettings(definitionPath string) (*setting.Group, error) {
	if definitionPath == "" {
		return DefaultSettings()
	}
	desc, err := luadef.LoadFile(definitionPath)
	if err != nil {
		return nil, err
	}
	return setting.GroupFromDescription(desc)
}

func defaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "layerport", "settings.toml"), nil
}

// Settings returns the root of the settings tree.
func (a *App) Settings() *setting.Group { return a.settings }

// Registry returns the source registry.
func (a *App) Registry() *persist.Registry { return a.registry }

// SettingsPath returns the persistent settings file path.
func (a *App) SettingsPath() string { return a.persistent.Path() }

// Logger returns the application logger.
func (a *App) Logger() *Logger { return a.logger }

// Load reads the whole tree from its configured sources.
func (a *App) Load() persist.Result {
	result := persist.LoadGroup(a.settings, a.registry)
	a.logResult("load", result)
	return result
}

// Save writes the whole tree to its configured sources.
func (a *App) Save() persist.Result {
	result := persist.SaveGroup(a.settings, a.registry)
	a.logResult("save", result)
	return result
}

// Reset restores every setting to its default, except those tagged to be
// kept.
func (a *App) Reset() {
	a.settings.Reset()
	a.logger.Info("settings reset to defaults")
}

// Close stops the watcher, if any.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Close()
}

// onSettingsFileChange reloads persistent values after the settings file
// was modified externally. Session values are left untouched. It runs on
// the watcher's goroutine and mutates the tree there; see
// Options.WatchSettings.
func (a *App) onSettingsFileChange(e watch.Event) {
	if e.Op == watch.Remove {
		a.watchLog.Warn("settings file removed: %s", e.Path)
		return
	}

	a.watchLog.Info("settings file changed, reloading: %s", e.Path)
	result := persist.LoadGroup(a.settings, a.registry, SourcePersistent)
	a.logResult("reload", result)
}

func (a *App) logResult(op string, result persist.Result) {
	switch result.Status {
	case persist.Success:
		a.logger.Debug("settings %s: %s", op, result.Status)
	case persist.NotAllSettingsFound:
		a.logger.Debug("settings %s: %s: %s", op, result.Status, result.Message)
	default:
		a.logger.Error("settings %s: %s: %s", op, result.Status, result.Message)
	}
}
