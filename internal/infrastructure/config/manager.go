package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/logger"
)

// ErrRequiresRestart is returned by TryReload when the file changed keys that
// only take effect after a restart. Reloadable keys are still applied.
var ErrRequiresRestart = errors.New("configuration change requires restart")

// ReloadFunc is notified after a successful reload with the previous and new config.
type ReloadFunc func(old, new *Config)

// ConfigManager owns the live configuration and hot-reloads whitelisted keys.
type ConfigManager struct {
	path   string
	logger logger.Logger

	mu        sync.RWMutex
	current   *Config
	callbacks []ReloadFunc

	debounce time.Duration
}

// NewConfigManager creates a manager seeded with an already loaded config.
func NewConfigManager(path string, initial *Config, log logger.Logger) *ConfigManager {
	if log == nil {
		log = logger.Nop{}
	}
	return &ConfigManager{
		path:     path,
		logger:   log,
		current:  initial,
		debounce: 250 * time.Millisecond,
	}
}

// Get returns the current configuration. Callers must not mutate it.
func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnReload registers a callback run after each applied reload.
func (m *ConfigManager) OnReload(fn ReloadFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// TryReload re-reads the config file and applies reloadable keys.
// The running config is left untouched when the file fails to load or validate.
func (m *ConfigManager) TryReload() error {
	next, err := Load(m.path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	m.mu.Lock()
	old := m.current
	changed := ChangedKeys(old, next)

	var static []string
	merged := *old
	for _, key := range changed {
		if !IsReloadable(key) {
			static = append(static, key)
			continue
		}
		applyReloadable(&merged, next, key)
	}

	applied := len(changed) > len(static)
	if applied {
		m.current = &merged
	}
	callbacks := append([]ReloadFunc(nil), m.callbacks...)
	m.mu.Unlock()

	if applied {
		m.logger.Info("configuration reloaded", "changed", changed)
		for _, fn := range callbacks {
			fn(old, &merged)
		}
	}

	if len(static) > 0 {
		for _, key := range static {
			m.logger.Warn("configuration change ignored until restart",
				"key", key,
				"reason", getRestartReason(key),
			)
		}
		return ErrRequiresRestart
	}

	return nil
}

// Watch reloads the config whenever its file is written, until ctx is done.
// The parent directory is watched so editors that replace the file are handled.
func (m *ConfigManager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go m.run(ctx, watcher)
	return nil
}

func (m *ConfigManager) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target := filepath.Clean(m.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts of writes from a single save
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Reset(m.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := m.TryReload(); err != nil && !errors.Is(err, ErrRequiresRestart) {
				m.logger.Error("automatic config reload failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("config watcher error", "error", err)
		}
	}
}

// ChangedKeys lists the config keys that differ between a and b, at the
// granularity used by the reload whitelist.
func ChangedKeys(a, b *Config) []string {
	var keys []string
	add := func(key string, differs bool) {
		if differs {
			keys = append(keys, key)
		}
	}

	add("logging.level", a.Logging.Level != b.Logging.Level)
	add("logging.format", a.Logging.Format != b.Logging.Format)
	add("render.max_text_length", a.Render.MaxTextLength != b.Render.MaxTextLength)
	add("server", a.Server != b.Server)
	add("storage.type", a.Storage.Type != b.Storage.Type)
	add("storage.sqlite.path", a.Storage.SQLite.Path != b.Storage.SQLite.Path)
	add("storage.mysql", !reflect.DeepEqual(a.Storage.MySQL, b.Storage.MySQL))
	add("slack", a.Slack != b.Slack)
	add("app", a.App != b.App)
	add("delivery", a.Delivery != b.Delivery)

	return keys
}

func applyReloadable(dst, src *Config, key string) {
	switch key {
	case "logging.level":
		dst.Logging.Level = src.Logging.Level
	case "logging.format":
		dst.Logging.Format = src.Logging.Format
	case "render.max_text_length":
		dst.Render.MaxTextLength = src.Render.MaxTextLength
	}
}
