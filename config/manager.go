package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Manager owns the JSON config file. Reads decode over a base config, so a
// file that omits a field or a whole thresholds block keeps the defaults.
type Manager struct {
	path     string
	base     Config
	debounce time.Duration

	mu       sync.RWMutex
	cfg      Config
	onChange func(Config)
	watching bool
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
	debounce      time.Duration
}

type ManagerOption func(*managerOptions)

func NewManager(opts ...ManagerOption) (*Manager, error) {
	options := managerOptions{
		debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}

	path := options.configPath
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	m := &Manager{
		path:     path,
		base:     *DefaultConfigWithRoot(filepath.Dir(path)),
		debounce: options.debounce,
	}
	if options.initialConfig != nil {
		m.base = *options.initialConfig
	}

	cfg, err := m.read()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		cfg = m.base
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
	default:
		return nil, err
	}
	m.cfg = cfg
	return m, nil
}

// read loads the file over the base config and validates the result.
func (m *Manager) read() (Config, error) {
	cfg := m.base
	if err := loadConfigFromFile(m.path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", m.path, err)
	}
	return cfg, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) UpdateFromJSON(jsonStr string) error {
	cfg := m.base
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Update validates cfg, persists it and makes it current.
func (m *Manager) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if sameConfig(m.Get(), cfg) {
		return nil
	}
	if err := writeConfigFile(m.path, cfg); err != nil {
		return err
	}
	m.apply(cfg)
	return nil
}

// Set assigns a single field addressed by its JSON name, e.g. "strategy" or
// "thresholds.pe".
func (m *Manager) Set(key, value string) error {
	raw, err := json.Marshal(m.Get())
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	node := doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			return fmt.Errorf("unknown config key %q", key)
		}
		node = child
	}
	last := parts[len(parts)-1]
	current, ok := node[last]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	// string and decimal fields keep the raw text
	var parsed any = value
	if _, isString := current.(string); !isString {
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	node[last] = parsed

	updated, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := m.UpdateFromJSON(string(updated)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Watch reloads the file when it changes on disk and calls onChange with each
// accepted config. An edit that fails validation is logged and ignored.
// Watching stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.stopWatching()
		return err
	}
	// editors replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		m.stopWatching()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) stopWatching() {
	m.mu.Lock()
	m.watching = false
	m.mu.Unlock()
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer m.stopWatching()
	defer watcher.Close()

	target := filepath.Clean(m.path)
	var pending <-chan time.Time
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != target || !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(m.debounce)
		case <-pending:
			pending = nil
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	cfg, err := m.read()
	if err != nil {
		log.Warn().Err(err).Str("Path", m.path).Msg("config reload rejected, keeping previous")
		return
	}
	if sameConfig(m.Get(), cfg) {
		return
	}
	log.Info().Str("Path", m.path).Msg("config reloaded")
	m.apply(cfg)
}

// sameConfig compares the encoded form, since equal decimals can differ in
// representation after a round trip through the file.
func sameConfig(a, b Config) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

func (m *Manager) apply(cfg Config) {
	m.mu.Lock()
	m.cfg = cfg
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(cfg)
	}
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "FundaGo", "config.json"), nil
}

// writeConfigFile replaces path atomically through a temp file in the same dir.
func writeConfigFile(path string, cfg Config) error {
	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	_, err = tmp.Write(append(data, '\n'))
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir != "" {
			o.configPath = filepath.Join(dir, "config.json")
		}
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithInitialConfig sets the config written when no file exists yet. It is
// also the base that partial files are decoded over.
func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}
