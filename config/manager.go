package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configFileName = "config.json"

// Manager owns the on-disk JSON config and notifies subscribers when it
// changes, either through Update or through an external edit of the file.
type Manager struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	cfg      Config
	watcher  *fsnotify.Watcher
	onChange func(Config)

	// set while our own write is settling so the watcher ignores it
	selfWrite atomic.Bool

	timerMu sync.Mutex
	timer   *time.Timer
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
	debounce      time.Duration
}

type ManagerOption func(*managerOptions)

func NewManager(opts ...ManagerOption) (*Manager, error) {
	options := managerOptions{debounce: 300 * time.Millisecond}
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

	cfg, err := loadOrCreateConfig(path, options.initialConfig)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, cfg: cfg, debounce: options.debounce}, nil
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
	var cfg Config
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Set changes a single field addressed by its json name, e.g.
// Set("market_provider", "yahoo"). List fields take comma separated values.
func (m *Manager) Set(key, value string) error {
	cfg := m.Get()
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	current, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	switch current.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean: %w", key, err)
		}
		fields[key] = b
	case float64:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		fields[key] = n
	case []any, nil:
		fields[key] = splitList(value)
	default:
		fields[key] = value
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return m.UpdateFromJSON(string(raw))
}

func (m *Manager) Update(newCfg Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}
	if reflect.DeepEqual(m.Get(), newCfg) {
		return nil
	}

	m.selfWrite.Store(true)
	defer time.AfterFunc(m.debounce, func() { m.selfWrite.Store(false) })

	if err := writeConfigFile(m.path, newCfg); err != nil {
		m.selfWrite.Store(false)
		return err
	}
	m.apply(newCfg)
	return nil
}

// Watch starts watching the config file until ctx is done. Calling it again
// only replaces the callback.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watcher != nil {
		m.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("create config watcher: %w", err)
	}
	m.watcher = watcher
	m.mu.Unlock()

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if m.relevant(evt) && !m.selfWrite.Load() {
				m.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Config] watcher error: %v", err)
		case <-ctx.Done():
			m.timerMu.Lock()
			if m.timer != nil {
				m.timer.Stop()
			}
			m.timerMu.Unlock()
			return
		}
	}
}

func (m *Manager) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != filepath.Clean(m.path) {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (m *Manager) scheduleReload() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.reloadFromDisk)
}

func (m *Manager) reloadFromDisk() {
	var cfg Config
	err := loadConfigFromFile(m.path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// file removed or mid-rename; put the current config back
		if err := writeConfigFile(m.path, m.Get()); err != nil {
			log.Printf("[Config] recreate failed: %v", err)
		}
		return
	case err != nil:
		log.Printf("[Config] reload failed: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[Config] rejected edited config: %v", err)
		return
	}
	if reflect.DeepEqual(m.Get(), cfg) {
		return
	}
	log.Printf("[Config] reloaded %s", m.path)
	m.apply(cfg)
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

func loadOrCreateConfig(path string, initial *Config) (Config, error) {
	var cfg Config
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := loadConfigFromFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	if initial != nil {
		cfg = *initial
	} else {
		cfg = *DefaultConfigWithRoot(filepath.Dir(path))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if err := writeConfigFile(path, cfg); err != nil {
		return Config{}, fmt.Errorf("write initial config: %w", err)
	}
	return cfg, nil
}

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("config file %s is empty", path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "QuantumGPT", configFileName), nil
}

// writeConfigFile replaces path atomically through a temp file in the same dir.
func writeConfigFile(path string, cfg Config) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	fail := func(stage string, err error) error {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%s config: %w", stage, err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&cfg); err != nil {
		return fail("encode", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("flush", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir != "" {
			o.configPath = filepath.Join(dir, configFileName)
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

func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}
