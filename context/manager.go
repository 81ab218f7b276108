package context

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/config"
	"github.com/crmarques/storectl/yamlutil"
)

// Manager persists the context catalog as a YAML file and resolves the
// current context on demand. All operations reload the file so concurrent
// CLI invocations see each other's changes.
type Manager struct {
	ConfigFilePath string

	// ClientOptions are applied to every client the manager builds.
	ClientOptions []api.ClientOption

	mu sync.Mutex
}

type storedContext struct {
	Name    string                `yaml:"name"`
	Context *config.ContextConfig `yaml:"context"`
}

type contextStore struct {
	Contexts       []storedContext `yaml:"contexts"`
	CurrentContext string          `yaml:"currentContext"`
}

// AddContext registers a new named context. The first context added becomes
// current automatically.
func (m *Manager) AddContext(name string, cfg *config.ContextConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("context name is required")
	}
	if cfg == nil {
		return errors.New("context configuration is required")
	}
	cfg = config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	store, err := m.loadStore()
	if err != nil {
		return err
	}

	if _, ok := store.lookup(name); ok {
		return fmt.Errorf("context %q already exists", name)
	}

	store.add(name, cfg)
	if store.CurrentContext == "" {
		store.CurrentContext = name
	}
	return m.saveStore(store)
}

// AddContextFile registers a context from a YAML configuration file.
func (m *Manager) AddContextFile(name string, file string) error {
	cfg, err := readContextConfig(file)
	if err != nil {
		return err
	}
	return m.AddContext(name, cfg)
}

// ReplaceContext updates an existing context, or adds it when missing.
func (m *Manager) ReplaceContext(name string, cfg *config.ContextConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("context name is required")
	}
	if cfg == nil {
		return errors.New("context configuration is required")
	}
	cfg = config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	store, err := m.loadStore()
	if err != nil {
		return err
	}

	store.replace(name, cfg)
	if store.CurrentContext == "" {
		store.CurrentContext = name
	}
	return m.saveStore(store)
}

func (m *Manager) DeleteContext(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.loadStore()
	if err != nil {
		return err
	}

	if !store.remove(name) {
		return fmt.Errorf("context %q not found", name)
	}
	if store.CurrentContext == name {
		store.CurrentContext = ""
	}
	return m.saveStore(store)
}

func (m *Manager) RenameContext(currentName string, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	currentName = strings.TrimSpace(currentName)
	newName = strings.TrimSpace(newName)
	if currentName == "" || newName == "" {
		return errors.New("both current and new context names are required")
	}
	if currentName == newName {
		return errors.New("new context name must be different")
	}

	store, err := m.loadStore()
	if err != nil {
		return err
	}

	targetIdx := -1
	for idx := range store.Contexts {
		if store.Contexts[idx].Name == currentName {
			targetIdx = idx
			break
		}
	}
	if targetIdx == -1 {
		return fmt.Errorf("context %q not found", currentName)
	}
	for _, entry := range store.Contexts {
		if entry.Name == newName {
			return fmt.Errorf("context %q already exists", newName)
		}
	}

	store.Contexts[targetIdx].Name = newName
	if store.CurrentContext == currentName {
		store.CurrentContext = newName
	}
	return m.saveStore(store)
}

// SetCurrentContext marks an existing context as the one commands use by
// default.
func (m *Manager) SetCurrentContext(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.loadStore()
	if err != nil {
		return err
	}

	if _, ok := store.lookup(name); !ok {
		return fmt.Errorf("context %q not found", name)
	}
	store.CurrentContext = name
	return m.saveStore(store)
}

func (m *Manager) CurrentContextName() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.loadStore()
	if err != nil {
		return "", err
	}
	if store.CurrentContext == "" {
		return "", errors.New("no current context configured")
	}
	return store.CurrentContext, nil
}

func (m *Manager) ListContexts() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.loadStore()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(store.Contexts))
	for _, entry := range store.Contexts {
		if entry.Name != "" {
			names = append(names, entry.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Manager) GetContextConfig(name string) (*config.ContextConfig, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("context name is required")
	}

	store, err := m.loadStore()
	if err != nil {
		return nil, false, err
	}

	cfg, ok := store.lookup(name)
	if !ok {
		return nil, false, nil
	}
	if cfg == nil {
		return &config.ContextConfig{}, true, nil
	}
	return cfg, true, nil
}

// LoadCurrent resolves the current context into a usable client and session
// manager, applying any environment overrides first.
func (m *Manager) LoadCurrent() (Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.loadStore()
	if err != nil {
		return Context{}, err
	}

	name := store.CurrentContext
	if override, ok := envContextName(); ok {
		name = override
	}
	if name == "" {
		return Context{}, errors.New("no current context configured; run \"storectl config add-context\" first")
	}

	cfg, ok := store.lookup(name)
	if !ok {
		return Context{}, fmt.Errorf("context %q is missing", name)
	}

	cfgCopy, err := cloneContextConfig(cfg)
	if err != nil {
		return Context{}, err
	}
	if err := applyEnvOverrides(cfgCopy); err != nil {
		return Context{}, fmt.Errorf("failed to apply environment overrides for context %q: %w", name, err)
	}

	return buildContext(name, config.Normalize(cfgCopy), m.ClientOptions...)
}

// InitConfig creates an empty catalog file when none exists.
func (m *Manager) InitConfig() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := m.configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to inspect config file %q: %w", path, err)
	}

	return m.saveStore(&contextStore{Contexts: []storedContext{}})
}

func (m *Manager) configFilePath() (string, error) {
	if strings.TrimSpace(m.ConfigFilePath) != "" {
		return m.ConfigFilePath, nil
	}

	info, err := config.ConfigFilePathInfo()
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

func (m *Manager) loadStore() (*contextStore, error) {
	path, err := m.configFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return &contextStore{Contexts: []storedContext{}}, nil
	default:
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &contextStore{Contexts: []storedContext{}}, nil
	}

	var store contextStore
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if store.Contexts == nil {
		store.Contexts = []storedContext{}
	}
	return &store, nil
}

func (m *Manager) saveStore(store *contextStore) error {
	path, err := m.configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yamlutil.MarshalWithIndent(store, 2)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func readContextConfig(file string) (*config.ContextConfig, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read context config %q: %w", file, err)
	}

	var cfg config.ContextConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse context config %q: %w", file, err)
	}
	return config.Normalize(&cfg), nil
}

func cloneContextConfig(cfg *config.ContextConfig) (*config.ContextConfig, error) {
	if cfg == nil {
		return &config.ContextConfig{}, nil
	}

	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to clone context config: %w", err)
	}
	var cloned config.ContextConfig
	if err := yaml.Unmarshal(encoded, &cloned); err != nil {
		return nil, fmt.Errorf("failed to clone context config: %w", err)
	}
	return &cloned, nil
}

func (s *contextStore) lookup(name string) (*config.ContextConfig, bool) {
	for idx := range s.Contexts {
		if s.Contexts[idx].Name == name {
			return s.Contexts[idx].Context, true
		}
	}
	return nil, false
}

func (s *contextStore) add(name string, cfg *config.ContextConfig) {
	s.Contexts = append(s.Contexts, storedContext{Name: name, Context: cfg})
}

func (s *contextStore) replace(name string, cfg *config.ContextConfig) {
	for idx := range s.Contexts {
		if s.Contexts[idx].Name == name {
			s.Contexts[idx].Context = cfg
			return
		}
	}
	s.add(name, cfg)
}

func (s *contextStore) remove(name string) bool {
	for idx := range s.Contexts {
		if s.Contexts[idx].Name == name {
			s.Contexts = append(s.Contexts[:idx], s.Contexts[idx+1:]...)
			return true
		}
	}
	return false
}
