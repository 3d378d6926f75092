// Package file is a TOML-backed implementation of driven.ConfigStore.
// Configuration lives in a TOML file within the cx config directory and
// keeps accepting legacy option spellings, flagging them for removal.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// legacyAliases maps deprecated option names to their canonical keys.
// Aliased values are honoured unchanged but reported via LegacyKeysUsed.
var legacyAliases = map[string]string{
	"pip_interop_enabled": "interoperability",
	"experimental_solver": "solver",
}

// ConfigStore is a file-based configuration store using TOML.
type ConfigStore struct {
	mu         sync.RWMutex
	filePath   string
	data       map[string]any
	legacyUsed map[string]bool
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.cx/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".cx")
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath:   filepath.Join(configDir, "config.toml"),
		data:       make(map[string]any),
		legacyUsed: make(map[string]bool),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Load reads the configuration file from disk.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	parsed := make(map[string]any)
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.data = parsed
	s.legacyUsed = make(map[string]bool)
	return nil
}

// Save persists the configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

// Get retrieves a configuration value by canonical key. When the key is
// absent but a legacy alias for it is present, the aliased value is
// returned and the alias flagged for removal.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key)
}

func (s *ConfigStore) getLocked(key string) (any, bool) {
	if val, ok := s.data[key]; ok {
		return val, true
	}
	for legacy, canonical := range legacyAliases {
		if canonical != key {
			continue
		}
		if val, ok := s.data[legacy]; ok {
			s.legacyUsed[legacy] = true
			return val, true
		}
	}
	return nil, false
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// Set stores a configuration value under its canonical key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Settings assembles the typed settings consumed by core services.
func (s *ConfigStore) Settings() domain.Settings {
	settings := domain.DefaultSettings()

	if val, ok := s.Get("interoperability"); ok {
		if b, ok := val.(bool); ok {
			settings.Interoperability = b
		}
	}
	settings.Solver = s.GetString("solver")

	if reporters := s.reporterSpecs(); len(reporters) > 0 {
		settings.Reporters = reporters
	}
	return settings
}

// reporterSpecs parses the [[reporters]] table array, honouring the
// legacy `json = true` shorthand for a {json, stdout} pair.
func (s *ConfigStore) reporterSpecs() []domain.ReporterSpec {
	s.mu.Lock()
	defer s.mu.Unlock()

	var specs []domain.ReporterSpec
	if raw, ok := s.data["reporters"]; ok {
		for _, table := range reporterTables(raw) {
			spec := domain.ReporterSpec{}
			if backend, ok := table["backend"].(string); ok {
				spec.Backend = backend
			}
			if output, ok := table["output"].(string); ok {
				spec.Output = output
			}
			if spec.Backend != "" && spec.Output != "" {
				specs = append(specs, spec)
			}
		}
		return specs
	}

	if enabled, ok := s.data["json"].(bool); ok && enabled {
		s.legacyUsed["json"] = true
		return []domain.ReporterSpec{{Backend: "json", Output: "stdout"}}
	}
	return nil
}

// reporterTables normalises the decoded shape of the reporters array.
// TOML decoders produce either []map[string]any or []any depending on the
// document.
func reporterTables(raw any) []map[string]any {
	switch v := raw.(type) {
	case []map[string]any:
		return v
	case []any:
		tables := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			if table, ok := entry.(map[string]any); ok {
				tables = append(tables, table)
			}
		}
		return tables
	default:
		return nil
	}
}

// LegacyKeysUsed reports which deprecated option spellings the loaded
// configuration relied on, sorted for stable output.
func (s *ConfigStore) LegacyKeysUsed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.legacyUsed))
	for k := range s.legacyUsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
