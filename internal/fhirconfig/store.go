// Package fhirconfig persists named FHIR server configurations as one JSON
// file per configuration under a project-level hidden directory, and selects
// among them for the request executor.
package fhirconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Authentication modes a saved configuration can declare.
const (
	ModeOAuth       = "oauth"
	ModeManualToken = "manual-token"
	ModeOpen        = "open"
)

// DefaultDirName is the sentinel directory searched for when discovering
// the project root.
const DefaultDirName = ".notekit"

var (
	ErrNoProjectRoot   = errors.New("no project root found")
	ErrNoConfigs       = errors.New("no server configurations found")
	ErrAmbiguousConfig = errors.New("multiple server configurations found")
)

// Config is one named FHIR server configuration. Caller-supplied extra
// fields from the config-collection form survive on disk; loading ignores
// them.
type Config struct {
	Name        string `json:"name"`
	FHIRBaseURL string `json:"fhirBaseUrl"`
	AccessToken string `json:"accessToken,omitempty"`
	Mode        string `json:"mode"`
	SavedAt     string `json:"savedAt,omitempty"`
}

// FindProjectRoot walks upward from start until a directory containing
// dirName is found. It fails with ErrNoProjectRoot at the filesystem root.
func FindProjectRoot(start, dirName string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, dirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s directory between %s and the filesystem root", ErrNoProjectRoot, dirName, start)
		}
		dir = parent
	}
}

// Store reads and writes configurations under <projectRoot>/<dirName>/configs.
type Store struct {
	dir string
}

func NewStore(projectRoot, dirName string) *Store {
	return &Store{dir: filepath.Join(projectRoot, dirName, "configs")}
}

// Dir returns the directory holding the per-name config files.
func (s *Store) Dir() string { return s.dir }

// Save persists a configuration from the raw fields submitted by a caller.
// "name" and "fhirBaseUrl" are required; unknown fields are written through
// unchanged. A savedAt stamp is added and an existing file with the same
// name is overwritten (last write wins, no locking).
func (s *Store) Save(raw map[string]interface{}) (*Config, error) {
	name, _ := raw["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("config is missing required field \"name\"")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	baseURL, _ := raw["fhirBaseUrl"].(string)
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("config %q is missing required field \"fhirBaseUrl\"", name)
	}
	if _, ok := raw["mode"].(string); !ok {
		raw["mode"] = ModeManualToken
	}
	raw["savedAt"] = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config %q: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return nil, fmt.Errorf("write config %q: %w", name, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", name, err)
	}
	return cfg, nil
}

// Load reads the named configuration, failing if it does not exist.
func (s *Store) Load(name string) (*Config, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no configuration named %q in %s", name, s.dir)
		}
		return nil, fmt.Errorf("read config %q: %w", name, err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %q is not valid JSON: %w", name, err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg, nil
}

// Delete removes the named configuration.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no configuration named %q in %s", name, s.dir)
		}
		return fmt.Errorf("delete config %q: %w", name, err)
	}
	return nil
}

// List returns all stored configurations sorted by name. A missing config
// directory is an empty list, not an error.
func (s *Store) List() ([]*Config, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config directory: %w", err)
	}
	var configs []*Config
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		cfg, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs, nil
}

// Select resolves the configuration to use for a request. An explicit name
// wins; otherwise a sole stored configuration is auto-selected. Zero
// configurations or several without an explicit name are errors — there is
// deliberately no most-recently-modified fallback, so an operator can never
// hit the wrong server because of a filesystem timestamp.
func (s *Store) Select(name string) (*Config, error) {
	if name != "" {
		return s.Load(name)
	}
	configs, err := s.List()
	if err != nil {
		return nil, err
	}
	switch len(configs) {
	case 0:
		return nil, fmt.Errorf("%w in %s: run `notekit config-server` and save one", ErrNoConfigs, s.dir)
	case 1:
		return configs[0], nil
	default:
		names := make([]string, len(configs))
		for i, c := range configs {
			names[i] = c.Name
		}
		return nil, fmt.Errorf("%w (%s): pass --config to choose one", ErrAmbiguousConfig, strings.Join(names, ", "))
	}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// validateName rejects names that would escape the config directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("config name must not be empty")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid config name %q", name)
	}
	return nil
}
