// Package file is a TOML-backed implementation of driven.ConfigStore.
// Configuration lives in a single file under the coursekit config
// directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// fileConfig is the on-disk shape of the configuration.
type fileConfig struct {
	Server struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port,omitempty"`
		Username string `toml:"username"`
		KeyFile  string `toml:"key_file,omitempty"`
	} `toml:"server"`

	Local struct {
		SubmissionsPath string `toml:"submissions_path,omitempty"`
		SyncWorkers     int    `toml:"sync_workers,omitempty"`
		PublishTimeout  string `toml:"publish_timeout,omitempty"`
	} `toml:"local"`
}

// ConfigStore loads and persists the client configuration as TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	raw      fileConfig
	cfg      domain.ClientConfig
}

// NewConfigStore creates a store rooted at configDir. If configDir is
// empty it defaults to ~/.coursekit. An absent config file is not an
// error; the store starts with defaults.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".coursekit")
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{filePath: filepath.Join(configDir, "config.toml")}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the loaded configuration with defaults applied.
func (s *ConfigStore) Config() *domain.ClientConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	return &cfg
}

// KeyFile returns the configured SSH private key path.
func (s *ConfigStore) KeyFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Server.KeyFile
}

// Load reads the configuration file. A missing file leaves the store at
// defaults.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.raw = fileConfig{}
			s.cfg = s.toDomain()
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	s.raw = raw
	s.cfg = s.toDomain()
	return nil
}

// Save persists the current configuration with restricted permissions.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(s.raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Set replaces the stored configuration and persists it.
func (s *ConfigStore) Set(cfg domain.ClientConfig, keyFile string) error {
	s.mu.Lock()
	s.raw.Server.Host = cfg.ServerHost
	s.raw.Server.Port = cfg.ServerPort
	s.raw.Server.Username = cfg.ServerUsername
	s.raw.Server.KeyFile = keyFile
	s.raw.Local.SubmissionsPath = cfg.SubmissionsPath
	s.raw.Local.SyncWorkers = cfg.SyncWorkers
	if cfg.PublishTimeout != 0 {
		s.raw.Local.PublishTimeout = cfg.PublishTimeout.String()
	} else {
		s.raw.Local.PublishTimeout = ""
	}
	s.cfg = s.toDomain()
	s.mu.Unlock()
	return s.Save()
}

// toDomain maps the file shape onto the domain configuration with
// defaults applied (caller must hold the lock).
func (s *ConfigStore) toDomain() domain.ClientConfig {
	cfg := domain.ClientConfig{
		ServerHost:      s.raw.Server.Host,
		ServerPort:      s.raw.Server.Port,
		ServerUsername:  s.raw.Server.Username,
		SubmissionsPath: s.raw.Local.SubmissionsPath,
		SyncWorkers:     s.raw.Local.SyncWorkers,
	}
	if s.raw.Local.PublishTimeout != "" {
		// A malformed duration falls back to the default rather than
		// failing startup.
		if d, err := time.ParseDuration(s.raw.Local.PublishTimeout); err == nil {
			cfg.PublishTimeout = d
		}
	}
	cfg.ApplyDefaults()
	return cfg
}
