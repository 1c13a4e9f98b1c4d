package rsm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Config is the client's durable state. Key is the user-memorable credential
// used only during login; Token is the server-issued session cookie replayed
// on subsequent requests. FirstRun gates the enrollment prompt: while it is
// true the client will offer signup/login before doing anything else.
type Config struct {
	Key      *string `json:"key"`
	Token    *string `json:"token"`
	FirstRun bool    `json:"first_run"`
}

// ConfigStore reads and writes the config file. It assumes a single-user CLI
// with non-overlapping invocations, so there is no locking; if two
// invocations race, the last writer wins.
type ConfigStore struct {
	path string
}

// NewConfigStore returns a store backed by the file at path.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

var (
	defaultPathOnce sync.Once
	defaultPath     string
	defaultPathErr  error
)

// DefaultConfigPath resolves the platform config directory once per process
// and returns <config dir>/cli_client/rsm-conf.json, creating the directory
// if needed.
func DefaultConfigPath() (string, error) {
	defaultPathOnce.Do(func() {
		dir, err := os.UserConfigDir()
		if err != nil {
			defaultPathErr = fmt.Errorf("config path: %w", err)
			return
		}
		dir = filepath.Join(dir, "cli_client")
		if err := os.MkdirAll(dir, 0700); err != nil {
			defaultPathErr = fmt.Errorf("config path: %w", err)
			return
		}
		defaultPath = filepath.Join(dir, "rsm-conf.json")
	})
	return defaultPath, defaultPathErr
}

// Load reads the config file. If the file does not exist or is empty, it is
// created holding the defaults (no key, no token, first_run true) and those
// defaults are returned.
func (s *ConfigStore) Load() (*Config, error) {
	fi, err := os.Stat(s.path)
	if os.IsNotExist(err) || (err == nil && fi.Size() == 0) {
		cfg := &Config{FirstRun: true}
		if err := s.Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrFailedToReadConfig)
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrFailedToReadConfig)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		log.WithFields(log.Fields{
			"path":  s.path,
			"cause": err,
		}).Error("Config file is malformed")
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	return &cfg, nil
}

// Save overwrites the config file with cfg, pretty-printed. Key and token
// are stored with any stray newlines stripped.
func (s *ConfigStore) Save(cfg *Config) error {
	clean := *cfg
	if clean.Key != nil {
		k := strings.ReplaceAll(*clean.Key, "\n", "")
		clean.Key = &k
	}
	if clean.Token != nil {
		t := strings.ReplaceAll(*clean.Token, "\n", "")
		clean.Token = &t
	}
	b, err := json.MarshalIndent(&clean, "", "  ")
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrFailedToUpdateConf)
	}
	if err := os.WriteFile(s.path, b, 0600); err != nil {
		log.WithFields(log.Fields{
			"path":  s.path,
			"cause": err,
		}).Error("Could not write config file")
		return fmt.Errorf("%v: %w", err, ErrFailedToUpdateConf)
	}
	return nil
}

// LoadToken is a fast path for the common case: read the file and return the
// stored session token, or ErrNoAuth if there is none.
func (s *ConfigStore) LoadToken() (string, error) {
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	if cfg.Token == nil || *cfg.Token == "" {
		return "", ErrNoAuth
	}
	return *cfg.Token, nil
}
