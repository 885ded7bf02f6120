package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Status tells how Load arrived at the returned configuration.
type Status int

const (
	// Loaded means the file was read as is.
	Loaded Status = iota
	// Created means the file did not exist and the defaults were written.
	Created
	// Replaced means the file was malformed; it was moved aside and the
	// defaults were written in its place.
	Replaced
	// Fallback means the file could not be read; the defaults are used
	// without touching the file.
	Fallback
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Created:
		return "created"
	case Replaced:
		return "replaced"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// BackupSuffix is appended to a malformed config file before it is replaced.
const BackupSuffix = ".bak"

// Load reads the configuration at path. The returned config is never nil:
// a missing or malformed file yields the defaults, which are persisted. err
// describes what went wrong along the way and is informational unless the
// caller decides otherwise.
func Load(path string) (*Config, Status, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return cfg, Created, err
		}
		return cfg, Created, nil
	}
	if err != nil {
		return Default(), Fallback, fmt.Errorf("cannot read config file: %w", err)
	}

	cfg, err := decode(path, bytes.NewReader(b))
	if err == nil {
		return cfg, Loaded, nil
	}

	decodeErr := fmt.Errorf("cannot parse config file %s: %w", path, err)
	cfg = Default()
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return cfg, Fallback, errors.Join(decodeErr, fmt.Errorf("cannot back up config file: %w", err))
	}
	if err := Save(path, cfg); err != nil {
		return cfg, Replaced, errors.Join(decodeErr, err)
	}

	return cfg, Replaced, decodeErr
}

// Save writes cfg to path, as YAML for .yml/.yaml files and JSON otherwise.
func Save(path string, cfg *Config) error {
	var b []byte
	var err error
	if isYAML(path) {
		b, err = yaml.Marshal(cfg)
	} else {
		b, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}

	return nil
}

func decode(path string, r io.Reader) (*Config, error) {
	if isYAML(path) {
		return FromYAML(r)
	}
	return FromJSON(r)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}
