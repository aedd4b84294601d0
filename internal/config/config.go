// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// RepoDir is the name of the repository directory inside the working root.
	RepoDir = ".forge"

	fileName    = "config.json"
	envLogLevel = "FORGE_LOG_LEVEL"
)

type Config struct {
	LogLevel string `json:"log_level"` // debug, info, warn, error

	Diff struct {
		ContextLines int `json:"context_lines"`
	} `json:"diff"`

	Add struct {
		IgnoreDirs []string `json:"ignore_dirs"`
	} `json:"add"`

	Cache struct {
		Objects int `json:"objects"`
	} `json:"cache"`
}

func Default() *Config {
	var c Config
	c.LogLevel = "warn"
	c.Diff.ContextLines = 3
	c.Add.IgnoreDirs = []string{RepoDir, ".git", "node_modules", "vendor", "dist", "build", "__pycache__"}
	c.Cache.Objects = 256
	return &c
}

// Load reads a JSON config file on top of the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	config.normalize()

	return config, nil
}

// ForRepo loads <repoDir>/config.json when present and applies environment
// overrides. A missing file yields the defaults.
func ForRepo(repoDir string) (*Config, error) {
	config, err := Load(filepath.Join(repoDir, fileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		config = Default()
	}
	config.applyEnv()
	return config, nil
}

// FromEnv returns the defaults with environment overrides, for commands that
// run before a repository exists.
func FromEnv() *Config {
	config := Default()
	config.applyEnv()
	return config
}

func (c *Config) applyEnv() {
	if level := os.Getenv(envLogLevel); level != "" {
		c.LogLevel = level
	}
}

func (c *Config) normalize() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Diff.ContextLines < 0 {
		c.Diff.ContextLines = d.Diff.ContextLines
	}
	if c.Cache.Objects <= 0 {
		c.Cache.Objects = d.Cache.Objects
	}
	if len(c.Add.IgnoreDirs) == 0 {
		c.Add.IgnoreDirs = d.Add.IgnoreDirs
	}
}
