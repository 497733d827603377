// Package config loads engine configuration from defaults, a YAML file, and
// CTXCACHE_* environment variable overrides, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// Config is the complete engine configuration (spec §6 "Configuration
// surface").
type Config struct {
	StorePath       string `yaml:"store_path"`
	NotesRoot       string `yaml:"notes_root"`
	FragmentLength  int    `yaml:"fragment_length"`
	FragmentOverlap int    `yaml:"fragment_overlap"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDims   int    `yaml:"embedding_dims"`
	ResultLimit     int    `yaml:"result_limit"`
	RRFConstant     int    `yaml:"rrf_constant"`
}

// Default returns the engine's hardcoded defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		StorePath:       filepath.Join(home, ".context-cache", "store.db"),
		NotesRoot:       ".",
		FragmentLength:  500,
		FragmentOverlap: 50,
		EmbeddingModel:  "BAAI/bge-small-en-v1.5",
		EmbeddingDims:   384,
		ResultLimit:     10,
		RRFConstant:     60,
	}
}

// Path returns the configuration file path: $CTXCACHE_CONFIG if set,
// otherwise ~/.config/ctxcache/config.yaml (XDG_CONFIG_HOME honored).
func Path() string {
	if p := os.Getenv("CTXCACHE_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ctxcache", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ctxcache", "config.yaml")
	}
	return filepath.Join(home, ".config", "ctxcache", "config.yaml")
}

// Load builds the effective configuration: defaults, overridden by the
// config file at Path() if present, overridden by CTXCACHE_* environment
// variables.
func Load() (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(Path()); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ctxerrors.InvalidInput(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return ctxerrors.InvalidInput(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	c.mergeNonZero(&parsed)
	return nil
}

func (c *Config) mergeNonZero(o *Config) {
	if o.StorePath != "" {
		c.StorePath = o.StorePath
	}
	if o.NotesRoot != "" {
		c.NotesRoot = o.NotesRoot
	}
	if o.FragmentLength != 0 {
		c.FragmentLength = o.FragmentLength
	}
	if o.FragmentOverlap != 0 {
		c.FragmentOverlap = o.FragmentOverlap
	}
	if o.EmbeddingModel != "" {
		c.EmbeddingModel = o.EmbeddingModel
	}
	if o.EmbeddingDims != 0 {
		c.EmbeddingDims = o.EmbeddingDims
	}
	if o.ResultLimit != 0 {
		c.ResultLimit = o.ResultLimit
	}
	if o.RRFConstant != 0 {
		c.RRFConstant = o.RRFConstant
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CTXCACHE_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("CTXCACHE_NOTES_ROOT"); v != "" {
		c.NotesRoot = v
	}
	if v := os.Getenv("CTXCACHE_FRAGMENT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FragmentLength = n
		}
	}
	if v := os.Getenv("CTXCACHE_FRAGMENT_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FragmentOverlap = n
		}
	}
	if v := os.Getenv("CTXCACHE_EMBEDDING_MODEL"); v != "" {
		c.EmbeddingModel = v
	}
	if v := os.Getenv("CTXCACHE_EMBEDDING_DIMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EmbeddingDims = n
		}
	}
	if v := os.Getenv("CTXCACHE_RESULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ResultLimit = n
		}
	}
	if v := os.Getenv("CTXCACHE_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RRFConstant = n
		}
	}
}
