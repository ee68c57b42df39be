// Package config loads Sentinel's runtime configuration. It follows
// jra3-linear-fuse's internal/config pattern: a defaulted struct,
// overridable by a YAML file, then by environment variables, with the
// environment lookup injected so tests never touch the real process
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration object.
type Config struct {
	// TargetRoot is loaded from the file or SENTINEL_TARGET_ROOT, but no
	// command reads it: each command takes its root as an argument, and
	// mutations are not confined to this subtree.
	TargetRoot string `yaml:"target_root"`

	WAL     WALConfig     `yaml:"wal"`
	Vector  VectorConfig  `yaml:"vector"`
	Rules   RulesConfig   `yaml:"rules"`
	Log     LogConfig     `yaml:"log"`
}

// WALConfig controls where journals are persisted. Only Directory is
// read; OperationCap, LockRetryInterval and LockTimeout are not used (the
// apply_rules cap comes from RulesConfig.MaxOperations, and the journal
// lock blocks with no timeout).
type WALConfig struct {
	Directory          string        `yaml:"directory"`
	OperationCap       int           `yaml:"operation_cap"`
	LockRetryInterval  time.Duration `yaml:"lock_retry_interval"`
	LockTimeout        time.Duration `yaml:"lock_timeout"`
}

// VectorConfig holds embedding-index settings. They are not passed to the
// index: vfsx builds it with vectorindex's own defaults.
type VectorConfig struct {
	Dimension          int     `yaml:"dimension"`
	TagSimilarity      float64 `yaml:"tag_similarity"`
	PreviewBytes       int     `yaml:"preview_bytes"`
	CacheDirectory     string  `yaml:"cache_directory"`
}

// RulesConfig controls rule evaluation limits.
type RulesConfig struct {
	MaxOperations int `yaml:"max_operations"`
}

// LogConfig controls the shared logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration, matching the reference
// values named in spec.md (5000 operation cap, 384-D embeddings, 0.5
// tag-similarity threshold, 4 KiB previews).
func Default() *Config {
	return &Config{
		WAL: WALConfig{
			Directory:         defaultWALDir(),
			OperationCap:      5000,
			LockRetryInterval: 50 * time.Millisecond,
			LockTimeout:       5 * time.Second,
		},
		Vector: VectorConfig{
			Dimension:      384,
			TagSimilarity:  0.5,
			PreviewBytes:   4096,
			CacheDirectory: defaultCacheDir(),
		},
		Rules: RulesConfig{
			MaxOperations: 5000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration using the real process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv loads the default configuration, overlays path (if it
// exists and is non-empty), then applies environment overrides via
// getenv. Tests supply an isolated getenv instead of os.Getenv.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if root := getenv("SENTINEL_TARGET_ROOT"); root != "" {
		cfg.TargetRoot = root
	}
	if dir := getenv("SENTINEL_WAL_DIR"); dir != "" {
		cfg.WAL.Directory = dir
	}
	if lvl := getenv("SENTINEL_LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}

	return cfg, nil
}

func defaultWALDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "sentinel", "wal")
	}
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sentinel", "wal")
	}
	return filepath.Join(home, ".cache", "sentinel", "wal")
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "sentinel", "vector_cache")
	}
	return filepath.Join(os.TempDir(), "sentinel", "vector_cache")
}
