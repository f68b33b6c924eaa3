package venom

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CacheDirEnv overrides the artifact cache location when set.
const CacheDirEnv = "VENOMCACHE"

// Config carries engine settings. All fields have workable zero-adjacent
// defaults; a missing config file is not an error.
type Config struct {
	// CacheDir is the artifact cache root. Empty means resolve from the
	// environment, falling back to the per-user cache directory.
	CacheDir string `yaml:"cache_dir"`

	// NoDiskCache keeps compiled artifacts in memory only.
	NoDiskCache bool `yaml:"no_disk_cache"`

	// Debug prints compilation progress and cache decisions.
	Debug bool `yaml:"debug"`

	// KeepArtifacts caps how many cached IR files survive a cleanup pass.
	KeepArtifacts int `yaml:"keep_artifacts"`
}

func DefaultConfig() Config {
	return Config{KeepArtifacts: 64}
}

// LoadConfig reads a yaml config file, layering it over the defaults. A
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.KeepArtifacts <= 0 {
		cfg.KeepArtifacts = DefaultConfig().KeepArtifacts
	}
	return cfg, nil
}

// ResolveCacheDir picks the artifact cache root: explicit config first, then
// the environment override, then the user cache directory.
func (c Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "venom"), nil
}
