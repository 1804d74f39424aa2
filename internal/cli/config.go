package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/foldlab/cyclefold/pkg/pipeline"
	"github.com/foldlab/cyclefold/pkg/unfold"
)

// Cache backend names accepted in the config file.
const (
	CacheBackendNone  = "none"
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

// Config holds the defaults configurable through the TOML config file.
// Flags always override config values.
type Config struct {
	// Policy is the default delta-derivation policy: "label" or "constraint".
	Policy string `toml:"policy"`

	// Separator is the default identifier separator.
	Separator string `toml:"separator"`

	// OutputDir is the default output directory. Empty means next to the
	// input file.
	OutputDir string `toml:"output_dir"`

	// Listen is the default address for the serve command.
	Listen string `toml:"listen"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of "none", "file" (default), "redis".
	Backend string `toml:"backend"`

	// RedisAddr is the host:port of the Redis instance for the redis backend.
	RedisAddr string `toml:"redis_addr"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Policy:    pipeline.DefaultPolicy,
		Separator: unfold.DefaultSeparator,
		Listen:    ":8401",
		Cache: CacheConfig{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error; unset fields fall back to
// defaults. A malformed file is ignored rather than blocking the CLI.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()

	if path == "" {
		p, err := configPath()
		if err != nil {
			return cfg
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var fileCfg Config
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return cfg
	}

	if fileCfg.Policy != "" {
		cfg.Policy = fileCfg.Policy
	}
	if fileCfg.Separator != "" {
		cfg.Separator = fileCfg.Separator
	}
	if fileCfg.OutputDir != "" {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.Listen != "" {
		cfg.Listen = fileCfg.Listen
	}
	if fileCfg.Cache.Backend != "" {
		cfg.Cache.Backend = fileCfg.Cache.Backend
	}
	if fileCfg.Cache.RedisAddr != "" {
		cfg.Cache.RedisAddr = fileCfg.Cache.RedisAddr
	}

	return cfg
}

// configPath returns the config file path using XDG standard
// (~/.config/cyclefold/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
