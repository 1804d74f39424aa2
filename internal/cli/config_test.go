package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	want := DefaultConfig()
	if cfg != want {
		t.Errorf("LoadConfig(missing) = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `policy = "constraint"

[cache]
backend = "redis"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(path)
	if cfg.Policy != "constraint" {
		t.Errorf("Policy = %q, want constraint", cfg.Policy)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	// Unset fields keep defaults
	if cfg.Separator != "_" {
		t.Errorf("Separator = %q, want default _", cfg.Separator)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q, want default", cfg.Cache.RedisAddr)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("policy = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(path)
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig(malformed) = %+v, want defaults", cfg)
	}
}

func TestConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/custom/config/cyclefold/config.toml" {
		t.Errorf("configPath() = %q", path)
	}
}

func TestCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/custom/cache/cyclefold" {
		t.Errorf("cacheDir() = %q", dir)
	}
}
