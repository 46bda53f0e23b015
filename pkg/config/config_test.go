package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/foamlayout/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvMongoURI, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build != Default().Build || cfg.Server != Default().Server {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvMongoURI, "")
	path := writeConfig(t, `
[build]
depth_in = 1.5
fallback = "bbox"

[cache]
backend = "redis"
redis_url = "redis://cache:6379/1"
ttl = "24h"

[store]
backend = "memory"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.DepthIn != 1.5 || cfg.Build.Fallback != "bbox" {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if cfg.Build.ThicknessIn != 2 {
		t.Errorf("ThicknessIn = %v, want default 2", cfg.Build.ThicknessIn)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Store = %+v, Server = %+v", cfg.Store, cfg.Server)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://env:6379/0")
	t.Setenv(EnvMongoURI, "mongodb://env:27017")
	path := writeConfig(t, `
[cache]
backend = "redis"
redis_url = "redis://file:6379/0"

[store]
backend = "mongo"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.RedisURL != "redis://env:6379/0" {
		t.Errorf("RedisURL = %q, want env override", cfg.Cache.RedisURL)
	}
	if cfg.Store.MongoURI != "mongodb://env:27017" {
		t.Errorf("MongoURI = %q, want env override", cfg.Store.MongoURI)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvMongoURI, "")
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[build`},
		{"unknown key", "[build]\ncolour = \"red\""},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"bad fallback", "[build]\nfallback = \"hull\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
		{"unknown store", "[store]\nbackend = \"s3\""},
		{"negative depth", "[build]\ndepth_in = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := Path(), filepath.Join("/tmp/xdg", "foamlayout", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
