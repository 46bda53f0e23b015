// Package config loads foamlayout settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/foamlayout/config.toml (or
// ~/.config/foamlayout/config.toml) unless a path is given explicitly. A
// missing file is not an error; every field has a default.
//
//	[build]
//	depth_in = 1.0
//	thickness_in = 2.0
//	fallback = "poly"
//
//	[cache]
//	backend = "file"   # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//
//	[store]
//	backend = "sqlite" # sqlite, mongo or memory
//	path = "/var/lib/foamlayout/packages.db"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "foamlayout"
//
//	[server]
//	addr = ":8080"
//
// FOAMLAYOUT_REDIS_URL and FOAMLAYOUT_MONGO_URI override the connection
// strings so secrets can stay out of the file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

const appName = "foamlayout"

// Environment overrides.
const (
	EnvRedisURL = "FOAMLAYOUT_REDIS_URL"
	EnvMongoURI = "FOAMLAYOUT_MONGO_URI"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is the full settings file.
type Config struct {
	Build  Build  `toml:"build"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

// Build holds layout defaults applied when a request does not set them.
type Build struct {
	DepthIn     float64 `toml:"depth_in"`
	ThicknessIn float64 `toml:"thickness_in"`
	Fallback    string  `toml:"fallback"`
}

// Cache selects the model and artifact cache.
type Cache struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Store selects where layout packages are kept.
type Store struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Build: Build{
			DepthIn:     layout.DefaultDepthIn,
			ThicknessIn: layout.DefaultThicknessIn,
			Fallback:    "poly",
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Store: Store{
			Backend:  StoreSQLite,
			Path:     filepath.Join(dataDir(), "packages.db"),
			Database: "foamlayout",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path over the defaults. An empty path selects [Path]; a missing
// file yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	if c.Build.DepthIn <= 0 || c.Build.ThicknessIn <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "build depth and thickness must be positive")
	}
	switch c.Build.Fallback {
	case "poly", "bbox":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid build fallback: %q", c.Build.Fallback)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreSQLite:
		if err := errors.ValidatePath(c.Store.Path); err != nil {
			return err
		}
	case StoreMongo:
		if err := errors.ValidateURL(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid store backend: %q", c.Store.Backend)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server addr cannot be empty")
	}
	return nil
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(configDir(), "config.toml")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName)
	}
	return appName
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName)
	}
	return appName
}
