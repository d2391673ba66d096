// Package config loads the accessmap TOML configuration file.
//
// Precedence is flags, then the file, then [Default]. The file is read
// from --config, or from ./accessmap.toml when that exists.
//
//	[source]
//	topology = "https://cdn.jsdelivr.net/npm/us-atlas@3/states-albers-10m.json"
//	data     = "GuttmacherInstituteAbortionDataByState.csv"
//
//	[render]
//	width    = 975
//	height   = 610
//	tooltips = true
//
//	[server]
//	addr             = ":8080"
//	cors_origins     = ["*"]
//	shutdown_timeout = "10s"
//
//	[cache]
//	backend   = "redis"
//	ttl       = "168h"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/loader"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "accessmap.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

var backends = []string{BackendFile, BackendRedis, BackendMongo, BackendNone}

// Config is the full configuration.
type Config struct {
	Source SourceConfig `toml:"source"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`

	path string
}

// SourceConfig locates the two input resources.
type SourceConfig struct {
	Topology string `toml:"topology"`
	Data     string `toml:"data"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Tooltips bool    `toml:"tooltips"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	CORSOrigins     []string `toml:"cors_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Duration is a time.Duration written as a string ("10s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Topology: loader.DefaultTopology,
			Data:     loader.DefaultData,
		},
		Render: RenderConfig{
			Width:    975,
			Height:   610,
			Tooltips: true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Cache: CacheConfig{
			Backend:       BackendFile,
			TTL:           Duration{cache.ArtifactTTL},
			MongoDatabase: "accessmap",
		},
	}
}

// Load reads path over the defaults. An empty path means DefaultFile if it
// exists, otherwise the defaults alone. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the config was read from, or "".
func (c Config) Path() string { return c.path }

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render width and height must not be negative")
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend %q (must be one of: %s)", c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend mongo requires mongo_uri")
	}
	if c.Server.ShutdownTimeout.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}
