// Package config loads the jigsaw TOML configuration file.
//
// The file provides defaults for flags the user does not pass on the
// command line; flags always win. A typical config:
//
//	[output]
//	dir = "pieces"
//
//	[split]
//	workers = 4
//
//	[cache]
//	backend = "file"          # file, redis, mongo, none
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[serve]
//	addr = ":8080"
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fkolbe/jigsaw/pkg/errors"
)

// Cache backend names accepted in [cache].backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the root configuration.
type Config struct {
	Output OutputConfig `toml:"output"`
	Split  SplitConfig  `toml:"split"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// OutputConfig controls where piece files are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// SplitConfig controls split execution.
type SplitConfig struct {
	// Workers is the number of pieces rendered concurrently.
	// Zero means one worker per CPU.
	Workers int `toml:"workers"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend only; empty means the default cache dir
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo cache backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig configures serve mode.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Output: OutputConfig{Dir: "pieces"},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "jigsaw",
				Collection: "artifacts",
			},
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// Load reads the config file at path, layered over [Default]. A
// missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone, "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be file, redis, mongo, or none)", c.Cache.Backend)
	}
	if c.Split.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "split workers cannot be negative")
	}
	return nil
}
