// Package config loads the settings of the tabula command.
//
// Values are layered, later sources overriding earlier ones: defaults, the
// YAML file (tabula.yaml or --config), TABULA_ environment variables and
// command-line flags. Nested keys are separated by "." in files and flags
// and by "__" in environment variables:
//
//	TABULA_DATABASE__DSN=postgres://localhost/movies
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment variables read by Load.
const EnvPrefix = "TABULA_"

// DefaultFiles are the config files looked up in the working directory.
var DefaultFiles = []string{"tabula.yaml", "tabula.yml"}

// Config holds all command options.
type Config struct {
	Database Database `koanf:"database"`
	Tables   Tables   `koanf:"tables"`
	Log      Log      `koanf:"log"`
	Stats    Stats    `koanf:"stats"`
	Cache    Cache    `koanf:"cache"`
	Debug    bool     `koanf:"debug"`  // Log every statement
	Output   string   `koanf:"output"` // table, json or yaml

	// File is the config file that was read, empty when none.
	File string `koanf:"-"`
}

// Database selects the dialect and connection.
type Database struct {
	Dialect string `koanf:"dialect"`
	Driver  string `koanf:"driver"` // database/sql driver, defaults to the dialect's
	DSN     string `koanf:"dsn"`
}

// Tables names the table of each entity.
type Tables struct {
	Movies    string `koanf:"movies"`
	Users     string `koanf:"users"`
	Favorites string `koanf:"favorites"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text or json
}

// Stats configures query statistics.
type Stats struct {
	SlowThreshold time.Duration `koanf:"slow_threshold"`
}

// Cache configures the result cache. A zero size disables it.
type Cache struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// Defaults returns the default values of every key.
func Defaults() map[string]any {
	return map[string]any{
		"database.dialect":     "sqlite",
		"database.driver":      "",
		"database.dsn":         "",
		"tables.movies":        "Movies",
		"tables.users":         "Users",
		"tables.favorites":     "UserFavorites",
		"log.level":            "info",
		"log.format":           "text",
		"stats.slow_threshold": "200ms",
		"cache.size":           0,
		"cache.ttl":            "1m",
		"debug":                false,
		"output":               "table",
	}
}

// flagKeys maps flag names to the config keys they set.
var flagKeys = map[string]string{
	"dialect":    "database.dialect",
	"driver":     "database.driver",
	"dsn":        "database.dsn",
	"log-level":  "log.level",
	"log-format": "log.format",
	"cache-size": "cache.size",
	"debug":      "debug",
	"output":     "output",
}

// Flags registers the flags Load reads on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./tabula.yaml)")
	fs.String("dialect", "", "SQL dialect (postgres, mysql, sqlite, sqlserver)")
	fs.String("driver", "", "database/sql driver name (default: the dialect's)")
	fs.String("dsn", "", "data source name")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (text, json)")
	fs.Int("cache-size", 0, "cache up to this many results (0 disables caching)")
	fs.Bool("debug", false, "log every statement")
	fs.StringP("output", "o", "", "output format (table, json, yaml)")
}

// Load reads the configuration from the file named by the "config" flag or a
// default file, the environment and the flags that were set. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := ""
	if flags != nil {
		path, _ = flags.GetString("config")
	}
	path = findFile(path)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns TABULA_DATABASE__DSN into database.dsn.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// findFile returns the explicit path or the first default file that exists.
func findFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Logger returns a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
}
