package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/dialect/sql"
)

// Outputs are the supported output formats.
var Outputs = []string{"table", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if _, err := dialect.Lookup(c.Database.Dialect); err != nil {
		errs = append(errs, fmt.Errorf("database.dialect: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required\nHint: set it in tabula.yaml, TABULA_DATABASE__DSN or --dsn"))
	}
	for key, name := range map[string]string{
		"tables.movies":    c.Tables.Movies,
		"tables.users":     c.Tables.Users,
		"tables.favorites": c.Tables.Favorites,
	} {
		if !sql.IsValidIdentifier(name) {
			errs = append(errs, fmt.Errorf("%s: invalid table name %q", key, name))
		}
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if !slices.Contains(Outputs, c.Output) {
		errs = append(errs, fmt.Errorf("output: unknown format %q", c.Output))
	}
	if c.Stats.SlowThreshold < 0 {
		errs = append(errs, errors.New("stats.slow_threshold must not be negative"))
	}
	if c.Cache.Size < 0 || c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.size and cache.ttl must not be negative"))
	}
	return errors.Join(errs...)
}
