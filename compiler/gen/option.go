package gen

import (
	"errors"
	"path/filepath"
	"runtime"

	"github.com/syssam/tabula/compiler/load"
)

// DefaultHeader is the first line of every generated file.
const DefaultHeader = "Code generated by tabulagen. DO NOT EDIT."

// Config configures code generation.
type Config struct {
	// Header is the comment at the top of generated files.
	Header string
	// FileName is the name of the file written into each entity package.
	FileName string
	// Workers bounds the packages generated concurrently.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if header == "" {
			return NewOptionError("Header", nil, "header cannot be empty")
		}
		c.Header = header
		return nil
	}
}

// WithFileName sets the generated file name. It must be a bare Go file name.
func WithFileName(name string) Option {
	return func(c *Config) error {
		if name == "" || filepath.Base(name) != name || filepath.Ext(name) != ".go" {
			return NewOptionError("FileName", name, "must be a file name ending in .go")
		}
		c.FileName = name
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewOptionError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:   DefaultHeader,
		FileName: load.DefaultGenerated,
		Workers:  runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
