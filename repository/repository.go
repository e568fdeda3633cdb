package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/schema"
)

// Driver hands out one connection per operation. *sql.Driver,
// *sql.StatsDriver and *sql.DebugDriver implement it.
type Driver interface {
	// Dialect returns the dialect name of the connections.
	Dialect() string
	// Acquire returns a connection the caller closes when the operation ends.
	Acquire(ctx context.Context) (sql.Conn, error)
}

var (
	_ Driver = (*sql.Driver)(nil)
	_ Driver = (*sql.StatsDriver)(nil)
	_ Driver = (*sql.DebugDriver)(nil)
)

// Option configures a repository.
type Option func(*config)

type config struct {
	logger *slog.Logger
	cache  tabula.Cache
	ttl    time.Duration
	table  string
}

// WithLogger sets the logger of diagnostics. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCache caches read results in c for ttl. Writes through the repository
// invalidate every cached read of its table.
func WithCache(c tabula.Cache, ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.cache = c
		cfg.ttl = ttl
	}
}

// WithTable binds the repository to table instead of the entity's default table.
func WithTable(table string) Option {
	return func(c *config) { c.table = table }
}

// Strict is the data-access API of one entity type that returns every error.
// Lookups that match nothing fail with *tabula.NotFoundError.
type Strict[T any, P interface {
	*T
	schema.Entity
}] struct {
	drv   Driver
	b     *sql.Builder
	desc  *schema.Descriptor
	table string
	log   *slog.Logger
	cache tabula.Cache
	ttl   time.Duration
}

// Repository is the lenient data-access API of one entity type. Execution
// and mapping failures are logged and reported as an empty result: a nil
// entity, an empty slice or a nil error. Shape errors and unsupported
// operators are always returned.
type Repository[T any, P interface {
	*T
	schema.Entity
}] struct {
	s *Strict[T, P]
}

// New returns a lenient repository of T over drv.
//
//	movies, err := repository.New[Movie](drv, repository.WithLogger(logger))
func New[T any, P interface {
	*T
	schema.Entity
}](drv Driver, opts ...Option) (*Repository[T, P], error) {
	s, err := NewStrict[T, P](drv, opts...)
	if err != nil {
		return nil, err
	}
	return &Repository[T, P]{s: s}, nil
}

// NewStrict returns a strict repository of T over drv.
func NewStrict[T any, P interface {
	*T
	schema.Entity
}](drv Driver, opts ...Option) (*Strict[T, P], error) {
	desc, err := schema.Describe[T, P]()
	if err != nil {
		return nil, err
	}
	b, err := sql.Dialect(drv.Dialect())
	if err != nil {
		return nil, err
	}
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	table := cfg.table
	if table == "" {
		table = desc.Table
	}
	if !sql.IsValidIdentifier(table) {
		return nil, tabula.NewShapeError(desc.Name, "", "invalid table name "+table)
	}
	return &Strict[T, P]{
		drv:   drv,
		b:     b,
		desc:  desc,
		table: table,
		log:   cfg.logger,
		cache: cfg.cache,
		ttl:   cfg.ttl,
	}, nil
}

// Descriptor returns the entity descriptor.
func (s *Strict[T, P]) Descriptor() *schema.Descriptor { return s.desc }

// TableName returns the table the repository reads and writes.
func (s *Strict[T, P]) TableName() string { return s.table }

// Table returns a copy of the repository bound to another table. An invalid
// name fails every operation with *tabula.ShapeError.
func (s *Strict[T, P]) Table(name string) *Strict[T, P] {
	c := *s
	c.table = name
	return &c
}

// Lenient returns the lenient API over the same configuration.
func (s *Strict[T, P]) Lenient() *Repository[T, P] { return &Repository[T, P]{s: s} }

// Strict returns the strict API over the same configuration.
func (r *Repository[T, P]) Strict() *Strict[T, P] { return r.s }

// Descriptor returns the entity descriptor.
func (r *Repository[T, P]) Descriptor() *schema.Descriptor { return r.s.desc }

// TableName returns the table the repository reads and writes.
func (r *Repository[T, P]) TableName() string { return r.s.table }

// Table returns a copy of the repository bound to another table.
func (r *Repository[T, P]) Table(name string) *Repository[T, P] {
	return &Repository[T, P]{s: r.s.Table(name)}
}
