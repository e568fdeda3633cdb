package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Verb is the leading keyword of a statement.
type Verb uint8

// Statement verbs counted by QueryStats.
const (
	VerbOther Verb = iota
	VerbSelect
	VerbInsert
	VerbUpdate
	VerbDelete
	numVerbs
)

var verbNames = [numVerbs]string{"other", "select", "insert", "update", "delete"}

// String returns the lower-case keyword.
func (v Verb) String() string {
	if v < numVerbs {
		return verbNames[v]
	}
	return fmt.Sprintf("Verb(%d)", v)
}

// VerbOf returns the verb of query. Leading white space and parentheses are
// skipped.
func VerbOf(query string) Verb {
	q := strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexAny(q, " \t\r\n(")
	if end < 0 {
		end = len(q)
	}
	switch strings.ToUpper(q[:end]) {
	case "SELECT", "WITH":
		return VerbSelect
	case "INSERT":
		return VerbInsert
	case "UPDATE":
		return VerbUpdate
	case "DELETE":
		return VerbDelete
	}
	return VerbOther
}

// QueryStats counts the statements run through a StatsDriver. All fields
// are safe for concurrent use.
type QueryStats struct {
	queries, execs atomic.Int64
	nanos          atomic.Int64
	slow           atomic.Int64
	errs           atomic.Int64
	constraints    atomic.Int64
	acquired       atomic.Int64
	released       atomic.Int64
	verbs          [numVerbs]atomic.Int64
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	snap := StatsSnapshot{
		TotalQueries:         s.queries.Load(),
		TotalExecs:           s.execs.Load(),
		TotalDuration:        time.Duration(s.nanos.Load()),
		SlowQueries:          s.slow.Load(),
		Errors:               s.errs.Load(),
		ConstraintViolations: s.constraints.Load(),
		Acquired:             s.acquired.Load(),
		Released:             s.released.Load(),
	}
	for v := range s.verbs {
		snap.Verbs[v] = s.verbs[v].Load()
	}
	return snap
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{&s.queries, &s.execs, &s.nanos, &s.slow, &s.errs, &s.constraints, &s.acquired, &s.released} {
		c.Store(0)
	}
	for v := range s.verbs {
		s.verbs[v].Store(0)
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries         int64
	TotalExecs           int64
	TotalDuration        time.Duration
	SlowQueries          int64
	Errors               int64
	ConstraintViolations int64
	Acquired             int64
	Released             int64
	Verbs                [numVerbs]int64 // indexed by Verb
}

// Count returns the number of statements with verb v.
func (s StatsSnapshot) Count(v Verb) int64 {
	if v >= numVerbs {
		return 0
	}
	return s.Verbs[v]
}

// AvgQueryDuration returns the mean statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	n := s.TotalQueries + s.TotalExecs
	if n == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(n)
}

// Open returns the number of connections not yet released.
func (s StatsSnapshot) Open() int64 { return s.Acquired - s.Released }

func (s StatsSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "queries=%d execs=%d", s.TotalQueries, s.TotalExecs)
	for v := VerbSelect; v < numVerbs; v++ {
		fmt.Fprintf(&b, " %s=%d", v, s.Verbs[v])
	}
	fmt.Fprintf(&b, " duration=%s avg=%s slow=%d errors=%d constraints=%d open=%d",
		s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors, s.ConstraintViolations, s.Open())
	return b.String()
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver counts the statements of the connections it hands out.
type StatsDriver struct {
	Acquirer
	stats     QueryStats
	threshold atomic.Int64 // nanoseconds
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// The default is 100ms; a negative threshold marks every statement slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold.Store(int64(d)) }
}

// WithSlowQueryHook sets the callback for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.hook = hook }
}

// WithSlowQueryLog logs slow statements at warn level to logger, or to the
// default logger when it is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, d time.Duration) {
		logger.WarnContext(ctx, "slow statement", "verb", VerbOf(query).String(), "duration", d, "query", query, "args", len(args))
	})
}

// NewStatsDriver wraps drv with statement statistics:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
//	movies, err := repository.New[movies.Movie](stats)
//	...
//	logger.Info("done", "stats", stats.QueryStats().Stats().String())
func NewStatsDriver(drv Acquirer, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Acquirer: drv}
	s.threshold.Store(int64(100 * time.Millisecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats { return &d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration { return time.Duration(d.threshold.Load()) }

// SetSlowThreshold changes the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(t time.Duration) { d.threshold.Store(int64(t)) }

// Acquire returns a connection whose statements are counted.
func (d *StatsDriver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := d.Acquirer.Acquire(ctx)
	if err != nil {
		d.stats.errs.Add(1)
		return nil, err
	}
	d.stats.acquired.Add(1)
	return &statsConn{Conn: conn, d: d}, nil
}

func (d *StatsDriver) observe(ctx context.Context, query string, args []any, took time.Duration, err error, rows bool) {
	if rows {
		d.stats.queries.Add(1)
	} else {
		d.stats.execs.Add(1)
	}
	d.stats.verbs[VerbOf(query)].Add(1)
	d.stats.nanos.Add(int64(took))
	if err != nil {
		d.stats.errs.Add(1)
		if ClassifyConstraint(err) != ConstraintNone {
			d.stats.constraints.Add(1)
		}
	}
	if took > d.SlowThreshold() {
		d.stats.slow.Add(1)
		if d.hook != nil {
			d.hook(ctx, query, args, took)
		}
	}
}

type statsConn struct {
	Conn
	d *StatsDriver
}

func (c *statsConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := c.Conn.QueryContext(ctx, query, args...)
	c.d.observe(ctx, query, args, time.Since(start), err, true)
	return rows, err
}

func (c *statsConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := c.Conn.ExecContext(ctx, query, args...)
	c.d.observe(ctx, query, args, time.Since(start), err, false)
	return res, err
}

func (c *statsConn) Close() error {
	c.d.stats.released.Add(1)
	return c.Conn.Close()
}

// DebugDriver logs every statement of the connections it hands out.
type DebugDriver struct {
	Acquirer
	log func(context.Context, ...any)
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets the log function.
func DebugWithLog(fn func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) { d.log = fn }
}

// DebugWithLogger logs statements to logger at debug level.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) {
		logger.DebugContext(ctx, fmt.Sprint(v...))
	})
}

// NewDebugDriver wraps drv with statement logging. Without options
// statements go to slog.Default at info level.
func NewDebugDriver(drv Acquirer, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Acquirer: drv,
		log:      func(ctx context.Context, v ...any) { slog.InfoContext(ctx, fmt.Sprint(v...)) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Acquire returns a connection whose statements are logged.
func (d *DebugDriver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := d.Acquirer.Acquire(ctx)
	if err != nil {
		d.log(ctx, fmt.Sprintf("acquire: %v", err))
		return nil, err
	}
	return &debugConn{Conn: conn, log: d.log}, nil
}

type debugConn struct {
	Conn
	log func(context.Context, ...any)
}

func (c *debugConn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.log(ctx, fmt.Sprintf("query: %s args: %v", query, args))
	return c.Conn.QueryContext(ctx, query, args...)
}

func (c *debugConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	c.log(ctx, fmt.Sprintf("exec: %s args: %v", query, args))
	return c.Conn.ExecContext(ctx, query, args...)
}

var (
	_ Acquirer = (*StatsDriver)(nil)
	_ Acquirer = (*DebugDriver)(nil)
)
