package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/syssam/tabula/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// IsValidIdentifier checks if the string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s) &&
		!strings.HasSuffix(s, ".") && !strings.Contains(s, "..")
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	// Fast path: if no escaping needed, return as-is
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	// Escape backslashes first, then single quotes
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn is a connection handle acquired for a single operation.
// Close returns it to its owner.
type Conn interface {
	ExecQuerier
	Close() error
}

// Acquirer hands out per-operation connections for one dialect.
type Acquirer interface {
	Dialect() string
	Acquire(ctx context.Context) (Conn, error)
}

// Driver acquires connections from a caller-owned *sql.DB.
type Driver struct {
	db      *sql.DB
	dialect string
}

// Open opens a database with the dialect's default database/sql driver,
// or with driverName when it is not empty.
func Open(dialectName, driverName, source string) (*Driver, error) {
	t, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, err
	}
	if driverName == "" {
		driverName = t.DriverName
	}
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return &Driver{db: db, dialect: t.Name}, nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialectName string, db *sql.DB) *Driver {
	if t, err := dialect.Lookup(dialectName); err == nil {
		dialectName = t.Name
	}
	return &Driver{db: db, dialect: dialectName}
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Dialect returns the dialect name.
func (d *Driver) Dialect() string {
	return d.dialect
}

// Close closes the underlying database.
func (d *Driver) Close() error { return d.db.Close() }

// Acquire takes a dedicated connection from the database. Session
// variables attached to ctx with WithVar are set on it and reset when
// the connection is closed.
func (d *Driver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: acquire: %w", err)
	}
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return conn, nil
	}
	reset, err := d.setVars(ctx, conn, sv)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("dialect/sql: acquire: set session vars: %w", err), conn.Close())
	}
	if len(reset) == 0 {
		return conn, nil
	}
	return &resetConn{Conn: conn, reset: reset}, nil
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds session variables to set on every acquired connection.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds the session variable to be set
// on connections acquired with it, e.g. search_path on Postgres.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	vars := make([]struct{ k, v string }, len(sv.vars), len(sv.vars)+1)
	copy(vars, sv.vars)
	vars = append(vars, struct{ k, v string }{k: name, v: value})
	return context.WithValue(ctx, ctxVarsKey{}, sessionVars{vars: vars})
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for i := len(sv.vars) - 1; i >= 0; i-- {
		if sv.vars[i].k == name {
			return sv.vars[i].v, true
		}
	}
	return "", false
}

func (d *Driver) setVars(ctx context.Context, conn ExecQuerier, sv sessionVars) ([]string, error) {
	var (
		reset []string
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	for _, s := range sv.vars {
		// Validate the variable name to prevent SQL injection
		if !IsValidIdentifier(s.k) {
			return nil, fmt.Errorf("invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch d.dialect {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", s.k, escapeStringValue(s.v))); err != nil {
			return nil, err
		}
	}
	return reset, nil
}

// resetConn resets session variables before releasing the connection.
type resetConn struct {
	Conn
	reset []string
}

// Close resets the session variables and releases the connection.
// Cleanup uses its own context so it completes even if the operation's
// context was canceled.
func (c *resetConn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, q := range c.reset {
		if _, err := c.Conn.ExecContext(ctx, q); err != nil {
			return errors.Join(err, c.Conn.Close())
		}
	}
	return c.Conn.Close()
}

var (
	_ Acquirer = (*Driver)(nil)
	_ Conn     = (*sql.Conn)(nil)
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Result is an alias to sql.Result.
type Result = sql.Result
