package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Constraint is the class of a constraint violation.
type Constraint string

// Constraint classes.
const (
	ConstraintNone       Constraint = ""
	ConstraintUnique     Constraint = "unique"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintCheck      Constraint = "check"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// ClassifyConstraint reports which kind of constraint a driver error violated,
// across lib/pq, pgx, go-sql-driver/mysql and modernc sqlite error values.
func ClassifyConstraint(err error) Constraint {
	if err == nil {
		return ConstraintNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromSQLState(string(pqErr.Code))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return ConstraintUnique
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ConstraintForeignKey
		case mysqlCheckConstraintViolate:
			return ConstraintCheck
		}
		return ConstraintNone
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintUnique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ConstraintCheck
		}
		return ConstraintNone
	}

	// Fallback to string matching for drivers that don't expose typed errors
	msg := err.Error()
	switch {
	case containsAny(msg, "Error 1062", "violates unique constraint", "UNIQUE constraint failed", "duplicate key"):
		return ConstraintUnique
	case containsAny(msg, "Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case containsAny(msg, "Error 3819", "violates check constraint", "CHECK constraint failed"):
		return ConstraintCheck
	}
	return ConstraintNone
}

func fromSQLState(code string) Constraint {
	switch code {
	case pgUniqueViolation:
		return ConstraintUnique
	case pgForeignKeyViolation:
		return ConstraintForeignKey
	case pgCheckViolation:
		return ConstraintCheck
	default:
		return ConstraintNone
	}
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return ClassifyConstraint(err) != ConstraintNone
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return ClassifyConstraint(err) == ConstraintUnique
}

// IsForeignKeyConstraintError reports if the error resulted from a foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return ClassifyConstraint(err) == ConstraintForeignKey
}

// IsCheckConstraintError reports if the error resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool {
	return ClassifyConstraint(err) == ConstraintCheck
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
