// Package tabula is a typed data-access layer for SQL databases.
//
// Entities are plain structs whose field table is generated by
// cmd/tabulagen. Package repository runs create, read, search, update and
// delete operations for them over any dialect in package dialect, with
// predicates from package predicate and optional result caching through the
// Cache interface.
//
// Failures are reported as the error kinds of this package:
//
//	m, err := movies.GetByID(ctx, 7)
//	switch {
//	case tabula.IsNotFound(err):
//		// no such row
//	case tabula.IsExecutionError(err):
//		// the database rejected the statement
//	}
package tabula
