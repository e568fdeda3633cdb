// Package sql builds, binds and maps the SQL statements of tabula.
//
// # Statements
//
// A Builder generates parameterized CRUD statements from an entity
// descriptor. Placeholders are written as @name and bound per dialect at
// execution time:
//
//	b, _ := sql.Dialect(dialect.Postgres)
//	st, _ := b.SelectByID(desc, "", 7)
//	// SELECT * FROM "Movies" WHERE "Id" = @Id
//
//	query, args, _ := b.Bind(st)
//	// SELECT * FROM "Movies" WHERE "Id" = $1   [7]
//
// Multi-row reads take SelectOptions:
//
//	b.Select(desc, "", sql.SelectOptions{OrderBy: "KinopoiskRating", Take: 10})
//	// postgres:  SELECT * FROM "Movies" ORDER BY "KinopoiskRating" DESC LIMIT 10
//	// sqlserver: SELECT TOP 10 * FROM [Movies] ORDER BY [KinopoiskRating] DESC
//
// Search matches a literal substring; LIKE wildcards in the term are escaped:
//
//	b.Search(desc, "", "", "50%")
//	// SELECT * FROM "Movies" WHERE "Title" LIKE @searchTerm ESCAPE '!'   [%50!%%]
//
// # Connections
//
// Driver acquires one dedicated connection per operation from a
// caller-owned *sql.DB. StatsDriver and DebugDriver wrap any Acquirer:
//
//	drv, _ := sql.Open(dialect.SQLite, "", "file:movies.db")
//	stats := sql.NewStatsDriver(sql.NewDebugDriver(drv), sql.WithSlowQueryLog(logger))
//
// # Mapping
//
// A Mapper assigns result columns to entity fields by name, coercing
// driver values with field.Assign:
//
//	rows, _ := conn.QueryContext(ctx, query, args...)
//	movies, err := sql.ScanAll[Movie](ctx, rows, sql.NewMapper(desc, logger))
//
// # Constraint errors
//
// ClassifyConstraint recognizes unique, foreign-key and check violations
// reported by lib/pq, pgx, go-sql-driver/mysql and modernc sqlite.
package sql
