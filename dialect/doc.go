// Package dialect describes the SQL dialects tabula generates statements for.
//
// Every dialect is identified by a constant string:
//
//	dialect.Postgres  = "postgres"
//	dialect.MySQL     = "mysql"
//	dialect.SQLite    = "sqlite"
//	dialect.SQLServer = "sqlserver"
//
// # Traits
//
// Lookup returns the Traits of a dialect: identifier delimiters, placeholder
// style, how an INSERT reports its identity and how row limits are written.
//
//	t, err := dialect.Lookup("pgx") // resolves to Postgres
//	t.Quote("Movies")               // "Movies"
//
//	dialect.MustLookup(dialect.SQLServer).Quote("a]b") // [a]]b]
//
// The table below summarizes the supported dialects:
//
//	dialect    quote  bind   identity           limit   update id
//	postgres   "x"    $n     RETURNING          LIMIT   yes
//	mysql      `x`    ?      LastInsertId       LIMIT   yes
//	sqlite     "x"    ?      RETURNING          LIMIT   yes
//	sqlserver  [x]    @name  SCOPE_IDENTITY()   TOP     no
//
// No SQL Server database/sql driver is bundled; register one under the
// "sqlserver" name to execute statements built for that dialect.
package dialect
