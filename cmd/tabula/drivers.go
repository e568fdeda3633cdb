package main

// Drivers available to --driver and database.driver. Each dialect uses the
// first one listed by default: pgx, mysql, sqlite.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
