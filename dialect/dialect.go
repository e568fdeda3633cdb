package dialect

import (
	"fmt"
	"strings"
)

// Dialect names.
const (
	MySQL     = "mysql"
	SQLite    = "sqlite"
	Postgres  = "postgres"
	SQLServer = "sqlserver"
)

// BindStyle is the placeholder syntax a dialect's drivers accept.
type BindStyle uint8

const (
	// BindDollar numbers placeholders: $1, $2.
	BindDollar BindStyle = iota + 1
	// BindQuestion uses positional ? placeholders.
	BindQuestion
	// BindNamed keeps @name placeholders and passes sql.Named arguments.
	BindNamed
)

// IdentityStyle is how an INSERT reports the generated identity value.
type IdentityStyle uint8

const (
	// IdentityReturning appends RETURNING <id> and reads one row.
	IdentityReturning IdentityStyle = iota + 1
	// IdentityScope appends "; SELECT SCOPE_IDENTITY()" and reads one row.
	IdentityScope
	// IdentityLastInsertID executes the insert and reads sql.Result.LastInsertId.
	IdentityLastInsertID
)

// LimitStyle is how a dialect caps the number of returned rows.
type LimitStyle uint8

const (
	// LimitClause appends LIMIT n after ORDER BY.
	LimitClause LimitStyle = iota + 1
	// LimitTop writes SELECT TOP n.
	LimitTop
)

// Traits describe the SQL surface a dialect needs from the statement builder.
type Traits struct {
	Name     string
	Open     byte // Opening identifier delimiter
	Close    byte // Closing identifier delimiter
	Bind     BindStyle
	Identity IdentityStyle
	Limit    LimitStyle
	// IdentityUpdatable reports whether UPDATE may assign the identity column.
	IdentityUpdatable bool
	// DriverName is the database/sql driver registered for the dialect by default.
	DriverName string
}

var traits = map[string]Traits{
	Postgres: {
		Name: Postgres, Open: '"', Close: '"',
		Bind: BindDollar, Identity: IdentityReturning, Limit: LimitClause,
		IdentityUpdatable: true, DriverName: "pgx",
	},
	MySQL: {
		Name: MySQL, Open: '`', Close: '`',
		Bind: BindQuestion, Identity: IdentityLastInsertID, Limit: LimitClause,
		IdentityUpdatable: true, DriverName: "mysql",
	},
	SQLite: {
		Name: SQLite, Open: '"', Close: '"',
		Bind: BindQuestion, Identity: IdentityReturning, Limit: LimitClause,
		IdentityUpdatable: true, DriverName: "sqlite",
	},
	SQLServer: {
		Name: SQLServer, Open: '[', Close: ']',
		Bind: BindNamed, Identity: IdentityScope, Limit: LimitTop,
		IdentityUpdatable: false, DriverName: "sqlserver",
	},
}

// aliases maps driver names and common spellings to dialect names.
var aliases = map[string]string{
	"postgresql": Postgres,
	"pgx":        Postgres,
	"pq":         Postgres,
	"sqlite3":    SQLite,
	"mssql":      SQLServer,
	"mariadb":    MySQL,
}

// Lookup returns the traits of the named dialect. Driver names such as
// "pgx" or "sqlite3" resolve to their dialect.
func Lookup(name string) (Traits, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	t, ok := traits[n]
	if !ok {
		return Traits{}, fmt.Errorf("dialect: unknown dialect %q", name)
	}
	return t, nil
}

// MustLookup is like Lookup but panics on unknown dialects.
func MustLookup(name string) Traits {
	t, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the supported dialect names.
func Names() []string {
	return []string{Postgres, MySQL, SQLite, SQLServer}
}

// Quote wraps an identifier in the dialect's delimiters, doubling any
// closing delimiter inside it. Dotted names are quoted per part.
func (t Traits) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteByte(t.Open)
		for j := 0; j < len(p); j++ {
			if p[j] == t.Close {
				b.WriteByte(t.Close)
			}
			b.WriteByte(p[j])
		}
		b.WriteByte(t.Close)
	}
	return b.String()
}

// Quote quotes ident for the named dialect.
func Quote(name, ident string) (string, error) {
	t, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return t.Quote(ident), nil
}
