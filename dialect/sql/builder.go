package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/schema"
)

// Well-known parameter names.
const (
	SearchParam = "searchTerm"
	// LikeEscape is the escape character of LIKE patterns built by Search.
	LikeEscape = '!'
)

// Builder generates CRUD statements for entity descriptors. Identifiers are
// always quoted; values are always parameters.
type Builder struct {
	traits dialect.Traits
}

// Dialect returns a builder for the named dialect.
func Dialect(name string) (*Builder, error) {
	t, err := dialect.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Builder{traits: t}, nil
}

// Traits returns the dialect traits of the builder.
func (b *Builder) Traits() dialect.Traits { return b.traits }

// Quote quotes an identifier.
func (b *Builder) Quote(ident string) string { return b.traits.Quote(ident) }

// Bind rewrites st for execution. See Bind.
func (b *Builder) Bind(st Statement) (string, []any, error) {
	return Bind(b.traits, st)
}

func (b *Builder) table(d *schema.Descriptor, table string) (string, error) {
	if table == "" {
		table = d.Table
	}
	if !IsValidIdentifier(table) {
		return "", tabula.NewShapeError(d.Name, "", "invalid table name "+strconv.Quote(table))
	}
	return b.traits.Quote(table), nil
}

// Insert builds an INSERT of every non-identity field. The statement also
// reports the generated identity, except on MySQL where the caller reads
// sql.Result.LastInsertId.
//
//	INSERT INTO "Movies" ("Title", "KinopoiskRating") VALUES (@Title, @KinopoiskRating) RETURNING "Id"
func (b *Builder) Insert(d *schema.Descriptor, table string, e schema.Entity) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	values := e.Values()
	fields := d.Fields()
	var (
		cols   = make([]string, 0, len(fields)-1)
		places = make([]string, 0, len(fields)-1)
		params = make(Params, 0, len(fields)-1)
	)
	for i, f := range fields {
		if i == d.ID {
			continue
		}
		cols = append(cols, b.traits.Quote(f.StorageName()))
		places = append(places, ParamPrefix+f.Name)
		params.Add(f.Name, values[i])
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t)
	switch {
	case len(cols) > 0:
		sb.WriteString(" (")
		sb.WriteString(strings.Join(cols, ", "))
		sb.WriteString(") VALUES (")
		sb.WriteString(strings.Join(places, ", "))
		sb.WriteByte(')')
	case b.traits.Name == dialect.MySQL:
		sb.WriteString(" () VALUES ()")
	default:
		sb.WriteString(" DEFAULT VALUES")
	}
	switch b.traits.Identity {
	case dialect.IdentityReturning:
		sb.WriteString(" RETURNING ")
		sb.WriteString(b.traits.Quote(d.IDColumn()))
	case dialect.IdentityScope:
		sb.WriteString("; SELECT SCOPE_IDENTITY()")
	}
	return Statement{Query: sb.String(), Params: params}, nil
}

// SelectByID builds a lookup by identity.
//
//	SELECT * FROM "Movies" WHERE "Id" = @Id
func (b *Builder) SelectByID(d *schema.Descriptor, table string, id any) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	var params Params
	params.Add(schema.IDField, id)
	return Statement{
		Query:  "SELECT * FROM " + t + " WHERE " + b.traits.Quote(d.IDColumn()) + " = " + ParamPrefix + schema.IDField,
		Params: params,
	}, nil
}

// SelectOptions shape a multi-row SELECT.
type SelectOptions struct {
	// OrderBy is a field or column name; rows are ordered by it descending.
	OrderBy string
	// Take caps the number of rows; zero or negative means no limit.
	Take int
	// Where is a compiled condition, without the WHERE keyword.
	Where string
	// Params holds the parameters referenced by Where.
	Params Params
}

// Select builds a multi-row SELECT.
//
//	SELECT * FROM "Movies" WHERE ... ORDER BY "KinopoiskRating" DESC LIMIT 10
//	SELECT TOP 10 * FROM [Movies] WHERE ... ORDER BY [KinopoiskRating] DESC
func (b *Builder) Select(d *schema.Descriptor, table string, opts SelectOptions) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if opts.Take > 0 && b.traits.Limit == dialect.LimitTop {
		sb.WriteString("TOP ")
		sb.WriteString(strconv.Itoa(opts.Take))
		sb.WriteByte(' ')
	}
	sb.WriteString("* FROM ")
	sb.WriteString(t)
	if opts.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(opts.Where)
	}
	if opts.OrderBy != "" {
		col, ok := d.Column(opts.OrderBy)
		if !ok {
			return Statement{}, tabula.NewShapeError(d.Name, opts.OrderBy, "unknown order column")
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.traits.Quote(col))
		sb.WriteString(" DESC")
	}
	if opts.Take > 0 && b.traits.Limit == dialect.LimitClause {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(opts.Take))
	}
	params := make(Params, len(opts.Params))
	copy(params, opts.Params)
	return Statement{Query: sb.String(), Params: params}, nil
}

// Search builds a substring search over a text column. An empty column
// selects the descriptor's search field. The term is matched literally:
// LIKE wildcards in it are escaped.
//
//	SELECT * FROM "Movies" WHERE "Title" LIKE @searchTerm ESCAPE '!'
func (b *Builder) Search(d *schema.Descriptor, table, column, term string) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	var col string
	if column == "" {
		c, ok := d.SearchColumn()
		if !ok {
			return Statement{}, tabula.NewShapeError(d.Name, "", "entity has no search field")
		}
		col = c
	} else {
		c, ok := d.Column(column)
		if !ok {
			return Statement{}, tabula.NewShapeError(d.Name, column, "unknown search column")
		}
		col = c
	}
	var params Params
	params.Add(SearchParam, "%"+EscapeLike(term)+"%")
	return Statement{
		Query:  "SELECT * FROM " + t + " WHERE " + b.traits.Quote(col) + " LIKE " + ParamPrefix + SearchParam + " ESCAPE '" + string(LikeEscape) + "'",
		Params: params,
	}, nil
}

var likeEscaper = strings.NewReplacer(
	string(LikeEscape), string(LikeEscape)+string(LikeEscape),
	"%", string(LikeEscape)+"%",
	"_", string(LikeEscape)+"_",
	"[", string(LikeEscape)+"[",
)

// EscapeLike escapes LIKE wildcards in s with LikeEscape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Update builds an UPDATE of every field of the row with the given identity.
// The identity column is assigned only on dialects that allow it, and always
// receives the id argument.
//
//	UPDATE "Movies" SET "Id" = @Id, "Title" = @Title WHERE "Id" = @Id
func (b *Builder) Update(d *schema.Descriptor, table string, id any, e schema.Entity) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	values := e.Values()
	fields := d.Fields()
	var (
		sets   = make([]string, 0, len(fields))
		params = make(Params, 0, len(fields))
	)
	for i, f := range fields {
		if i == d.ID {
			params.Add(schema.IDField, id)
			if !b.traits.IdentityUpdatable {
				continue
			}
		} else {
			params.Add(f.Name, values[i])
		}
		sets = append(sets, b.traits.Quote(f.StorageName())+" = "+ParamPrefix+f.Name)
	}
	if len(sets) == 0 {
		return Statement{}, tabula.NewShapeError(d.Name, "", "no updatable fields")
	}
	return Statement{
		Query:  "UPDATE " + t + " SET " + strings.Join(sets, ", ") + " WHERE " + b.traits.Quote(d.IDColumn()) + " = " + ParamPrefix + schema.IDField,
		Params: params,
	}, nil
}

// Delete builds a DELETE of the row with the given identity.
//
//	DELETE FROM "Movies" WHERE "Id" = @Id
func (b *Builder) Delete(d *schema.Descriptor, table string, id any) (Statement, error) {
	t, err := b.table(d, table)
	if err != nil {
		return Statement{}, err
	}
	var params Params
	params.Add(schema.IDField, id)
	return Statement{
		Query:  "DELETE FROM " + t + " WHERE " + b.traits.Quote(d.IDColumn()) + " = " + ParamPrefix + schema.IDField,
		Params: params,
	}, nil
}
