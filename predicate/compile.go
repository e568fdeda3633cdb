package predicate

import (
	"fmt"
	"strings"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect/sql"
)

// ParamPrefix is the name prefix of compiled parameters: param0, param1, ...
const ParamPrefix = "param"

type config struct {
	quote   func(string) string
	columns func(string) bool
	resolve func(string) (string, bool)
	entity  string
}

// Option configures Compile.
type Option func(*config)

// WithQuote quotes row member names with q, usually a dialect's Quote.
func WithQuote(q func(string) string) Option {
	return func(c *config) { c.quote = q }
}

// WithColumns rejects row members for which known returns false.
func WithColumns(known func(string) bool) Option {
	return func(c *config) { c.columns = known }
}

// WithResolver maps row member names to storage columns; names it does not
// resolve are rejected.
func WithResolver(resolve func(string) (string, bool)) Option {
	return func(c *config) { c.resolve = resolve }
}

// WithEntity names the entity in shape errors.
func WithEntity(name string) Option {
	return func(c *config) { c.entity = name }
}

// Compile translates a predicate tree into a SQL condition and its parameters.
// Parameters are named param0, param1, ... in depth-first, left-to-right order
// of the constants and captured values, so equal tree shapes always produce
// the same text. Unsupported operators fail with *tabula.UnsupportedOperatorError,
// unknown or invalid row members with *tabula.ShapeError.
//
//	Compile(And(FieldEQ("UserId", 5), FieldEQ("MovieId", 7)))
//	// ((UserId = @param0) AND (MovieId = @param1))   {param0: 5, param1: 7}
func Compile(n Node, opts ...Option) (string, sql.Params, error) {
	c := &compiler{counter: sql.NewCounter(ParamPrefix)}
	for _, opt := range opts {
		opt(&c.config)
	}
	if err := c.compile(n); err != nil {
		return "", nil, err
	}
	return c.b.String(), c.params, nil
}

type compiler struct {
	config
	b       strings.Builder
	params  sql.Params
	counter *sql.Counter
}

func (c *compiler) compile(n Node) error {
	switch n := n.(type) {
	case Binary:
		op, ok := n.Op.SQL()
		if !ok {
			return tabula.NewUnsupportedOperatorError(n.Op.String())
		}
		if n.Left == nil || n.Right == nil {
			return tabula.NewShapeError(c.entity, "", fmt.Sprintf("%s is missing an operand", n.Op))
		}
		c.b.WriteByte('(')
		if err := c.compile(n.Left); err != nil {
			return err
		}
		c.b.WriteByte(' ')
		c.b.WriteString(op)
		c.b.WriteByte(' ')
		if err := c.compile(n.Right); err != nil {
			return err
		}
		c.b.WriteByte(')')
	case *Binary:
		if n == nil {
			return tabula.NewShapeError(c.entity, "", "empty predicate")
		}
		return c.compile(*n)
	case Member:
		switch {
		case n.Capture != nil:
			c.param(n.Capture())
		case n.Field != "":
			return c.column(n.Field)
		default:
			return tabula.NewShapeError(c.entity, "", "member refers to nothing")
		}
	case Constant:
		c.param(n.Value)
	case nil:
		return tabula.NewShapeError(c.entity, "", "empty predicate")
	default:
		return tabula.NewShapeError(c.entity, "", fmt.Sprintf("unexpected predicate node %T", n))
	}
	return nil
}

func (c *compiler) column(name string) error {
	if !sql.IsValidIdentifier(name) {
		return tabula.NewShapeError(c.entity, name, "invalid column name")
	}
	col := name
	if c.resolve != nil {
		r, ok := c.resolve(name)
		if !ok {
			return tabula.NewShapeError(c.entity, name, "unknown column")
		}
		col = r
	}
	if c.columns != nil && !c.columns(col) {
		return tabula.NewShapeError(c.entity, name, "unknown column")
	}
	if c.quote != nil {
		col = c.quote(col)
	}
	c.b.WriteString(col)
	return nil
}

func (c *compiler) param(v any) {
	name := c.counter.Next()
	c.params.Add(name, v)
	c.b.WriteString(sql.ParamPrefix)
	c.b.WriteString(name)
}
