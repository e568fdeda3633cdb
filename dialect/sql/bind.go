package sql

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/tabula/dialect"
)

// Bind rewrites the @name placeholders of a statement into the placeholder
// syntax of the dialect and returns the driver arguments:
//
//	postgres   $1, $2     a repeated name reuses its index
//	mysql      ?          one argument per occurrence
//	sqlite     ?          one argument per occurrence
//	sqlserver  @name      one sql.Named argument per name
//
// Text inside string literals and quoted identifiers is copied unchanged,
// as are @@ system variables.
func Bind(t dialect.Traits, st Statement) (string, []any, error) {
	var (
		b     strings.Builder
		args  []any
		index map[string]int
		q     = st.Query
	)
	b.Grow(len(q))
	for i := 0; i < len(q); {
		c := q[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || (c == '[' && t.Open == '['):
			end := skipQuoted(q, i)
			b.WriteString(q[i:end])
			i = end
		case c == '@' && i+1 < len(q) && q[i+1] == '@':
			j := i + 2
			for j < len(q) && isIdentByte(q[j]) {
				j++
			}
			b.WriteString(q[i:j])
			i = j
		case c == '@' && i+1 < len(q) && isIdentStart(q[i+1]):
			j := i + 1
			for j < len(q) && isIdentByte(q[j]) {
				j++
			}
			name := q[i+1 : j]
			v, ok := st.Params.Lookup(name)
			if !ok {
				return "", nil, fmt.Errorf("dialect/sql: missing parameter %s%s", ParamPrefix, name)
			}
			v = driverValue(v)
			switch t.Bind {
			case dialect.BindDollar:
				if index == nil {
					index = make(map[string]int)
				}
				n, seen := index[name]
				if !seen {
					args = append(args, v)
					n = len(args)
					index[name] = n
				}
				b.WriteByte('$')
				b.WriteString(strconv.Itoa(n))
			case dialect.BindQuestion:
				args = append(args, v)
				b.WriteByte('?')
			case dialect.BindNamed:
				if index == nil {
					index = make(map[string]int)
				}
				if _, seen := index[name]; !seen {
					index[name] = len(args)
					args = append(args, sql.Named(name, v))
				}
				b.WriteString(q[i:j])
			default:
				return "", nil, fmt.Errorf("dialect/sql: dialect %q has no bind style", t.Name)
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), args, nil
}

// skipQuoted returns the index just past the quoted section starting at i.
// A doubled closing delimiter is part of the section.
func skipQuoted(q string, i int) int {
	closing := q[i]
	if closing == '[' {
		closing = ']'
	}
	for j := i + 1; j < len(q); j++ {
		if q[j] != closing {
			continue
		}
		if j+1 < len(q) && q[j+1] == closing {
			j++
			continue
		}
		return j + 1
	}
	return len(q)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
