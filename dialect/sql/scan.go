package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"
)

var errMissingColumn = errors.New("column not in result set")

// Mapper rebuilds entities from result rows. Each field reads the column of
// the same name, compared exactly first and then under Unicode case folding.
// NULL leaves a field at its zero value. A value that cannot be coerced
// leaves the field at its zero value and is reported as a MappingError;
// the remaining fields are still mapped.
type Mapper struct {
	desc   *schema.Descriptor
	fields []field.Descriptor
	log    *slog.Logger
}

// NewMapper returns a mapper for the descriptor. A nil logger discards
// diagnostics.
func NewMapper(d *schema.Descriptor, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mapper{desc: d, fields: d.Fields(), log: logger}
}

// plan holds the result column position of every field, -1 when absent.
type plan struct {
	columns []string
	index   []int
}

func (m *Mapper) plan(columns []string) plan {
	p := plan{columns: columns, index: make([]int, len(m.fields))}
	exact := make(map[string]int, len(columns))
	folded := make(map[string]int, len(columns))
	fold := cases.Fold()
	for i, c := range columns {
		if _, ok := exact[c]; !ok {
			exact[c] = i
		}
		k := fold.String(c)
		if _, ok := folded[k]; !ok {
			folded[k] = i
		}
	}
	for i, f := range m.fields {
		col := f.StorageName()
		if j, ok := exact[col]; ok {
			p.index[i] = j
		} else if j, ok := folded[fold.String(col)]; ok {
			p.index[i] = j
		} else {
			p.index[i] = -1
		}
	}
	return p
}

// Map scans the current row of rows into dst. It returns nil, a
// *tabula.MappingError or a *tabula.AggregateError of mapping errors;
// failures to read the row are returned as they are.
func (m *Mapper) Map(ctx context.Context, rows ColumnScanner, dst schema.Entity) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	p := m.plan(columns)
	raw, err := scanRaw(rows, len(columns))
	if err != nil {
		return err
	}
	return m.assign(ctx, p, raw, dst)
}

func scanRaw(rows ColumnScanner, n int) ([]any, error) {
	raw := make([]any, n)
	ptrs := make([]any, n)
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return raw, nil
}

func (m *Mapper) assign(ctx context.Context, p plan, raw []any, dst schema.Entity) error {
	var errs []error
	ptrs := dst.Pointers()
	for i, f := range m.fields {
		j := p.index[i]
		if j < 0 {
			err := &tabula.MappingError{Entity: m.desc.Name, Field: f.Name, Err: fmt.Errorf("%w: %s", errMissingColumn, f.StorageName())}
			m.log.WarnContext(ctx, "missing column", "entity", m.desc.Name, "field", f.Name, "column", f.StorageName())
			errs = append(errs, err)
			continue
		}
		v := raw[j]
		if v == nil {
			m.log.DebugContext(ctx, "column is null", "entity", m.desc.Name, "field", f.Name, "column", p.columns[j])
			continue
		}
		if err := field.Assign(ptrs[i], v); err != nil {
			m.log.WarnContext(ctx, "cannot map column", "entity", m.desc.Name, "field", f.Name, "column", p.columns[j], "err", err)
			errs = append(errs, &tabula.MappingError{Entity: m.desc.Name, Field: f.Name, Column: p.columns[j], Value: v, Err: err})
		}
	}
	return tabula.NewAggregateError(errs...)
}

// ScanOne maps the first row of rows into a new entity. It returns nil
// when there are no rows. Mapping errors are returned with the entity.
func ScanOne[T any, P interface {
	*T
	schema.Entity
}](ctx context.Context, rows ColumnScanner, m *Mapper) (*T, error) {
	if !rows.Next() {
		return nil, rows.Err()
	}
	e := new(T)
	if err := m.Map(ctx, rows, P(e)); err != nil {
		if !tabula.IsMappingError(err) {
			return nil, err
		}
		return e, err
	}
	return e, nil
}

// ScanAll maps every remaining row. Entities with mapping errors are kept;
// their errors are joined into the returned error. A failure to read rows
// is returned alone.
func ScanAll[T any, P interface {
	*T
	schema.Entity
}](ctx context.Context, rows ColumnScanner, m *Mapper) ([]*T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	p := m.plan(columns)
	var (
		items   []*T
		mapErrs []error
	)
	for rows.Next() {
		raw, err := scanRaw(rows, len(columns))
		if err != nil {
			return nil, err
		}
		e := new(T)
		if err := m.assign(ctx, p, raw, P(e)); err != nil {
			mapErrs = append(mapErrs, err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, tabula.NewAggregateError(mapErrs...)
}
