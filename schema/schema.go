package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/schema/field"
)

// IDField is the name of the identity field every entity declares.
const IDField = "Id"

// DefaultSearchField is the field searched when an entity does not name one.
const DefaultSearchField = "Title"

// Entity is implemented by types stored in a table. The three methods
// return the same number of elements in the same order.
type Entity interface {
	// Schema lists the entity fields.
	Schema() []field.Descriptor
	// Values returns the field values.
	Values() []any
	// Pointers returns pointers to the fields, used as mapping destinations.
	Pointers() []any
}

// Tabler overrides the default table name of an entity.
type Tabler interface {
	TableName() string
}

// Searcher overrides the field used by text search.
// Returning an empty string disables search for the entity.
type Searcher interface {
	SearchField() string
}

// Descriptor is the immutable description of an entity type. Descriptors
// are shared by every caller; the field table is only reachable through
// copies.
type Descriptor struct {
	Name   string // Entity type name
	Table  string // Default table
	ID     int    // Index of the identity field
	Search string // Search field name, empty when none

	fields   []field.Descriptor
	byName   map[string]int
	byColumn map[string]int
}

// Fields returns a copy of the fields in declaration order.
func (d *Descriptor) Fields() []field.Descriptor {
	return append([]field.Descriptor(nil), d.fields...)
}

// NumFields returns the number of fields.
func (d *Descriptor) NumFields() int { return len(d.fields) }

// Identity returns the identity field.
func (d *Descriptor) Identity() field.Descriptor { return d.fields[d.ID] }

// IDColumn returns the storage column of the identity field.
func (d *Descriptor) IDColumn() string {
	return d.fields[d.ID].StorageName()
}

// Field returns the named field.
func (d *Descriptor) Field(name string) (field.Descriptor, bool) {
	i, ok := d.byName[name]
	if !ok {
		return field.Descriptor{}, false
	}
	return d.fields[i], true
}

// HasColumn reports whether a field is stored in the column.
func (d *Descriptor) HasColumn(column string) bool {
	_, ok := d.byColumn[column]
	return ok
}

// Column resolves a field name or a column name to its storage column.
func (d *Descriptor) Column(name string) (string, bool) {
	if i, ok := d.byName[name]; ok {
		return d.fields[i].StorageName(), true
	}
	if _, ok := d.byColumn[name]; ok {
		return name, true
	}
	return "", false
}

// Columns returns every storage column in field order.
func (d *Descriptor) Columns() []string {
	cols := make([]string, len(d.fields))
	for i, f := range d.fields {
		cols[i] = f.StorageName()
	}
	return cols
}

// SearchColumn returns the storage column of the search field.
func (d *Descriptor) SearchColumn() (string, bool) {
	if d.Search == "" {
		return "", false
	}
	return d.Column(d.Search)
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// registry holds one entry per entity type.
var registry sync.Map // reflect.Type → *entry

type entry struct {
	once sync.Once
	desc *Descriptor
	err  error
}

// Describe returns the descriptor of entity type T. The descriptor, or the
// shape error, is built once per type on first use and shared afterwards.
func Describe[T any, P interface {
	*T
	Entity
}]() (*Descriptor, error) {
	typ := reflect.TypeFor[T]()
	v, ok := registry.Load(typ)
	if !ok {
		v, _ = registry.LoadOrStore(typ, &entry{})
	}
	e := v.(*entry)
	e.once.Do(func() {
		var zero T
		e.desc, e.err = build(typ.Name(), P(&zero))
	})
	return e.desc, e.err
}

// MustDescribe is like Describe but panics if the entity shape is invalid.
func MustDescribe[T any, P interface {
	*T
	Entity
}]() *Descriptor {
	d, err := Describe[T, P]()
	if err != nil {
		panic(err)
	}
	return d
}

func build(name string, e Entity) (*Descriptor, error) {
	fields := e.Schema()
	values, ptrs := e.Values(), e.Pointers()
	if len(fields) == 0 {
		return nil, tabula.NewShapeError(name, "", "entity has no fields")
	}
	if len(values) != len(fields) || len(ptrs) != len(fields) {
		return nil, tabula.NewShapeError(name, "",
			fmt.Sprintf("Schema, Values and Pointers disagree: %d, %d and %d elements", len(fields), len(values), len(ptrs)))
	}
	d := &Descriptor{
		Name:     name,
		fields:   make([]field.Descriptor, len(fields)),
		ID:       -1,
		byName:   make(map[string]int, len(fields)),
		byColumn: make(map[string]int, len(fields)),
	}
	copy(d.fields, fields)
	for i, f := range d.fields {
		switch {
		case f.Name == "":
			return nil, tabula.NewShapeError(name, "", fmt.Sprintf("field %d has no name", i))
		case !identRe.MatchString(f.Name):
			return nil, tabula.NewShapeError(name, f.Name, "invalid field name")
		case !identRe.MatchString(f.StorageName()):
			return nil, tabula.NewShapeError(name, f.Name, fmt.Sprintf("invalid column name %q", f.StorageName()))
		case !f.Type.Valid():
			return nil, tabula.NewShapeError(name, f.Name, "unsupported field type")
		}
		if _, dup := d.byName[f.Name]; dup {
			return nil, tabula.NewShapeError(name, f.Name, "duplicate field")
		}
		if _, dup := d.byColumn[f.StorageName()]; dup {
			return nil, tabula.NewShapeError(name, f.Name, fmt.Sprintf("duplicate column %q", f.StorageName()))
		}
		if got := field.TypeOf(ptrs[i]); got != f.Type {
			return nil, tabula.NewShapeError(name, f.Name, fmt.Sprintf("pointer holds %s, schema declares %s", got, f.Type))
		}
		if got := field.ValueType(values[i]); got != f.Type {
			return nil, tabula.NewShapeError(name, f.Name, fmt.Sprintf("value is %s, schema declares %s", got, f.Type))
		}
		d.byName[f.Name] = i
		d.byColumn[f.StorageName()] = i
		if f.Name == IDField {
			d.ID = i
		}
	}
	if d.ID < 0 {
		return nil, tabula.NewShapeError(name, "", "no "+IDField+" field")
	}
	if d.fields[d.ID].Type.Kind() != field.KindInteger {
		return nil, tabula.NewShapeError(name, IDField, "identity must be an integer")
	}

	d.Table = inflect.Pluralize(name)
	if t, ok := e.(Tabler); ok {
		d.Table = t.TableName()
	}
	if d.Table == "" {
		return nil, tabula.NewShapeError(name, "", "empty table name")
	}

	if s, ok := e.(Searcher); ok {
		d.Search = s.SearchField()
		if d.Search != "" {
			f, ok := d.Field(d.Search)
			if !ok {
				return nil, tabula.NewShapeError(name, d.Search, "unknown search field")
			}
			if f.Type != field.TypeString {
				return nil, tabula.NewShapeError(name, d.Search, "search field must be a string")
			}
		}
	} else if f, ok := d.Field(DefaultSearchField); ok && f.Type == field.TypeString {
		d.Search = DefaultSearchField
	}
	return d, nil
}
