package load

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"
)

// Directive marks a struct type as an entity:
//
//	//tabula:entity table=Movies search=Title
//	type Movie struct { ... }
const Directive = "//tabula:entity"

// TagName is the struct tag key of field options. `tabula:"-"` skips a
// field; any other value is the storage column.
const TagName = "tabula"

// Package is a loaded Go package with its entity types.
type Package struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Dir      string    `json:"dir"`
	Entities []*Entity `json:"entities,omitempty"`
}

// Entity is a struct type marked with Directive.
type Entity struct {
	Name   string   `json:"name"`
	Table  string   `json:"table,omitempty"`  // Explicit table, empty for the default
	Search string   `json:"search,omitempty"` // Explicit search field, empty for the default
	Pos    string   `json:"pos,omitempty"`
	Fields []*Field `json:"fields"`
}

// Field is a mapped struct field of an entity.
type Field struct {
	Name   string     `json:"name"`
	Column string     `json:"column,omitempty"` // Storage column when it differs from Name
	Type   field.Type `json:"type"`
}

// ID returns the identity field.
func (e *Entity) ID() *Field {
	for _, f := range e.Fields {
		if f.Name == schema.IDField {
			return f
		}
	}
	return nil
}

// Field returns the named field.
func (e *Entity) Field(name string) (*Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// StorageName returns the column of the field.
func (f *Field) StorageName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// parseDirective reads the options of a directive comment. It reports false
// when the comment is not the entity directive.
func parseDirective(text string) (table, search string, ok bool, err error) {
	rest, found := strings.CutPrefix(text, Directive)
	if !found || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
		return "", "", false, nil
	}
	for _, opt := range strings.Fields(rest) {
		k, v, _ := strings.Cut(opt, "=")
		switch k {
		case "table":
			table = v
		case "search":
			search = v
		default:
			return "", "", true, fmt.Errorf("unknown option %q", opt)
		}
	}
	return table, search, true, nil
}

// validate checks the entity the way schema.Describe checks its field table.
func (e *Entity) validate() error {
	var errs []error
	columns := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		col := f.StorageName()
		if other, ok := columns[col]; ok {
			errs = append(errs, NewSchemaError(e.Name, f.Name, fmt.Sprintf("column %q is also used by %s", col, other), nil))
		}
		columns[col] = f.Name
	}
	switch id := e.ID(); {
	case id == nil:
		errs = append(errs, NewSchemaError(e.Name, "", "no identity field named "+schema.IDField, nil))
	case id.Type.Kind() != field.KindInteger:
		errs = append(errs, NewSchemaError(e.Name, id.Name, "identity must be an integer, got "+id.Type.String(), nil))
	}
	if e.Search != "" {
		f, ok := e.Field(e.Search)
		switch {
		case !ok:
			errs = append(errs, NewSchemaError(e.Name, e.Search, "unknown search field", nil))
		case f.Type != field.TypeString:
			errs = append(errs, NewSchemaError(e.Name, e.Search, "search field must be a string", nil))
		}
	}
	return errors.Join(errs...)
}
