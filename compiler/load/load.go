// Package load finds entity types in Go packages for the code generator.
package load

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/tabula/schema/field"
)

// DefaultGenerated is the default name of generated files.
const DefaultGenerated = "tabula_gen.go"

// Config configures Load.
type Config struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// BuildFlags are passed to the go command, e.g. "-tags=integration".
	BuildFlags []string
	// Generated is the name of generated files. Their content is ignored
	// while loading so a stale file cannot break regeneration.
	Generated string
}

// Load loads the packages matching patterns and returns those declaring at
// least one entity.
func (c *Config) Load(patterns ...string) ([]*Package, error) {
	generated := c.Generated
	if generated == "" {
		generated = DefaultGenerated
	}
	// NeedDeps type-checks every package from source. Without it the go
	// command compiles the roots for export data, and a stale generated
	// file fails that build before ParseFile can drop its declarations.
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
		Dir:        c.Dir,
		BuildFlags: c.BuildFlags,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			if filepath.Base(filename) == generated {
				return parser.ParseFile(fset, filename, src, parser.PackageClauseOnly)
			}
			return parser.ParseFile(fset, filename, src, parser.ParseComments|parser.AllErrors)
		},
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	var (
		out  []*Package
		errs []error
	)
	for _, p := range pkgs {
		if err := loadErrors(p); err != nil {
			errs = append(errs, err)
			continue
		}
		lp, err := loadPackage(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(lp.Entities) > 0 {
			out = append(out, lp)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Load loads packages with the default configuration.
func Load(patterns ...string) ([]*Package, error) {
	return (&Config{}).Load(patterns...)
}

// loadErrors returns the listing and syntax errors of p. Type errors are
// tolerated: code using entities does not type-check until the entity
// methods are generated.
func loadErrors(p *packages.Package) error {
	var errs []error
	for _, e := range p.Errors {
		if e.Kind == packages.TypeError {
			continue
		}
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func loadPackage(p *packages.Package) (*Package, error) {
	lp := &Package{Name: p.Name, Path: p.PkgPath}
	if len(p.GoFiles) > 0 {
		lp.Dir = filepath.Dir(p.GoFiles[0])
	}
	var errs []error
	for _, file := range p.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				e, err := loadEntity(p, ts, doc)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if e != nil {
					lp.Entities = append(lp.Entities, e)
				}
			}
		}
	}
	return lp, errors.Join(errs...)
}

// loadEntity returns the entity declared by ts, or nil when ts is not marked.
func loadEntity(p *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) (*Entity, error) {
	if doc == nil {
		return nil, nil
	}
	var (
		e     *Entity
		found bool
	)
	for _, c := range doc.List {
		table, search, ok, err := parseDirective(c.Text)
		if err != nil {
			return nil, NewSchemaError(ts.Name.Name, "", "invalid directive", err)
		}
		if ok {
			e = &Entity{Name: ts.Name.Name, Table: table, Search: search}
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	e.Pos = p.Fset.Position(ts.Pos()).String()
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		return nil, NewSchemaError(e.Name, "", "entity cannot be generic", nil)
	}
	obj, ok := p.TypesInfo.Defs[ts.Name]
	if !ok || obj == nil {
		return nil, NewSchemaError(e.Name, "", "type information unavailable", nil)
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, NewSchemaError(e.Name, "", "entity must be a struct", nil)
	}
	var errs []error
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		if !v.Exported() || v.Embedded() {
			continue
		}
		tag := reflect.StructTag(st.Tag(i)).Get(TagName)
		if tag == "-" {
			continue
		}
		typ, err := fieldType(v.Type())
		if err != nil {
			errs = append(errs, NewSchemaError(e.Name, v.Name(), err.Error(), nil))
			continue
		}
		f := &Field{Name: v.Name(), Type: typ}
		if tag != "" && tag != v.Name() {
			f.Column = tag
		}
		e.Fields = append(e.Fields, f)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// fieldType maps a Go type to a field type. Only unnamed basic types are
// supported, so field pointers keep their basic pointer types.
func fieldType(t types.Type) (field.Type, error) {
	b, ok := types.Unalias(t).(*types.Basic)
	if !ok {
		return field.TypeInvalid, fmt.Errorf("unsupported type %s; tag the field `%s:\"-\"` to skip it", t, TagName)
	}
	ft, ok := field.ParseType(b.Name())
	if !ok {
		return field.TypeInvalid, fmt.Errorf("unsupported type %s", b.Name())
	}
	return ft, nil
}
