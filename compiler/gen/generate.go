package gen

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema/field"
)

const (
	fieldPkg     = "github.com/syssam/tabula/schema/field"
	predicatePkg = "github.com/syssam/tabula/predicate"
)

// Result reports the file generated for a package.
type Result struct {
	Package string
	Path    string
	Changed bool // false when the file already had the generated content
}

// Generate writes the entity methods of every package into a file in the
// package directory. Packages are generated in parallel.
func Generate(ctx context.Context, pkgs []*load.Package, opts ...Option) ([]Result, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return cfg.Generate(ctx, pkgs)
}

// Generate is like the package-level Generate with an explicit config.
func (c *Config) Generate(ctx context.Context, pkgs []*load.Package) ([]Result, error) {
	if c.FileName == "" {
		return nil, NewOptionError("FileName", nil, "missing generated file name")
	}
	results := make([]Result, len(pkgs))
	eg, ctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		eg.SetLimit(c.Workers)
	}
	for i, p := range pkgs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p.Dir == "" {
				return NewGenerationError(p.Path, "", "package has no directory", nil)
			}
			path := filepath.Join(p.Dir, c.FileName)
			src, err := c.Render(p)
			if err != nil {
				return err
			}
			changed, err := writeFile(path, src)
			if err != nil {
				return NewGenerationError(p.Path, path, "cannot write file", err)
			}
			results[i] = Result{Package: p.Path, Path: path, Changed: changed}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Render returns the formatted source generated for p.
func (c *Config) Render(p *load.Package) ([]byte, error) {
	header := c.Header
	if header == "" {
		header = DefaultHeader
	}
	f := jen.NewFile(p.Name)
	f.HeaderComment(header)
	for _, e := range p.Entities {
		if err := entity(f, e); err != nil {
			return nil, NewGenerationError(p.Path, c.FileName, "entity "+e.Name, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError(p.Path, c.FileName, "cannot render", err)
	}
	src, err := format(filepath.Join(p.Dir, c.FileName), buf.Bytes())
	if err != nil {
		return nil, NewGenerationError(p.Path, c.FileName, "cannot format", err)
	}
	return src, nil
}

// entity declares the field names, typed columns and entity methods of e.
func entity(f *jen.File, e *load.Entity) error {
	ctors := make([]string, len(e.Fields))
	for i, fd := range e.Fields {
		ctor, err := constructor(fd.Type)
		if err != nil {
			return err
		}
		ctors[i] = ctor
	}
	recv := receiver(e.Name)
	multi := jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}

	f.Commentf("Field names of %s.", e.Name)
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, fd := range e.Fields {
			g.Id(fieldConst(e, fd)).Op("=").Lit(fd.Name)
		}
	})
	f.Line()

	f.Commentf("%sColumns holds typed columns for building %s predicates.", e.Name, e.Name)
	f.Var().Id(e.Name+"Columns").Op("=").StructFunc(func(g *jen.Group) {
		for i, fd := range e.Fields {
			g.Id(fd.Name).Qual(predicatePkg, ctors[i]+"Column")
		}
	}).CustomFunc(multi, func(g *jen.Group) {
		for i, fd := range e.Fields {
			g.Id(fd.Name).Op(":").Qual(predicatePkg, ctors[i]+"Column").Call(jen.Id(fieldConst(e, fd)))
		}
	})
	f.Line()

	f.Comment("Schema lists the fields of " + e.Name + ".")
	f.Func().Params(jen.Op("*").Id(e.Name)).Id("Schema").Params().Index().Qual(fieldPkg, "Descriptor").Block(
		jen.Return(jen.Index().Qual(fieldPkg, "Descriptor").CustomFunc(multi, func(g *jen.Group) {
			for i, fd := range e.Fields {
				d := jen.Qual(fieldPkg, ctors[i]).Call(jen.Id(fieldConst(e, fd)))
				if fd.Column != "" {
					d = d.Dot("StorageKey").Call(jen.Lit(fd.Column))
				}
				g.Add(d)
			}
		})),
	)
	f.Line()

	f.Comment("Values returns the field values of " + e.Name + ".")
	f.Func().Params(jen.Id(recv).Op("*").Id(e.Name)).Id("Values").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().CustomFunc(multi, func(g *jen.Group) {
			for _, fd := range e.Fields {
				g.Id(recv).Dot(fd.Name)
			}
		})),
	)
	f.Line()

	f.Comment("Pointers returns pointers to the fields of " + e.Name + ".")
	f.Func().Params(jen.Id(recv).Op("*").Id(e.Name)).Id("Pointers").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().CustomFunc(multi, func(g *jen.Group) {
			for _, fd := range e.Fields {
				g.Op("&").Id(recv).Dot(fd.Name)
			}
		})),
	)

	if e.Table != "" {
		f.Line()
		f.Comment("TableName returns the table " + e.Name + " is stored in.")
		f.Func().Params(jen.Op("*").Id(e.Name)).Id("TableName").Params().String().Block(
			jen.Return(jen.Lit(e.Table)),
		)
	}
	if e.Search != "" {
		f.Line()
		f.Comment("SearchField returns the field searched by text search.")
		f.Func().Params(jen.Op("*").Id(e.Name)).Id("SearchField").Params().String().Block(
			jen.Return(jen.Id(e.Name + "Field" + e.Search)),
		)
	}
	f.Line()
	return nil
}

// constructor returns the field and predicate constructor prefix of t,
// such as "Float32" for field.Float32 and predicate.Float32Column.
func constructor(t field.Type) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("unsupported field type %s", t)
	}
	name := t.String()
	return strings.ToUpper(name[:1]) + name[1:], nil
}

func fieldConst(e *load.Entity, f *load.Field) string {
	return e.Name + "Field" + f.Name
}

// receiver returns the receiver name of the entity methods.
func receiver(name string) string {
	r := []rune(name)
	return string(unicode.ToLower(r[0]))
}
