package parser

import (
	"go/types"
	"strconv"

	"github.com/toyz/delegen/internal/models"
)

// qualifier spells types relative to the declaring package and assigns a
// file-unique import name to every other package it meets.
type qualifier struct {
	self   *types.Package
	byPath map[string]string // import path -> name
	taken  map[string]bool   // names unavailable for imports
}

func newQualifier(self *types.Package, reserved []string) *qualifier {
	q := &qualifier{
		self:   self,
		byPath: make(map[string]string),
		taken:  map[string]bool{self.Name(): true},
	}
	for _, n := range reserved {
		q.taken[n] = true
	}
	return q
}

// importName returns the name generated code uses for pkg
func (q *qualifier) importName(pkg *types.Package) string {
	if name, ok := q.byPath[pkg.Path()]; ok {
		return name
	}
	name := pkg.Name()
	for i := 2; q.taken[name]; i++ {
		name = pkg.Name() + strconv.Itoa(i)
	}
	q.byPath[pkg.Path()] = name
	q.taken[name] = true
	return name
}

// typeRef converts t into a pre-resolved reference. Types that cannot be
// spelled in generated code get an empty Qualified string.
func (q *qualifier) typeRef(t types.Type) models.TypeRef {
	flags := inspect(q.self, t)

	var imports []models.Import
	expr := types.TypeString(t, func(p *types.Package) string {
		if p.Path() == q.self.Path() {
			return ""
		}
		imp := models.Import{Path: p.Path(), Name: q.importName(p)}
		for _, existing := range imports {
			if existing == imp {
				return imp.Name
			}
		}
		imports = append(imports, imp)
		return imp.Name
	})

	if flags.typeParam || flags.inaccessible {
		return models.Unresolved(expr)
	}
	qualified := types.TypeString(t, func(p *types.Package) string { return p.Path() })
	return models.Concrete(qualified, expr, imports...)
}

// typeFlags summarizes what inspect found inside a type
type typeFlags struct {
	invalid      bool // the type checker could not resolve part of it
	typeParam    bool // it mentions a type parameter
	inaccessible bool // it names an unexported type of another package
}

func (f *typeFlags) merge(o typeFlags) {
	f.invalid = f.invalid || o.invalid
	f.typeParam = f.typeParam || o.typeParam
	f.inaccessible = f.inaccessible || o.inaccessible
}

// inspect walks the structure of t without descending into the underlying
// type of named types, so recursive types terminate.
func inspect(self *types.Package, t types.Type) typeFlags {
	var flags typeFlags
	switch t := t.(type) {
	case nil:
		flags.invalid = true
	case *types.Basic:
		flags.invalid = t.Kind() == types.Invalid
	case *types.Pointer:
		flags = inspect(self, t.Elem())
	case *types.Slice:
		flags = inspect(self, t.Elem())
	case *types.Array:
		flags = inspect(self, t.Elem())
	case *types.Chan:
		flags = inspect(self, t.Elem())
	case *types.Map:
		flags = inspect(self, t.Key())
		flags.merge(inspect(self, t.Elem()))
	case *types.Signature:
		flags = inspect(self, t.Params())
		flags.merge(inspect(self, t.Results()))
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			flags.merge(inspect(self, t.At(i).Type()))
		}
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			flags.merge(inspect(self, t.Field(i).Type()))
		}
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			flags.merge(inspect(self, t.ExplicitMethod(i).Type()))
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			flags.merge(inspect(self, t.EmbeddedType(i)))
		}
	case *types.Union:
		for i := 0; i < t.Len(); i++ {
			flags.merge(inspect(self, t.Term(i).Type()))
		}
	case *types.TypeParam:
		flags.typeParam = true
	case *types.Alias:
		flags = inspect(self, types.Unalias(t))
		flags.merge(inspectTypeArgs(self, t.TypeArgs()))
		flags.merge(inspectObject(self, t.Obj()))
	case *types.Named:
		flags = inspectTypeArgs(self, t.TypeArgs())
		flags.merge(inspectObject(self, t.Obj()))
	}
	return flags
}

func inspectTypeArgs(self *types.Package, args *types.TypeList) typeFlags {
	var flags typeFlags
	for i := 0; i < args.Len(); i++ {
		flags.merge(inspect(self, args.At(i)))
	}
	return flags
}

func inspectObject(self *types.Package, obj *types.TypeName) typeFlags {
	var flags typeFlags
	if obj.Pkg() != nil && obj.Pkg().Path() != self.Path() && !obj.Exported() {
		flags.inaccessible = true
	}
	return flags
}
