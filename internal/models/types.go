package models

import "strings"

// DeclarationKind is the closed set of variants a marked declaration can take
type DeclarationKind int

const (
	DeclarationClass     DeclarationKind = iota // struct or other defined non-interface type
	DeclarationInterface                        // interface type
	DeclarationAlias                            // type alias
	DeclarationFunc                             // function or method
)

// String returns the string representation of the declaration kind
func (k DeclarationKind) String() string {
	switch k {
	case DeclarationClass:
		return "class"
	case DeclarationInterface:
		return "interface"
	case DeclarationAlias:
		return "alias"
	case DeclarationFunc:
		return "func"
	default:
		return "unknown"
	}
}

// TypeKind distinguishes the shapes a TypeRef can have
type TypeKind int

const (
	TypeKindVoid     TypeKind = iota // no value
	TypeKindConcrete                 // a single type expression
	TypeKindTuple                    // several results
)

// Import is a package needed to spell a type expression
type Import struct {
	Path string // import path
	Name string // identifier the expression uses for the package
}

// TypeRef is a pre-resolved reference to a type as used in a member signature
type TypeRef struct {
	Kind      TypeKind  // shape of the reference
	Qualified string    // fully-qualified type string, empty when the type cannot be resolved
	Expr      string    // expression as written in the declaring package
	Imports   []Import  // packages Expr refers to
	Elems     []TypeRef // tuple elements
}

// Void is the sentinel for a member that produces no value.
var Void = TypeRef{Kind: TypeKindVoid}

// Concrete returns a reference to a single resolved type.
func Concrete(qualified, expr string, imports ...Import) TypeRef {
	return TypeRef{Kind: TypeKindConcrete, Qualified: qualified, Expr: expr, Imports: imports}
}

// Unresolved returns a reference whose expression has no concrete type behind it.
func Unresolved(expr string) TypeRef {
	return TypeRef{Kind: TypeKindConcrete, Expr: expr}
}

// Tuple returns a reference to an ordered list of results.
func Tuple(elems ...TypeRef) TypeRef {
	return TypeRef{Kind: TypeKindTuple, Elems: elems}
}

// IsVoid reports whether t is the no-value sentinel. Only the kind is
// compared, so an empty struct or a named unit type is never void.
func (t TypeRef) IsVoid() bool {
	return t.Kind == TypeKindVoid
}

// IsResolved reports whether t and every tuple element map to a concrete type.
func (t TypeRef) IsResolved() bool {
	switch t.Kind {
	case TypeKindVoid:
		return true
	case TypeKindTuple:
		for _, e := range t.Elems {
			if !e.IsResolved() {
				return false
			}
		}
		return true
	default:
		return t.Qualified != ""
	}
}

// AllImports returns the imports of t and its tuple elements in order of appearance.
func (t TypeRef) AllImports() []Import {
	imports := append([]Import(nil), t.Imports...)
	for _, e := range t.Elems {
		imports = append(imports, e.AllImports()...)
	}
	return imports
}

// String returns the expression form of the reference
func (t TypeRef) String() string {
	switch t.Kind {
	case TypeKindVoid:
		return ""
	case TypeKindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.Expr
	}
}
