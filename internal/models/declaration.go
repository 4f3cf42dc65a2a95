package models

import (
	"fmt"
	"go/token"
)

// Parameter represents a single member parameter
type Parameter struct {
	Name     string  // parameter name, unique within the member
	Type     TypeRef // parameter type; the element type when Variadic
	Variadic bool    // whether this is a trailing ...T parameter
}

// MemberSignature describes one callable operation of a declaration
type MemberSignature struct {
	Name   string      // member name
	Params []Parameter // ordered parameters
	Result TypeRef     // result, Void when the member returns nothing
}

// TypeDeclaration is a marked declaration as seen by the pipeline
type TypeDeclaration struct {
	PackagePath     string            // qualified import path
	PackageName     string            // package clause name
	Dir             string            // directory holding the package sources
	Name            string            // simple name
	Kind            DeclarationKind   // declaration variant
	File            string            // originating file
	Line            int               // line of the declaration name
	Members         []MemberSignature // declared members in source order
	PointerReceiver bool              // whether any member needs a pointer receiver
	ReservedNames   []string          // package-scope identifiers declared outside generated files
	Unresolved      []string          // type expressions the type checker could not resolve yet
	Exclude         []string          // extra member names excluded for this declaration
	Unexported      bool              // whether unexported members were requested
}

// Key identifies the declaration across rounds
func (d TypeDeclaration) Key() string {
	return d.PackagePath + "." + d.Name
}

// IsPending reports whether the declaration must wait for a later round
func (d TypeDeclaration) IsPending() bool {
	return len(d.Unresolved) > 0
}

// IsExported reports whether the declaration's name is exported
func (d TypeDeclaration) IsExported() bool {
	return token.IsExported(d.Name)
}

// Validate checks the structural invariants of the declaration
func (d TypeDeclaration) Validate() error {
	if !token.IsIdentifier(d.Name) {
		return fmt.Errorf("name %q is not a valid identifier", d.Name)
	}
	if d.PackagePath == "" {
		return fmt.Errorf("package path is empty")
	}
	for _, m := range d.Members {
		if !token.IsIdentifier(m.Name) {
			return fmt.Errorf("member name %q is not a valid identifier", m.Name)
		}
		seen := make(map[string]bool, len(m.Params))
		for i, p := range m.Params {
			if !token.IsIdentifier(p.Name) {
				return fmt.Errorf("member %s: parameter name %q is not a valid identifier", m.Name, p.Name)
			}
			if seen[p.Name] {
				return fmt.Errorf("member %s: duplicate parameter name %q", m.Name, p.Name)
			}
			seen[p.Name] = true
			if p.Variadic && i != len(m.Params)-1 {
				return fmt.Errorf("member %s: variadic parameter %q is not last", m.Name, p.Name)
			}
		}
	}
	return nil
}
