package parser

import (
	"fmt"
	"go/types"

	"github.com/toyz/delegen/internal/models"
)

// collectMembers fills decl.Members from the method set of named: methods
// declared on the type first in source order, then promoted methods in
// method-set order.
func collectMembers(named *types.Named, decl *models.TypeDeclaration, q *qualifier) {
	self := named.Obj().Pkg()
	pointerSet := types.NewMethodSet(types.NewPointer(named))
	valueSet := types.NewMethodSet(named)

	include := func(fn *types.Func) bool {
		if fn.Exported() {
			return true
		}
		return decl.Unexported && fn.Pkg() != nil && fn.Pkg().Path() == self.Path()
	}

	seen := make(map[string]bool)
	add := func(fn *types.Func) {
		seen[fn.Name()] = true
		if !include(fn) {
			return
		}
		if valueSet.Lookup(fn.Pkg(), fn.Name()) == nil {
			decl.PointerReceiver = true
		}
		decl.Members = append(decl.Members, memberSignature(fn, decl, q))
	}

	for i := 0; i < named.NumMethods(); i++ {
		add(named.Method(i))
	}
	for i := 0; i < pointerSet.Len(); i++ {
		fn, ok := pointerSet.At(i).Obj().(*types.Func)
		if !ok || seen[fn.Name()] {
			continue
		}
		add(fn)
	}
}

func memberSignature(fn *types.Func, decl *models.TypeDeclaration, q *qualifier) models.MemberSignature {
	sig := fn.Type().(*types.Signature)
	member := models.MemberSignature{Name: fn.Name(), Result: models.Void}

	params := sig.Params()
	used := make(map[string]bool, params.Len())
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		typ := v.Type()
		variadic := sig.Variadic() && i == params.Len()-1
		if variadic {
			if slice, ok := typ.(*types.Slice); ok {
				typ = slice.Elem()
			}
		}

		member.Params = append(member.Params, models.Parameter{
			Name:     paramName(v.Name(), i, used),
			Type:     resolve(typ, fn.Name(), decl, q),
			Variadic: variadic,
		})
	}

	results := sig.Results()
	switch results.Len() {
	case 0:
	case 1:
		member.Result = resolve(results.At(0).Type(), fn.Name(), decl, q)
	default:
		elems := make([]models.TypeRef, results.Len())
		for i := range elems {
			elems[i] = resolve(results.At(i).Type(), fn.Name(), decl, q)
		}
		member.Result = models.Tuple(elems...)
	}

	return member
}

// resolve converts t and records it on decl when the type checker has not
// resolved it yet.
func resolve(t types.Type, member string, decl *models.TypeDeclaration, q *qualifier) models.TypeRef {
	if inspect(q.self, t).invalid {
		decl.Unresolved = append(decl.Unresolved, fmt.Sprintf("%s: %s", member, types.TypeString(t, nil)))
	}
	return q.typeRef(t)
}

// paramName returns a unique, non-blank name for the i'th parameter
func paramName(name string, i int, used map[string]bool) string {
	if name == "" || name == "_" {
		name = fmt.Sprintf(blankParamFormat, i)
	}
	base := name
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s%d", base, n)
	}
	used[name] = true
	return name
}
