// Package synth builds the interface and delegate models for a declaration.
// Both builders are pure and must be given the same filtered member list.
package synth

import (
	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
)

// Interface builds the I<Name> model for decl from the filtered members.
func Interface(decl models.TypeDeclaration, members []models.MemberSignature) (models.GeneratedInterfaceModel, error) {
	model := models.GeneratedInterfaceModel{
		PackageName: decl.PackageName,
		Name:        InterfaceName(decl.Name),
		Source:      decl.Name,
		Members:     make([]models.InterfaceMember, 0, len(members)),
	}

	for _, m := range members {
		if err := resolveMember(decl, m); err != nil {
			return models.GeneratedInterfaceModel{}, err
		}
		model.Members = append(model.Members, models.InterfaceMember{
			Name:   m.Name,
			Params: cloneParams(m.Params),
			Result: m.Result,
		})
	}

	return model, nil
}

// resolveMember fails when a parameter or the result of m has no concrete type.
func resolveMember(decl models.TypeDeclaration, m models.MemberSignature) error {
	for _, p := range m.Params {
		if p.Type.IsVoid() || !p.Type.IsResolved() {
			return unresolvable(decl, m, p.Type)
		}
	}
	if !m.Result.IsResolved() {
		return unresolvable(decl, m, m.Result)
	}
	return nil
}

func unresolvable(decl models.TypeDeclaration, m models.MemberSignature, ref models.TypeRef) error {
	expr := ref.String()
	if expr == "" {
		expr = "<missing>"
	}
	return errors.NewUnresolvableTypeError(decl.Key(), m.Name, expr).
		WithLocation(errors.SourceLocation{File: decl.File, Line: decl.Line})
}

func cloneParams(params []models.Parameter) []models.Parameter {
	if len(params) == 0 {
		return nil
	}
	return append([]models.Parameter(nil), params...)
}
