package synth

import (
	"github.com/toyz/delegen/internal/models"
)

// Delegate builds the <Name>Impl model for decl from the filtered members.
// Each member forwards to the wrapped value and returns the forwarded result
// unless the member's result is the Void sentinel.
func Delegate(decl models.TypeDeclaration, members []models.MemberSignature) (models.GeneratedDelegateModel, error) {
	name := DelegateName(decl.Name)
	field := FieldName(decl.Name, members)

	fieldType := models.Concrete(decl.PackagePath+"."+decl.Name, decl.Name)
	if decl.PointerReceiver {
		fieldType = models.Concrete("*"+decl.PackagePath+"."+decl.Name, "*"+decl.Name)
	}

	model := models.GeneratedDelegateModel{
		PackageName: decl.PackageName,
		Name:        name,
		Implements:  InterfaceName(decl.Name),
		Source:      decl.Name,
		Receiver:    receiverName(name, field, members),
		Field:       models.DelegateField{Name: field, Type: fieldType},
		Constructor: models.DelegateConstructor{Name: ConstructorName(decl.Name), Param: field},
		Members:     make([]models.DelegateMember, 0, len(members)),
	}

	for _, m := range members {
		if err := resolveMember(decl, m); err != nil {
			return models.GeneratedDelegateModel{}, err
		}
		model.Members = append(model.Members, models.DelegateMember{
			Name:    m.Name,
			Params:  cloneParams(m.Params),
			Result:  m.Result,
			Call:    forwardCall(field, m),
			Returns: !m.Result.IsVoid(),
		})
	}

	return model, nil
}

func forwardCall(field string, m models.MemberSignature) models.ForwardCall {
	call := models.ForwardCall{Target: field, Method: m.Name}
	for _, p := range m.Params {
		call.Args = append(call.Args, p.Name)
	}
	if n := len(m.Params); n > 0 && m.Params[n-1].Variadic {
		call.Spread = true
	}
	return call
}
