package synth

import (
	"fmt"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/filter"
	"github.com/toyz/delegen/internal/models"
)

var intType = models.Concrete("int", "int")

func exampleRepository() models.TypeDeclaration {
	return models.TypeDeclaration{
		PackagePath: "example.com/p",
		PackageName: "p",
		Name:        "ExampleRepository",
		Kind:        models.DeclarationClass,
		File:        "p/repository.go",
		Line:        7,
		Members: []models.MemberSignature{
			{
				Name:   "GetData",
				Params: []models.Parameter{{Name: "a", Type: intType}, {Name: "b", Type: intType}},
				Result: intType,
			},
			{
				Name:   "Save",
				Params: []models.Parameter{{Name: "x", Type: intType}},
				Result: models.Void,
			},
		},
	}
}

func TestInterfaceExampleRepository(t *testing.T) {
	decl := exampleRepository()

	got, err := Interface(decl, decl.Members)
	require.NoError(t, err)

	want := models.GeneratedInterfaceModel{
		PackageName: "p",
		Name:        "IExampleRepository",
		Source:      "ExampleRepository",
		Members: []models.InterfaceMember{
			{Name: "GetData", Params: decl.Members[0].Params, Result: intType},
			{Name: "Save", Params: decl.Members[1].Params, Result: models.Void},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Interface() mismatch (-want +got):\n%s", diff)
	}
}

func TestDelegateExampleRepository(t *testing.T) {
	decl := exampleRepository()

	got, err := Delegate(decl, decl.Members)
	require.NoError(t, err)

	want := models.GeneratedDelegateModel{
		PackageName: "p",
		Name:        "ExampleRepositoryImpl",
		Implements:  "IExampleRepository",
		Source:      "ExampleRepository",
		Receiver:    "e",
		Field: models.DelegateField{
			Name: "exampleRepository",
			Type: models.Concrete("example.com/p.ExampleRepository", "ExampleRepository"),
		},
		Constructor: models.DelegateConstructor{Name: "NewExampleRepositoryImpl", Param: "exampleRepository"},
		Members: []models.DelegateMember{
			{
				Name:    "GetData",
				Params:  decl.Members[0].Params,
				Result:  intType,
				Call:    models.ForwardCall{Target: "exampleRepository", Method: "GetData", Args: []string{"a", "b"}},
				Returns: true,
			},
			{
				Name:    "Save",
				Params:  decl.Members[1].Params,
				Result:  models.Void,
				Call:    models.ForwardCall{Target: "exampleRepository", Method: "Save", Args: []string{"x"}},
				Returns: false,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Delegate() mismatch (-want +got):\n%s", diff)
	}
}

func TestInterfaceAndDelegateAreIsomorphic(t *testing.T) {
	decl := exampleRepository()
	decl.Members = append(decl.Members,
		models.MemberSignature{Name: "equals", Params: []models.Parameter{{Name: "other", Type: intType}}, Result: models.Concrete("bool", "bool")},
		models.MemberSignature{Name: "String", Result: models.Concrete("string", "string")},
		models.MemberSignature{Name: "Pair", Result: models.Tuple(intType, models.Concrete("error", "error"))},
	)
	members := filter.Members(filter.DefaultPolicy(), decl.Members)

	iface, err := Interface(decl, members)
	require.NoError(t, err)
	delegate, err := Delegate(decl, members)
	require.NoError(t, err)

	require.Len(t, delegate.Members, len(iface.Members))
	for i := range iface.Members {
		assert.Equal(t, iface.Members[i].Name, delegate.Members[i].Name)
		assert.Equal(t, iface.Members[i].Params, delegate.Members[i].Params)
		assert.Equal(t, iface.Members[i].Result, delegate.Members[i].Result)
		assert.NotContains(t, []string{"equals", "hashCode", "toString", "<init>", "String"}, iface.Members[i].Name)
	}
	assert.True(t, delegate.Members[2].Returns, "tuple results are returned")
}

func TestZeroMembers(t *testing.T) {
	decl := exampleRepository()
	decl.Members = nil

	iface, err := Interface(decl, nil)
	require.NoError(t, err)
	assert.Empty(t, iface.Members)
	assert.Equal(t, "IExampleRepository", iface.Name)

	delegate, err := Delegate(decl, nil)
	require.NoError(t, err)
	assert.Empty(t, delegate.Members)
	assert.Equal(t, "exampleRepository", delegate.Field.Name)
	assert.Equal(t, "NewExampleRepositoryImpl", delegate.Constructor.Name)
}

func TestUnresolvableParameterFails(t *testing.T) {
	decl := exampleRepository()
	decl.Members[1].Params[0].Type = models.Unresolved("T")

	_, err := Interface(decl, decl.Members)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.UnresolvableTypeErrorCode))
	assert.Contains(t, err.Error(), "p/repository.go:7")

	_, err = Delegate(decl, decl.Members)
	assert.True(t, errors.HasCode(err, errors.UnresolvableTypeErrorCode))
}

func TestUnresolvableTupleElementFails(t *testing.T) {
	decl := exampleRepository()
	decl.Members[0].Result = models.Tuple(intType, models.Unresolved("V"))

	_, err := Interface(decl, decl.Members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(int, V)")
}

func TestPointerReceiverField(t *testing.T) {
	decl := exampleRepository()
	decl.PointerReceiver = true

	delegate, err := Delegate(decl, decl.Members)
	require.NoError(t, err)
	assert.Equal(t, "*ExampleRepository", delegate.Field.Type.Expr)
}

func TestVariadicForwarding(t *testing.T) {
	decl := exampleRepository()
	decl.Members = []models.MemberSignature{{
		Name: "Log",
		Params: []models.Parameter{
			{Name: "format", Type: models.Concrete("string", "string")},
			{Name: "args", Type: models.Concrete("any", "any"), Variadic: true},
		},
		Result: models.Void,
	}}

	delegate, err := Delegate(decl, decl.Members)
	require.NoError(t, err)
	assert.True(t, delegate.Members[0].Call.Spread)
	assert.Equal(t, []string{"format", "args"}, delegate.Members[0].Call.Args)
}

func TestNamingRoundTrip(t *testing.T) {
	for _, name := range []string{"ExampleRepository", "X", "HTTPClient", "repo"} {
		t.Run(name, func(t *testing.T) {
			iface := InterfaceName(name)
			delegate := DelegateName(name)
			assert.Equal(t, "I"+name, iface)
			assert.Equal(t, name+"Impl", delegate)
			assert.Equal(t, name, iface[1:])
			assert.Equal(t, name, delegate[:len(delegate)-len("Impl")])
		})
	}
}

func TestConstructorName(t *testing.T) {
	assert.Equal(t, "NewExampleRepositoryImpl", ConstructorName("ExampleRepository"))
	assert.Equal(t, "newRepoImpl", ConstructorName("repo"))
	assert.Equal(t, []string{"IRepo", "RepoImpl", "NewRepoImpl"}, GeneratedNames("Repo"))
}

func TestFieldName(t *testing.T) {
	tests := []struct {
		name    string
		members []models.MemberSignature
		want    string
	}{
		{name: "ExampleRepository", want: "exampleRepository"},
		{name: "HTTPClient", want: "httpClient"},
		{name: "ID", want: "id"},
		{name: "XMLParser", want: "xmlParser"},
		{name: "HTTP2Client", want: "http2Client"},
		{name: "repo", want: "repo"},
		{name: "Func", want: "innerFunc"},
		{name: "Store", members: []models.MemberSignature{{Name: "store"}}, want: "innerStore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldName(tt.name, tt.members))
		})
	}
}

func TestReceiverAvoidsParameterAndImportNames(t *testing.T) {
	ctx := models.Concrete("context.Context", "context.Context", models.Import{Path: "context", Name: "context"})
	members := []models.MemberSignature{
		{Name: "A", Params: []models.Parameter{{Name: "e", Type: intType}}, Result: models.Void},
		{Name: "B", Params: []models.Parameter{{Name: "d", Type: ctx}}, Result: models.Void},
	}

	assert.Equal(t, "impl", receiverName("ExampleRepositoryImpl", "exampleRepository", members))

	members = append(members, models.MemberSignature{
		Name:   "C",
		Params: []models.Parameter{{Name: "impl", Type: intType}, {Name: "delegate", Type: intType}},
		Result: models.Void,
	})
	assert.Equal(t, "delegate0", receiverName("ExampleRepositoryImpl", "exampleRepository", members))

	assert.Equal(t, "ä", receiverName("ÄrgerImpl", "ärger", nil))
	assert.Equal(t, "d", receiverName("_hiddenImpl", "hidden", nil))
}

func TestDelegateForNonASCIIName(t *testing.T) {
	decl := exampleRepository()
	decl.Name = "Ärger"

	delegate, err := Delegate(decl, decl.Members)
	require.NoError(t, err)
	assert.Equal(t, "ÄrgerImpl", delegate.Name)
	assert.True(t, token.IsIdentifier(delegate.Receiver), delegate.Receiver)
	assert.Equal(t, "ä", delegate.Receiver)
}

func TestSynthesisIsDeterministic(t *testing.T) {
	decl := exampleRepository()
	for i := 0; i < 3; i++ {
		t.Run(fmt.Sprintf("run-%d", i), func(t *testing.T) {
			a, err := Delegate(decl, decl.Members)
			require.NoError(t, err)
			b, err := Delegate(decl, decl.Members)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(a, b))
		})
	}
}
