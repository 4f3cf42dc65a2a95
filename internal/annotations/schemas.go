package annotations

import (
	"fmt"
	"go/token"
)

// OptionType describes the shape of an option value
type OptionType int

const (
	FlagOption OptionType = iota // -Name
	ListOption                   // -Name=a,b,c
)

// String returns the string representation of the option type
func (t OptionType) String() string {
	switch t {
	case FlagOption:
		return "flag"
	case ListOption:
		return "list"
	default:
		return "unknown"
	}
}

// OptionSpec defines one option a marker accepts
type OptionSpec struct {
	Type        OptionType         // value shape
	Description string             // help text
	Validator   func(string) error // optional per-value check
}

// MarkerSchema defines the options a marker kind accepts
type MarkerSchema struct {
	Kind        string                // marker kind after the separator
	Description string                // help text
	Options     map[string]OptionSpec // accepted options by name
	Examples    []string              // valid marker lines
}

// ImplementationSchema defines the schema for //delegen::implementation markers
var ImplementationSchema = MarkerSchema{
	Kind:        KindImplementation,
	Description: "Generates an I<Name> interface and a <Name>Impl delegate for a type",
	Options: map[string]OptionSpec{
		"Exclude": {
			Type:        ListOption,
			Description: "Member names left out of the generated interface and delegate",
			Validator: func(v string) error {
				if v == "" {
					return fmt.Errorf("member name is empty")
				}
				return nil
			},
		},
		"Unexported": {
			Type:        FlagOption,
			Description: "Also forward unexported methods declared in the same package",
		},
	},
	Examples: []string{
		"//delegen::implementation",
		"//delegen::implementation -Exclude=Close",
		"//delegen::implementation -Exclude=Close,Reset -Unexported",
	},
}

// RegisterBuiltinSchemas registers every built-in marker schema
func RegisterBuiltinSchemas(r *Registry) error {
	return r.Register(ImplementationSchema)
}

func validateSchema(schema MarkerSchema) error {
	if !token.IsIdentifier(schema.Kind) {
		return fmt.Errorf("marker kind %q is not an identifier", schema.Kind)
	}
	for name := range schema.Options {
		if !token.IsIdentifier(name) {
			return fmt.Errorf("option name %q is not an identifier", name)
		}
	}
	return nil
}
