package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/delegen/internal/errors"
)

func TestIsMarker(t *testing.T) {
	assert.True(t, IsMarker("//delegen::implementation"))
	assert.True(t, IsMarker("  //delegen::implementation -Unexported"))
	assert.False(t, IsMarker("// delegen::implementation"))
	assert.False(t, IsMarker("//wire::core"))
	assert.False(t, IsMarker("// ExampleRepository stores things"))
}

func TestParseValidMarkers(t *testing.T) {
	parser := NewParser(DefaultRegistry())
	loc := errors.SourceLocation{File: "repo.go", Line: 4}

	tests := []struct {
		name  string
		input string
		want  *ParsedMarker
	}{
		{
			name:  "bare",
			input: "//delegen::implementation",
			want:  &ParsedMarker{Kind: "implementation", Raw: "//delegen::implementation"},
		},
		{
			name:  "exclude list",
			input: "//delegen::implementation -Exclude=Close,Reset",
			want:  &ParsedMarker{Kind: "implementation", Exclude: []string{"Close", "Reset"}, Raw: "//delegen::implementation -Exclude=Close,Reset"},
		},
		{
			name:  "quoted value and flag",
			input: `//delegen::implementation -Exclude="<init>" -Unexported`,
			want:  &ParsedMarker{Kind: "implementation", Exclude: []string{"<init>"}, Unexported: true, Raw: `//delegen::implementation -Exclude="<init>" -Unexported`},
		},
		{
			name:  "spacing",
			input: "  //delegen::implementation   -Unexported  -Exclude = A , B  ",
			want:  &ParsedMarker{Kind: "implementation", Exclude: []string{"A", "B"}, Unexported: true, Raw: "//delegen::implementation   -Unexported  -Exclude = A , B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalidMarkers(t *testing.T) {
	parser := NewParser(DefaultRegistry())
	loc := errors.SourceLocation{File: "repo.go", Line: 9}

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "unknown kind", input: "//delegen::service", wantErr: `unknown marker kind "service"`},
		{name: "unknown option", input: "//delegen::implementation -Mode=Fast", wantErr: "unknown option -Mode"},
		{name: "flag with value", input: "//delegen::implementation -Unexported=yes", wantErr: "takes no value"},
		{name: "list without value", input: "//delegen::implementation -Exclude", wantErr: "needs a value"},
		{name: "duplicate option", input: "//delegen::implementation -Unexported -Unexported", wantErr: "more than once"},
		{name: "wrong namespace", input: "//wire::implementation", wantErr: "is not \"delegen\""},
		{name: "trailing garbage", input: "//delegen::implementation please", wantErr: "failed to parse marker"},
		{name: "missing kind", input: "//delegen::", wantErr: "failed to parse marker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input, loc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "repo.go:9")
			assert.True(t, errors.HasCode(err, errors.SyntaxErrorCode))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(r))
	assert.Equal(t, []string{"implementation"}, r.Kinds())

	err := r.Register(ImplementationSchema)
	assert.ErrorContains(t, err, "already registered")

	err = r.Register(MarkerSchema{Kind: "bad kind"})
	assert.ErrorContains(t, err, "not an identifier")

	schema, ok := r.Schema("implementation")
	require.True(t, ok)
	assert.Equal(t, ListOption, schema.Options["Exclude"].Type)
	assert.Equal(t, "flag", schema.Options["Unexported"].Type.String())
}

func TestSchemaExamplesParse(t *testing.T) {
	parser := NewParser(DefaultRegistry())
	for _, example := range ImplementationSchema.Examples {
		_, err := parser.Parse(example, errors.SourceLocation{})
		assert.NoError(t, err, example)
	}
}
