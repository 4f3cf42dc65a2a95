// Package annotations parses the //delegen:: markers placed on declarations.
package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/delegen/internal/errors"
)

// marker is the grammar root: //delegen::kind -Opt -Opt=a,b
type marker struct {
	Pos     lexer.Position
	Tool    string    `parser:"'//' @Ident '::'"`
	Kind    string    `parser:"@Ident"`
	Options []*option `parser:"@@*"`
}

type option struct {
	Pos    lexer.Position
	Name   string   `parser:"'-' @Ident"`
	Values []string `parser:"( '=' @(Ident | String) ( ',' @(Ident | String) )* )?"`
}

// Parser parses marker comments with participle and validates them against a registry
type Parser struct {
	parser   *participle.Parser[marker]
	registry *Registry
}

// NewParser creates a marker parser
func NewParser(registry *Registry) *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//`},
		{Name: "Separator", Pattern: `::`},
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[-=,]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	return &Parser{
		parser: participle.MustBuild[marker](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		registry: registry,
	}
}

// IsMarker reports whether a comment line is a delegen marker
func IsMarker(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}

// Parse parses and validates one marker comment. loc is used for errors.
func (p *Parser) Parse(comment string, loc errors.SourceLocation) (*ParsedMarker, error) {
	raw := strings.TrimSpace(comment)

	ast, err := p.parser.ParseString(loc.File, raw)
	if err != nil {
		return nil, errors.WrapParseError("marker "+raw, loc, err)
	}
	if ast.Tool != Tool {
		return nil, errors.Newf(errors.SyntaxErrorCode, "marker namespace %q is not %q", ast.Tool, Tool).
			WithLocation(loc)
	}

	schema, ok := p.registry.Schema(ast.Kind)
	if !ok {
		return nil, errors.Newf(errors.SyntaxErrorCode, "unknown marker kind %q", ast.Kind).
			WithLocation(loc).
			WithSuggestion(fmt.Sprintf("Known kinds: %s", strings.Join(p.registry.Kinds(), ", ")))
	}

	parsed := &ParsedMarker{Kind: ast.Kind, Raw: raw}
	seen := make(map[string]bool, len(ast.Options))
	for _, opt := range ast.Options {
		if err := p.applyOption(parsed, schema, opt, seen); err != nil {
			return nil, err.WithLocation(loc)
		}
	}

	return parsed, nil
}

func (p *Parser) applyOption(parsed *ParsedMarker, schema MarkerSchema, opt *option, seen map[string]bool) *errors.BaseError {
	spec, ok := schema.Options[opt.Name]
	if !ok {
		return errors.Newf(errors.SyntaxErrorCode, "unknown option -%s for %s marker", opt.Name, schema.Kind).
			WithContext("column", opt.Pos.Column).
			WithSuggestion(fmt.Sprintf("Valid options: %s", strings.Join(optionNames(schema), ", ")))
	}
	if seen[opt.Name] {
		return errors.Newf(errors.SyntaxErrorCode, "option -%s given more than once", opt.Name)
	}
	seen[opt.Name] = true

	switch spec.Type {
	case FlagOption:
		if len(opt.Values) > 0 {
			return errors.Newf(errors.SyntaxErrorCode, "option -%s is a flag and takes no value", opt.Name)
		}
	case ListOption:
		if len(opt.Values) == 0 {
			return errors.Newf(errors.SyntaxErrorCode, "option -%s needs a value", opt.Name).
				WithSuggestion(fmt.Sprintf("Use -%s=Name1,Name2", opt.Name))
		}
	}
	if spec.Validator != nil {
		for _, v := range opt.Values {
			if err := spec.Validator(v); err != nil {
				return errors.Wrapf(errors.SyntaxErrorCode, err, "invalid value for -%s", opt.Name)
			}
		}
	}

	switch opt.Name {
	case "Exclude":
		parsed.Exclude = append(parsed.Exclude, opt.Values...)
	case "Unexported":
		parsed.Unexported = true
	}
	return nil
}

func optionNames(schema MarkerSchema) []string {
	names := make([]string, 0, len(schema.Options))
	for name := range schema.Options {
		names = append(names, "-"+name)
	}
	sort.Strings(names)
	return names
}
