package synth

import (
	"go/token"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/delegen/internal/models"
)

// InterfaceName returns the generated interface name for a declaration name.
func InterfaceName(name string) string {
	return "I" + name
}

// DelegateName returns the generated delegate name for a declaration name.
func DelegateName(name string) string {
	return name + "Impl"
}

// ConstructorName returns the delegate constructor name. It keeps the
// visibility of the source declaration.
func ConstructorName(name string) string {
	if token.IsExported(name) {
		return "New" + DelegateName(name)
	}
	return "new" + upperFirst(DelegateName(name))
}

// GeneratedNames lists every package-level identifier generated for name.
func GeneratedNames(name string) []string {
	return []string{InterfaceName(name), DelegateName(name), ConstructorName(name)}
}

// FieldName returns the name of the delegate field holding the wrapped value.
// It is the lowerCamel form of the declaration name unless that would be a
// keyword or clash with a forwarded member.
func FieldName(name string, members []models.MemberSignature) string {
	field := lowerCamel(name)
	if token.IsKeyword(field) || field == "_" {
		return "inner" + upperFirst(name)
	}
	for _, m := range members {
		if m.Name == field {
			return "inner" + upperFirst(name)
		}
	}
	return field
}

// receiverName picks a receiver for the delegate's methods that no parameter,
// import or the field uses.
func receiverName(delegate, field string, members []models.MemberSignature) string {
	taken := map[string]bool{field: true}
	for _, m := range members {
		for _, p := range m.Params {
			taken[p.Name] = true
			for _, imp := range p.Type.AllImports() {
				taken[imp.Name] = true
			}
		}
		for _, imp := range m.Result.AllImports() {
			taken[imp.Name] = true
		}
	}

	first, _ := utf8.DecodeRuneInString(delegate)
	candidates := []string{string(unicode.ToLower(first)), "d", "impl", "delegate"}
	for _, c := range candidates {
		if !taken[c] && token.IsIdentifier(c) && c != "_" {
			return c
		}
	}
	for i := 0; ; i++ {
		c := "delegate" + strconv.Itoa(i)
		if !taken[c] {
			return c
		}
	}
}

// lowerCamel lowers the leading upper-case run of name, keeping the last
// upper-case letter of an acronym when it starts the next word:
// ExampleRepository -> exampleRepository, HTTPClient -> httpClient, ID -> id.
func lowerCamel(name string) string {
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	if upper == 0 {
		return name
	}
	if upper > 1 && upper < len(runes) && unicode.IsLetter(runes[upper]) {
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
