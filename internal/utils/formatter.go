package utils

import (
	"fmt"
	"go/parser"
	"go/token"

	"golang.org/x/tools/imports"
)

// formatOptions only formats and sorts the import block; it never adds or
// removes imports.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// FormatGoCode formats Go source code the way gofmt and goimports do.
// filename is used for error positions only.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, formatOptions)
	if err != nil {
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return nil, fmt.Errorf("invalid Go syntax: %w", parseErr)
		}
		return nil, err
	}
	return formatted, nil
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
