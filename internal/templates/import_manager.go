package templates

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/toyz/delegen/internal/models"
)

// ImportManager handles import generation and deduplication
type ImportManager struct {
	imports map[string]string // path -> name
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		imports: make(map[string]string),
	}
}

// AddImport adds an import; the first name recorded for a path wins
func (im *ImportManager) AddImport(imp models.Import) {
	if imp.Path == "" {
		return
	}
	if _, exists := im.imports[imp.Path]; exists {
		return
	}
	im.imports[imp.Path] = imp.Name
}

// AddTypeRef adds every import a type reference needs
func (im *ImportManager) AddTypeRef(ref models.TypeRef) {
	for _, imp := range ref.AllImports() {
		im.AddImport(imp)
	}
}

// AddParameters adds the imports of every parameter type
func (im *ImportManager) AddParameters(params []models.Parameter) {
	for _, p := range params {
		im.AddTypeRef(p.Type)
	}
}

// Len returns the number of distinct imports
func (im *ImportManager) Len() int {
	return len(im.imports)
}

// GenerateImports generates the import section, sorted by path
func (im *ImportManager) GenerateImports() string {
	if len(im.imports) == 0 {
		return ""
	}

	paths := make([]string, 0, len(im.imports))
	for p := range im.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, importSpec(im.imports[p], p))
	}

	if len(lines) == 1 {
		return fmt.Sprintf("import %s\n", lines[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range lines {
		result.WriteString(fmt.Sprintf("\t%s\n", line))
	}
	result.WriteString(")\n")

	return result.String()
}

// importSpec renders one import, naming it only when the name cannot be
// inferred from the last path element.
func importSpec(name, importPath string) string {
	if name == "" || name == path.Base(importPath) {
		return fmt.Sprintf("%q", importPath)
	}
	return fmt.Sprintf("%s %q", name, importPath)
}
