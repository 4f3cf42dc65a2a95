package cli

import (
	"path/filepath"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/utils"
)

// ModuleInfo describes the Go module a run operates in
type ModuleInfo struct {
	Path string // module path from go.mod
	Root string // directory holding go.mod
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// Resolve finds the module enclosing dir by walking up to the nearest go.mod
func (r *ModuleResolver) Resolve(dir string) (ModuleInfo, error) {
	goModPath, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return ModuleInfo{}, errors.WrapConfigurationError("go.mod", "locate", err).
			WithContext("dir", dir).
			WithSuggestions(
				"Run delegen from inside a Go module",
				"Point --dir at a directory containing go.mod",
			)
	}

	path, err := r.gomod.ParseModuleName(goModPath)
	if err != nil {
		return ModuleInfo{}, errors.WrapConfigurationError(goModPath, "parse", err)
	}

	return ModuleInfo{Path: path, Root: filepath.Dir(goModPath)}, nil
}
