// Package emitter turns a declaration's generated models into one output unit.
package emitter

import (
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/templates"
)

// Emitter renders both generated models of a declaration into a single
// unit and writes it through a Sink in one write.
type Emitter struct {
	renderer templates.Renderer
	sink     Sink
	suffix   string
	naming   Naming

	mu      sync.Mutex
	claimed map[string]string // output path -> declaration key
}

// Naming selects how a declaration name becomes an output file name
type Naming string

const (
	// NamingSnake writes snake_case(Name) + suffix
	NamingSnake Naming = "snake"
	// NamingVerbatim writes Name + suffix, e.g. Repository.go with suffix ".go"
	NamingVerbatim Naming = "verbatim"
)

// New creates an emitter; an empty suffix selects models.DefaultFileSuffix
func New(renderer templates.Renderer, sink Sink, suffix string) *Emitter {
	if suffix == "" {
		suffix = models.DefaultFileSuffix
	}
	return &Emitter{
		renderer: renderer,
		sink:     sink,
		suffix:   suffix,
		naming:   NamingSnake,
		claimed:  make(map[string]string),
	}
}

// WithNaming sets the file naming scheme; an empty value keeps NamingSnake
func (e *Emitter) WithNaming(naming Naming) *Emitter {
	if naming != "" {
		e.naming = naming
	}
	return e
}

// Emit renders the interface followed by the delegate and writes the unit.
// Rendering happens before the output is opened, so a rendering failure
// leaves no output behind.
func (e *Emitter) Emit(decl models.TypeDeclaration, iface models.GeneratedInterfaceModel, delegate models.GeneratedDelegateModel) (models.GeneratedUnit, error) {
	loc := errors.SourceLocation{File: decl.File, Line: decl.Line}
	content, err := e.renderer.Render(decl.File, iface, delegate)
	if err != nil {
		return models.GeneratedUnit{}, errors.WrapGenerateError(decl.Key(), err).WithLocation(loc)
	}

	unit := models.GeneratedUnit{
		Declaration: decl.Key(),
		Dir:         outputDir(decl),
		FileName:    e.fileName(decl.Name),
		Origin:      decl.File,
		Content:     content,
	}

	path := Path(unit)
	if owner := e.owner(path); owner != "" && owner != decl.Key() {
		return models.GeneratedUnit{}, errors.NewOutputCollisionError(decl.Key(), owner, path).WithLocation(loc)
	}

	w, err := e.sink.Create(unit.Dir, unit.FileName, unit.Origin)
	if err != nil {
		return models.GeneratedUnit{}, sinkError(decl, loc, err)
	}

	if _, err := w.Write(content); err != nil {
		if a, ok := w.(Aborter); ok {
			a.Abort()
		}
		w.Close()
		return models.GeneratedUnit{}, sinkError(decl, loc, err)
	}

	if err := w.Close(); err != nil {
		return models.GeneratedUnit{}, sinkError(decl, loc, err)
	}

	e.claim(path, decl.Key())
	return unit, nil
}

func (e *Emitter) fileName(name string) string {
	if e.naming == NamingVerbatim {
		return name + e.suffix
	}
	return FileName(name, e.suffix)
}

func (e *Emitter) owner(path string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimed[path]
}

func (e *Emitter) claim(path, declaration string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.claimed[path] = declaration
}

// sinkError keeps the code of errors raised by the sink and attaches the declaration
func sinkError(decl models.TypeDeclaration, loc errors.SourceLocation, err error) error {
	var base *errors.BaseError
	if errors.As(err, &base) {
		return base.WithContext("declaration", decl.Key()).WithLocation(loc)
	}
	return errors.WrapGenerateError(decl.Key(), err).WithLocation(loc)
}

// Path returns where the unit is written
func Path(unit models.GeneratedUnit) string {
	return filepath.Join(unit.Dir, unit.FileName)
}

// FileName returns the output file name for a declaration name
func FileName(name, suffix string) string {
	return SnakeCase(name) + suffix
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: ExampleRepository -> example_repository, HTTPClient -> http_client.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func outputDir(decl models.TypeDeclaration) string {
	if decl.Dir != "" {
		return decl.Dir
	}
	return filepath.Dir(decl.File)
}
