// Package parser discovers marked declarations in Go packages and builds
// their pre-resolved declaration models.
package parser

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/delegen/internal/annotations"
	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/utils"
)

// Options configures discovery
type Options struct {
	Dir        string   // directory patterns are resolved from
	Unexported bool     // forward unexported methods for every declaration
	BuildTags  []string // build tags passed to the go command
}

// Discovery is the result of one discovery pass
type Discovery struct {
	Declarations []models.TypeDeclaration // marked declarations in package, file, source order
	Problems     *errors.MultipleErrors   // markers or packages that could not be processed
	Dirs         []string                 // package directories that were loaded, sorted
}

// Parser discovers marked declarations with go/packages
type Parser struct {
	opts    Options
	markers *annotations.Parser
	logger  utils.Logger
}

// NewParser creates a discovery parser
func NewParser(opts Options, logger utils.Logger) *Parser {
	return &Parser{
		opts:    opts,
		markers: annotations.NewParser(annotations.DefaultRegistry()),
		logger:  logger,
	}
}

// Discover loads the packages matching patterns and returns every marked
// declaration. A fresh load is made on every call so that files generated
// by an earlier round are type-checked.
func (p *Parser) Discover(patterns ...string) (*Discovery, error) {
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode: loadMode,
		Dir:  p.opts.Dir,
		Fset: fset,
	}
	if len(p.opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(p.opts.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapLoadError(patterns, err)
	}

	discovery := &Discovery{Problems: errors.NewMultipleErrors()}
	dirs := make(map[string]bool)

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			switch e.Kind {
			case packages.ListError, packages.ParseError:
				discovery.Problems.Add(errors.WrapLoadError([]string{pkg.PkgPath}, e))
			default:
				p.logger.Debug("%s: %v", pkg.PkgPath, e)
			}
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		for _, f := range pkg.GoFiles {
			dirs[filepath.Dir(f)] = true
		}
		p.collect(fset, pkg, discovery)
	}

	for dir := range dirs {
		discovery.Dirs = append(discovery.Dirs, dir)
	}
	sort.Strings(discovery.Dirs)

	p.logger.Debug("Discovered %d marked declaration(s) in %d package(s)", len(discovery.Declarations), len(pkgs))
	return discovery, nil
}

func (p *Parser) collect(fset *token.FileSet, pkg *packages.Package, discovery *Discovery) {
	generated := make(map[string]bool)
	var sources []*ast.File
	for _, file := range pkg.Syntax {
		if isGeneratedByUs(file) {
			generated[fset.Position(file.Package).Filename] = true
			continue
		}
		sources = append(sources, file)
	}

	reserved := reservedNames(fset, pkg.Types, generated)

	for _, file := range sources {
		for _, node := range file.Decls {
			switch decl := node.(type) {
			case *ast.GenDecl:
				if decl.Tok != token.TYPE {
					continue
				}
				for _, spec := range decl.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(decl.Specs) == 1 {
						doc = decl.Doc
					}
					marker := p.findMarker(fset, doc, discovery)
					if marker == nil {
						continue
					}
					if td, ok := p.typeDeclaration(fset, pkg, ts, marker, reserved, discovery); ok {
						discovery.Declarations = append(discovery.Declarations, td)
					}
				}
			case *ast.FuncDecl:
				marker := p.findMarker(fset, decl.Doc, discovery)
				if marker == nil {
					continue
				}
				pos := fset.Position(decl.Name.Pos())
				discovery.Declarations = append(discovery.Declarations, models.TypeDeclaration{
					PackagePath: pkg.PkgPath,
					PackageName: pkg.Name,
					Dir:         filepath.Dir(pos.Filename),
					Name:        decl.Name.Name,
					Kind:        models.DeclarationFunc,
					File:        pos.Filename,
					Line:        pos.Line,
				})
			}
		}
	}
}

// findMarker returns the first valid marker in doc. Invalid markers are
// recorded as problems.
func (p *Parser) findMarker(fset *token.FileSet, doc *ast.CommentGroup, discovery *Discovery) *annotations.ParsedMarker {
	if doc == nil {
		return nil
	}
	var found *annotations.ParsedMarker
	for _, c := range doc.List {
		if !annotations.IsMarker(c.Text) {
			continue
		}
		pos := fset.Position(c.Pos())
		loc := errors.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		marker, err := p.markers.Parse(c.Text, loc)
		if err != nil {
			var de errors.DelegenError
			if errors.As(err, &de) {
				discovery.Problems.Add(de)
			}
			continue
		}
		if found != nil {
			p.logger.Warn("%s: ignoring repeated marker %s", loc, marker.Raw)
			continue
		}
		found = marker
	}
	return found
}

func (p *Parser) typeDeclaration(fset *token.FileSet, pkg *packages.Package, ts *ast.TypeSpec, marker *annotations.ParsedMarker, reserved []string, discovery *Discovery) (models.TypeDeclaration, bool) {
	pos := fset.Position(ts.Name.Pos())
	decl := models.TypeDeclaration{
		PackagePath:   pkg.PkgPath,
		PackageName:   pkg.Name,
		Dir:           filepath.Dir(pos.Filename),
		Name:          ts.Name.Name,
		File:          pos.Filename,
		Line:          pos.Line,
		ReservedNames: reserved,
		Exclude:       marker.Exclude,
		Unexported:    marker.Unexported || p.opts.Unexported,
	}
	loc := errors.SourceLocation{File: pos.Filename, Line: pos.Line}

	if ts.Assign.IsValid() {
		decl.Kind = models.DeclarationAlias
		return decl, true
	}

	obj, _ := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if obj == nil {
		decl.Kind = models.DeclarationClass
		decl.Unresolved = []string{ts.Name.Name}
		return decl, true
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		decl.Kind = models.DeclarationAlias
		return decl, true
	}
	if types.IsInterface(named) {
		decl.Kind = models.DeclarationInterface
		return decl, true
	}
	decl.Kind = models.DeclarationClass

	if named.TypeParams().Len() > 0 {
		discovery.Problems.Add(errors.Newf(errors.UnresolvableTypeErrorCode,
			"cannot generate for %s: type parameters are not supported", decl.Key()).
			WithLocation(loc))
		return decl, false
	}

	collectMembers(named, &decl, newQualifier(pkg.Types, reserved))
	p.logger.Debug("Found %s with %d member(s) at %s", decl.Key(), len(decl.Members), loc)
	return decl, true
}

// isGeneratedByUs reports whether file starts with the delegen header
func isGeneratedByUs(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if c.Text == models.GeneratedHeader {
				return true
			}
		}
	}
	return false
}

// reservedNames lists package-scope identifiers declared outside files
// delegen generated, sorted.
func reservedNames(fset *token.FileSet, pkg *types.Package, generated map[string]bool) []string {
	scope := pkg.Scope()
	var names []string
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if generated[fset.Position(obj.Pos()).Filename] {
			continue
		}
		names = append(names, name)
	}
	return names
}
