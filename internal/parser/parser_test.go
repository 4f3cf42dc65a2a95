package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/demo\n\ngo 1.22\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func discover(t *testing.T, dir string, opts Options) *Discovery {
	t.Helper()
	opts.Dir = dir
	discovery, err := NewParser(opts, nopLogger{}).Discover("./...")
	require.NoError(t, err)
	return discovery
}

func find(t *testing.T, d *Discovery, name string) models.TypeDeclaration {
	t.Helper()
	for _, decl := range d.Declarations {
		if decl.Name == name {
			return decl
		}
	}
	require.Failf(t, "declaration not found", "%s", name)
	return models.TypeDeclaration{}
}

func memberNames(decl models.TypeDeclaration) []string {
	var names []string
	for _, m := range decl.Members {
		names = append(names, m.Name)
	}
	return names
}

var intType = models.Concrete("int", "int")

func TestDiscoverExampleRepository(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"repo/repository.go": `package repo

// ExampleRepository stores numbers.
//
//delegen::implementation
type ExampleRepository struct{ data map[int]int }

func (r *ExampleRepository) GetData(a, b int) int { return r.data[a] + b }

func (r *ExampleRepository) Save(x int) { r.data[x] = x }

func (r *ExampleRepository) String() string { return "repo" }
`,
	})

	d := discover(t, dir, Options{})
	require.True(t, d.Problems.IsEmpty(), d.Problems.Error())
	require.Len(t, d.Declarations, 1)

	decl := d.Declarations[0]
	assert.Equal(t, "example.com/demo/repo", decl.PackagePath)
	assert.Equal(t, "repo", decl.PackageName)
	assert.Equal(t, models.DeclarationClass, decl.Kind)
	assert.Equal(t, "repository.go", filepath.Base(decl.File))
	assert.Equal(t, 6, decl.Line)
	assert.True(t, decl.PointerReceiver)
	assert.Empty(t, decl.Unresolved)
	assert.Contains(t, decl.ReservedNames, "ExampleRepository")
	assert.Equal(t, []string{filepath.Join(dir, "repo")}, d.Dirs)

	require.Len(t, decl.Members, 3)
	assert.Equal(t, models.MemberSignature{
		Name:   "GetData",
		Params: []models.Parameter{{Name: "a", Type: intType}, {Name: "b", Type: intType}},
		Result: intType,
	}, decl.Members[0])
	assert.Equal(t, models.MemberSignature{
		Name:   "Save",
		Params: []models.Parameter{{Name: "x", Type: intType}},
		Result: models.Void,
	}, decl.Members[1])
	assert.Equal(t, "String", decl.Members[2].Name, "filtering happens in the driver")
}

func TestDiscoverResolvesImportsAndShapes(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"store/store.go": `package store

import (
	"bytes"
	"context"
)

//delegen::implementation
type Store struct{}

func (Store) Load(ctx context.Context, _ string, keys ...string) (*bytes.Buffer, error) {
	return nil, nil
}

func (Store) Tags() map[string][]string { return nil }
`,
	})

	d := discover(t, dir, Options{})
	decl := find(t, d, "Store")
	assert.False(t, decl.PointerReceiver)
	require.Len(t, decl.Members, 2)

	load := decl.Members[0]
	assert.Equal(t, "Load", load.Name)
	require.Len(t, load.Params, 3)
	assert.Equal(t, models.Parameter{
		Name: "ctx",
		Type: models.Concrete("context.Context", "context.Context", models.Import{Path: "context", Name: "context"}),
	}, load.Params[0])
	assert.Equal(t, "p1", load.Params[1].Name)
	assert.Equal(t, models.Parameter{Name: "keys", Type: models.Concrete("string", "string"), Variadic: true}, load.Params[2])
	assert.Equal(t, models.Tuple(
		models.Concrete("*bytes.Buffer", "*bytes.Buffer", models.Import{Path: "bytes", Name: "bytes"}),
		models.Concrete("error", "error"),
	), load.Result)

	assert.Equal(t, "map[string][]string", decl.Members[1].Result.Expr)
}

func TestDiscoverRenamesShadowedImports(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"shadow/shadow.go": `package shadow

import stdbytes "bytes"

var bytes = 1

//delegen::implementation
type Shadow struct{}

func (Shadow) Buf() *stdbytes.Buffer { return nil }
`,
	})

	decl := find(t, discover(t, dir, Options{}), "Shadow")
	require.Len(t, decl.Members, 1)
	assert.Equal(t, "*bytes2.Buffer", decl.Members[0].Result.Expr)
	assert.Equal(t, []models.Import{{Path: "bytes", Name: "bytes2"}}, decl.Members[0].Result.Imports)
}

func TestDiscoverMemberOrderAndVisibility(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"svc/base.go": `package svc

type Base struct{}

func (*Base) Close() error { return nil }
func (Base) Alpha() {}
`,
		"svc/service.go": `package svc

//delegen::implementation
type Service struct {
	*Base
}

func (Service) Zeta() {}
func (Service) Run() {}
func (Service) hidden() {}

//delegen::implementation -Unexported -Exclude=Close
type Verbose struct{}

func (Verbose) Run() {}
func (Verbose) hidden() {}
`,
	})

	d := discover(t, dir, Options{})

	service := find(t, d, "Service")
	assert.Equal(t, []string{"Zeta", "Run", "Alpha", "Close"}, memberNames(service))
	assert.False(t, service.PointerReceiver, "Close is promoted through an embedded pointer")

	verbose := find(t, d, "Verbose")
	assert.Equal(t, []string{"Run", "hidden"}, memberNames(verbose))
	assert.True(t, verbose.Unexported)
	assert.Equal(t, []string{"Close"}, verbose.Exclude)

	all := discover(t, dir, Options{Unexported: true})
	assert.Equal(t, []string{"Zeta", "Run", "hidden", "Alpha", "Close"}, memberNames(find(t, all, "Service")))
}

func TestDiscoverMarksPendingDeclarations(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"pending/pending.go": `package pending

//delegen::implementation
type Waiting struct{}

func (Waiting) Peer() IReady { return nil }

//delegen::implementation
type Ready struct{}

func (Ready) Ping() {}
`,
	})

	d := discover(t, dir, Options{})
	waiting := find(t, d, "Waiting")
	assert.True(t, waiting.IsPending())
	assert.Len(t, waiting.Unresolved, 1)
	assert.Contains(t, waiting.Unresolved[0], "Peer")

	assert.False(t, find(t, d, "Ready").IsPending())
}

func TestDiscoverKinds(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"kinds/kinds.go": `package kinds

//delegen::implementation
type Reader interface{ Read() }

//delegen::implementation
type Alias = int

//delegen::implementation
func Helper() {}

//delegen::implementation
type Counter int

func (c Counter) Value() int { return int(c) }
`,
	})

	d := discover(t, dir, Options{})
	require.Len(t, d.Declarations, 4)
	assert.Equal(t, models.DeclarationInterface, find(t, d, "Reader").Kind)
	assert.Equal(t, models.DeclarationAlias, find(t, d, "Alias").Kind)
	assert.Equal(t, models.DeclarationFunc, find(t, d, "Helper").Kind)

	counter := find(t, d, "Counter")
	assert.Equal(t, models.DeclarationClass, counter.Kind)
	assert.Equal(t, []string{"Value"}, memberNames(counter))
}

func TestDiscoverSkipsGeneratedFiles(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"gen/repo.go": `package gen

//delegen::implementation
type Repo struct{}

func (Repo) Get() int { return 1 }
`,
		"gen/repo_delegate.go": models.GeneratedHeader + `
// Source: repo.go

package gen

//delegen::implementation
type IRepo interface{ Get() int }
`,
	})

	d := discover(t, dir, Options{})
	require.Len(t, d.Declarations, 1, "markers inside generated files are ignored")
	repo := d.Declarations[0]
	assert.Contains(t, repo.ReservedNames, "Repo")
	assert.NotContains(t, repo.ReservedNames, "IRepo")
}

func TestDiscoverReportsProblems(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"bad/bad.go": `package bad

//delegen::implementation -Mode=Fast
type Broken struct{}

//delegen::implementation
type Box[T any] struct{ v T }

func (b Box[T]) Get() T { return b.v }

//delegen::implementation
type Fine struct{}
`,
	})

	d := discover(t, dir, Options{})
	require.Len(t, d.Declarations, 1)
	assert.Equal(t, "Fine", d.Declarations[0].Name)

	require.Equal(t, 2, d.Problems.Count())
	assert.True(t, d.Problems.HasCode(errors.SyntaxErrorCode))
	assert.True(t, d.Problems.HasCode(errors.UnresolvableTypeErrorCode))
	assert.Contains(t, d.Problems.Error(), "type parameters are not supported")
}
