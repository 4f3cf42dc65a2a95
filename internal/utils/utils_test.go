package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &errOut)

	d.Info("found %d declarations", 2)
	d.Verbose("hidden")
	d.Debug("hidden")
	d.Error("broken %s", "thing")

	assert.Equal(t, "[INFO] found 2 declarations\n", out.String())
	assert.Equal(t, "[ERROR] broken thing\n", errOut.String())
}

func TestDiagnosticIndentAndSummary(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Indent()
	d.List("one")
	d.Unindent()
	d.Unindent()
	d.Summary("Done", map[string]interface{}{"b": 2, "a": 1})

	assert.Equal(t, "  - one\n\nDone\n   a: 1\n   b: 2\n\n", out.String())
}

func TestQuietDiagnosticsOnlyErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewQuietDiagnostics()
	d.SetOutput(&out, &errOut)

	d.Info("hidden")
	d.Warn("hidden")
	d.PhaseItem("hidden")
	d.Error("shown")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "shown")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DiagnosticInfo)

	logger.With("round", 1).Info("generated %s", "IRepo")
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "generated IRepo", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "delegen", entry["logger"])
	assert.EqualValues(t, 1, entry["round"])
}

func TestFormatGoCode(t *testing.T) {
	src := []byte("package p\nimport (\n\"strings\"\n\"context\"\n)\nfunc  F(ctx context.Context)string{return strings.TrimSpace(\"\")}\n")

	formatted, err := FormatGoCode("p.go", src)
	require.NoError(t, err)
	assert.Contains(t, string(formatted), "import (\n\t\"context\"\n\t\"strings\"\n)")
	assert.Contains(t, string(formatted), "func F(ctx context.Context) string {")

	_, err = FormatGoCode("p.go", []byte("package p\nfunc {"))
	assert.ErrorContains(t, err, "invalid Go syntax")
}

func TestGoModParser(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/demo\n\ngo 1.25\n"), 0644))
	nested := filepath.Join(dir, "internal", "repo")
	require.NoError(t, os.MkdirAll(nested, 0755))

	parser := NewGoModParser()
	goMod, err := parser.FindGoModFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "go.mod"), goMod)

	name, err := parser.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/demo", name)

	_, err = parser.ParseModuleName(filepath.Join(dir, "main.go"))
	assert.ErrorContains(t, err, "not a go.mod file")
}
