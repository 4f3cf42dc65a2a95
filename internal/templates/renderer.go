package templates

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/utils"
)

// Renderer serializes a declaration's generated models into one compilation unit
type Renderer interface {
	Render(origin string, iface models.GeneratedInterfaceModel, delegate models.GeneratedDelegateModel) ([]byte, error)
}

// GoRenderer renders Go source from the registered templates and formats it
type GoRenderer struct {
	tmpl *template.Template
}

// fileData is the data passed to the "file" template
type fileData struct {
	Source    string
	Package   string
	Imports   string
	Interface models.GeneratedInterfaceModel
	Delegate  models.GeneratedDelegateModel
}

// NewGoRenderer parses every template of registry once
func NewGoRenderer(registry *TemplateRegistry) (*GoRenderer, error) {
	tmpl, err := template.New("file").Funcs(templateFuncs()).Parse(registry.MustGet("file"))
	if err != nil {
		return nil, errors.WrapTemplateError("file", "parse", err)
	}
	for _, name := range registry.Names() {
		if _, err := tmpl.New(name).Parse(registry.MustGet(name)); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	return &GoRenderer{tmpl: tmpl}, nil
}

// Render renders the interface followed by the delegate
func (r *GoRenderer) Render(origin string, iface models.GeneratedInterfaceModel, delegate models.GeneratedDelegateModel) ([]byte, error) {
	imports := NewImportManager()
	for _, m := range iface.Members {
		imports.AddParameters(m.Params)
		imports.AddTypeRef(m.Result)
	}
	for _, m := range delegate.Members {
		imports.AddParameters(m.Params)
		imports.AddTypeRef(m.Result)
	}

	data := fileData{
		Source:    filepath.Base(origin),
		Package:   iface.PackageName,
		Imports:   imports.GenerateImports(),
		Interface: iface,
		Delegate:  delegate,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "file", data); err != nil {
		return nil, errors.WrapTemplateError("file", "execute", err)
	}

	formatted, err := utils.FormatGoCode(origin, buf.Bytes())
	if err != nil {
		return nil, errors.WrapTemplateError("file", "format", err).
			WithContext("source", buf.String())
	}
	return formatted, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"header":  func() string { return models.GeneratedHeader },
		"params":  formatParams,
		"results": formatResults,
		"forward": formatForward,
	}
}

// formatParams renders a parameter list: "a int, rest ...string"
func formatParams(params []models.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ := p.Type.String()
		if p.Variadic {
			typ = "..." + typ
		}
		parts[i] = p.Name + " " + typ
	}
	return strings.Join(parts, ", ")
}

// formatResults renders what follows the parameter list of a signature
func formatResults(result models.TypeRef) string {
	if result.IsVoid() {
		return ""
	}
	return " " + result.String()
}

// formatForward renders the forwarded call: "r.field.Method(a, rest...)"
func formatForward(receiver string, call models.ForwardCall) string {
	args := strings.Join(call.Args, ", ")
	if call.Spread {
		args += "..."
	}
	return receiver + "." + call.Target + "." + call.Method + "(" + args + ")"
}
