package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerInterfaceTemplates()
	registry.registerDelegateTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Names returns the names of the sub-templates the file template uses
func (tr *TemplateRegistry) Names() []string {
	return []string{"interface", "delegate"}
}

func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file"] = `{{header}}
// Source: {{.Source}}

package {{.Package}}
{{with .Imports}}
{{.}}{{end}}
{{template "interface" .Interface}}

{{template "delegate" .Delegate}}
`
}

func (tr *TemplateRegistry) registerInterfaceTemplates() {
	tr.templates["interface"] = `// {{.Name}} is the interface for {{.Source}}.
type {{.Name}} interface {
{{- range .Members}}
	{{.Name}}({{params .Params}}){{results .Result}}
{{- end}}
}`
}

func (tr *TemplateRegistry) registerDelegateTemplates() {
	tr.templates["delegate"] = `// {{.Name}} implements {{.Implements}} by forwarding every call to the wrapped {{.Source}}.
type {{.Name}} struct {
	{{.Field.Name}} {{.Field.Type.Expr}}
}

var _ {{.Implements}} = (*{{.Name}})(nil)

// {{.Constructor.Name}} creates a {{.Name}} forwarding to {{.Constructor.Param}}.
func {{.Constructor.Name}}({{.Constructor.Param}} {{.Field.Type.Expr}}) *{{.Name}} {
	return &{{.Name}}{ {{- .Field.Name}}: {{.Constructor.Param -}} }
}
{{- range .Members}}

func ({{$.Receiver}} *{{$.Name}}) {{.Name}}({{params .Params}}){{results .Result}} {
	{{if .Returns}}return {{end}}{{forward $.Receiver .Call}}
}
{{- end}}`
}
