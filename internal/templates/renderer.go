package templates

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/gisce/clicksign"
)

// Renderer compiles the Go templates the CLI uses to print results. Templates see the
// objectified result as a plain map plus sprig and a few Click&Sign helpers.
type Renderer struct {
	sandbox *Sandbox
	funcs   template.FuncMap
}

// Template is a compiled template, safe for concurrent use.
type Template struct {
	name string
	tmpl *template.Template
}

// NewRenderer constructs a renderer. A nil sandbox disables file-backed templates.
func NewRenderer(sandbox *Sandbox) *Renderer {
	funcs := sprig.TxtFuncMap()
	// Templates render untrusted service data; they get no access to the process
	// environment or the filesystem.
	for _, name := range []string{"env", "expandenv", "readDir", "mustReadDir", "readFile", "mustReadFile", "glob"} {
		delete(funcs, name)
	}
	funcs["env"] = func(string) string { return "" }
	funcs["expandenv"] = func(string) string { return "" }
	funcs["final"] = func(status any) bool {
		return clicksign.CallbackStatus(fmt.Sprint(status)).Final()
	}
	funcs["toYaml"] = func(v any) string {
		out, err := yaml.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimSuffix(string(out), "\n")
	}
	return &Renderer{sandbox: sandbox, funcs: funcs}
}

// Sandbox exposes the renderer's sandbox.
func (r *Renderer) Sandbox() *Sandbox { return r.sandbox }

// Compile parses an inline template source.
func (r *Renderer) Compile(name, source string) (*Template, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("templates: empty template")
	}
	if name == "" {
		name = "inline"
	}
	tmpl, err := template.New(name).Funcs(r.funcs).Option("missingkey=zero").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("templates: compile %q: %w", name, err)
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// CompileFile parses a template stored in the templates folder.
func (r *Renderer) CompileFile(name string) (*Template, error) {
	if r.sandbox == nil {
		return nil, errors.New("templates: file templates require a templates folder")
	}
	resolved, contents, err := r.sandbox.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return r.Compile(filepath.Base(resolved), string(contents))
}

// Render executes the template against data.
func (t *Template) Render(data any) (string, error) {
	if t == nil {
		return "", errors.New("templates: nil template")
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Name returns the template name used in errors.
func (t *Template) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}
