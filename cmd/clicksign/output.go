package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gisce/clicksign/internal/templates"
	"github.com/gisce/clicksign/view"
)

const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatTemplate = "template"
)

// printer renders objectified results on stdout.
type printer struct {
	w      io.Writer
	format string
	tmpl   *templates.Template
}

func newPrinter(w io.Writer, format, templatesFolder, inline, templateFile string) (*printer, error) {
	p := &printer{w: w, format: strings.ToLower(strings.TrimSpace(format))}
	switch p.format {
	case "", formatJSON:
		p.format = formatJSON
	case formatYAML:
	case formatTemplate:
		tmpl, err := compileTemplate(templatesFolder, inline, templateFile)
		if err != nil {
			return nil, err
		}
		p.tmpl = tmpl
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return p, nil
}

func compileTemplate(folder, inline, file string) (*templates.Template, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("-template and -template-file are mutually exclusive")
	case inline != "":
		return templates.NewRenderer(nil).Compile("inline", inline)
	case file != "":
		sandbox, err := templates.NewSandbox(folder)
		if err != nil {
			return nil, err
		}
		return templates.NewRenderer(sandbox).CompileFile(file)
	default:
		return nil, fmt.Errorf("template output requires -template or -template-file")
	}
}

// Print writes v in the configured format followed by a newline.
func (p *printer) Print(v view.View) error {
	var out string
	switch p.format {
	case formatYAML:
		raw, err := yaml.Marshal(v.Map())
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		out = string(raw)
	case formatTemplate:
		rendered, err := p.tmpl.Render(v.Map())
		if err != nil {
			return err
		}
		out = rendered
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		out = string(raw)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(p.w, out)
	return err
}
