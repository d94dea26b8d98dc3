package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var statusResult = map[string]any{
	"code":         int64(200),
	"signatory_id": int64(4412),
	"status":       "signed",
	"email":        "ana@example.com",
}

func TestRendererInlineTemplates(t *testing.T) {
	t.Setenv("CS_PASSWORD", "hunter2")
	renderer := NewRenderer(nil)

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "fields", template: "{{ .signatory_id }} {{ .status }}", want: "4412 signed"},
		{name: "sprig helpers", template: `{{ .email | upper }} {{ .status | quote }}`, want: `ANA@EXAMPLE.COM "signed"`},
		{name: "final helper", template: "{{ if final .status }}done{{ else }}pending{{ end }}", want: "done"},
		{name: "missing key", template: "[{{ .nope }}]", want: "[<no value>]"},
		{name: "env is empty", template: `{{ env "CS_PASSWORD" }}`, want: ""},
		{name: "expandenv is empty", template: `{{ expandenv "$CS_PASSWORD" }}`, want: ""},
		{name: "yaml", template: `{{ dict "status" .status | toYaml }}`, want: "status: signed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl, err := renderer.Compile("inline", tc.template)
			require.NoError(t, err)
			rendered, err := tmpl.Render(statusResult)
			require.NoError(t, err)
			require.Equal(t, tc.want, rendered)
		})
	}
}

func TestRendererCompileErrors(t *testing.T) {
	renderer := NewRenderer(nil)

	_, err := renderer.Compile("blank", "   ")
	require.Error(t, err)

	_, err = renderer.Compile("broken", "{{ .status ")
	require.ErrorContains(t, err, `compile "broken"`)

	_, err = renderer.Compile("inline", `{{ readFile "/etc/passwd" }}`)
	require.Error(t, err)

	_, err = renderer.CompileFile("status")
	require.ErrorContains(t, err, "templates folder")
}

func TestRendererCompileFileHonoursSandbox(t *testing.T) {
	dir := t.TempDir()
	allowed := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(allowed, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(allowed, "status.tmpl"), []byte("{{ .signatory_id }}: {{ .status }}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "escape.tmpl"), []byte("nope"), 0o600))
	sandbox, err := NewSandbox(allowed)
	require.NoError(t, err)
	renderer := NewRenderer(sandbox)
	require.Same(t, sandbox, renderer.Sandbox())

	tmpl, err := renderer.CompileFile("status")
	require.NoError(t, err)
	require.Equal(t, "status.tmpl", tmpl.Name())
	rendered, err := tmpl.Render(statusResult)
	require.NoError(t, err)
	require.Equal(t, "4412: signed", rendered)

	_, err = renderer.CompileFile("../escape")
	require.Error(t, err)
}

func TestNilTemplate(t *testing.T) {
	var tmpl *Template
	_, err := tmpl.Render(nil)
	require.Error(t, err)
	require.Empty(t, tmpl.Name())
}
