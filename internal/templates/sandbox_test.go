package templates

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSandboxValidatesRoot(t *testing.T) {
	sb, err := NewSandbox("")
	require.Error(t, err)
	require.Nil(t, sb)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = NewSandbox(file)
	require.ErrorContains(t, err, "not a directory")

	dir := t.TempDir()
	sb, err = NewSandbox(dir)
	require.NoError(t, err)
	resolvedDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	require.Equal(t, resolvedDir, sb.Root())
}

func TestSandboxResolve(t *testing.T) {
	dir := t.TempDir()
	sb, err := NewSandbox(dir)
	require.NoError(t, err)
	target := filepath.Join(sb.Root(), "signatory.tmpl")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o600))

	tests := map[string]string{
		"with extension":    "signatory.tmpl",
		"without extension": "signatory",
		"dot segments":      "./sub/../signatory.tmpl",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			resolved, err := sb.Resolve(input)
			require.NoError(t, err)
			require.Equal(t, target, resolved)
		})
	}

	_, err = sb.Resolve("../outside")
	require.ErrorContains(t, err, "escapes")

	_, err = sb.Resolve("  ")
	require.ErrorContains(t, err, "name required")
}

func TestSandboxResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require admin on Windows CI")
	}
	root := t.TempDir()
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "data.txt")
	require.NoError(t, os.WriteFile(outsideFile, []byte("secret"), 0o600))
	require.NoError(t, os.Symlink(outsideFile, filepath.Join(root, "link.tmpl")))

	sb, err := NewSandbox(root)
	require.NoError(t, err)

	_, err = sb.Resolve("link")
	require.ErrorContains(t, err, "escapes")
}

func TestSandboxReadFile(t *testing.T) {
	sb, err := NewSandbox(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(sb.Root(), "status.tmpl"), []byte("{{ .status }}"), 0o600))

	path, contents, err := sb.ReadFile("status")
	require.NoError(t, err)
	require.Equal(t, "status.tmpl", filepath.Base(path))
	require.Equal(t, "{{ .status }}", string(contents))

	_, _, err = sb.ReadFile("missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSandboxResolveNilReceiver(t *testing.T) {
	var sb *Sandbox
	_, err := sb.Resolve("anything")
	require.Error(t, err)
}
