package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// TemplateExt is appended to template names given without an extension.
const TemplateExt = ".tmpl"

// Sandbox confines template file lookups to the configured templates folder.
type Sandbox struct {
	root string
}

// NewSandbox roots a sandbox at dir, which must exist and be a directory.
func NewSandbox(dir string) (*Sandbox, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("templates: templates folder required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("templates: resolve folder: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("templates: eval folder symlinks: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("templates: stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates: %q is not a directory", abs)
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the canonical templates folder.
func (s *Sandbox) Root() string { return s.root }

// Resolve maps a template name onto a file inside the folder. Names without an
// extension get TemplateExt. Paths escaping the folder, directly or through a
// symlink, are rejected.
func (s *Sandbox) Resolve(name string) (string, error) {
	if s == nil {
		return "", errors.New("templates: sandbox is nil")
	}
	cleaned := filepath.Clean(strings.TrimSpace(name))
	if cleaned == "." || cleaned == "" {
		return "", errors.New("templates: template name required")
	}
	if filepath.Ext(cleaned) == "" {
		cleaned += TemplateExt
	}
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(s.root, cleaned)
	}
	if !s.contains(cleaned) {
		return "", fmt.Errorf("templates: path %q escapes templates folder", name)
	}
	evaluated, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return "", fmt.Errorf("templates: resolve %q: %w", name, err)
	}
	if !s.contains(evaluated) {
		return "", fmt.Errorf("templates: path %q escapes templates folder", name)
	}
	return evaluated, nil
}

// ReadFile resolves name and returns its contents together with the resolved path.
func (s *Sandbox) ReadFile(name string) (string, []byte, error) {
	resolved, err := s.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	contents, err := os.ReadFile(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("templates: read %q: %w", name, err)
	}
	return resolved, contents, nil
}

func (s *Sandbox) contains(candidate string) bool {
	root := s.root
	if runtime.GOOS == "windows" {
		root = strings.ToLower(root)
		candidate = strings.ToLower(candidate)
	}
	if root == candidate {
		return true
	}
	if !strings.HasSuffix(root, string(os.PathSeparator)) {
		root += string(os.PathSeparator)
	}
	return strings.HasPrefix(candidate, root)
}
