// Package project loads wj.toml manifests and validates their compiler
// constraint against the running compiler version.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ManifestName is the file a project directory is identified by.
const ManifestName = "wj.toml"

// Manifest is the flat key/value content of wj.toml.
type Manifest struct {
	Name     string
	Version  string
	Compiler string // semver constraint; empty accepts any compiler
	Path     string
}

// Find walks upward from dir looking for a manifest; it reports the
// manifest path and whether one was found.
func Find(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse reads the flat `key = "value"` format. Comments start with #,
// section headers are accepted and ignored.
func Parse(src string) (*Manifest, error) {
	m := &Manifest{}
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: expected `key = \"value\"`, got %q", i+1, line)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		switch key {
		case "name":
			m.Name = value
		case "version":
			m.Version = value
		case "compiler":
			m.Compiler = value
		}
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			return nil, fmt.Errorf("invalid project version %q: %w", m.Version, err)
		}
	}
	return m, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// CheckCompiler validates the manifest's compiler constraint against the
// given compiler version.
func (m *Manifest) CheckCompiler(version string) error {
	if m.Compiler == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(m.Compiler)
	if err != nil {
		return fmt.Errorf("invalid compiler constraint %q: %w", m.Compiler, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid compiler version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("project %s requires compiler %s, this compiler is %s", m.Name, m.Compiler, version)
	}
	return nil
}
