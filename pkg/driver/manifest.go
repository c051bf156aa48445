// Package driver implements the project compiler: it resolves import names
// to serialized AST files across the manifest's search roots, analyzes them
// recursively, and hands the resulting export tables back to the analyzer.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest models lark.yml: the package name, the source roots holding the
// parser's .ast.json output, and the declared dependencies.
type Manifest struct {
	Path         string
	Package      string
	Sources      []string
	Dependencies []ManifestDependency
}

// ManifestDependency names one external package requirement.
type ManifestDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
}

type manifestDisk struct {
	Package      string               `yaml:"package"`
	Sources      []string             `yaml:"sources"`
	Dependencies []ManifestDependency `yaml:"dependencies"`
}

// LoadManifest parses lark.yml. Source roots are resolved relative to the
// manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}
	if strings.TrimSpace(raw.Package) == "" {
		return nil, fmt.Errorf("manifest: %s is missing a package name", abs)
	}

	m := &Manifest{
		Path:         abs,
		Package:      raw.Package,
		Dependencies: raw.Dependencies,
	}
	base := filepath.Dir(abs)
	if len(raw.Sources) == 0 {
		raw.Sources = []string{"."}
	}
	for _, src := range raw.Sources {
		if filepath.IsAbs(src) {
			m.Sources = append(m.Sources, filepath.Clean(src))
			continue
		}
		m.Sources = append(m.Sources, filepath.Join(base, src))
	}
	return m, nil
}
