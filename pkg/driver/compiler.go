package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/typechecker"
	"lark/compiler-go/pkg/types"
)

// astSuffix is the extension the parser executable gives its serialized
// output.
const astSuffix = ".ast.json"

// Compiler resolves and analyzes modules for one session. Each analyzed
// module's export table is cached, so a module imported twice is checked
// once; a module re-entered while still in progress is an import cycle.
type Compiler struct {
	searchPaths []string
	exports     map[string]map[string]types.Type
	inProgress  map[string]bool
}

// NewCompiler builds a session over the given search roots, typically the
// manifest's source directories plus the dependency cache.
func NewCompiler(searchPaths ...string) *Compiler {
	return &Compiler{
		searchPaths: searchPaths,
		exports:     make(map[string]map[string]types.Type),
		inProgress:  make(map[string]bool),
	}
}

// NewCompilerFromManifest builds a session rooted at the manifest's sources.
func NewCompilerFromManifest(m *Manifest) *Compiler {
	return NewCompiler(m.Sources...)
}

// ImportByName implements typechecker.Importer: it resolves name to a
// serialized AST file, analyzes it with a fresh checker, and returns its
// export table. Analysis errors from the imported file propagate unchanged.
func (pc *Compiler) ImportByName(name string) (map[string]types.Type, error) {
	if exports, ok := pc.exports[name]; ok {
		return exports, nil
	}
	if pc.inProgress[name] {
		return nil, fmt.Errorf("driver: import cycle through %q", name)
	}

	path, err := pc.resolve(name)
	if err != nil {
		return nil, err
	}
	pc.inProgress[name] = true
	defer delete(pc.inProgress, name)

	_, result, err := pc.checkPath(path)
	if err != nil {
		return nil, err
	}
	pc.exports[name] = result.Exports
	return result.Exports, nil
}

// CheckFile analyzes one serialized AST file as the entry module and returns
// the annotated tree alongside the analysis result.
func (pc *Compiler) CheckFile(path string) (*ast.Root, *typechecker.Result, error) {
	return pc.checkPath(path)
}

func (pc *Compiler) checkPath(path string) (*ast.Root, *typechecker.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	root, err := ast.DecodeRoot(data)
	if err != nil {
		return nil, nil, fmt.Errorf("driver: load %s: %w", path, err)
	}
	checker := typechecker.New(pc)
	result, err := checker.CheckRoot(root)
	if err != nil {
		return nil, nil, err
	}
	return root, result, nil
}

// resolve maps an import name like "util.text" onto the first matching
// <root>/util/text.ast.json across the search paths.
func (pc *Compiler) resolve(name string) (string, error) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + astSuffix
	for _, root := range pc.searchPaths {
		candidate := filepath.Join(root, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("driver: module %q not found in %d search paths", name, len(pc.searchPaths))
}
