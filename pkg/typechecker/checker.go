// Package typechecker implements Lark's semantic analysis: scope-chain
// resolution, bidirectional inference with deferred unknowns, return-type
// unification, multiple-dispatch registration, and class typing. It
// decorates the AST in place and fails fast on the first TypeError.
package typechecker

import (
	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

// Importer is the Project Compiler collaborator: it resolves an import name
// to a fully analyzed file and returns that file's export table. It may
// propagate a TypeError from the imported file.
type Importer interface {
	ImportByName(name string) (map[string]types.Type, error)
}

// Checker analyzes one file. The intrinsic scope and type cache are built
// once in New; CheckRoot runs the single pass.
type Checker struct {
	root       *scope.Scope
	intrinsics *intrinsics
	importer   Importer

	moduleScope *scope.Scope
	exports     map[string]types.Type
	diags       []Diagnostic
}

// Result is the per-file outcome: the export table and any advisory
// diagnostics. The analyzed AST itself carries the type annotations.
type Result struct {
	Exports     map[string]types.Type
	Diagnostics []Diagnostic
}

// New builds a checker with a freshly bootstrapped root scope. importer may
// be nil for files that do not import.
func New(importer Importer) *Checker {
	root := scope.NewRoot()
	return &Checker{
		root:       root,
		intrinsics: bootstrap(root),
		importer:   importer,
		exports:    make(map[string]types.Type),
	}
}

// CheckRoot walks the file top-down. Re-analyzing an already-annotated tree
// is rejected rather than silently diverging.
func (c *Checker) CheckRoot(root *ast.Root) (*Result, error) {
	if root.ReturnType != nil {
		return nil, errf(AlreadyAnalyzed, root, "root block already has a return type")
	}
	sc := c.root.Child()
	root.Scope = sc
	c.moduleScope = sc

	for _, stmt := range root.Statements {
		if err := c.checkStatement(stmt, sc); err != nil {
			return nil, err
		}
	}

	ret, err := c.unifyReturns(root, root.Statements, nil)
	if err != nil {
		return nil, err
	}
	root.ReturnType = ret
	c.fillBlockReturns(root.Statements)
	return &Result{Exports: c.exports, Diagnostics: c.diags}, nil
}

// resolveTypeRef resolves a nominal annotation to the bare Type it names.
func (c *Checker) resolveTypeRef(ref *ast.TypeRef, sc *scope.Scope) (types.Type, error) {
	v, ok := sc.Lookup(ref.Name)
	if !ok {
		return nil, errf(UnknownIdentifier, ref, "unknown type %q", ref.Name)
	}
	t, ok := v.(types.Type)
	if !ok {
		return nil, errf(NotAType, ref, "%q names a value, not a type", ref.Name)
	}
	if _, isModule := t.(*types.Module); isModule {
		return nil, errf(NotAType, ref, "module %q cannot be used as a type", ref.Name)
	}
	return t, nil
}

func (c *Checker) advise(node ast.Node, message string) {
	c.diags = append(c.diags, Diagnostic{Message: message, Node: node})
}
