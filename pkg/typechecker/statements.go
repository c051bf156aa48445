package typechecker

import (
	"strings"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

func (c *Checker) checkStatement(s ast.Statement, sc *scope.Scope) error {
	switch n := s.(type) {
	case *ast.Let:
		return c.checkDeclaration(n, n.Name, n.Annotation, n.Value, sc, true)
	case *ast.Var:
		return c.checkDeclaration(n, n.Name, n.Annotation, n.Value, sc, false)
	case *ast.Assignment:
		return c.checkAssignment(n, sc)
	case *ast.If:
		return c.checkIf(n, sc)
	case *ast.While:
		if err := c.checkCondition(n.Condition, sc); err != nil {
			return err
		}
		return c.checkBlock(n.Body, sc.Child())
	case *ast.For:
		return c.checkFor(n, sc)
	case *ast.Return:
		return c.checkReturn(n, sc)
	case *ast.Function:
		return c.checkFunctionStatement(n, sc)
	case *ast.Multi:
		return c.checkMulti(n, sc)
	case *ast.Class:
		return c.checkClass(n, sc)
	case *ast.Init:
		return errf(InvalidStatement, n, "init block outside a class body")
	case *ast.Binary:
		return c.checkBinaryStatement(n, sc)
	case *ast.Call:
		_, err := c.checkExpression(n, sc)
		return err
	case *ast.Import:
		return c.checkImport(n, sc)
	case *ast.Export:
		return c.checkExport(n, sc)
	default:
		return errf(InvalidStatement, s, "unhandled statement kind")
	}
}

func (c *Checker) checkBlock(b *ast.Block, sc *scope.Scope) error {
	for _, stmt := range b.Statements {
		if err := c.checkStatement(stmt, sc); err != nil {
			return err
		}
	}
	return nil
}

// checkDeclaration types a let/var statement. The name is first bound in a
// scope nested one level inside the declaration so the right-hand side can
// refer to it; the enclosing scope receives the finished binding afterwards.
func (c *Checker) checkDeclaration(node ast.Statement, name string, annotation *ast.TypeRef, value ast.Expression, sc *scope.Scope, constant bool) error {
	var flags scope.Flags
	if constant {
		flags = scope.Constant
	}

	if annotation != nil {
		declared, err := c.resolveTypeRef(annotation, sc)
		if err != nil {
			return err
		}
		if value != nil {
			inner := sc.Child()
			if err := inner.Declare(name, types.NewInstance(declared), 0); err != nil {
				return errf(DuplicateBinding, node, "%s", err)
			}
			v, err := c.checkExpression(value, inner)
			if err != nil {
				return err
			}
			got, ok := concrete(v)
			if !ok {
				return errf(DeclarationTypeMismatch, node, "cannot infer the type of %q from itself", name)
			}
			if !types.Equals(declared, got) {
				return errf(DeclarationTypeMismatch, node,
					"%q is declared as %s but its value is %s", name, declared.Describe(), got.Describe())
			}
		}
		if err := sc.Declare(name, types.NewInstance(declared), flags); err != nil {
			return errf(DuplicateBinding, node, "%s", err)
		}
		return nil
	}

	if value == nil {
		return errf(DeclarationTypeMismatch, node, "%q needs a type annotation or an initial value", name)
	}

	// No annotation: bind an Unknown placeholder so recursive closures can
	// see the name, then rebind the concrete inferred type.
	unknown := &types.Unknown{}
	inner := sc.Child()
	if err := inner.Declare(name, types.NewInstance(unknown), 0); err != nil {
		return errf(DuplicateBinding, node, "%s", err)
	}
	v, err := c.checkExpressionResolving(value, inner, func(t types.Type) {
		if unknown.Resolved == nil {
			unknown.Resolve(t)
		}
	})
	if err != nil {
		return err
	}
	got, ok := concrete(v)
	if !ok {
		return errf(DeclarationTypeMismatch, node, "cannot infer the type of %q from itself", name)
	}
	if unknown.Resolved == nil {
		unknown.Resolve(got)
	}
	if err := sc.Declare(name, types.NewInstance(got), flags); err != nil {
		return errf(DuplicateBinding, node, "%s", err)
	}
	return nil
}

func (c *Checker) checkAssignment(n *ast.Assignment, sc *scope.Scope) error {
	switch n.Kind {
	case "let", "var":
		target, ok := n.Target.(*ast.Identifier)
		if !ok {
			return errf(InvalidStatement, n, "%s declaration needs a plain name", n.Kind)
		}
		if n.Operator != "=" {
			return errf(InvalidStatement, n, "%q is not valid in a declaration", n.Operator)
		}
		return c.checkDeclaration(n, target.Name, nil, n.Value, sc, n.Kind == "let")
	case "path":
		return c.checkPathWrite(n, n.Target, n.Operator, n.Value, sc)
	default:
		return errf(InvalidStatement, n, "unknown assignment kind %q", n.Kind)
	}
}

// checkPathWrite validates `a.b.c = expr` and compound variants. Mutability
// of the base binding is checked before the right-hand side is resolved.
func (c *Checker) checkPathWrite(node ast.Node, target ast.Expression, operator string, value ast.Expression, sc *scope.Scope) error {
	base, steps, err := flattenPath(target)
	if err != nil {
		return err
	}

	owning := sc.FindOwningScope(base.Name)
	if owning == nil {
		return errf(UnknownIdentifier, base, "unknown identifier %q", base.Name)
	}
	// A constant base blocks every write through it, not just rebinding the
	// name itself.
	if flags, _ := owning.FlagsOf(base.Name); flags&scope.Constant != 0 {
		return errf(ReassignToConstant, node, "%q is a constant", base.Name)
	}

	baseVal, _ := owning.Lookup(base.Name)
	base.SetType(baseVal)
	cur, ok := concrete(baseVal)
	if !ok {
		return errf(UnknownIdentifier, base, "%q is not resolved yet", base.Name)
	}
	for _, step := range steps {
		obj, isObject := cur.(*types.Object)
		if !isObject {
			return errf(PropertyNotFound, step, "%s has no property %q", cur.Describe(), step.Name)
		}
		prop, found := obj.PropertyNamed(step.Name)
		if !found {
			return errf(PropertyNotFound, step, "%s has no property %q", obj.Describe(), step.Name)
		}
		if prop.ReadOnly {
			return errf(ReassignToConstant, step, "property %q of %s is read-only", step.Name, obj.Describe())
		}
		step.SetType(types.NewInstance(prop.Type))
		cur = prop.Type
	}

	v, err := c.checkExpression(value, sc)
	if err != nil {
		return err
	}
	rhs, ok := concrete(v)
	if !ok {
		return errf(AssignmentTypeMismatch, node, "right-hand side is not resolved yet")
	}

	if operator != "=" {
		op := strings.TrimSuffix(operator, "=")
		result, err := c.binaryResult(node, op, cur, rhs)
		if err != nil {
			return err
		}
		rhs = result
	}
	if !types.Equals(cur, rhs) {
		return errf(AssignmentTypeMismatch, node,
			"cannot assign %s to a target of type %s", rhs.Describe(), cur.Describe())
	}
	return nil
}

// checkBinaryStatement admits only compound-assignment binaries in
// statement position, e.g. `counter += 1`.
func (c *Checker) checkBinaryStatement(n *ast.Binary, sc *scope.Scope) error {
	if !isCompoundOperator(n.Operator) {
		return errf(InvalidStatement, n, "binary %q is not valid as a statement", n.Operator)
	}
	if err := c.checkPathWrite(n, n.Left, n.Operator, n.Right, sc); err != nil {
		return err
	}
	n.SetType(types.NewInstance(types.VoidType))
	return nil
}

func isCompoundOperator(op string) bool {
	switch op {
	case "+=", "-=", "*=", "/=", "%=":
		return true
	}
	return false
}

func flattenPath(target ast.Expression) (*ast.Identifier, []*ast.Property, error) {
	var steps []*ast.Property
	cur := target
	for {
		switch n := cur.(type) {
		case *ast.Identifier:
			// steps were collected innermost-first.
			for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
				steps[i], steps[j] = steps[j], steps[i]
			}
			return n, steps, nil
		case *ast.Property:
			steps = append(steps, n)
			cur = n.Receiver
		default:
			return nil, nil, errf(InvalidStatement, target, "expression is not assignable")
		}
	}
}

func (c *Checker) checkCondition(e ast.Expression, sc *scope.Scope) error {
	v, err := c.checkExpression(e, sc)
	if err != nil {
		return err
	}
	t, ok := concrete(v)
	if !ok || !types.Equals(t, types.BooleanType) {
		return errf(ConditionTypeMismatch, e, "condition must be Boolean, got %s", types.Describe(v))
	}
	return nil
}

func (c *Checker) checkIf(n *ast.If, sc *scope.Scope) error {
	if err := c.checkCondition(n.Condition, sc); err != nil {
		return err
	}
	if err := c.checkBlock(n.Then, sc.Child()); err != nil {
		return err
	}
	for _, arm := range n.ElseIfs {
		if err := c.checkCondition(arm.Condition, sc); err != nil {
			return err
		}
		if err := c.checkBlock(arm.Block, sc.Child()); err != nil {
			return err
		}
	}
	if n.Else != nil {
		return c.checkBlock(n.Else, sc.Child())
	}
	return nil
}

func (c *Checker) checkFor(n *ast.For, sc *scope.Scope) error {
	fsc := sc.Child()
	if n.Init != nil {
		if err := c.checkStatement(n.Init, fsc); err != nil {
			return err
		}
	}
	if n.Condition != nil {
		if err := c.checkCondition(n.Condition, fsc); err != nil {
			return err
		}
	}
	if n.Post != nil {
		if err := c.checkStatement(n.Post, fsc); err != nil {
			return err
		}
	}
	return c.checkBlock(n.Body, fsc.Child())
}

func (c *Checker) checkReturn(n *ast.Return, sc *scope.Scope) error {
	if n.Value == nil {
		return nil
	}
	_, err := c.checkExpression(n.Value, sc)
	return err
}

func (c *Checker) checkImport(n *ast.Import, sc *scope.Scope) error {
	if c.importer == nil {
		return errf(ImportFailed, n, "no project compiler available to import %q", n.Path)
	}
	exports, err := c.importer.ImportByName(n.Path)
	if err != nil {
		if te, ok := err.(*TypeError); ok {
			return te
		}
		return errf(ImportFailed, n, "import %q: %v", n.Path, err)
	}

	if len(n.Using) > 0 {
		for _, name := range n.Using {
			t, ok := exports[name]
			if !ok {
				return errf(PropertyNotFound, n, "module %q has no export %q", n.Path, name)
			}
			if err := sc.Declare(name, bindExport(t), scope.Constant); err != nil {
				return errf(DuplicateBinding, n, "%s", err)
			}
		}
		return nil
	}

	mod := types.NewModule(moduleBindingName(n.Path), nil)
	mod.Properties = exports
	if err := sc.Declare(mod.ModuleName, mod, scope.Constant); err != nil {
		return errf(DuplicateBinding, n, "%s", err)
	}
	return nil
}

func (c *Checker) checkExport(n *ast.Export, sc *scope.Scope) error {
	if sc != c.moduleScope {
		return errf(ExportOutsideTopLevel, n, "export %q must be at the top level of the file", n.Name)
	}
	v, ok := sc.Lookup(n.Name)
	if !ok {
		return errf(UnknownIdentifier, n, "cannot export unknown identifier %q", n.Name)
	}
	t, resolved := concrete(v)
	if !resolved {
		return errf(UnknownIdentifier, n, "cannot export %q before its type is known", n.Name)
	}
	c.exports[n.Name] = t
	return nil
}

// bindExport chooses the binding shape for an imported export: type-position
// values stay bare, everything else becomes a runtime instance.
func bindExport(t types.Type) types.Value {
	switch t.(type) {
	case *types.Object, *types.Module:
		return t
	default:
		return types.NewInstance(t)
	}
}

func moduleBindingName(path string) string {
	for _, sep := range []string{".", "/"} {
		if i := strings.LastIndex(path, sep); i >= 0 {
			path = path[i+1:]
		}
	}
	return path
}

// concrete strips value boxes down to a concrete type; ok is false while an
// Unknown placeholder is still unresolved.
func concrete(v types.Value) (types.Type, bool) {
	t := types.Underlying(v)
	if u, isUnknown := t.(*types.Unknown); isUnknown && u.Resolved == nil {
		return nil, false
	}
	return t, true
}
