package typechecker

import (
	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

// funcOpts adjusts checkFunction for the position a function appears in.
type funcOpts struct {
	// instance injects `this` and marks the result an instance method.
	instance *types.Object
	// multi lets unannotated parameters inherit the dispatcher's types.
	multi *types.Multi
	// resolve is the inference completion callback: it fires as soon as the
	// signature exists, before the body is visited, so recursive references
	// through an Unknown placeholder see the function type.
	resolve func(types.Type)
}

func (c *Checker) checkFunctionStatement(n *ast.Function, sc *scope.Scope) error {
	if n.Name == "" {
		return errf(InvalidStatement, n, "function statement needs a name")
	}
	// A function sharing a dispatcher's name in the same block registers as
	// an implementation instead of a standalone binding.
	if owning := sc.FindOwningScope(n.Name); owning == sc {
		if v, _ := sc.Lookup(n.Name); v != nil {
			if inst, ok := v.(*types.Instance); ok {
				if m, isMulti := inst.Of.(*types.Multi); isMulti {
					return c.checkMultiImplementation(n, m, sc)
				}
			}
		}
	}
	fnType, err := c.checkFunction(n, sc, funcOpts{})
	if err != nil {
		return err
	}
	if err := sc.Declare(n.Name, types.NewInstance(fnType), scope.Constant); err != nil {
		return errf(DuplicateBinding, n, "%s", err)
	}
	return nil
}

// checkFunction types a function literal or statement: parameters, closing
// scope, body, and return unification per the declared return type.
func (c *Checker) checkFunction(n *ast.Function, sc *scope.Scope, opts funcOpts) (*types.Function, error) {
	params, err := c.parameterTypes(n.Params, sc, opts.multi)
	if err != nil {
		return nil, err
	}
	var declared types.Type
	if n.Return != nil {
		declared, err = c.resolveTypeRef(n.Return, sc)
		if err != nil {
			return nil, err
		}
	}

	fnType := &types.Function{
		Params:           params,
		Return:           declared,
		IsInstanceMethod: opts.instance != nil,
	}
	if opts.resolve != nil {
		opts.resolve(fnType)
	}

	cs := sc.ChildClosing()
	n.Scope = cs
	if opts.instance != nil {
		// Not flagged constant: property writes through `this` must pass the
		// base mutability check.
		if err := cs.Declare("this", types.NewInstance(opts.instance), 0); err != nil {
			return nil, errf(DuplicateBinding, n, "%s", err)
		}
	}
	for i, p := range n.Params {
		if err := cs.Declare(p.Name, types.NewInstance(params[i]), 0); err != nil {
			return nil, errf(DuplicateBinding, p, "%s", err)
		}
	}
	if n.When != nil {
		if err := c.checkCondition(n.When, cs); err != nil {
			return nil, err
		}
	}
	if err := c.checkBlock(n.Body, cs); err != nil {
		return nil, err
	}

	final, err := c.unifyReturns(n, n.Body.Statements, declared)
	if err != nil {
		return nil, err
	}
	fnType.Return = final
	if types.Equals(final, types.VoidType) {
		if err := c.ensureTerminator(n.Body, cs); err != nil {
			return nil, err
		}
	}
	if err := c.setBlockReturn(n.Body, final); err != nil {
		return nil, err
	}
	c.fillBlockReturns(n.Body.Statements)
	n.SetType(types.NewInstance(fnType))
	return fnType, nil
}

func (c *Checker) parameterTypes(params []*ast.Parameter, sc *scope.Scope, multi *types.Multi) ([]types.Type, error) {
	resolved := make([]types.Type, len(params))
	for i, p := range params {
		switch {
		case p.Type != nil:
			t, err := c.resolveTypeRef(p.Type, sc)
			if err != nil {
				return nil, err
			}
			resolved[i] = t
		case multi != nil && i < len(multi.Params):
			resolved[i] = multi.Params[i].Type
		default:
			return nil, errf(MissingParameterType, p, "parameter %q needs a type annotation", p.Name)
		}
		if p.Default != nil {
			lit, ok := p.Default.(*ast.Literal)
			if !ok {
				return nil, errf(UnsupportedDefault, p, "default value of %q must be a literal", p.Name)
			}
			lt, err := c.literalType(lit)
			if err != nil {
				return nil, err
			}
			lit.SetType(types.NewInstance(lt))
			if !types.Equals(resolved[i], lt) {
				return nil, errf(DeclarationTypeMismatch, p,
					"default value of %q is %s, expected %s", p.Name, lt.Describe(), resolved[i].Describe())
			}
		}
	}
	return resolved, nil
}

func (c *Checker) checkMulti(n *ast.Multi, sc *scope.Scope) error {
	if n.Return == nil {
		return errf(InvalidStatement, n, "multi %q needs a declared return type", n.Name)
	}
	params := make([]types.MultiParam, len(n.Params))
	for i, p := range n.Params {
		if p.Type == nil {
			return errf(MissingParameterType, p, "multi parameter %q needs a type annotation", p.Name)
		}
		t, err := c.resolveTypeRef(p.Type, sc)
		if err != nil {
			return err
		}
		params[i] = types.MultiParam{Name: p.Name, Type: t}
	}
	ret, err := c.resolveTypeRef(n.Return, sc)
	if err != nil {
		return err
	}
	m := &types.Multi{MultiName: n.Name, Params: params, Return: ret}
	if err := sc.Declare(n.Name, types.NewInstance(m), scope.Constant); err != nil {
		return errf(DuplicateBinding, n, "%s", err)
	}
	return nil
}

// checkMultiImplementation types one overload and appends it to the
// dispatcher; run-time candidate selection is the backend's concern, so the
// guard is only checked for boolean-ness.
func (c *Checker) checkMultiImplementation(n *ast.Function, m *types.Multi, sc *scope.Scope) error {
	fnType, err := c.checkFunction(n, sc, funcOpts{multi: m})
	if err != nil {
		return err
	}
	m.Implementations = append(m.Implementations, fnType)
	return nil
}

func (c *Checker) checkClass(n *ast.Class, sc *scope.Scope) error {
	obj := types.NewObject(n.Name, c.intrinsics.object)
	if err := sc.Declare(n.Name, obj, scope.Constant); err != nil {
		return errf(DuplicateBinding, n, "%s", err)
	}
	csc := sc.Child()
	n.Scope = csc

	for _, stmt := range n.Body.Statements {
		switch m := stmt.(type) {
		case *ast.Let:
			if err := c.checkClassProperty(obj, m, m.Name, m.Annotation, m.Value, true, csc); err != nil {
				return err
			}
		case *ast.Var:
			if err := c.checkClassProperty(obj, m, m.Name, m.Annotation, m.Value, false, csc); err != nil {
				return err
			}
		case *ast.Function:
			if m.Name == "" {
				return errf(InvalidStatement, m, "class method needs a name")
			}
			if _, exists := obj.Properties[m.Name]; exists {
				return errf(DuplicateBinding, m, "%q is already defined on %s", m.Name, obj.Describe())
			}
			fnType, err := c.checkFunction(m, csc, funcOpts{instance: obj})
			if err != nil {
				return err
			}
			obj.Properties[m.Name] = types.Property{Type: fnType, ReadOnly: true}
		case *ast.Init:
			fnType, err := c.checkInit(m, obj, csc)
			if err != nil {
				return err
			}
			obj.Initializers = append(obj.Initializers, fnType)
		default:
			return errf(InvalidStatement, stmt, "statement is not allowed in a class body")
		}
	}

	// A class without explicit initializers is constructible with no
	// arguments.
	if len(obj.Initializers) == 0 {
		obj.Initializers = append(obj.Initializers, &types.Function{
			Return:           types.VoidType,
			IsInstanceMethod: true,
		})
	}
	return c.setBlockReturn(n.Body, types.VoidType)
}

func (c *Checker) checkClassProperty(obj *types.Object, node ast.Statement, name string, annotation *ast.TypeRef, value ast.Expression, readOnly bool, sc *scope.Scope) error {
	if annotation == nil {
		return errf(MissingPropertyType, node, "property %q needs an explicit type", name)
	}
	if _, exists := obj.Properties[name]; exists {
		return errf(DuplicateBinding, node, "%q is already defined on %s", name, obj.Describe())
	}
	t, err := c.resolveTypeRef(annotation, sc)
	if err != nil {
		return err
	}
	if value != nil {
		lit, ok := value.(*ast.Literal)
		if !ok {
			return errf(UnsupportedDefault, node, "default value of property %q must be a literal", name)
		}
		lt, err := c.literalType(lit)
		if err != nil {
			return err
		}
		lit.SetType(types.NewInstance(lt))
		if !types.Equals(t, lt) {
			return errf(DeclarationTypeMismatch, node,
				"property %q is declared as %s but its default is %s", name, t.Describe(), lt.Describe())
		}
	}
	obj.Properties[name] = types.Property{Type: t, ReadOnly: readOnly}
	return nil
}

// checkInit types an initializer block: `this` bound, Void return, result
// appended to the class's overloadable initializer list by the caller.
func (c *Checker) checkInit(n *ast.Init, obj *types.Object, sc *scope.Scope) (*types.Function, error) {
	params, err := c.parameterTypes(n.Params, sc, nil)
	if err != nil {
		return nil, err
	}
	fnType := &types.Function{Params: params, Return: types.VoidType, IsInstanceMethod: true}

	cs := sc.ChildClosing()
	n.Scope = cs
	if err := cs.Declare("this", types.NewInstance(obj), 0); err != nil {
		return nil, errf(DuplicateBinding, n, "%s", err)
	}
	for i, p := range n.Params {
		if err := cs.Declare(p.Name, types.NewInstance(params[i]), 0); err != nil {
			return nil, errf(DuplicateBinding, p, "%s", err)
		}
	}
	if err := c.checkBlock(n.Body, cs); err != nil {
		return nil, err
	}
	if _, err := c.unifyReturns(n, n.Body.Statements, types.VoidType); err != nil {
		return nil, err
	}
	if err := c.ensureTerminator(n.Body, cs); err != nil {
		return nil, err
	}
	if err := c.setBlockReturn(n.Body, types.VoidType); err != nil {
		return nil, err
	}
	c.fillBlockReturns(n.Body.Statements)
	return fnType, nil
}
