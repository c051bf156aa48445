package typechecker

import (
	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

func (c *Checker) checkExpression(e ast.Expression, sc *scope.Scope) (types.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		t, err := c.literalType(n)
		if err != nil {
			return nil, err
		}
		v := types.NewInstance(t)
		n.SetType(v)
		return v, nil
	case *ast.Identifier:
		v, ok := sc.Lookup(n.Name)
		if !ok {
			return nil, errf(UnknownIdentifier, n, "unknown identifier %q", n.Name)
		}
		n.SetType(v)
		return v, nil
	case *ast.Binary:
		return c.checkBinary(n, sc)
	case *ast.Property:
		return c.checkProperty(n, sc)
	case *ast.Call:
		return c.checkCall(n, sc)
	case *ast.New:
		return c.checkNew(n, sc)
	case *ast.Function:
		fnType, err := c.checkFunction(n, sc, funcOpts{})
		if err != nil {
			return nil, err
		}
		return types.NewInstance(fnType), nil
	default:
		return nil, errf(InvalidStatement, e, "unhandled expression kind")
	}
}

// checkExpressionResolving evaluates a declaration's right-hand side with an
// inference completion callback: the moment the expression's own type is
// known, resolve fires so an Unknown placeholder bound for the declared name
// can be filled in. For function literals that happens before the body is
// visited, which is what lets recursive closures reference themselves.
func (c *Checker) checkExpressionResolving(e ast.Expression, sc *scope.Scope, resolve func(types.Type)) (types.Value, error) {
	if fn, ok := e.(*ast.Function); ok {
		fnType, err := c.checkFunction(fn, sc, funcOpts{resolve: resolve})
		if err != nil {
			return nil, err
		}
		return types.NewInstance(fnType), nil
	}
	v, err := c.checkExpression(e, sc)
	if err != nil {
		return nil, err
	}
	if t, ok := concrete(v); ok {
		resolve(t)
	}
	return v, nil
}

func (c *Checker) literalType(n *ast.Literal) (types.Type, error) {
	switch n.TypeName {
	case "String":
		return types.StringType, nil
	case "Integer":
		return types.IntegerType, nil
	case "Boolean":
		return types.BooleanType, nil
	default:
		return nil, errf(NotAType, n, "unknown literal type %q", n.TypeName)
	}
}

func (c *Checker) checkBinary(n *ast.Binary, sc *scope.Scope) (types.Value, error) {
	lv, err := c.checkExpression(n.Left, sc)
	if err != nil {
		return nil, err
	}
	rv, err := c.checkExpression(n.Right, sc)
	if err != nil {
		return nil, err
	}
	lt, lok := concrete(lv)
	rt, rok := concrete(rv)
	if !lok || !rok {
		return nil, errf(OperatorTypeMismatch, n, "operand type is not resolved yet")
	}
	result, err := c.binaryResult(n, n.Operator, lt, rt)
	if err != nil {
		return nil, err
	}
	v := types.NewInstance(result)
	n.SetType(v)
	return v, nil
}

// binaryResult types an infix operation over already-resolved operands.
func (c *Checker) binaryResult(node ast.Node, operator string, left, right types.Type) (types.Type, error) {
	integers := types.Equals(left, types.IntegerType) && types.Equals(right, types.IntegerType)
	strings := types.Equals(left, types.StringType) && types.Equals(right, types.StringType)
	booleans := types.Equals(left, types.BooleanType) && types.Equals(right, types.BooleanType)

	switch operator {
	case "+":
		if integers {
			return types.IntegerType, nil
		}
		if strings {
			return types.StringType, nil
		}
	case "-", "*", "/", "%":
		if integers {
			return types.IntegerType, nil
		}
	case "<", ">", "<=", ">=":
		if integers {
			return types.BooleanType, nil
		}
	case "==", "!=":
		if types.Equals(left, right) {
			return types.BooleanType, nil
		}
	case "&&", "||":
		if booleans {
			return types.BooleanType, nil
		}
	}
	return nil, errf(OperatorTypeMismatch, node,
		"operator %q is not defined for %s and %s", operator, left.Describe(), right.Describe())
}

func (c *Checker) checkProperty(n *ast.Property, sc *scope.Scope) (types.Value, error) {
	recv, err := c.checkExpression(n.Receiver, sc)
	if err != nil {
		return nil, err
	}

	// Namespaced access on an imported module.
	if mod, ok := recv.(*types.Module); ok {
		t, found := mod.Properties[n.Name]
		if !found {
			return nil, errf(PropertyNotFound, n, "%s has no property %q", mod.Describe(), n.Name)
		}
		v := bindExport(t)
		n.SetType(v)
		return v, nil
	}

	t, ok := concrete(recv)
	if !ok {
		return nil, errf(PropertyNotFound, n, "receiver type is not resolved yet")
	}
	if _, isInstance := recv.(*types.Instance); !isInstance {
		return nil, errf(PropertyNotFound, n, "%s is a type, not a value", t.Describe())
	}

	switch recvType := t.(type) {
	case *types.Object:
		prop, found := recvType.PropertyNamed(n.Name)
		if !found {
			return nil, errf(PropertyNotFound, n, "%s has no property %q", recvType.Describe(), n.Name)
		}
		v := types.NewInstance(prop.Type)
		n.SetType(v)
		return v, nil
	case *types.Primitive:
		fn, found := c.intrinsics.methodNamed(recvType, n.Name)
		if !found {
			return nil, errf(PropertyNotFound, n, "%s has no property %q", recvType.Describe(), n.Name)
		}
		v := types.NewInstance(fn)
		n.SetType(v)
		return v, nil
	default:
		return nil, errf(PropertyNotFound, n, "%s has no properties", t.Describe())
	}
}

func (c *Checker) checkCall(n *ast.Call, sc *scope.Scope) (types.Value, error) {
	callee, err := c.checkExpression(n.Callee, sc)
	if err != nil {
		return nil, err
	}
	t, ok := concrete(callee)
	if !ok {
		return nil, errf(NotCallable, n, "callee type is not resolved yet")
	}

	var params []types.Type
	var ret types.Type
	switch fn := t.(type) {
	case *types.Function:
		if fn.Return == nil {
			return nil, errf(ReturnTypeMismatch, n,
				"cannot call a function before its return type is inferred; declare one explicitly")
		}
		params = fn.Params
		ret = fn.Return
	case *types.Multi:
		params = make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		ret = fn.Return
	default:
		return nil, errf(NotCallable, n, "%s is not callable", t.Describe())
	}

	if len(n.Args) != len(params) {
		return nil, errf(ArgumentCountMismatch, n, "call takes %d arguments, got %d", len(params), len(n.Args))
	}
	for i, arg := range n.Args {
		av, err := c.checkExpression(arg, sc)
		if err != nil {
			return nil, err
		}
		at, ok := concrete(av)
		if !ok {
			return nil, errf(ArgumentTypeMismatch, arg, "argument %d type is not resolved yet", i+1)
		}
		if !types.Equals(params[i], at) {
			return nil, errf(ArgumentTypeMismatch, arg,
				"argument %d is %s, expected %s", i+1, at.Describe(), params[i].Describe())
		}
	}

	v := types.NewInstance(ret)
	n.SetType(v)
	return v, nil
}

// checkNew resolves the class and selects the initializer whose parameter
// types exactly match the arguments; no ranking beyond pointwise equality.
func (c *Checker) checkNew(n *ast.New, sc *scope.Scope) (types.Value, error) {
	v, ok := sc.Lookup(n.ClassName)
	if !ok {
		return nil, errf(UnknownIdentifier, n, "unknown class %q", n.ClassName)
	}
	obj, isObject := v.(*types.Object)
	if !isObject {
		return nil, errf(NotAType, n, "%q is not a class", n.ClassName)
	}

	argTypes := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		av, err := c.checkExpression(arg, sc)
		if err != nil {
			return nil, err
		}
		at, resolved := concrete(av)
		if !resolved {
			return nil, errf(ArgumentTypeMismatch, arg, "argument %d type is not resolved yet", i+1)
		}
		argTypes[i] = at
	}

	matches := 0
	for _, init := range obj.Initializers {
		if initializerMatches(init, argTypes) {
			matches++
		}
	}
	if matches != 1 {
		return nil, errf(NoMatchingInitializer, n,
			"%d initializers of %s match the %d given arguments", matches, obj.Describe(), len(argTypes))
	}

	result := types.NewInstance(obj)
	n.SetType(result)
	return result, nil
}

func initializerMatches(init *types.Function, args []types.Type) bool {
	if len(init.Params) != len(args) {
		return false
	}
	for i := range args {
		if !types.Equals(init.Params[i], args[i]) {
			return false
		}
	}
	return true
}
