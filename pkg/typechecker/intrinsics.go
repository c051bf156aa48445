package typechecker

import (
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

// intrinsics is the per-analyzer cache of the bootstrap results: the root
// object type, the std module stub, and the shim method tables attached to
// primitives. Built once in New and read-only afterwards.
type intrinsics struct {
	object  *types.Object
	std     *types.Module
	methods map[*types.Primitive]map[string]*types.Function
}

// bootstrap installs the intrinsic root hierarchy and the standard-library
// module stub into the root scope.
func bootstrap(root *scope.Scope) *intrinsics {
	in := &intrinsics{
		object:  types.NewObject("Object", nil),
		std:     types.NewModule("std", nil),
		methods: make(map[*types.Primitive]map[string]*types.Function),
	}

	mustDeclare(root, "Any", types.AnyType)
	mustDeclare(root, "Void", types.VoidType)
	mustDeclare(root, "Object", in.object)
	mustDeclare(root, "String", types.StringType)
	mustDeclare(root, "Integer", types.IntegerType)
	mustDeclare(root, "Boolean", types.BooleanType)

	printFn := &types.Function{Params: []types.Type{types.StringType}, Return: types.VoidType}
	lenFn := &types.Function{Params: []types.Type{types.StringType}, Return: types.IntegerType}
	strFn := &types.Function{Params: []types.Type{types.IntegerType}, Return: types.StringType}
	in.std.Properties["print"] = printFn
	in.std.Properties["len"] = lenFn
	in.std.Properties["str"] = strFn
	mustDeclare(root, "std", in.std)

	// Intrinsic instance methods are shims: the receiver becomes the first
	// argument of the module-level function they redirect to.
	in.methods[types.StringType] = map[string]*types.Function{
		"length": {Params: nil, Return: types.IntegerType, IsInstanceMethod: true, ShimFor: lenFn},
	}
	in.methods[types.IntegerType] = map[string]*types.Function{
		"str": {Params: nil, Return: types.StringType, IsInstanceMethod: true, ShimFor: strFn},
	}
	return in
}

// methodNamed looks up a shim instance method on a primitive receiver.
func (in *intrinsics) methodNamed(p *types.Primitive, name string) (*types.Function, bool) {
	fns, ok := in.methods[p]
	if !ok {
		return nil, false
	}
	fn, ok := fns[name]
	return fn, ok
}

func mustDeclare(s *scope.Scope, name string, v types.Value) {
	if err := s.Declare(name, v, scope.Constant); err != nil {
		panic("typechecker: bootstrap collision: " + err.Error())
	}
}
