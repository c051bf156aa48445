package typechecker

import (
	"testing"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/types"
)

func scaleDispatcher() *ast.Multi {
	return ast.MultiD("scale",
		[]*ast.Parameter{intParam("n"), intParam("by")},
		ast.Ty("Integer"),
	)
}

func TestMultiRegistersImplementations(t *testing.T) {
	root, _ := analyze(t,
		scaleDispatcher(),
		ast.Fn("scale", []*ast.Parameter{intParam("n"), intParam("by")}, ast.Ty("Integer"),
			ast.Ret(ast.Bin(ast.Id("n"), "*", ast.Id("by"))),
		),
		ast.FnWhen("scale", []*ast.Parameter{intParam("n"), intParam("by")}, ast.Ty("Integer"),
			ast.Bin(ast.Id("by"), "==", ast.Int(0)),
			ast.Ret(ast.Int(0)),
		),
	)
	m, ok := boundType(t, root, "scale").(*types.Multi)
	if !ok {
		t.Fatalf("expected a multi binding, got %T", boundType(t, root, "scale"))
	}
	if len(m.Implementations) != 2 {
		t.Fatalf("expected 2 implementations, got %d", len(m.Implementations))
	}
}

func TestMultiCallSiteUsesDispatcherSignature(t *testing.T) {
	root, _ := analyze(t,
		scaleDispatcher(),
		ast.Fn("scale", []*ast.Parameter{intParam("n"), intParam("by")}, ast.Ty("Integer"),
			ast.Ret(ast.Bin(ast.Id("n"), "*", ast.Id("by"))),
		),
		ast.LetD("r", nil, ast.CallE(ast.Id("scale"), ast.Int(2), ast.Int(3))),
	)
	if got := boundType(t, root, "r"); !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected r: Integer, got %s", got.Describe())
	}

	analyzeErr(t, ArgumentCountMismatch,
		scaleDispatcher(),
		ast.LetD("r", nil, ast.CallE(ast.Id("scale"), ast.Int(2))),
	)
	analyzeErr(t, ArgumentCountMismatch,
		scaleDispatcher(),
		ast.LetD("r", nil, ast.CallE(ast.Id("scale"), ast.Int(2), ast.Int(3), ast.Int(4))),
	)
	analyzeErr(t, ArgumentTypeMismatch,
		scaleDispatcher(),
		ast.LetD("r", nil, ast.CallE(ast.Id("scale"), ast.Int(2), ast.Str("3"))),
	)
}

func TestMultiImplementationInheritsParameterTypes(t *testing.T) {
	impl := ast.Fn("scale",
		[]*ast.Parameter{ast.Param("n", nil), ast.Param("by", nil)},
		ast.Ty("Integer"),
		ast.Ret(ast.Bin(ast.Id("n"), "*", ast.Id("by"))),
	)
	root, _ := analyze(t, scaleDispatcher(), impl)
	m := boundType(t, root, "scale").(*types.Multi)
	if len(m.Implementations) != 1 {
		t.Fatalf("expected 1 implementation, got %d", len(m.Implementations))
	}
	got := m.Implementations[0]
	if len(got.Params) != 2 || !types.Equals(got.Params[0], types.IntegerType) {
		t.Fatalf("unannotated parameters should inherit the dispatcher types, got %s", got.Describe())
	}
}

func TestMultiGuardMustBeBoolean(t *testing.T) {
	analyzeErr(t, ConditionTypeMismatch,
		scaleDispatcher(),
		ast.FnWhen("scale", []*ast.Parameter{intParam("n"), intParam("by")}, ast.Ty("Integer"),
			ast.Bin(ast.Id("n"), "+", ast.Id("by")),
			ast.Ret(ast.Int(0)),
		),
	)
}

func TestMultiNeedsFullSignature(t *testing.T) {
	analyzeErr(t, InvalidStatement,
		ast.MultiD("f", []*ast.Parameter{intParam("n")}, nil),
	)
	analyzeErr(t, MissingParameterType,
		ast.MultiD("f", []*ast.Parameter{ast.Param("n", nil)}, ast.Ty("Integer")),
	)
}

func TestMultiRegistrationIsScopeLocal(t *testing.T) {
	// A same-named function in an inner scope shadows the dispatcher instead
	// of registering with it.
	root, _ := analyze(t,
		scaleDispatcher(),
		ast.IfS(ast.Bool(true), ast.Blk(
			ast.Fn("scale", []*ast.Parameter{intParam("n")}, ast.Ty("Integer"),
				ast.Ret(ast.Id("n")),
			),
		), nil),
	)
	m := boundType(t, root, "scale").(*types.Multi)
	if len(m.Implementations) != 0 {
		t.Fatalf("inner function must not register with the outer dispatcher, got %d implementations", len(m.Implementations))
	}
}
