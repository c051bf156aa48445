package typechecker

import (
	"testing"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/types"
)

func intParam(name string) *ast.Parameter { return ast.Param(name, ast.Ty("Integer")) }

func TestFunctionDeclarationAndCall(t *testing.T) {
	root, _ := analyze(t,
		ast.Fn("twice", []*ast.Parameter{intParam("x")}, ast.Ty("Integer"),
			ast.Ret(ast.Bin(ast.Id("x"), "*", ast.Int(2))),
		),
		ast.LetD("y", nil, ast.CallE(ast.Id("twice"), ast.Int(3))),
	)
	if got := boundType(t, root, "y"); !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected y: Integer, got %s", got.Describe())
	}
	fn, ok := boundType(t, root, "twice").(*types.Function)
	if !ok {
		t.Fatalf("expected a function binding, got %T", boundType(t, root, "twice"))
	}
	if fn.Describe() != "(Integer) -> Integer" {
		t.Fatalf("unexpected signature %s", fn.Describe())
	}
}

func TestInferredReturnsMustConverge(t *testing.T) {
	analyzeErr(t, AmbiguousReturnType,
		ast.Fn("pick", nil, nil,
			ast.IfS(ast.Bool(true), ast.Blk(ast.Ret(ast.Int(1))), nil),
			ast.Ret(ast.Str("fallback")),
		),
	)
}

func TestInferredReturnsConvergeAcrossBranches(t *testing.T) {
	branch := ast.Blk(ast.Ret(ast.Int(1)))
	fn := ast.Fn("pick", nil, nil,
		ast.IfS(ast.Bool(true), branch, nil),
		ast.Ret(ast.Int(2)),
	)
	analyze(t, fn)
	if !types.Equals(fn.Body.ReturnType, types.IntegerType) {
		t.Fatalf("expected Integer body return, got %v", fn.Body.ReturnType)
	}
	// Sub-blocks that contain returns carry the unified type too.
	if !types.Equals(branch.ReturnType, types.IntegerType) {
		t.Fatalf("expected Integer branch return, got %v", branch.ReturnType)
	}
}

func TestDeclaredReturnTypeIsEnforced(t *testing.T) {
	analyzeErr(t, ReturnTypeMismatch,
		ast.Fn("f", nil, ast.Ty("Integer"), ast.Ret(ast.Str("s"))),
	)
	analyzeErr(t, ReturnTypeMismatch,
		ast.Fn("f", nil, ast.Ty("Integer")),
	)
}

func TestMissingParameterType(t *testing.T) {
	analyzeErr(t, MissingParameterType,
		ast.Fn("f", []*ast.Parameter{ast.Param("x", nil)}, ast.Ty("Void")),
	)
}

func TestVoidBodyGetsImplicitTerminator(t *testing.T) {
	fn := ast.Fn("log", []*ast.Parameter{ast.Param("msg", ast.Ty("String"))}, nil,
		ast.LetD("copy", nil, ast.Id("msg")),
	)
	analyze(t, fn)
	if !types.Equals(fn.Body.ReturnType, types.VoidType) {
		t.Fatalf("expected Void body, got %v", fn.Body.ReturnType)
	}
	last, ok := fn.Body.Statements[len(fn.Body.Statements)-1].(*ast.Return)
	if !ok || last.Value != nil {
		t.Fatalf("expected an implicit bare return terminator, got %#v", fn.Body.Statements[len(fn.Body.Statements)-1])
	}
}

func TestExplicitTerminatorIsNotDuplicated(t *testing.T) {
	fn := ast.Fn("noop", nil, nil, ast.Ret(nil))
	analyze(t, fn)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected the single explicit return to survive, got %d statements", len(fn.Body.Statements))
	}
}

func TestManyReturnsEmitAnAdvisory(t *testing.T) {
	_, result := analyze(t,
		ast.Fn("f", nil, ast.Ty("Integer"),
			ast.Ret(ast.Int(1)), ast.Ret(ast.Int(2)), ast.Ret(ast.Int(3)),
			ast.Ret(ast.Int(4)), ast.Ret(ast.Int(5)),
		),
	)
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected a return-count advisory")
	}
}

func TestRecursionNeedsDeclaredReturnType(t *testing.T) {
	analyzeErr(t, ReturnTypeMismatch,
		ast.LetD("f", nil, ast.Fn("", []*ast.Parameter{intParam("n")}, nil,
			ast.Ret(ast.CallE(ast.Id("f"), ast.Id("n"))),
		)),
	)
}

func TestRecursionWithDeclaredReturnType(t *testing.T) {
	root, _ := analyze(t,
		ast.LetD("count", nil, ast.Fn("", []*ast.Parameter{intParam("n")}, ast.Ty("Integer"),
			ast.IfS(ast.Bin(ast.Id("n"), "<", ast.Int(1)),
				ast.Blk(ast.Ret(ast.Int(0))), nil),
			ast.Ret(ast.CallE(ast.Id("count"), ast.Bin(ast.Id("n"), "-", ast.Int(1)))),
		)),
	)
	fn, ok := boundType(t, root, "count").(*types.Function)
	if !ok || fn.Describe() != "(Integer) -> Integer" {
		t.Fatalf("expected (Integer) -> Integer, got %v", boundType(t, root, "count"))
	}
}

func TestParameterDefaults(t *testing.T) {
	withLiteral := intParam("x")
	withLiteral.Default = ast.Int(1)
	analyze(t, ast.Fn("f", []*ast.Parameter{withLiteral}, ast.Ty("Void")))

	mismatched := intParam("x")
	mismatched.Default = ast.Str("one")
	analyzeErr(t, DeclarationTypeMismatch,
		ast.Fn("f", []*ast.Parameter{mismatched}, ast.Ty("Void")),
	)

	computed := intParam("x")
	computed.Default = ast.Bin(ast.Int(1), "+", ast.Int(1))
	analyzeErr(t, UnsupportedDefault,
		ast.Fn("f", []*ast.Parameter{computed}, ast.Ty("Void")),
	)
}

func TestGuardMustBeBoolean(t *testing.T) {
	analyzeErr(t, ConditionTypeMismatch,
		ast.FnWhen("f", []*ast.Parameter{intParam("n")}, ast.Ty("Void"), ast.Id("n")),
	)
}

func TestFunctionBindingIsConstant(t *testing.T) {
	analyzeErr(t, ReassignToConstant,
		ast.Fn("f", nil, ast.Ty("Void")),
		ast.Assign(ast.Id("f"), "=", ast.Int(1)),
	)
}

func TestArgumentChecks(t *testing.T) {
	decl := ast.Fn("add", []*ast.Parameter{intParam("a"), intParam("b")}, ast.Ty("Integer"),
		ast.Ret(ast.Bin(ast.Id("a"), "+", ast.Id("b"))),
	)
	analyzeErr(t, ArgumentCountMismatch,
		decl,
		ast.LetD("r", nil, ast.CallE(ast.Id("add"), ast.Int(1))),
	)
	analyzeErr(t, ArgumentTypeMismatch,
		ast.Fn("add", []*ast.Parameter{intParam("a"), intParam("b")}, ast.Ty("Integer"),
			ast.Ret(ast.Bin(ast.Id("a"), "+", ast.Id("b"))),
		),
		ast.LetD("r", nil, ast.CallE(ast.Id("add"), ast.Int(1), ast.Str("2"))),
	)
}

func TestCallingANonFunction(t *testing.T) {
	analyzeErr(t, NotCallable,
		ast.LetD("n", nil, ast.Int(1)),
		ast.LetD("r", nil, ast.CallE(ast.Id("n"))),
	)
}
