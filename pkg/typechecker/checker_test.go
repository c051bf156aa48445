package typechecker

import (
	"testing"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/types"
)

func analyze(t *testing.T, stmts ...ast.Statement) (*ast.Root, *Result) {
	t.Helper()
	root := ast.NewRoot(stmts...)
	result, err := New(nil).CheckRoot(root)
	if err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}
	return root, result
}

func analyzeErr(t *testing.T, want Cause, stmts ...ast.Statement) *TypeError {
	t.Helper()
	root := ast.NewRoot(stmts...)
	_, err := New(nil).CheckRoot(root)
	if err == nil {
		t.Fatalf("expected a %s error", want)
	}
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("expected *TypeError, got %T: %v", err, err)
	}
	if te.Cause != want {
		t.Fatalf("expected cause %s, got %s (%v)", want, te.Cause, te)
	}
	return te
}

func boundType(t *testing.T, root *ast.Root, name string) types.Type {
	t.Helper()
	v, ok := root.Scope.Lookup(name)
	if !ok {
		t.Fatalf("expected %q to be bound", name)
	}
	ct, resolved := concrete(v)
	if !resolved {
		t.Fatalf("binding %q is still unresolved", name)
	}
	return ct
}

func TestInferredDeclarationChains(t *testing.T) {
	root, _ := analyze(t,
		ast.LetD("a", nil, ast.Int(1)),
		ast.LetD("b", nil, ast.Bin(ast.Id("a"), "+", ast.Int(1))),
	)
	if got := boundType(t, root, "b"); !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected b: Integer, got %s", got.Describe())
	}
}

func TestAnnotatedDeclarationMismatch(t *testing.T) {
	analyzeErr(t, DeclarationTypeMismatch,
		ast.VarD("s", ast.Ty("String"), ast.Int(5)),
	)
}

func TestAnnotatedDeclarationMatches(t *testing.T) {
	root, _ := analyze(t,
		ast.VarD("s", ast.Ty("String"), ast.Str("hello")),
	)
	if got := boundType(t, root, "s"); !types.Equals(got, types.StringType) {
		t.Fatalf("expected s: String, got %s", got.Describe())
	}
}

func TestUseBeforeDeclaration(t *testing.T) {
	analyzeErr(t, UnknownIdentifier,
		ast.LetD("b", nil, ast.Bin(ast.Id("a"), "+", ast.Int(1))),
		ast.LetD("a", nil, ast.Int(1)),
	)
}

func TestDuplicateBindingInSameScope(t *testing.T) {
	analyzeErr(t, DuplicateBinding,
		ast.LetD("a", nil, ast.Int(1)),
		ast.LetD("a", nil, ast.Int(2)),
	)
}

func TestShadowingRestoresOuterBinding(t *testing.T) {
	root, _ := analyze(t,
		ast.VarD("x", nil, ast.Int(1)),
		ast.IfS(ast.Bool(true), ast.Blk(
			ast.VarD("x", nil, ast.Str("s")),
		), nil),
	)
	if got := boundType(t, root, "x"); !types.Equals(got, types.IntegerType) {
		t.Fatalf("outer x must still be Integer, got %s", got.Describe())
	}
}

func TestReassignToConstant(t *testing.T) {
	analyzeErr(t, ReassignToConstant,
		ast.LetD("x", nil, ast.Int(1)),
		ast.Assign(ast.Id("x"), "=", ast.Int(2)),
	)
}

func TestVarReassignment(t *testing.T) {
	analyze(t,
		ast.VarD("x", nil, ast.Int(1)),
		ast.Assign(ast.Id("x"), "=", ast.Int(2)),
	)
	analyzeErr(t, AssignmentTypeMismatch,
		ast.VarD("x", nil, ast.Int(1)),
		ast.Assign(ast.Id("x"), "=", ast.Str("s")),
	)
}

func TestCompoundBinaryStatement(t *testing.T) {
	analyze(t,
		ast.VarD("n", nil, ast.Int(1)),
		ast.Bin(ast.Id("n"), "+=", ast.Int(2)),
	)
	analyzeErr(t, InvalidStatement,
		ast.VarD("n", nil, ast.Int(1)),
		ast.Bin(ast.Id("n"), "+", ast.Int(2)),
	)
}

func TestConditionMustBeBoolean(t *testing.T) {
	analyzeErr(t, ConditionTypeMismatch,
		ast.IfS(ast.Int(1), ast.Blk(), nil),
	)
	analyzeErr(t, ConditionTypeMismatch,
		ast.WhileS(ast.Str("loop"), ast.Blk()),
	)
}

func TestForLoopScopesItsInit(t *testing.T) {
	analyze(t,
		ast.ForS(
			ast.VarD("i", nil, ast.Int(0)),
			ast.Bin(ast.Id("i"), "<", ast.Int(10)),
			ast.Bin(ast.Id("i"), "+=", ast.Int(1)),
			ast.Blk(),
		),
	)
	// The loop variable must not leak into the surrounding scope.
	analyzeErr(t, UnknownIdentifier,
		ast.ForS(
			ast.VarD("i", nil, ast.Int(0)),
			ast.Bin(ast.Id("i"), "<", ast.Int(10)),
			ast.Bin(ast.Id("i"), "+=", ast.Int(1)),
			ast.Blk(),
		),
		ast.LetD("after", nil, ast.Id("i")),
	)
}

func TestReanalysisIsRejected(t *testing.T) {
	root, _ := analyze(t, ast.LetD("a", nil, ast.Int(1)))
	if _, err := New(nil).CheckRoot(root); CauseOf(err) != AlreadyAnalyzed {
		t.Fatalf("expected AlreadyAnalyzed on a second pass, got %v", err)
	}
}

func TestRootReturnTypeDefaultsToVoid(t *testing.T) {
	root, _ := analyze(t, ast.LetD("a", nil, ast.Int(1)))
	if !types.Equals(root.ReturnType, types.VoidType) {
		t.Fatalf("expected Void root return, got %s", root.ReturnType.Describe())
	}
}

func TestExport(t *testing.T) {
	_, result := analyze(t,
		ast.LetD("answer", nil, ast.Int(42)),
		ast.ExportD("answer"),
	)
	if got, ok := result.Exports["answer"]; !ok || !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected answer: Integer in exports, got %v", result.Exports)
	}
}

func TestExportOutsideTopLevel(t *testing.T) {
	analyzeErr(t, ExportOutsideTopLevel,
		ast.LetD("a", nil, ast.Int(1)),
		ast.IfS(ast.Bool(true), ast.Blk(ast.ExportD("a")), nil),
	)
}

func TestExportUnknownIdentifier(t *testing.T) {
	analyzeErr(t, UnknownIdentifier, ast.ExportD("ghost"))
}

func TestEveryBlockGetsAReturnType(t *testing.T) {
	then := ast.Blk(ast.LetD("a", nil, ast.Int(1)))
	loop := ast.Blk(ast.VarD("i", nil, ast.Int(0)))
	class := ast.ClassD("Empty")
	branch := ast.Blk(ast.LetD("b", nil, ast.Int(2)))
	fn := ast.Fn("f", nil, ast.Ty("Integer"),
		ast.IfS(ast.Bool(true), branch, nil),
		ast.Ret(ast.Int(1)),
	)
	analyze(t,
		ast.IfS(ast.Bool(true), then, nil),
		ast.WhileS(ast.Bool(true), loop),
		class,
		fn,
	)
	for name, b := range map[string]*ast.Block{
		"if":       then,
		"while":    loop,
		"class":    class.Body,
		"if-in-fn": branch,
	} {
		if !types.Equals(b.ReturnType, types.VoidType) {
			t.Fatalf("%s block should default to Void, got %v", name, b.ReturnType)
		}
	}
	if !types.Equals(fn.Body.ReturnType, types.IntegerType) {
		t.Fatalf("function body should be Integer, got %v", fn.Body.ReturnType)
	}
}

func TestExpressionNodesGetTypeAnnotations(t *testing.T) {
	value := ast.Bin(ast.Id("a"), "+", ast.Int(1))
	root, _ := analyze(t,
		ast.LetD("a", nil, ast.Int(1)),
		ast.LetD("b", nil, value),
	)
	_ = root
	got, ok := concrete(value.TypeOf())
	if !ok || !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected the binary node to be annotated Integer, got %v", value.TypeOf())
	}
	left := value.Left.(*ast.Identifier)
	if left.TypeOf() == nil {
		t.Fatal("identifier operands must be annotated too")
	}
}
