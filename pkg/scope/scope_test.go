package scope

import (
	"testing"

	"lark/compiler-go/pkg/types"
)

func TestDeclareAndLookup(t *testing.T) {
	root := NewRoot()
	if err := root.Declare("a", types.NewInstance(types.IntegerType), 0); err != nil {
		t.Fatalf("declare: %v", err)
	}
	v, ok := root.Lookup("a")
	if !ok {
		t.Fatal("expected a to resolve")
	}
	if got := types.Underlying(v); !types.Equals(got, types.IntegerType) {
		t.Fatalf("expected Integer, got %s", got.Describe())
	}
	if _, ok := root.Lookup("missing"); ok {
		t.Fatal("expected missing to be unresolved")
	}
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	root := NewRoot()
	if err := root.Declare("a", types.NewInstance(types.IntegerType), 0); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := root.Declare("a", types.NewInstance(types.StringType), 0); err == nil {
		t.Fatal("expected duplicate declaration to fail")
	}
}

func TestShadowingLeavesOuterBindingIntact(t *testing.T) {
	outer := NewRoot()
	if err := outer.Declare("x", types.NewInstance(types.IntegerType), 0); err != nil {
		t.Fatalf("declare: %v", err)
	}
	inner := outer.Child()
	if err := inner.Declare("x", types.NewInstance(types.StringType), 0); err != nil {
		t.Fatalf("shadowing declare: %v", err)
	}

	v, _ := inner.Lookup("x")
	if got := types.Underlying(v); !types.Equals(got, types.StringType) {
		t.Fatalf("inner x should be String, got %s", got.Describe())
	}
	v, _ = outer.Lookup("x")
	if got := types.Underlying(v); !types.Equals(got, types.IntegerType) {
		t.Fatalf("outer x should still be Integer, got %s", got.Describe())
	}
}

func TestFindOwningScope(t *testing.T) {
	outer := NewRoot()
	_ = outer.Declare("x", types.NewInstance(types.IntegerType), Constant)
	inner := outer.Child().Child()

	if owner := inner.FindOwningScope("x"); owner != outer {
		t.Fatal("expected the root to own x")
	}
	if owner := inner.FindOwningScope("missing"); owner != nil {
		t.Fatal("expected no owner for missing")
	}
	flags, ok := outer.FlagsOf("x")
	if !ok || flags&Constant == 0 {
		t.Fatal("expected x to be flagged Constant")
	}
}

func TestClosingScopeStillResolvesOuterNames(t *testing.T) {
	outer := NewRoot()
	_ = outer.Declare("captured", types.NewInstance(types.StringType), 0)
	body := outer.ChildClosing()
	if !body.IsClosing() {
		t.Fatal("expected a closing scope")
	}
	if outer.IsClosing() {
		t.Fatal("root must not be closing")
	}
	if _, ok := body.Lookup("captured"); !ok {
		t.Fatal("closing boundary must not block reads of outer names")
	}
}
