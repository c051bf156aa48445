package typechecker

import (
	"fmt"

	"lark/compiler-go/pkg/ast"
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

// returnAdvisoryLimit is the number of return statements past which the
// analyzer emits a performance advisory: unification cost grows
// quadratically with the number of distinct return types.
const returnAdvisoryLimit = 4

// unifyReturns collects every return statement lexically inside stmts,
// descending into control-flow sub-blocks but not into nested function
// literals, and unifies their types against the declared return type (or by
// structural deduplication when none is declared). Traversed sub-blocks that
// contain returns receive the unified type as their block return type.
func (c *Checker) unifyReturns(owner ast.Node, stmts []ast.Statement, declared types.Type) (types.Type, error) {
	var returns []*ast.Return
	var blocks []*ast.Block
	collectReturns(stmts, &returns, &blocks)

	if len(returns) > returnAdvisoryLimit {
		c.advise(owner, fmt.Sprintf("%d return statements in one function; consider consolidating branches", len(returns)))
	}

	final := declared
	if declared != nil {
		for _, r := range returns {
			t, err := returnType(r)
			if err != nil {
				return nil, err
			}
			if !types.Equals(declared, t) {
				return nil, errf(ReturnTypeMismatch, r,
					"returns %s, but the function declares %s", t.Describe(), declared.Describe())
			}
		}
		if len(returns) == 0 && !types.Equals(declared, types.VoidType) {
			return nil, errf(ReturnTypeMismatch, owner,
				"function declares %s but never returns", declared.Describe())
		}
	} else {
		var distinct []types.Type
		for _, r := range returns {
			t, err := returnType(r)
			if err != nil {
				return nil, err
			}
			seen := false
			for _, d := range distinct {
				if types.Equals(d, t) {
					seen = true
					break
				}
			}
			if !seen {
				distinct = append(distinct, t)
			}
		}
		switch len(distinct) {
		case 0:
			final = types.VoidType
		case 1:
			final = distinct[0]
		default:
			return nil, errf(AmbiguousReturnType, owner,
				"returns both %s and %s; declare an explicit return type", distinct[0].Describe(), distinct[1].Describe())
		}
	}

	for _, b := range blocks {
		if err := c.setBlockReturn(b, final); err != nil {
			return nil, err
		}
	}
	return final, nil
}

func returnType(r *ast.Return) (types.Type, error) {
	if r.Value == nil {
		return types.VoidType, nil
	}
	t, ok := concrete(r.Value.TypeOf())
	if !ok {
		return nil, errf(UnknownIdentifier, r, "return value type is not resolved yet")
	}
	return t, nil
}

// collectReturns gathers return statements and the sub-blocks that contain
// them. Nested functions, classes, and initializers own their returns.
func collectReturns(stmts []ast.Statement, returns *[]*ast.Return, blocks *[]*ast.Block) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Return:
			*returns = append(*returns, n)
		case *ast.If:
			collectBlockReturns(n.Then, returns, blocks)
			for _, arm := range n.ElseIfs {
				collectBlockReturns(arm.Block, returns, blocks)
			}
			collectBlockReturns(n.Else, returns, blocks)
		case *ast.While:
			collectBlockReturns(n.Body, returns, blocks)
		case *ast.For:
			collectBlockReturns(n.Body, returns, blocks)
		}
	}
}

func collectBlockReturns(b *ast.Block, returns *[]*ast.Return, blocks *[]*ast.Block) {
	if b == nil {
		return
	}
	before := len(*returns)
	collectReturns(b.Statements, returns, blocks)
	if len(*returns) > before {
		*blocks = append(*blocks, b)
	}
}

// setBlockReturn writes a block's unified return type exactly once; a second
// write means the tree is being analyzed twice.
func (c *Checker) setBlockReturn(b *ast.Block, t types.Type) error {
	if b.ReturnType != nil {
		return errf(AlreadyAnalyzed, b, "block already has a return type")
	}
	b.ReturnType = t
	return nil
}

// fillBlockReturns defaults every control-flow sub-block that unification
// left unannotated to Void, so backends see a return type on every block.
// Blocks owned by nested functions, classes, and initializers are annotated
// by their own analysis and skipped here.
func (c *Checker) fillBlockReturns(stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.If:
			c.fillBlock(n.Then)
			for _, arm := range n.ElseIfs {
				c.fillBlock(arm.Block)
			}
			c.fillBlock(n.Else)
		case *ast.While:
			c.fillBlock(n.Body)
		case *ast.For:
			c.fillBlock(n.Body)
		}
	}
}

func (c *Checker) fillBlock(b *ast.Block) {
	if b == nil {
		return
	}
	if b.ReturnType == nil {
		b.ReturnType = types.VoidType
	}
	c.fillBlockReturns(b.Statements)
}

// ensureTerminator appends and checks an implicit `return` when a Void
// function body does not already end in one, so backends always see an
// explicit terminator.
func (c *Checker) ensureTerminator(b *ast.Block, sc *scope.Scope) error {
	if n := len(b.Statements); n > 0 {
		if _, ok := b.Statements[n-1].(*ast.Return); ok {
			return nil
		}
	}
	implicit := &ast.Return{}
	if err := c.checkReturn(implicit, sc); err != nil {
		return err
	}
	b.Statements = append(b.Statements, implicit)
	return nil
}
