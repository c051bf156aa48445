package ast

// Link installs parent back-links on every expression reachable from root.
// The analyzer relies on them to recover receiver context inside postfix
// chains. Decoded and builder-constructed trees both pass through here.
func Link(root *Root) {
	for _, s := range root.Statements {
		linkStatement(s, root)
	}
}

func linkStatement(s Statement, parent Node) {
	switch n := s.(type) {
	case *Let:
		linkExpr(n.Value, n)
	case *Var:
		linkExpr(n.Value, n)
	case *Assignment:
		linkExpr(n.Target, n)
		linkExpr(n.Value, n)
	case *If:
		linkExpr(n.Condition, n)
		linkBlock(n.Then, n)
		for _, arm := range n.ElseIfs {
			linkExpr(arm.Condition, n)
			linkBlock(arm.Block, n)
		}
		linkBlock(n.Else, n)
	case *While:
		linkExpr(n.Condition, n)
		linkBlock(n.Body, n)
	case *For:
		if n.Init != nil {
			linkStatement(n.Init, n)
		}
		linkExpr(n.Condition, n)
		if n.Post != nil {
			linkStatement(n.Post, n)
		}
		linkBlock(n.Body, n)
	case *Return:
		linkExpr(n.Value, n)
	case *Function:
		linkFunction(n, parent)
	case *Multi:
		linkParams(n.Params, n)
	case *Class:
		linkBlock(n.Body, n)
	case *Init:
		linkParams(n.Params, n)
		linkBlock(n.Body, n)
	case *Binary:
		linkExpr(n, parent)
	case *Call:
		linkExpr(n, parent)
	case *Import, *Export:
	}
}

func linkBlock(b *Block, parent Node) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		linkStatement(s, parent)
	}
}

func linkFunction(n *Function, parent Node) {
	n.SetParent(parent)
	linkParams(n.Params, n)
	linkExpr(n.When, n)
	linkBlock(n.Body, n)
}

func linkParams(params []*Parameter, parent Node) {
	for _, p := range params {
		linkExpr(p.Default, parent)
	}
}

func linkExpr(e Expression, parent Node) {
	if e == nil {
		return
	}
	e.SetParent(parent)
	switch n := e.(type) {
	case *Binary:
		linkExpr(n.Left, n)
		linkExpr(n.Right, n)
	case *Property:
		linkExpr(n.Receiver, n)
	case *Call:
		linkExpr(n.Callee, n)
		for _, a := range n.Args {
			linkExpr(a, n)
		}
	case *New:
		for _, a := range n.Args {
			linkExpr(a, n)
		}
	case *Function:
		linkFunction(n, parent)
	case *Identifier, *Literal:
	}
}
