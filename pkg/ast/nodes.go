// Package ast defines the Lark AST consumed by the analyzer: a closed set of
// node kinds matching the parser's serialized output, plus the annotation
// slots the analyzer fills in (expression types, function scopes, block
// return types).
package ast

import (
	"lark/compiler-go/pkg/scope"
	"lark/compiler-go/pkg/types"
)

// Pos is a source position, 1-based. The zero value means "unknown", which
// is what builder-constructed trees carry.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Pos
	SetPos(Pos)
}

// Statement is a node valid in statement position.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a node valid in value position. The analyzer writes the
// resolved type back onto the node; postfix-chain nodes additionally carry a
// parent back-link for resolving receiver context.
type Expression interface {
	Node
	exprNode()
	TypeOf() types.Value
	SetType(types.Value)
	Parent() Node
	SetParent(Node)
}

type node struct {
	pos Pos
}

func (n *node) Pos() Pos     { return n.pos }
func (n *node) SetPos(p Pos) { n.pos = p }

type expr struct {
	node
	typ    types.Value
	parent Node
}

func (e *expr) exprNode()             {}
func (e *expr) TypeOf() types.Value   { return e.typ }
func (e *expr) SetType(v types.Value) { e.typ = v }
func (e *expr) Parent() Node          { return e.parent }
func (e *expr) SetParent(p Node)      { e.parent = p }

// Root is one file's top-level statement list.
type Root struct {
	node
	Statements []Statement
	ReturnType types.Type
	Scope      *scope.Scope
}

// Block is a braced statement list. ReturnType is set at most once by the
// analyzer's return unification.
type Block struct {
	node
	Statements []Statement
	ReturnType types.Type
}

// TypeRef is a nominal type annotation.
type TypeRef struct {
	node
	Name string
}

// Let declares an immutable binding.
type Let struct {
	node
	Name       string
	Annotation *TypeRef
	Value      Expression
}

func (*Let) stmtNode() {}

// Var declares a mutable binding.
type Var struct {
	node
	Name       string
	Annotation *TypeRef
	Value      Expression
}

func (*Var) stmtNode() {}

// Assignment covers the parser's unified assignment shape. Kind is one of
// "let", "var", or "path"; for the declaration kinds Target is an
// Identifier, for "path" it is an Identifier or Property chain.
type Assignment struct {
	node
	Kind     string
	Target   Expression
	Operator string
	Value    Expression
}

func (*Assignment) stmtNode() {}

// ElseIf is one `else if` arm of an If statement.
type ElseIf struct {
	node
	Condition Expression
	Block     *Block
}

type If struct {
	node
	Condition Expression
	Then      *Block
	ElseIfs   []*ElseIf
	Else      *Block
}

func (*If) stmtNode() {}

type While struct {
	node
	Condition Expression
	Body      *Block
}

func (*While) stmtNode() {}

type For struct {
	node
	Init      Statement
	Condition Expression
	Post      Statement
	Body      *Block
}

func (*For) stmtNode() {}

// Return exits the enclosing function; Value is nil for a bare `return`.
type Return struct {
	node
	Value Expression
}

func (*Return) stmtNode() {}

// Parameter is one formal parameter. Type may be nil only for
// multi-dispatch implementations, which inherit the dispatcher's type.
type Parameter struct {
	node
	Name    string
	Type    *TypeRef
	Default Expression
}

// Function is a function statement (Name non-empty) or expression (Name
// empty). When is the optional multi-dispatch guard.
type Function struct {
	expr
	Name   string
	Params []*Parameter
	Return *TypeRef
	When   Expression
	Body   *Block
	Scope  *scope.Scope
}

func (*Function) stmtNode() {}

// Multi declares a named dispatcher with a fixed signature.
type Multi struct {
	node
	Name   string
	Params []*Parameter
	Return *TypeRef
}

func (*Multi) stmtNode() {}

type Class struct {
	node
	Name  string
	Body  *Block
	Scope *scope.Scope
}

func (*Class) stmtNode() {}

// Init is an initializer block inside a class body.
type Init struct {
	node
	Params []*Parameter
	Body   *Block
	Scope  *scope.Scope
}

func (*Init) stmtNode() {}

// New constructs an instance of a class.
type New struct {
	expr
	ClassName string
	Args      []Expression
}

// Binary is an infix operation. Only compound-assignment operators are
// valid in statement position.
type Binary struct {
	expr
	Left     Expression
	Operator string
	Right    Expression
}

func (*Binary) stmtNode() {}

type Identifier struct {
	expr
	Name string
}

// Property is one `.name` step of a postfix chain.
type Property struct {
	expr
	Receiver Expression
	Name     string
}

type Call struct {
	expr
	Callee Expression
	Args   []Expression
}

func (*Call) stmtNode() {}

// Import brings a module into scope; a non-empty Using list binds the named
// exports directly instead of the module namespace.
type Import struct {
	node
	Path  string
	Using []string
}

func (*Import) stmtNode() {}

// Export copies an existing top-level binding into the file's export map.
type Export struct {
	node
	Name string
}

func (*Export) stmtNode() {}

// Literal is a constant with the parser's type-name tag ("String",
// "Integer", "Boolean").
type Literal struct {
	expr
	Value    any
	TypeName string
}
