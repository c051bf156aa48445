package ast

// Builder helpers for assembling trees in code. Tests and tools use these
// instead of hand-writing node structs; they do not set positions.

// NewRoot wraps statements in a Root and links parent back-references.
func NewRoot(stmts ...Statement) *Root {
	root := &Root{Statements: stmts}
	Link(root)
	return root
}

func Blk(stmts ...Statement) *Block { return &Block{Statements: stmts} }

func Ty(name string) *TypeRef { return &TypeRef{Name: name} }

// LetD declares `let name: annotation = value`; annotation may be nil.
func LetD(name string, annotation *TypeRef, value Expression) *Let {
	return &Let{Name: name, Annotation: annotation, Value: value}
}

// VarD declares `var name: annotation = value`; annotation may be nil.
func VarD(name string, annotation *TypeRef, value Expression) *Var {
	return &Var{Name: name, Annotation: annotation, Value: value}
}

// Assign builds a path assignment `target op value`.
func Assign(target Expression, operator string, value Expression) *Assignment {
	return &Assignment{Kind: "path", Target: target, Operator: operator, Value: value}
}

func Id(name string) *Identifier { return &Identifier{Name: name} }

func Str(v string) *Literal { return &Literal{Value: v, TypeName: "String"} }

func Int(v int64) *Literal { return &Literal{Value: v, TypeName: "Integer"} }

func Bool(v bool) *Literal { return &Literal{Value: v, TypeName: "Boolean"} }

func Bin(left Expression, operator string, right Expression) *Binary {
	return &Binary{Left: left, Operator: operator, Right: right}
}

func Prop(receiver Expression, name string) *Property {
	return &Property{Receiver: receiver, Name: name}
}

func CallE(callee Expression, args ...Expression) *Call {
	return &Call{Callee: callee, Args: args}
}

func NewE(className string, args ...Expression) *New {
	return &New{ClassName: className, Args: args}
}

func Param(name string, typeRef *TypeRef) *Parameter {
	return &Parameter{Name: name, Type: typeRef}
}

// Fn builds a function statement (or expression when name is empty).
func Fn(name string, params []*Parameter, ret *TypeRef, body ...Statement) *Function {
	return &Function{Name: name, Params: params, Return: ret, Body: Blk(body...)}
}

// FnWhen builds a multi-dispatch implementation carrying a guard.
func FnWhen(name string, params []*Parameter, ret *TypeRef, when Expression, body ...Statement) *Function {
	fn := Fn(name, params, ret, body...)
	fn.When = when
	return fn
}

func MultiD(name string, params []*Parameter, ret *TypeRef) *Multi {
	return &Multi{Name: name, Params: params, Return: ret}
}

func ClassD(name string, body ...Statement) *Class {
	return &Class{Name: name, Body: Blk(body...)}
}

func InitD(params []*Parameter, body ...Statement) *Init {
	return &Init{Params: params, Body: Blk(body...)}
}

func Ret(value Expression) *Return { return &Return{Value: value} }

func IfS(cond Expression, then *Block, elseBlock *Block) *If {
	return &If{Condition: cond, Then: then, Else: elseBlock}
}

func ElseIfArm(cond Expression, block *Block) *ElseIf {
	return &ElseIf{Condition: cond, Block: block}
}

func WhileS(cond Expression, body *Block) *While {
	return &While{Condition: cond, Body: body}
}

func ForS(init Statement, cond Expression, post Statement, body *Block) *For {
	return &For{Init: init, Condition: cond, Post: post, Body: body}
}

func ImportD(path string, using ...string) *Import {
	return &Import{Path: path, Using: using}
}

func ExportD(name string) *Export { return &Export{Name: name} }
