package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeRoot parses the serialized AST emitted by the parser executable
// (one `.ast.json` file per source file) and links parent back-references.
func DecodeRoot(data []byte) (*Root, error) {
	var raw struct {
		Kind       string            `json:"kind"`
		Pos        Pos               `json:"pos"`
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decode root: %w", err)
	}
	if raw.Kind != "Root" {
		return nil, fmt.Errorf("ast: expected Root node, got %q", raw.Kind)
	}
	root := &Root{}
	root.SetPos(raw.Pos)
	stmts, err := decodeStatements(raw.Statements)
	if err != nil {
		return nil, err
	}
	root.Statements = stmts
	Link(root)
	return root, nil
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	stmts := make([]Statement, 0, len(raws))
	for _, raw := range raws {
		s, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func peekKind(raw json.RawMessage) (string, Pos, error) {
	var head struct {
		Kind string `json:"kind"`
		Pos  Pos    `json:"pos"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", Pos{}, fmt.Errorf("ast: decode node header: %w", err)
	}
	return head.Kind, head.Pos, nil
}

func decodeStatement(raw json.RawMessage) (Statement, error) {
	kind, pos, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	var stmt Statement
	switch kind {
	case "Let", "Var":
		var body struct {
			Name       string          `json:"name"`
			Annotation *TypeRef        `json:"annotation"`
			Value      json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode %s: %w", kind, err)
		}
		value, err := decodeOptionalExpression(body.Value)
		if err != nil {
			return nil, err
		}
		if kind == "Let" {
			stmt = &Let{Name: body.Name, Annotation: body.Annotation, Value: value}
		} else {
			stmt = &Var{Name: body.Name, Annotation: body.Annotation, Value: value}
		}
	case "Assignment":
		var body struct {
			AssignKind string          `json:"assignKind"`
			Target     json.RawMessage `json:"target"`
			Operator   string          `json:"operator"`
			Value      json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Assignment: %w", err)
		}
		target, err := decodeExpression(body.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(body.Value)
		if err != nil {
			return nil, err
		}
		stmt = &Assignment{Kind: body.AssignKind, Target: target, Operator: body.Operator, Value: value}
	case "If":
		var body struct {
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
			ElseIfs   []struct {
				Pos       Pos             `json:"pos"`
				Condition json.RawMessage `json:"condition"`
				Block     json.RawMessage `json:"block"`
			} `json:"elseIfs"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode If: %w", err)
		}
		cond, err := decodeExpression(body.Condition)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(body.Then)
		if err != nil {
			return nil, err
		}
		n := &If{Condition: cond, Then: then}
		for _, arm := range body.ElseIfs {
			armCond, err := decodeExpression(arm.Condition)
			if err != nil {
				return nil, err
			}
			armBlock, err := decodeBlock(arm.Block)
			if err != nil {
				return nil, err
			}
			elseIf := &ElseIf{Condition: armCond, Block: armBlock}
			elseIf.SetPos(arm.Pos)
			n.ElseIfs = append(n.ElseIfs, elseIf)
		}
		if len(body.Else) > 0 && string(body.Else) != "null" {
			elseBlock, err := decodeBlock(body.Else)
			if err != nil {
				return nil, err
			}
			n.Else = elseBlock
		}
		stmt = n
	case "While":
		var body struct {
			Condition json.RawMessage `json:"condition"`
			Body      json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode While: %w", err)
		}
		cond, err := decodeExpression(body.Condition)
		if err != nil {
			return nil, err
		}
		block, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		stmt = &While{Condition: cond, Body: block}
	case "For":
		var body struct {
			Init      json.RawMessage `json:"init"`
			Condition json.RawMessage `json:"condition"`
			Post      json.RawMessage `json:"post"`
			Body      json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode For: %w", err)
		}
		n := &For{}
		if len(body.Init) > 0 && string(body.Init) != "null" {
			init, err := decodeStatement(body.Init)
			if err != nil {
				return nil, err
			}
			n.Init = init
		}
		cond, err := decodeOptionalExpression(body.Condition)
		if err != nil {
			return nil, err
		}
		n.Condition = cond
		if len(body.Post) > 0 && string(body.Post) != "null" {
			post, err := decodeStatement(body.Post)
			if err != nil {
				return nil, err
			}
			n.Post = post
		}
		block, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		n.Body = block
		stmt = n
	case "Return":
		var body struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Return: %w", err)
		}
		value, err := decodeOptionalExpression(body.Value)
		if err != nil {
			return nil, err
		}
		stmt = &Return{Value: value}
	case "Multi":
		var body struct {
			Name   string            `json:"name"`
			Params []json.RawMessage `json:"params"`
			Return *TypeRef          `json:"return"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Multi: %w", err)
		}
		params, err := decodeParams(body.Params)
		if err != nil {
			return nil, err
		}
		stmt = &Multi{Name: body.Name, Params: params, Return: body.Return}
	case "Class":
		var body struct {
			Name string          `json:"name"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Class: %w", err)
		}
		block, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		stmt = &Class{Name: body.Name, Body: block}
	case "Init":
		var body struct {
			Params []json.RawMessage `json:"params"`
			Body   json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Init: %w", err)
		}
		params, err := decodeParams(body.Params)
		if err != nil {
			return nil, err
		}
		block, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		stmt = &Init{Params: params, Body: block}
	case "Import":
		var body struct {
			Path  string   `json:"path"`
			Using []string `json:"using"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Import: %w", err)
		}
		stmt = &Import{Path: body.Path, Using: body.Using}
	case "Export":
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Export: %w", err)
		}
		stmt = &Export{Name: body.Name}
	case "Function", "Binary", "Call":
		e, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		s, ok := e.(Statement)
		if !ok {
			return nil, fmt.Errorf("ast: %s is not valid in statement position", kind)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q", kind)
	}
	stmt.SetPos(pos)
	return stmt, nil
}

func decodeOptionalExpression(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpression(raw)
}

func decodeExpression(raw json.RawMessage) (Expression, error) {
	kind, pos, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	var e Expression
	switch kind {
	case "Identifier":
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Identifier: %w", err)
		}
		e = &Identifier{Name: body.Name}
	case "Literal":
		var body struct {
			TypeName string          `json:"typeName"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Literal: %w", err)
		}
		value, err := decodeLiteralValue(body.TypeName, body.Value)
		if err != nil {
			return nil, err
		}
		e = &Literal{Value: value, TypeName: body.TypeName}
	case "Binary":
		var body struct {
			Left     json.RawMessage `json:"left"`
			Operator string          `json:"operator"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Binary: %w", err)
		}
		left, err := decodeExpression(body.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(body.Right)
		if err != nil {
			return nil, err
		}
		e = &Binary{Left: left, Operator: body.Operator, Right: right}
	case "Property":
		var body struct {
			Receiver json.RawMessage `json:"receiver"`
			Name     string          `json:"name"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Property: %w", err)
		}
		recv, err := decodeExpression(body.Receiver)
		if err != nil {
			return nil, err
		}
		e = &Property{Receiver: recv, Name: body.Name}
	case "Call":
		var body struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Call: %w", err)
		}
		callee, err := decodeExpression(body.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(body.Args)
		if err != nil {
			return nil, err
		}
		e = &Call{Callee: callee, Args: args}
	case "New":
		var body struct {
			ClassName string            `json:"className"`
			Args      []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode New: %w", err)
		}
		args, err := decodeExpressions(body.Args)
		if err != nil {
			return nil, err
		}
		e = &New{ClassName: body.ClassName, Args: args}
	case "Function":
		var body struct {
			Name   string            `json:"name"`
			Params []json.RawMessage `json:"params"`
			Return *TypeRef          `json:"return"`
			When   json.RawMessage   `json:"when"`
			Body   json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode Function: %w", err)
		}
		params, err := decodeParams(body.Params)
		if err != nil {
			return nil, err
		}
		when, err := decodeOptionalExpression(body.When)
		if err != nil {
			return nil, err
		}
		block, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		e = &Function{Name: body.Name, Params: params, Return: body.Return, When: when, Body: block}
	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", kind)
	}
	e.SetPos(pos)
	return e, nil
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	exprs := make([]Expression, 0, len(raws))
	for _, raw := range raws {
		e, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeBlock(raw json.RawMessage) (*Block, error) {
	var body struct {
		Pos        Pos               `json:"pos"`
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("ast: decode block: %w", err)
	}
	stmts, err := decodeStatements(body.Statements)
	if err != nil {
		return nil, err
	}
	b := &Block{Statements: stmts}
	b.SetPos(body.Pos)
	return b, nil
}

func decodeParams(raws []json.RawMessage) ([]*Parameter, error) {
	params := make([]*Parameter, 0, len(raws))
	for _, raw := range raws {
		var body struct {
			Pos     Pos             `json:"pos"`
			Name    string          `json:"name"`
			Type    *TypeRef        `json:"type"`
			Default json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("ast: decode parameter: %w", err)
		}
		def, err := decodeOptionalExpression(body.Default)
		if err != nil {
			return nil, err
		}
		p := &Parameter{Name: body.Name, Type: body.Type, Default: def}
		p.SetPos(body.Pos)
		params = append(params, p)
	}
	return params, nil
}

func decodeLiteralValue(typeName string, raw json.RawMessage) (any, error) {
	switch typeName {
	case "String":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("ast: decode String literal: %w", err)
		}
		return s, nil
	case "Integer":
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, fmt.Errorf("ast: decode Integer literal: %w", err)
		}
		return i, nil
	case "Boolean":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("ast: decode Boolean literal: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("ast: unknown literal type %q", typeName)
	}
}
