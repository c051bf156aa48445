// Package scope implements the lexically nested binding tables used by the
// analyzer. Scopes form a parent-linked tree rooted at one root scope per
// analyzer; a child borrows its parent and never outlives it.
package scope

import (
	"fmt"

	"lark/compiler-go/pkg/types"
)

// Flags carries per-binding attributes.
type Flags uint8

const (
	// Constant marks a let-bound name: readable anywhere reachable, but any
	// path assignment through it must be rejected.
	Constant Flags = 1 << iota
)

type binding struct {
	value types.Value
	flags Flags
}

// Scope is one binding table in the tree. A closing scope marks a function
// body boundary: the point where return collection and `this` injection
// happen. Name resolution walks through it unchanged.
type Scope struct {
	parent  *Scope
	closing bool
	names   map[string]binding
}

// NewRoot creates the root of a scope tree.
func NewRoot() *Scope {
	return &Scope{names: make(map[string]binding)}
}

// Child pushes a nested block scope.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, names: make(map[string]binding)}
}

// ChildClosing pushes a function-body boundary scope.
func (s *Scope) ChildClosing() *Scope {
	c := s.Child()
	c.closing = true
	return c
}

// Parent returns the enclosing scope, nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// IsClosing reports whether this scope is a function-body boundary.
func (s *Scope) IsClosing() bool { return s.closing }

// Declare binds name in this exact scope. Shadowing an outer binding is
// allowed; redeclaring within the same scope is not.
func (s *Scope) Declare(name string, value types.Value, flags Flags) error {
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("%q is already declared in this scope", name)
	}
	s.names[name] = binding{value: value, flags: flags}
	return nil
}

// Lookup walks from this scope to the root.
func (s *Scope) Lookup(name string) (types.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// FindOwningScope returns the scope that owns name, or nil. Path assignment
// uses it to validate mutability before the right-hand side is resolved.
func (s *Scope) FindOwningScope(name string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.names[name]; ok {
			return cur
		}
	}
	return nil
}

// FlagsOf reports the flags of a binding owned by this exact scope.
func (s *Scope) FlagsOf(name string) (Flags, bool) {
	b, ok := s.names[name]
	return b.flags, ok
}
