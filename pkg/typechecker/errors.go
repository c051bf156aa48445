package typechecker

import (
	"fmt"

	"lark/compiler-go/pkg/ast"
)

// Cause tags the failure class of a TypeError so callers and tests can
// branch without parsing messages.
type Cause string

const (
	UnknownIdentifier       Cause = "UnknownIdentifier"
	DuplicateBinding        Cause = "DuplicateBinding"
	ReassignToConstant      Cause = "ReassignToConstant"
	DeclarationTypeMismatch Cause = "DeclarationTypeMismatch"
	AssignmentTypeMismatch  Cause = "AssignmentTypeMismatch"
	ConditionTypeMismatch   Cause = "ConditionTypeMismatch"
	OperatorTypeMismatch    Cause = "OperatorTypeMismatch"
	ReturnTypeMismatch      Cause = "ReturnTypeMismatch"
	AmbiguousReturnType     Cause = "AmbiguousReturnType"
	MissingParameterType    Cause = "MissingParameterType"
	MissingPropertyType     Cause = "MissingPropertyType"
	ArgumentCountMismatch   Cause = "ArgumentCountMismatch"
	ArgumentTypeMismatch    Cause = "ArgumentTypeMismatch"
	NoMatchingInitializer   Cause = "NoMatchingInitializer"
	UnsupportedDefault      Cause = "UnsupportedDefault"
	PropertyNotFound        Cause = "PropertyNotFound"
	NotCallable             Cause = "NotCallable"
	NotAType                Cause = "NotAType"
	ExportOutsideTopLevel   Cause = "ExportOutsideTopLevel"
	InvalidStatement        Cause = "InvalidStatement"
	ImportFailed            Cause = "ImportFailed"
	AlreadyAnalyzed         Cause = "AlreadyAnalyzed"
)

// TypeError is the single fatal error kind of the analyzer. Node is the AST
// origin when one is known; callers use it to print file/line/column.
type TypeError struct {
	Cause   Cause
	Message string
	Node    ast.Node
}

func (e *TypeError) Error() string {
	if e.Node != nil {
		pos := e.Node.Pos()
		if pos.Line > 0 {
			return fmt.Sprintf("%s: %s (line %d, column %d)", e.Cause, e.Message, pos.Line, pos.Column)
		}
	}
	return fmt.Sprintf("%s: %s", e.Cause, e.Message)
}

func errf(cause Cause, node ast.Node, format string, args ...any) *TypeError {
	return &TypeError{Cause: cause, Message: fmt.Sprintf(format, args...), Node: node}
}

// CauseOf extracts the cause tag from an analysis error, or "" for foreign
// errors.
func CauseOf(err error) Cause {
	if te, ok := err.(*TypeError); ok {
		return te.Cause
	}
	return ""
}

// Diagnostic is the non-fatal advisory channel; analysis continues after
// one is recorded.
type Diagnostic struct {
	Message string
	Node    ast.Node
}
