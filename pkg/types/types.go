// Package types defines the Lark type model: the type values produced by
// semantic analysis, the Instance box for runtime values, and nominal
// equality over both. It has no dependencies on the AST or the analyzer.
package types

// Value is anything a scope can bind or an expression can produce: an
// *Instance for "a value of this type exists at runtime", or a bare Type for
// names used in type position (class names, imported modules).
type Value interface {
	Describe() string
}

// Type is implemented by every type variant understood by the analyzer.
type Type interface {
	Value
	Name() string
}

// PrimitiveKind names an intrinsic nominal primitive.
type PrimitiveKind string

const (
	PrimitiveString  PrimitiveKind = "String"
	PrimitiveInteger PrimitiveKind = "Integer"
	PrimitiveBoolean PrimitiveKind = "Boolean"
)

// Any matches every type; it sits at the top of the intrinsic hierarchy.
type Any struct{}

func (Any) Name() string     { return "Any" }
func (Any) Describe() string { return "Any" }

// Void is the unit type of statements and empty returns.
type Void struct{}

func (Void) Name() string     { return "Void" }
func (Void) Describe() string { return "Void" }

// Unknown is the placeholder bound while a declaration's right-hand side is
// still being inferred. Resolved transitions exactly once from nil to a
// concrete type.
type Unknown struct {
	Resolved Type
}

func (u *Unknown) Name() string { return "Unknown" }

func (u *Unknown) Describe() string {
	if u.Resolved != nil {
		return u.Resolved.Describe()
	}
	return "Unknown"
}

// Resolve fills in the deferred type. Resolving twice is a defect in the
// analyzer, not in the program under analysis.
func (u *Unknown) Resolve(t Type) {
	if u.Resolved != nil {
		panic("types: Unknown resolved twice")
	}
	u.Resolved = t
}

// Primitive is a nominal intrinsic type (String, Integer, Boolean).
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) Name() string     { return string(p.Kind) }
func (p *Primitive) Describe() string { return string(p.Kind) }

// Intrinsic singletons. Bootstrap installs these into the root scope; the
// analyzer compares against them by pointer.
var (
	AnyType     = &Any{}
	VoidType    = &Void{}
	StringType  = &Primitive{Kind: PrimitiveString}
	IntegerType = &Primitive{Kind: PrimitiveInteger}
	BooleanType = &Primitive{Kind: PrimitiveBoolean}
)

// Property is one named slot of an Object or Module.
type Property struct {
	Type     Type
	ReadOnly bool
}

// Object is a named class type. Supertype is nil only for the intrinsic
// root object.
type Object struct {
	ObjectName   string
	Supertype    *Object
	Properties   map[string]Property
	Initializers []*Function
}

func NewObject(name string, supertype *Object) *Object {
	return &Object{
		ObjectName: name,
		Supertype:  supertype,
		Properties: make(map[string]Property),
	}
}

func (o *Object) Name() string     { return o.ObjectName }
func (o *Object) Describe() string { return o.ObjectName }

// PropertyNamed walks the supertype chain for a property.
func (o *Object) PropertyNamed(name string) (Property, bool) {
	for obj := o; obj != nil; obj = obj.Supertype {
		if prop, ok := obj.Properties[name]; ok {
			return prop, true
		}
	}
	return Property{}, false
}

// Function is a callable signature. Return stays nil until inferred.
// ShimFor points at the module-level function an intrinsic instance method
// redirects to, letting one implementation serve both calling conventions.
type Function struct {
	Params           []Type
	Return           Type
	IsInstanceMethod bool
	ShimFor          *Function
}

func (f *Function) Name() string { return "Function" }

func (f *Function) Describe() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Describe()
	}
	s += ")"
	if f.Return != nil {
		s += " -> " + f.Return.Describe()
	}
	return s
}

// MultiParam is a named parameter slot of a dispatcher.
type MultiParam struct {
	Name string
	Type Type
}

// Multi is a named multiple-dispatch overload set. Function statements that
// share its name register themselves as implementations.
type Multi struct {
	MultiName       string
	Params          []MultiParam
	Return          Type
	Implementations []*Function
}

func (m *Multi) Name() string { return m.MultiName }

func (m *Multi) Describe() string {
	s := "multi " + m.MultiName + "("
	for i, p := range m.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + ": " + p.Type.Describe()
	}
	return s + ") -> " + m.Return.Describe()
}

// Module is an imported namespace. Not instantiable; property access only.
type Module struct {
	ModuleName string
	Parent     *Module
	Properties map[string]Type
}

func NewModule(name string, parent *Module) *Module {
	return &Module{ModuleName: name, Parent: parent, Properties: make(map[string]Type)}
}

func (m *Module) Name() string     { return m.ModuleName }
func (m *Module) Describe() string { return "module " + m.ModuleName }

// Instance boxes a Type as "a runtime value of this type", distinguishing
// value positions from type positions.
type Instance struct {
	Of Type
}

func NewInstance(t Type) *Instance { return &Instance{Of: t} }

func (i *Instance) Describe() string { return i.Of.Describe() }
