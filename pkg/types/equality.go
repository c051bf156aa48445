package types

// Underlying strips Instance boxes and resolved Unknowns down to the
// concrete type a value denotes. An unresolved Unknown is returned as-is so
// callers can surface it.
func Underlying(v Value) Type {
	switch t := v.(type) {
	case *Instance:
		return Underlying(t.Of)
	case *Unknown:
		if t.Resolved != nil {
			return Underlying(t.Resolved)
		}
		return t
	case Type:
		return t
	default:
		panic("types: value is neither Instance nor Type")
	}
}

// Equals reports nominal equality between two types. Any absorbs everything;
// comparing an unresolved Unknown is a defect in the analyzer and panics.
func Equals(a, b Type) bool {
	a, b = deref(a), deref(b)
	if _, ok := a.(*Any); ok {
		return true
	}
	if _, ok := b.(*Any); ok {
		return true
	}
	switch at := a.(type) {
	case *Void:
		_, ok := b.(*Void)
		return ok
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Object:
		bt, ok := b.(*Object)
		if !ok {
			return false
		}
		if at == bt {
			return true
		}
		return at.ObjectName == bt.ObjectName && supertypeName(at) == supertypeName(bt)
	case *Function:
		bt, ok := b.(*Function)
		if !ok {
			return false
		}
		return functionsEqual(at, bt)
	case *Multi:
		bt, ok := b.(*Multi)
		return ok && at == bt
	case *Module:
		bt, ok := b.(*Module)
		return ok && at == bt
	default:
		panic("types: Equals on unhandled type variant " + a.Name())
	}
}

// InstancesEqual delegates to the boxed types.
func InstancesEqual(a, b *Instance) bool {
	return Equals(a.Of, b.Of)
}

func deref(t Type) Type {
	u, ok := t.(*Unknown)
	if !ok {
		return t
	}
	if u.Resolved == nil {
		panic("types: Equals on unresolved Unknown")
	}
	return deref(u.Resolved)
}

func supertypeName(o *Object) string {
	if o.Supertype == nil {
		return ""
	}
	return o.Supertype.ObjectName
}

func functionsEqual(a, b *Function) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Equals(a.Params[i], b.Params[i]) {
			return false
		}
	}
	// A nil return on either side is an automatic mismatch unless both are
	// still unresolved.
	if a.Return == nil || b.Return == nil {
		return a.Return == nil && b.Return == nil
	}
	return Equals(a.Return, b.Return)
}

// Describe renders a type for diagnostics.
func Describe(v Value) string {
	if v == nil {
		return "<none>"
	}
	return v.Describe()
}
