package definition

import "slices"

// Reference marks a property value that names another managed instance.
// The container resolves it while populating the instance.
type Reference struct {
	Name string
}

// Ref creates a reference to the managed instance called name.
func Ref(name string) Reference {
	return Reference{Name: name}
}

func (r Reference) String() string { return "ref:" + r.Name }

// PropertyValue is one named value to inject into an instance.
type PropertyValue struct {
	Name  string
	Value any
}

// Properties is an ordered set of property values.
type Properties []PropertyValue

// Get returns the value for name.
func (p Properties) Get(name string) (any, bool) {
	for _, pv := range p {
		if pv.Name == name {
			return pv.Value, true
		}
	}
	return nil, false
}

// With returns a copy of p with name set to value, replacing an existing entry.
func (p Properties) With(name string, value any) Properties {
	out := p.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, PropertyValue{Name: name, Value: value})
}

// Without returns a copy of p without name.
func (p Properties) Without(name string) Properties {
	return slices.DeleteFunc(p.Clone(), func(pv PropertyValue) bool {
		return pv.Name == name
	})
}

// Names returns the property names in order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, pv := range p {
		names[i] = pv.Name
	}
	return names
}

// References returns the managed names referenced by p.
func (p Properties) References() []string {
	var refs []string
	for _, pv := range p {
		if ref, ok := pv.Value.(Reference); ok {
			refs = append(refs, ref.Name)
		}
	}
	return refs
}

// Clone returns a shallow copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}
