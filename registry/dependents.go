package registry

import "slices"

// RegisterDependent records that dependent needs name. name is destroyed
// only after dependent.
func (r *Registry) RegisterDependent(name, dependent string) {
	if name == dependent {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.dependents[name], dependent) {
		r.dependents[name] = append(r.dependents[name], dependent)
	}
	if !slices.Contains(r.dependencies[dependent], name) {
		r.dependencies[dependent] = append(r.dependencies[dependent], name)
	}
}

// DependentsOf returns the names that depend on name.
func (r *Registry) DependentsOf(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.dependents[name])
}

// DependenciesOf returns the names name depends on.
func (r *Registry) DependenciesOf(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.dependencies[name])
}

// IsDependent reports whether dependent depends on name, directly or
// transitively.
func (r *Registry) IsDependent(name, dependent string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDependentLocked(name, dependent, make(map[string]bool))
}

func (r *Registry) isDependentLocked(name, dependent string, seen map[string]bool) bool {
	if seen[name] {
		return false
	}
	seen[name] = true
	for _, d := range r.dependents[name] {
		if d == dependent || r.isDependentLocked(d, dependent, seen) {
			return true
		}
	}
	return false
}
