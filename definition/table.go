package definition

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/validation"
)

// Table holds definitions in registration order together with their aliases.
type Table struct {
	mu              sync.RWMutex
	defs            map[string]*Definition
	names           []string
	aliases         map[string]string
	allowOverriding bool
}

// NewTable creates an empty table. allowOverriding controls whether
// registering an existing name replaces the earlier definition.
func NewTable(allowOverriding bool) *Table {
	return &Table{
		defs:            make(map[string]*Definition),
		aliases:         make(map[string]string),
		allowOverriding: allowOverriding,
	}
}

// Register validates and adds def. An overriding registration keeps the
// original position in registration order.
func (t *Table) Register(def Definition) error {
	def = def.Clone()
	def.ApplyDefaults()
	if err := def.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if target, ok := t.aliases[def.Name]; ok {
		return errors.InvalidDefinition(def.Name, fmt.Sprintf("name is already an alias for '%s'", target))
	}
	if _, exists := t.defs[def.Name]; exists {
		if !t.allowOverriding {
			return errors.InvalidDefinition(def.Name, "a definition with this name is already registered")
		}
	} else {
		t.names = append(t.names, def.Name)
	}
	t.defs[def.Name] = &def

	for _, alias := range def.Aliases {
		if err := t.registerAliasLocked(alias, def.Name); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAlias makes alias resolve to name. Both must be valid managed names.
func (t *Table) RegisterAlias(alias, name string) error {
	err := validation.New().
		ManagedName("alias", alias).
		ManagedName("name", name).
		Validate()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registerAliasLocked(alias, name)
}

func (t *Table) registerAliasLocked(alias, name string) error {
	if alias == "" || name == "" {
		return errors.InvalidDefinition(alias, "alias and name must not be empty")
	}
	if alias == name {
		delete(t.aliases, alias)
		return nil
	}
	if _, ok := t.defs[alias]; ok {
		return errors.InvalidDefinition(alias, "alias collides with a definition name")
	}
	if existing, ok := t.aliases[alias]; ok {
		if existing == name {
			return nil
		}
		if !t.allowOverriding {
			return errors.InvalidDefinition(alias, fmt.Sprintf("alias already points to '%s'", existing))
		}
	}
	if t.canonicalLocked(name) == alias {
		return errors.InvalidDefinition(alias, fmt.Sprintf("alias would create a cycle through '%s'", name))
	}
	t.aliases[alias] = name
	return nil
}

// Canonical follows aliases to the definition name.
func (t *Table) Canonical(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.canonicalLocked(name)
}

func (t *Table) canonicalLocked(name string) string {
	for {
		target, ok := t.aliases[name]
		if !ok {
			return name
		}
		name = target
	}
}

// Get returns the definition for name or one of its aliases.
func (t *Table) Get(name string) (Definition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	def, ok := t.defs[t.canonicalLocked(name)]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// Contains reports whether name or an alias of it is registered.
func (t *Table) Contains(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Names returns definition names in registration order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.names)
}

// AliasesOf returns every alias that resolves to name.
func (t *Table) AliasesOf(name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for alias := range t.aliases {
		if alias != name && t.canonicalLocked(alias) == name {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Snapshot returns an independent copy of the table.
func (t *Table) Snapshot() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cp := &Table{
		defs:            make(map[string]*Definition, len(t.defs)),
		names:           slices.Clone(t.names),
		aliases:         make(map[string]string, len(t.aliases)),
		allowOverriding: t.allowOverriding,
	}
	for name, def := range t.defs {
		d := def.Clone()
		cp.defs[name] = &d
	}
	for alias, name := range t.aliases {
		cp.aliases[alias] = name
	}
	return cp
}
