package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
	"github.com/kbukum/iockit/registry"
	"github.com/kbukum/iockit/scope"
	"github.com/kbukum/iockit/validation"
)

// State is the lifecycle state of a Container.
type State int

const (
	// StateUnstarted has no live generation. A new container and one whose
	// refresh failed are unstarted.
	StateUnstarted State = iota
	// StateActive has a live generation serving resolutions.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Container owns the definitions, hooks and scopes of an application and
// the generation of instances built from them.
type Container struct {
	// lifeMu serializes Refresh and Close.
	lifeMu sync.Mutex

	mu      sync.RWMutex
	state   State
	current *generation
	hooks   []any
	scopes  map[string]scope.Scope

	table *definition.Table
	cfg   config.ContainerConfig
	log   *logger.Logger
	inst  *observability.Instrumentation

	shutdownOnce sync.Once
	done         chan struct{}
}

var _ definition.Resolver = (*Container)(nil)

// New creates an unstarted container. The request and session scopes are
// registered up front; the container itself is registered as
// Builtin.Container.
func New(opts ...Option) *Container {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("container")
	}
	if o.instrumentation == nil {
		o.instrumentation = observability.Noop()
	}

	c := &Container{
		scopes: map[string]scope.Scope{
			scope.Request: scope.NewRequestScope(),
			scope.Session: scope.NewSessionScope(scope.NewSessionManager()),
		},
		table: definition.NewTable(o.cfg.AllowDefinitionOverriding),
		cfg:   o.cfg,
		log:   o.log,
		inst:  o.instrumentation,
		done:  make(chan struct{}),
	}
	_ = c.table.Register(definition.Definition{
		Name:    Builtin.Container,
		Type:    reflect.TypeOf(c),
		Factory: definition.Instance(c),
	})
	return c
}

// Config returns the container policy.
func (c *Container) Config() config.ContainerConfig { return c.cfg }

// State returns the current lifecycle state.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsActive reports whether a generation is live.
func (c *Container) IsActive() bool {
	return c.State() == StateActive
}

// Done is closed once the container is closed.
func (c *Container) Done() <-chan struct{} { return c.done }

// Generation returns the id of the live generation, "" if none.
func (c *Container) Generation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.id
}

func (c *Container) checkOpen(what string) error {
	if c.State() == StateClosed {
		return errors.IllegalState(fmt.Sprintf("cannot %s on a closed container", what))
	}
	return nil
}

// Register adds a definition. Definitions take effect on the next Refresh.
func (c *Container) Register(def definition.Definition) error {
	if err := c.checkOpen("register '" + def.Name + "'"); err != nil {
		return err
	}
	if err := c.table.Register(def); err != nil {
		return err
	}
	c.log.Debug("Definition registered", logger.BeanFields(def.Name, c.scopeName(def)))
	return nil
}

func (c *Container) scopeName(def definition.Definition) string {
	if def.Scope == "" {
		return scope.Singleton
	}
	return def.Scope
}

// RegisterAlias makes alias resolve to name.
func (c *Container) RegisterAlias(alias, name string) error {
	if err := c.checkOpen("register alias '" + alias + "'"); err != nil {
		return err
	}
	return c.table.RegisterAlias(alias, name)
}

// RegisterHook adds a lifecycle hook. h implements any subset of the hook
// package's stage interfaces and may be wrapped in order.Value or
// order.Priority. Hooks take effect on the next Refresh.
func (c *Container) RegisterHook(h any) error {
	if err := c.checkOpen("register a hook"); err != nil {
		return err
	}
	if h == nil {
		return errors.IllegalState("hook must not be nil")
	}
	c.mu.Lock()
	c.hooks = append(c.hooks, h)
	c.mu.Unlock()
	return nil
}

// RegisterScope makes s the storage for definitions whose Scope is name.
// The singleton and prototype scopes cannot be replaced.
func (c *Container) RegisterScope(name string, s scope.Scope) error {
	if err := c.checkOpen("register scope '" + name + "'"); err != nil {
		return err
	}
	if name == scope.Singleton || name == scope.Prototype {
		return errors.IllegalState(fmt.Sprintf("cannot replace built-in scope '%s'", name))
	}
	err := validation.New().
		ManagedName("scope", name).
		Custom(s != nil, "implementation", "is required").
		Validate()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.scopes[name] = s
	c.mu.Unlock()
	c.log.Debug("Scope registered", map[string]interface{}{logger.FieldScope: name})
	return nil
}

// Scope returns the scope registered under name. The singleton scope is
// only available while a generation is live.
func (c *Container) Scope(name string) (scope.Scope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch name {
	case scope.Singleton:
		if c.current == nil {
			return nil, false
		}
		return c.current.registry, true
	case scope.Prototype:
		return prototype, true
	}
	s, ok := c.scopes[name]
	return s, ok
}

// ScopeNames returns the registered scope names, sorted.
func (c *Container) ScopeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := []string{scope.Singleton, scope.Prototype}
	for name := range c.scopes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SessionManager returns the manager behind the built-in session scope, nil
// if the session scope was replaced.
func (c *Container) SessionManager() *scope.SessionManager {
	s, _ := c.Scope(scope.Session)
	if ss, ok := s.(*scope.SessionScope); ok {
		return ss.Manager()
	}
	return nil
}

var prototype = scope.NewPrototype()

// Definition returns the definition registered for name or an alias of it.
func (c *Container) Definition(name string) (definition.Definition, bool) {
	return c.table.Get(name)
}

// RegistrationInfo describes a registered definition for introspection.
type RegistrationInfo struct {
	Name    string
	Scope   string
	Type    string
	Aliases []string
	Lazy    bool
	Primary bool
	Hook    bool
	// Dependencies lists the names the live singleton was wired with.
	Dependencies []string
	// Initialized reports whether the live generation holds a singleton for
	// the name.
	Initialized bool
}

// Registrations returns every definition in registration order.
func (c *Container) Registrations() []RegistrationInfo {
	c.mu.RLock()
	g := c.current
	c.mu.RUnlock()

	names := c.table.Names()
	out := make([]RegistrationInfo, 0, len(names))
	for _, name := range names {
		def, ok := c.table.Get(name)
		if !ok {
			continue
		}
		info := RegistrationInfo{
			Name:    name,
			Scope:   c.scopeName(def),
			Aliases: c.table.AliasesOf(name),
			Lazy:    def.Lazy,
			Primary: def.Primary,
			Hook:    def.Hook,
		}
		if def.Type != nil {
			info.Type = def.Type.String()
		}
		if g != nil {
			_, info.Initialized = g.registry.Singleton(name)
			info.Dependencies = g.registry.DependenciesOf(name)
		}
		out = append(out, info)
	}
	return out
}

// Instance returns the live singleton for name without creating it.
func (c *Container) Instance(name string) (any, bool) {
	c.mu.RLock()
	g := c.current
	c.mu.RUnlock()
	if g == nil {
		return nil, false
	}
	return g.registry.Singleton(g.defs.Canonical(name))
}

// Hooks returns the live generation's hooks in invocation order, including
// instances of hook definitions.
func (c *Container) Hooks() []any {
	c.mu.RLock()
	g := c.current
	c.mu.RUnlock()
	if g == nil {
		return nil
	}
	return g.pipeline().Hooks()
}

// Health returns the health of every live lifecycle instance that reports it.
func (c *Container) Health(ctx context.Context) []component.Health {
	c.mu.RLock()
	g := c.current
	c.mu.RUnlock()
	if g == nil {
		return nil
	}
	return g.lifecycles.HealthAll(ctx)
}

// Resolve returns the managed instance for name, creating it if its scope
// holds none. Resolutions made from inside a factory or hook must pass the
// context they were given, which carries the resolution chain.
func (c *Container) Resolve(ctx context.Context, name string) (any, error) {
	g := generationFrom(ctx)
	if g == nil {
		c.mu.RLock()
		g = c.current
		state := c.state
		c.mu.RUnlock()
		if g == nil {
			return nil, errors.ContainerNotActive(state.String())
		}
	}
	return c.resolveTop(ctx, g, name)
}

func (c *Container) resolveTop(ctx context.Context, g *generation, name string) (any, error) {
	nested := registry.ChainFrom(ctx) != nil
	v, err := c.resolve(ctx, g, name)
	if err != nil && !nested {
		c.inst.RecordResolveError(ctx, err)
		c.log.Debug("Resolution failed", logger.MergeWithError(logger.ChainFields(name, errors.Chain(err)), err))
	}
	return v, err
}

// NamesForType returns the names whose declared Type is assignable to t, in
// registration order.
func (c *Container) NamesForType(t reflect.Type) []string {
	var out []string
	for _, name := range c.table.Names() {
		def, ok := c.table.Get(name)
		if ok && def.Type != nil && def.Type.AssignableTo(t) {
			out = append(out, name)
		}
	}
	return out
}
