package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/registry"
	"github.com/kbukum/iockit/scope"
)

// resolve looks name up in g, dispatching to the definition's scope.
func (c *Container) resolve(ctx context.Context, g *generation, name string) (any, error) {
	def, ok := g.defs.Get(name)
	if !ok {
		return nil, errors.UnresolvableName(name)
	}
	ctx, chain := registry.EnsureChain(ctx)
	factory := func(ctx context.Context) (any, error) {
		return c.create(ctx, g, def)
	}

	switch def.Scope {
	case scope.Singleton:
		return g.registry.Get(ctx, def.Name, factory)
	case scope.Prototype:
		if chain.Contains(def.Name) {
			return nil, errors.CircularDependency(chain.With(def.Name))
		}
		return prototype.Get(ctx, def.Name, factory)
	default:
		if chain.Contains(def.Name) {
			return nil, errors.CircularDependency(chain.With(def.Name))
		}
		s, ok := c.Scope(def.Scope)
		if !ok {
			return nil, errors.IllegalState(fmt.Sprintf("no scope registered for '%s'", def.Scope))
		}
		return s.Get(ctx, def.Name, factory)
	}
}

// create runs the full creation pipeline for one instance of def. Circular
// dependency errors pass through untouched; every other failure is wrapped
// in CREATION_FAILED with the chain that led here.
func (c *Container) create(ctx context.Context, g *generation, def definition.Definition) (any, error) {
	ctx, chain := registry.EnsureChain(ctx)
	chain = chain.Push(def.Name)
	ctx = registry.WithChain(ctx, chain)

	ctx, op := c.inst.StartCreate(ctx, def.Name, def.Scope)
	instance, err := c.doCreate(ctx, g, def)
	if err != nil && !errors.HasCode(err, errors.ErrCodeCircularDependency) {
		err = errors.CreationFailed(def.Name, chain.Names(), err)
	}
	op.End(err)

	if err != nil {
		return nil, err
	}
	c.log.Debug("Instance created", logger.BeanFields(def.Name, def.Scope))
	return instance, nil
}

func (c *Container) doCreate(ctx context.Context, g *generation, def definition.Definition) (any, error) {
	name := def.Name
	hooks := g.pipeline()

	for _, dep := range def.DependsOn {
		dep = g.defs.Canonical(dep)
		if g.registry.IsDependent(name, dep) {
			chain := registry.ChainFrom(ctx)
			return nil, errors.CircularDependency(chain.With(dep))
		}
		g.registry.RegisterDependent(dep, name)
		if _, err := c.resolve(ctx, g, dep); err != nil {
			return nil, err
		}
	}

	short, err := hooks.ApplyBeforeInstantiation(ctx, def.Type, name)
	if err != nil {
		return nil, err
	}
	if short != nil {
		return hooks.ApplyAfterInitialization(ctx, short, name)
	}

	raw, err := def.Factory(ctx, c)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("factory returned nil")
	}

	earlyExposed := def.Scope == scope.Singleton && c.cfg.AllowCircularReferences &&
		g.registry.IsCurrentlyInCreation(name)
	if earlyExposed {
		err := g.registry.RegisterEarlyReference(name, func(ctx context.Context) (any, error) {
			return g.pipeline().ApplyEarlyReference(ctx, raw, name)
		})
		if err != nil {
			return nil, err
		}
	}

	populate, err := hooks.ApplyAfterInstantiation(ctx, raw, name)
	if err != nil {
		return nil, err
	}
	if populate {
		if err := c.populate(ctx, g, def, raw); err != nil {
			return nil, err
		}
	}

	instance, err := c.initialize(ctx, g, def, raw)
	if err != nil {
		return nil, err
	}

	if earlyExposed {
		if early, ok := g.registry.EarlyReference(name); ok {
			switch {
			case sameInstance(instance, raw):
				instance = early
			case len(g.registry.DependentsOf(name)) > 0 && !c.cfg.AllowRawInjectionDespiteWrapping:
				return nil, errors.IllegalState(fmt.Sprintf(
					"'%s' was injected into %v in its raw form as part of a circular reference, but was eventually wrapped",
					name, g.registry.DependentsOf(name)))
			}
		}
	}

	if err := c.registerDestruction(ctx, g, def, instance); err != nil {
		return nil, err
	}
	if err := c.registerLifecycle(ctx, g, def, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// populate resolves references in the definition's properties and applies
// them to raw.
func (c *Container) populate(ctx context.Context, g *generation, def definition.Definition, raw any) error {
	props, err := g.pipeline().ApplyPostProcessProperties(ctx, def.Properties, raw, def.Name)
	if err != nil {
		return err
	}
	if len(props) == 0 {
		return nil
	}

	resolved := make(definition.Properties, 0, len(props))
	for _, pv := range props {
		if ref, ok := pv.Value.(definition.Reference); ok {
			v, err := c.resolve(ctx, g, ref.Name)
			if err != nil {
				return err
			}
			g.registry.RegisterDependent(g.defs.Canonical(ref.Name), def.Name)
			pv.Value = v
		}
		resolved = append(resolved, pv)
	}
	return applyProperties(raw, resolved)
}

// initialize runs the aware callbacks, the before-initialization hooks, the
// init methods and the after-initialization hooks.
func (c *Container) initialize(ctx context.Context, g *generation, def definition.Definition, raw any) (any, error) {
	if a, ok := raw.(component.NameAware); ok {
		a.SetManagedName(def.Name)
	}
	if a, ok := raw.(component.ResolverAware); ok {
		a.SetResolver(c)
	}

	hooks := g.pipeline()
	instance, err := hooks.ApplyBeforeInitialization(ctx, raw, def.Name)
	if err != nil {
		return nil, err
	}

	if in, ok := instance.(component.Initializer); ok {
		if err := in.Init(ctx); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	if def.InitMethod != nil {
		if err := def.InitMethod(ctx, instance); err != nil {
			return nil, fmt.Errorf("init method: %w", err)
		}
	}

	return hooks.ApplyAfterInitialization(ctx, instance, def.Name)
}

// registerDestruction hands the instance's destroy callback to its scope.
// Prototypes are not tracked.
func (c *Container) registerDestruction(ctx context.Context, g *generation, def definition.Definition, instance any) error {
	if def.Scope == scope.Prototype {
		return nil
	}
	cb := destroyer(def, instance)
	if cb == nil {
		return nil
	}
	if def.Scope == scope.Singleton {
		g.registry.RegisterDisposable(def.Name, cb)
		return nil
	}
	s, ok := c.Scope(def.Scope)
	if !ok {
		return errors.IllegalState(fmt.Sprintf("no scope registered for '%s'", def.Scope))
	}
	return s.RegisterDestructionCallback(ctx, def.Name, cb)
}

// destroyer returns the callback that destroys instance: Destroy(ctx) for a
// component.Disposable, otherwise Close() for an io.Closer, followed by the
// definition's DestroyMethod. It returns nil when there is nothing to call.
func destroyer(def definition.Definition, instance any) scope.DestructionCallback {
	var steps []func(context.Context) error
	switch v := instance.(type) {
	case component.Disposable:
		steps = append(steps, v.Destroy)
	case io.Closer:
		steps = append(steps, func(context.Context) error { return v.Close() })
	}
	if def.DestroyMethod != nil {
		steps = append(steps, func(ctx context.Context) error { return def.DestroyMethod(ctx, instance) })
	}
	if len(steps) == 0 {
		return nil
	}
	return func(ctx context.Context) error {
		var errs []error
		for _, step := range steps {
			errs = append(errs, step(ctx))
		}
		return stderrors.Join(errs...)
	}
}

// registerLifecycle tracks singletons implementing component.Lifecycle.
// Instances created after the generation started are started right away.
func (c *Container) registerLifecycle(ctx context.Context, g *generation, def definition.Definition, instance any) error {
	lc, ok := instance.(component.Lifecycle)
	if !ok || def.Scope != scope.Singleton {
		return nil
	}
	if g.started.Load() {
		return g.lifecycles.RegisterAndStart(ctx, def.Name, lc)
	}
	return g.lifecycles.Register(def.Name, lc)
}
