package di

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/hook"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/order"
	"github.com/kbukum/iockit/scope"
)

// Refresh builds a new generation: hook definitions first, then every
// non-lazy singleton in registration order, then Start on every Lifecycle
// singleton. A live generation is torn down completely before the new one
// creates anything. On failure everything the attempt created is destroyed
// and the container is left unstarted.
func (c *Container) Refresh(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return errors.IllegalState("cannot refresh a closed container")
	}
	old := c.current
	c.current = nil
	c.state = StateUnstarted
	hooks := append([]any(nil), c.hooks...)
	c.mu.Unlock()

	if old != nil {
		c.log.Info("Tearing down previous generation", map[string]interface{}{logger.FieldGeneration: old.id})
		c.teardown(ctx, old)
	}

	g := newGeneration(c.table.Snapshot(), hooks, c.cfg.ShutdownTimeout)
	log := c.log.WithFields(map[string]interface{}{logger.FieldGeneration: g.id})

	ctx = withGeneration(ctx, g)
	ctx, op := c.inst.StartRefresh(ctx, g.id)
	c.inst.Metrics().GenerationStarted(ctx)
	err := c.build(ctx, g, hooks)
	op.End(err)
	if err != nil {
		log.Error("Refresh failed, destroying partial generation", logger.MergeWithError(nil, err))
		c.teardown(context.WithoutCancel(ctx), g)
		return err
	}

	c.mu.Lock()
	c.current = g
	c.state = StateActive
	c.mu.Unlock()

	log.Info("Container refreshed", map[string]interface{}{
		logger.FieldCount:    g.registry.Len(),
		logger.FieldDuration: time.Since(g.startedAt).Milliseconds(),
	})
	return nil
}

func (c *Container) build(ctx context.Context, g *generation, hooks []any) error {
	names := g.defs.Names()

	for _, name := range names {
		def, _ := g.defs.Get(name)
		if def.Scope == scope.Singleton {
			continue
		}
		if _, ok := c.Scope(def.Scope); !ok {
			return errors.InvalidDefinition(name, fmt.Sprintf("no scope registered for '%s'", def.Scope))
		}
	}

	// Hook definitions are built with the registered hooks only, then join
	// the pipeline for everything built after them.
	var built int
	for _, name := range names {
		def, _ := g.defs.Get(name)
		if !def.Hook {
			continue
		}
		h, err := c.resolve(ctx, g, name)
		if err != nil {
			return err
		}
		if _, ordered := h.(order.Ordered); !ordered && def.Order != 0 {
			h = order.Value{Target: h, Value: def.Order}
		}
		hooks = append(hooks, h)
		built++
	}
	if built > 0 {
		g.hooks.Store(hook.NewPipeline(hooks...))
		c.log.Debug("Hook definitions built", map[string]interface{}{logger.FieldCount: built})
	}

	for _, name := range names {
		def, _ := g.defs.Get(name)
		if def.Hook || def.Lazy || !def.IsSingleton() {
			continue
		}
		if _, err := c.resolve(ctx, g, name); err != nil {
			return err
		}
	}

	if err := g.lifecycles.StartAll(ctx); err != nil {
		return err
	}
	g.started.Store(true)
	return nil
}

// Close stops lifecycle instances, destroys the live generation with its
// scoped instances and moves the container to the closed state. Destruction
// failures are logged, not returned. Closing twice is a no-op.
func (c *Container) Close(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	g := c.current
	c.current = nil
	c.state = StateClosed
	c.mu.Unlock()

	if g != nil {
		c.teardown(ctx, g)
	}
	close(c.done)
	c.log.Info("Container closed")
	return nil
}

// teardown stops lifecycles, destroys every scope the generation's instances
// may live in, then destroys singletons dependents first.
func (c *Container) teardown(ctx context.Context, g *generation) {
	if c.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ShutdownTimeout)
		defer cancel()
	}
	ctx, op := c.inst.StartClose(ctx, g.id)
	log := c.log.WithFields(map[string]interface{}{logger.FieldGeneration: g.id})

	if err := g.lifecycles.StopAll(ctx); err != nil {
		log.Warn("Lifecycle stop failed", logger.MergeWithError(nil, err))
	}

	c.mu.RLock()
	scopes := make(map[string]scope.Scope, len(c.scopes))
	for name, s := range c.scopes {
		scopes[name] = s
	}
	c.mu.RUnlock()
	for name, s := range scopes {
		d, ok := s.(component.Disposable)
		if !ok {
			continue
		}
		if err := d.Destroy(ctx); err != nil {
			log.Warn("Scope destruction failed", logger.MergeWithError(map[string]interface{}{logger.FieldScope: name}, err))
		}
	}

	count := g.registry.Len()
	g.registry.DestroySingletons(ctx)
	c.inst.Metrics().RecordDestroyed(ctx, scope.Singleton, count)
	c.inst.Metrics().GenerationEnded(ctx)
	op.End(nil)

	log.Info("Generation destroyed", map[string]interface{}{logger.FieldCount: count})
}

// RegisterShutdownHook closes the container on SIGINT or SIGTERM. Only the
// first call installs a handler.
func (c *Container) RegisterShutdownHook() {
	c.shutdownOnce.Do(func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			defer signal.Stop(sig)
			select {
			case s := <-sig:
				c.log.Info("Shutdown signal received", map[string]interface{}{"signal": s.String()})
				if err := c.Close(context.Background()); err != nil {
					c.log.Error("Close failed", logger.MergeWithError(nil, err))
				}
			case <-c.done:
			}
		}()
		c.log.Debug("Shutdown hook registered")
	})
}
