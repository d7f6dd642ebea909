package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
)

// DestroySingletons destroys every singleton in reverse registration order,
// dependents first, and marks the registry unusable. Callback failures are
// logged and do not stop the teardown. Later calls are no-ops.
func (r *Registry) DestroySingletons(ctx context.Context) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	names := slices.Clone(r.disposableOrder)
	r.mu.Unlock()

	r.log.Debug("Destroying singletons", map[string]interface{}{logger.FieldCount: len(names)})
	for i := len(names) - 1; i >= 0; i-- {
		r.DestroySingleton(ctx, names[i])
	}

	r.mu.Lock()
	clear(r.singletons)
	clear(r.early)
	clear(r.dependents)
	clear(r.dependencies)
	clear(r.disposables)
	r.order = nil
	r.disposableOrder = nil
	r.mu.Unlock()
}

// DestroySingleton removes name and runs its destroy callback after
// destroying everything that depends on it.
func (r *Registry) DestroySingleton(ctx context.Context, name string) {
	r.mu.Lock()
	delete(r.singletons, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	cb := r.takeDisposableLocked(name)
	dependents := r.dependents[name]
	delete(r.dependents, name)
	r.mu.Unlock()

	for i := len(dependents) - 1; i >= 0; i-- {
		r.DestroySingleton(ctx, dependents[i])
	}

	if cb != nil {
		r.invoke(ctx, name, cb)
	}

	r.mu.Lock()
	for dep, list := range r.dependents {
		r.dependents[dep] = slices.DeleteFunc(list, func(n string) bool { return n == name })
	}
	delete(r.dependencies, name)
	r.mu.Unlock()
}

// IsDestroyed reports whether DestroySingletons has run.
func (r *Registry) IsDestroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

func (r *Registry) invoke(ctx context.Context, name string, cb scope.DestructionCallback) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return cb(ctx)
	}()
	if err != nil {
		r.log.Warn("Destroy callback failed", logger.MergeWithError(logger.BeanFields(name, scope.Singleton), err))
		return
	}
	r.log.Debug("Singleton destroyed", logger.BeanFields(name, scope.Singleton))
}
