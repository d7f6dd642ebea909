package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
)

// EarlyFactory produces the early reference for a name on first demand.
type EarlyFactory func(ctx context.Context) (any, error)

type earlyRef struct {
	once     sync.Once
	fn       EarlyFactory
	value    any
	err      error
	resolved atomic.Bool
}

func (e *earlyRef) get(ctx context.Context) (any, error) {
	e.once.Do(func() {
		defer func() {
			if p := recover(); p != nil {
				e.err = fmt.Errorf("panic producing early reference: %v", p)
			}
			e.resolved.Store(true)
		}()
		e.value, e.err = e.fn(ctx)
	})
	return e.value, e.err
}

type creation struct {
	owner uint64
	done  chan struct{}
}

// Registry is the process-wide scope of one container generation.
type Registry struct {
	mu sync.Mutex

	singletons map[string]any
	order      []string
	early      map[string]*earlyRef
	inFlight   map[string]*creation
	// waiting maps a resolution owner to the name it is blocked on.
	waiting map[uint64]string

	// dependents[x] lists names that depend on x.
	dependents   map[string][]string
	dependencies map[string][]string

	disposables     map[string]scope.DestructionCallback
	disposableOrder []string

	destroyed bool
	log       *logger.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		singletons:   make(map[string]any),
		early:        make(map[string]*earlyRef),
		inFlight:     make(map[string]*creation),
		waiting:      make(map[uint64]string),
		dependents:   make(map[string][]string),
		dependencies: make(map[string][]string),
		disposables:  make(map[string]scope.DestructionCallback),
		log:          logger.WithComponent("registry"),
	}
}

var _ scope.Scope = (*Registry)(nil)

// Get returns the singleton for name, running factory if no caller has
// created it yet. Callers from other resolutions block until the creating
// resolution finishes. A lookup that would close a cycle receives the early
// reference registered for name, or fails with CIRCULAR_DEPENDENCY.
func (r *Registry) Get(ctx context.Context, name string, factory scope.ObjectFactory) (any, error) {
	ctx, chain := EnsureChain(ctx)

	for {
		r.mu.Lock()
		if r.destroyed {
			r.mu.Unlock()
			return nil, errors.ScopeNotActive(scope.Singleton, name)
		}
		if v, ok := r.singletons[name]; ok {
			r.mu.Unlock()
			return v, nil
		}

		c, busy := r.inFlight[name]
		if !busy {
			r.mu.Unlock()
			cr, err := r.BeginCreation(ctx, name)
			if errors.HasCode(err, errors.ErrCodeIllegalState) {
				// Another resolution got there first.
				continue
			}
			if err != nil {
				return nil, err
			}
			return r.run(ctx, cr, factory)
		}

		if c.owner == chain.owner || r.closesCycleLocked(chain.owner, c.owner) {
			ref := r.early[name]
			r.mu.Unlock()
			if ref == nil {
				return nil, errors.CircularDependency(chain.With(name))
			}
			return ref.get(ctx)
		}

		r.waiting[chain.owner] = name
		r.mu.Unlock()

		select {
		case <-c.done:
		case <-ctx.Done():
		}

		r.mu.Lock()
		delete(r.waiting, chain.owner)
		r.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// The creator finished; re-check the cache, or retry if it failed.
	}
}

// closesCycleLocked reports whether self waiting on holder would complete a
// wait-for cycle back to self.
func (r *Registry) closesCycleLocked(self, holder uint64) bool {
	seen := make(map[uint64]bool)
	for o := holder; !seen[o]; {
		if o == self {
			return true
		}
		seen[o] = true
		name, ok := r.waiting[o]
		if !ok {
			return false
		}
		c, ok := r.inFlight[name]
		if !ok {
			return false
		}
		o = c.owner
	}
	return false
}

func (r *Registry) run(ctx context.Context, cr *Creation, factory scope.ObjectFactory) (instance any, err error) {
	defer cr.Release()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic creating '%s': %v", cr.name, p)
		}
		if err != nil {
			cr.Fail(err)
			return
		}
		cr.Complete(instance)
	}()
	return factory(ctx)
}

// Creation marks one name as being created. Exactly one of Complete or Fail
// takes effect; Release fails a creation that was never finished and is
// meant to be deferred.
type Creation struct {
	r        *Registry
	name     string
	c        *creation
	finished atomic.Bool
}

// BeginCreation marks name as in creation for the resolution carried by ctx.
func (r *Registry) BeginCreation(ctx context.Context, name string) (*Creation, error) {
	_, chain := EnsureChain(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return nil, errors.ScopeNotActive(scope.Singleton, name)
	}
	if _, ok := r.singletons[name]; ok {
		return nil, errors.IllegalState(fmt.Sprintf("singleton '%s' already exists", name))
	}
	if _, ok := r.inFlight[name]; ok {
		return nil, errors.IllegalState(fmt.Sprintf("singleton '%s' is already in creation", name))
	}
	return r.beginLocked(chain.owner, name), nil
}

func (r *Registry) beginLocked(owner uint64, name string) *Creation {
	c := &creation{owner: owner, done: make(chan struct{})}
	r.inFlight[name] = c
	return &Creation{r: r, name: name, c: c}
}

// Name returns the name being created.
func (cr *Creation) Name() string { return cr.name }

// Complete publishes instance as the singleton for the name.
func (cr *Creation) Complete(instance any) {
	if !cr.finished.CompareAndSwap(false, true) {
		return
	}
	r := cr.r

	var orphan scope.DestructionCallback
	r.mu.Lock()
	if r.inFlight[cr.name] == cr.c {
		delete(r.inFlight, cr.name)
	}
	delete(r.early, cr.name)
	if r.destroyed {
		// Finished after teardown started; nothing will destroy it later.
		orphan = r.takeDisposableLocked(cr.name)
	} else {
		r.singletons[cr.name] = instance
		r.order = append(r.order, cr.name)
	}
	r.mu.Unlock()
	close(cr.c.done)

	if orphan != nil {
		r.invoke(context.Background(), cr.name, orphan)
	}
}

// Fail purges every trace of the name and releases waiters. Singletons that
// were wired with the name's early reference hold a half-built instance, so
// they are destroyed as well.
func (cr *Creation) Fail(err error) {
	if !cr.finished.CompareAndSwap(false, true) {
		return
	}
	r := cr.r

	r.mu.Lock()
	if r.inFlight[cr.name] == cr.c {
		delete(r.inFlight, cr.name)
	}
	var stale []string
	if e := r.early[cr.name]; e != nil && e.resolved.Load() {
		stale = r.dependents[cr.name]
	}
	delete(r.dependents, cr.name)
	delete(r.early, cr.name)
	delete(r.singletons, cr.name)
	r.takeDisposableLocked(cr.name)
	for _, dep := range r.dependencies[cr.name] {
		r.dependents[dep] = slices.DeleteFunc(r.dependents[dep], func(n string) bool { return n == cr.name })
	}
	delete(r.dependencies, cr.name)
	r.mu.Unlock()

	for i := len(stale) - 1; i >= 0; i-- {
		r.DestroySingleton(context.Background(), stale[i])
	}
	close(cr.c.done)

	fields := logger.BeanFields(cr.name, scope.Singleton)
	if len(stale) > 0 {
		fields["stale"] = stale
	}
	r.log.Debug("Creation failed, entry purged", logger.MergeWithError(fields, err))
}

// Release fails the creation if neither Complete nor Fail was called.
func (cr *Creation) Release() {
	if cr.finished.Load() {
		return
	}
	cr.Fail(errors.IllegalState(fmt.Sprintf("creation of '%s' was abandoned", cr.name)))
}

// IsCurrentlyInCreation reports whether name is being created.
func (r *Registry) IsCurrentlyInCreation(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[name]
	return ok
}

// RegisterEarlyReference makes fn the producer of name's early reference.
// It is only valid while name is in creation; the first registration wins.
func (r *Registry) RegisterEarlyReference(name string, fn EarlyFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inFlight[name]; !ok {
		return errors.IllegalState(fmt.Sprintf("early reference for '%s' registered outside its creation", name))
	}
	if _, ok := r.early[name]; !ok {
		r.early[name] = &earlyRef{fn: fn}
	}
	return nil
}

// EarlyReference returns name's early reference if some resolution has
// already obtained it.
func (r *Registry) EarlyReference(name string) (any, bool) {
	r.mu.Lock()
	e := r.early[name]
	r.mu.Unlock()

	if e == nil || !e.resolved.Load() || e.err != nil {
		return nil, false
	}
	return e.value, true
}

// Singleton returns a fully initialized singleton without creating it.
func (r *Registry) Singleton(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.singletons[name]
	return v, ok
}

// Names returns singleton names in completion order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Len returns the number of singletons.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.singletons)
}

// Remove evicts name and discards its destruction callback.
func (r *Registry) Remove(_ context.Context, name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.singletons[name]
	if !ok {
		return nil, nil
	}
	delete(r.singletons, name)
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.takeDisposableLocked(name)
	return v, nil
}

// RegisterDestructionCallback registers cb to run when the registry is
// destroyed.
func (r *Registry) RegisterDestructionCallback(_ context.Context, name string, cb scope.DestructionCallback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return errors.ScopeNotActive(scope.Singleton, name)
	}
	r.registerDisposableLocked(name, cb)
	return nil
}

// RegisterDisposable registers the destroy callback for a singleton.
func (r *Registry) RegisterDisposable(name string, cb scope.DestructionCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerDisposableLocked(name, cb)
}

func (r *Registry) registerDisposableLocked(name string, cb scope.DestructionCallback) {
	if _, ok := r.disposables[name]; !ok {
		r.disposableOrder = append(r.disposableOrder, name)
	}
	r.disposables[name] = cb
}

func (r *Registry) takeDisposableLocked(name string) scope.DestructionCallback {
	cb, ok := r.disposables[name]
	if !ok {
		return nil
	}
	delete(r.disposables, name)
	if i := slices.Index(r.disposableOrder, name); i >= 0 {
		r.disposableOrder = slices.Delete(r.disposableOrder, i, i+1)
	}
	return cb
}

// ResolveContextualObject has nothing to expose for the process-wide scope.
func (r *Registry) ResolveContextualObject(_ context.Context, _ string) (any, bool) {
	return nil, false
}

// ConversationID returns "".
func (r *Registry) ConversationID(_ context.Context) string { return "" }
