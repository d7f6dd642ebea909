package component

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/iockit/logger"
)

// DefaultStopTimeout bounds a single Stop call when the registry has no
// explicit timeout.
const DefaultStopTimeout = 10 * time.Second

// componentEntry holds a lifecycle instance and its started state.
type componentEntry struct {
	name      string
	lifecycle Lifecycle
	phase     int
	started   bool
}

// Registry manages Lifecycle instances with deterministic ordering.
// Instances start by ascending phase, then registration order, and stop in
// exactly the reverse of the order they started.
type Registry struct {
	entries     []*componentEntry
	lookup      map[string]*componentEntry
	stopTimeout time.Duration
	mu          sync.RWMutex
	log         *logger.Logger
}

// NewRegistry creates a new lifecycle registry. A zero stopTimeout uses
// DefaultStopTimeout.
func NewRegistry(stopTimeout time.Duration) *Registry {
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Registry{
		entries:     make([]*componentEntry, 0),
		lookup:      make(map[string]*componentEntry),
		stopTimeout: stopTimeout,
		log:         logger.WithComponent("lifecycle"),
	}
}

// Register adds a lifecycle instance under its managed name.
func (r *Registry) Register(name string, l Lifecycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{name: name, lifecycle: l}
	if p, ok := l.(Phased); ok {
		entry.phase = p.Phase()
	}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("Component registered", map[string]interface{}{
		logger.FieldBean:  name,
		logger.FieldPhase: entry.phase,
	})
	return nil
}

// StartAll starts every registered instance. On the first failure it stops
// the instances it already started and returns the error.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slices.SortStableFunc(r.entries, func(a, b *componentEntry) int {
		return a.phase - b.phase
	})

	r.log.Info("Starting all components", map[string]interface{}{
		logger.FieldCount: len(r.entries),
	})

	for _, entry := range r.entries {
		if entry.started {
			continue
		}
		r.log.Debug("Starting component", map[string]interface{}{logger.FieldBean: entry.name})
		if err := entry.lifecycle.Start(ctx); err != nil {
			r.log.Error("Component start failed", map[string]interface{}{
				logger.FieldBean:  entry.name,
				logger.FieldError: err.Error(),
			})
			r.stopLocked(ctx)
			return fmt.Errorf("failed to start %s: %w", entry.name, err)
		}
		entry.started = true
	}

	r.log.Info("All components started successfully")
	return nil
}

// RegisterAndStart registers l and starts it right away, for instances
// created after StartAll ran. A failed Start leaves nothing registered.
func (r *Registry) RegisterAndStart(ctx context.Context, name string, l Lifecycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	if err := l.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	entry := &componentEntry{name: name, lifecycle: l, started: true}
	if p, ok := l.(Phased); ok {
		entry.phase = p.Phase()
	}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry
	r.log.Debug("Component started late", map[string]interface{}{logger.FieldBean: name})
	return nil
}

// StopAll stops every started instance in reverse start order. Each Stop is
// bounded by the registry's stop timeout.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked(ctx)
}

func (r *Registry) stopLocked(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		r.log.Debug("Stopping component", map[string]interface{}{logger.FieldBean: entry.name})
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := entry.lifecycle.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", entry.name, err))
			r.log.Error("Component stop failed", map[string]interface{}{
				logger.FieldBean:  entry.name,
				logger.FieldError: err.Error(),
			})
		} else {
			r.log.Debug("Component stopped", map[string]interface{}{logger.FieldBean: entry.name})
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll returns health for every registered instance that reports it.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		hc, ok := entry.lifecycle.(HealthChecker)
		if !ok {
			continue
		}
		h := hc.Health(ctx)
		if h.Name == "" {
			h.Name = entry.name
		}
		results = append(results, h)
	}
	return results
}

// Get returns a registered instance by name, or nil if not found.
func (r *Registry) Get(name string) Lifecycle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.lifecycle
	}
	return nil
}

// IsRunning reports whether name has been started and not stopped.
func (r *Registry) IsRunning(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.lookup[name]
	return ok && entry.started
}

// Names returns registered names, in start order once StartAll has run.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		names = append(names, entry.name)
	}
	return names
}
