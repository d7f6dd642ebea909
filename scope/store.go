package scope

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
)

type storeEntry struct {
	ready chan struct{}
	value any
	err   error
}

// Store is a concurrency-safe name → instance map with destruction callbacks.
// Scopes that own a storage context (a request, a session) keep one Store per
// context.
type Store struct {
	scope     string
	mu        sync.Mutex
	entries   map[string]*storeEntry
	order     []string
	callbacks map[string]DestructionCallback
	destroyed bool
	log       *logger.Logger
}

// NewStore creates an empty store for the named scope.
func NewStore(scopeName string) *Store {
	return &Store{
		scope:     scopeName,
		entries:   make(map[string]*storeEntry),
		callbacks: make(map[string]DestructionCallback),
		log:       logger.WithComponent("scope." + scopeName),
	}
}

// Get returns the instance for name, invoking factory at most once.
// Concurrent callers for the same name wait for the first caller's result.
func (s *Store) Get(ctx context.Context, name string, factory ObjectFactory) (any, error) {
	for {
		s.mu.Lock()
		if s.destroyed {
			s.mu.Unlock()
			return nil, errors.ScopeNotActive(s.scope, name)
		}
		if e, ok := s.entries[name]; ok {
			s.mu.Unlock()
			<-e.ready
			if e.err == nil {
				return e.value, nil
			}
			// The creator failed and removed its entry; try again.
			continue
		}

		e := &storeEntry{ready: make(chan struct{})}
		s.entries[name] = e
		s.mu.Unlock()

		return s.create(ctx, name, e, factory)
	}
}

func (s *Store) create(ctx context.Context, name string, e *storeEntry, factory ObjectFactory) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic creating '%s': %v", name, r)
		}
		s.mu.Lock()
		if err != nil {
			e.err = err
			if s.entries[name] == e {
				delete(s.entries, name)
			}
		} else {
			e.value = value
			s.order = append(s.order, name)
		}
		s.mu.Unlock()
		close(e.ready)
	}()

	return factory(ctx)
}

// Remove evicts name and discards its destruction callback. A name still
// being created is left alone, callback included; the creator owns it.
func (s *Store) Remove(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if ok {
		select {
		case <-e.ready:
		default:
			return nil
		}
	}
	delete(s.callbacks, name)
	if !ok {
		return nil
	}
	delete(s.entries, name)
	if i := slices.Index(s.order, name); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return e.value
}

// RegisterDestructionCallback registers cb for name, replacing any earlier one.
func (s *Store) RegisterDestructionCallback(name string, cb DestructionCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return errors.ScopeNotActive(s.scope, name)
	}
	s.callbacks[name] = cb
	return nil
}

// Names returns the names of the stored instances in creation order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Destroy runs every destruction callback once, newest instance first, and
// empties the store. The store stays usable, so a scope can keep one Store
// across container generations. Callback failures are logged.
func (s *Store) Destroy(ctx context.Context) {
	s.teardown(ctx, false)
}

// Close destroys the store like Destroy and rejects any later use with
// SCOPE_NOT_ACTIVE. Later calls are no-ops.
func (s *Store) Close(ctx context.Context) {
	s.teardown(ctx, true)
}

func (s *Store) teardown(ctx context.Context, final bool) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = final

	type pending struct {
		name string
		cb   DestructionCallback
	}
	var run []pending
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if cb, ok := s.callbacks[name]; ok {
			run = append(run, pending{name, cb})
			delete(s.callbacks, name)
		}
	}
	// Callbacks registered for names that never finished creation.
	for name, cb := range s.callbacks {
		run = append(run, pending{name, cb})
	}
	s.callbacks = make(map[string]DestructionCallback)
	s.entries = make(map[string]*storeEntry)
	s.order = nil
	s.mu.Unlock()

	for _, p := range run {
		if err := runCallback(ctx, p.cb); err != nil {
			s.log.Warn("Destruction callback failed", logger.MergeWithError(logger.BeanFields(p.name, s.scope), err))
		}
	}
}

func runCallback(ctx context.Context, cb DestructionCallback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in destruction callback: %v", r)
		}
	}()
	return cb(ctx)
}
