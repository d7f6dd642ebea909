package di

import (
	"context"
	"sync"
	"testing"

	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/scope"
)

func newContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()
	c := New(append([]Option{WithLogger(logger.NewNop())}, opts...)...)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// journal is a goroutine-safe event log.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// resource records its destruction.
type resource struct {
	name string
	log  *journal
}

func (r *resource) Destroy(context.Context) error {
	r.log.add("destroy:" + r.name)
	return nil
}

func newResource(name string, log *journal) func() *resource {
	return func() *resource {
		log.add("create:" + name)
		return &resource{name: name, log: log}
	}
}

// mapScope is a minimal custom scope backed by scope.Store.
type mapScope struct {
	store *scope.Store
}

func newMapScope() *mapScope { return &mapScope{store: scope.NewStore("tenant")} }

func (s *mapScope) Get(ctx context.Context, name string, f scope.ObjectFactory) (any, error) {
	return s.store.Get(ctx, name, f)
}

func (s *mapScope) Remove(_ context.Context, name string) (any, error) {
	return s.store.Remove(name), nil
}

func (s *mapScope) RegisterDestructionCallback(_ context.Context, name string, cb scope.DestructionCallback) error {
	return s.store.RegisterDestructionCallback(name, cb)
}

func (s *mapScope) ResolveContextualObject(context.Context, string) (any, bool) { return nil, false }
func (s *mapScope) ConversationID(context.Context) string                       { return "tenant" }

func (s *mapScope) Destroy(ctx context.Context) error {
	s.store.Destroy(ctx)
	return nil
}
