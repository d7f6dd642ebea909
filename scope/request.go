package scope

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/iockit/errors"
)

type requestKey struct{}

// RequestRecord is the storage context of one request.
type RequestRecord struct {
	ID    string
	store *Store

	mu         sync.RWMutex
	attributes map[string]any
	ended      bool
}

// BeginRequest opens a request scope and returns a context carrying it.
// id may be empty, in which case a random one is generated.
func BeginRequest(ctx context.Context, id string) (context.Context, *RequestRecord) {
	if id == "" {
		id = uuid.NewString()
	}
	r := &RequestRecord{
		ID:         id,
		store:      NewStore(Request),
		attributes: make(map[string]any),
	}
	return context.WithValue(ctx, requestKey{}, r), r
}

// RequestFrom returns the active request record carried by ctx.
func RequestFrom(ctx context.Context) (*RequestRecord, bool) {
	r, ok := ctx.Value(requestKey{}).(*RequestRecord)
	if !ok || r.isEnded() {
		return nil, false
	}
	return r, true
}

// SetAttribute exposes value as a contextual object under key.
func (r *RequestRecord) SetAttribute(key string, value any) {
	r.mu.Lock()
	r.attributes[key] = value
	r.mu.Unlock()
}

// Attribute returns a contextual object set with SetAttribute.
func (r *RequestRecord) Attribute(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.attributes[key]
	return v, ok
}

// Names returns the names of instances stored for this request.
func (r *RequestRecord) Names() []string {
	return r.store.Names()
}

// End closes the request and runs its destruction callbacks once.
func (r *RequestRecord) End(ctx context.Context) {
	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		return
	}
	r.ended = true
	r.mu.Unlock()
	r.store.Close(ctx)
}

func (r *RequestRecord) isEnded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ended
}

// RequestScope stores one instance per name per request.
type RequestScope struct{}

// NewRequestScope creates the request scope.
func NewRequestScope() *RequestScope {
	return &RequestScope{}
}

func (s *RequestScope) record(ctx context.Context, name string) (*RequestRecord, error) {
	r, ok := RequestFrom(ctx)
	if !ok {
		return nil, errors.ScopeNotActive(Request, name)
	}
	return r, nil
}

// Get returns the request's instance for name.
func (s *RequestScope) Get(ctx context.Context, name string, factory ObjectFactory) (any, error) {
	r, err := s.record(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.store.Get(ctx, name, factory)
}

// Remove evicts name from the active request.
func (s *RequestScope) Remove(ctx context.Context, name string) (any, error) {
	r, err := s.record(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.store.Remove(name), nil
}

// RegisterDestructionCallback runs cb when the request ends.
func (s *RequestScope) RegisterDestructionCallback(ctx context.Context, name string, cb DestructionCallback) error {
	r, err := s.record(ctx, name)
	if err != nil {
		return err
	}
	return r.store.RegisterDestructionCallback(name, cb)
}

// ResolveContextualObject exposes the request record under "request" and
// any attribute set on it.
func (s *RequestScope) ResolveContextualObject(ctx context.Context, key string) (any, bool) {
	r, ok := RequestFrom(ctx)
	if !ok {
		return nil, false
	}
	if key == Request {
		return r, true
	}
	return r.Attribute(key)
}

// ConversationID returns the request id.
func (s *RequestScope) ConversationID(ctx context.Context) string {
	if r, ok := RequestFrom(ctx); ok {
		return r.ID
	}
	return ""
}
