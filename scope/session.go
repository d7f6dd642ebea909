package scope

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
)

type sessionKey struct{}

// WithSessionID returns a context that selects session id for the session scope.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFrom returns the session id carried by ctx.
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// SessionRecord is the storage context of one session.
type SessionRecord struct {
	ID    string
	store *Store

	mu         sync.Mutex
	lastAccess time.Time
}

func (s *SessionRecord) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

// LastAccess returns when the session's storage was last used.
func (s *SessionRecord) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Names returns the names of instances stored for this session.
func (s *SessionRecord) Names() []string {
	return s.store.Names()
}

// SessionManager owns the live sessions.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*SessionRecord
	now      func() time.Time
	log      *logger.Logger
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*SessionRecord),
		now:      time.Now,
		log:      logger.WithComponent("scope.session"),
	}
}

// Session returns the record for id, creating it on first use.
func (m *SessionManager) Session(id string) *SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &SessionRecord{ID: id, store: NewStore(Session)}
		m.sessions[id] = s
		m.log.Debug("Session opened", map[string]interface{}{"session": id})
	}
	s.touch(m.now())
	return s
}

// Lookup returns the record for id without creating it.
func (m *SessionManager) Lookup(id string) (*SessionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Invalidate tears session id down and runs its destruction callbacks.
// It reports whether the session existed.
func (m *SessionManager) Invalidate(ctx context.Context, id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.store.Close(ctx)
	m.log.Debug("Session invalidated", map[string]interface{}{"session": id})
	return true
}

// InvalidateIdle tears down every session unused for longer than maxIdle and
// returns how many were removed.
func (m *SessionManager) InvalidateIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	var idle []*SessionRecord
	for id, s := range m.sessions {
		if s.LastAccess().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.store.Close(ctx)
	}
	if len(idle) > 0 {
		m.log.Info("Idle sessions invalidated", map[string]interface{}{logger.FieldCount: len(idle)})
	}
	return len(idle)
}

// InvalidateAll tears down every session.
func (m *SessionManager) InvalidateAll(ctx context.Context) {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*SessionRecord)
	m.mu.Unlock()

	for _, s := range all {
		s.store.Close(ctx)
	}
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SessionScope stores one instance per name per session.
type SessionScope struct {
	manager *SessionManager
}

// NewSessionScope creates a session scope backed by manager.
func NewSessionScope(manager *SessionManager) *SessionScope {
	return &SessionScope{manager: manager}
}

// Manager returns the backing session manager.
func (s *SessionScope) Manager() *SessionManager {
	return s.manager
}

func (s *SessionScope) session(ctx context.Context, name string) (*SessionRecord, error) {
	id, ok := SessionIDFrom(ctx)
	if !ok {
		return nil, errors.ScopeNotActive(Session, name)
	}
	return s.manager.Session(id), nil
}

// Get returns the session's instance for name.
func (s *SessionScope) Get(ctx context.Context, name string, factory ObjectFactory) (any, error) {
	rec, err := s.session(ctx, name)
	if err != nil {
		return nil, err
	}
	return rec.store.Get(ctx, name, factory)
}

// Remove evicts name from the current session.
func (s *SessionScope) Remove(ctx context.Context, name string) (any, error) {
	id, ok := SessionIDFrom(ctx)
	if !ok {
		return nil, errors.ScopeNotActive(Session, name)
	}
	rec, ok := s.manager.Lookup(id)
	if !ok {
		return nil, nil
	}
	return rec.store.Remove(name), nil
}

// RegisterDestructionCallback runs cb when the session is invalidated.
func (s *SessionScope) RegisterDestructionCallback(ctx context.Context, name string, cb DestructionCallback) error {
	rec, err := s.session(ctx, name)
	if err != nil {
		return err
	}
	return rec.store.RegisterDestructionCallback(name, cb)
}

// ResolveContextualObject exposes the session record under "session".
func (s *SessionScope) ResolveContextualObject(ctx context.Context, key string) (any, bool) {
	if key != Session {
		return nil, false
	}
	id, ok := SessionIDFrom(ctx)
	if !ok {
		return nil, false
	}
	rec, ok := s.manager.Lookup(id)
	if !ok {
		return nil, false
	}
	return rec, true
}

// ConversationID returns the session id.
func (s *SessionScope) ConversationID(ctx context.Context) string {
	id, _ := SessionIDFrom(ctx)
	return id
}

// Destroy invalidates every session. The scope stays usable; later calls
// start new sessions.
func (s *SessionScope) Destroy(ctx context.Context) error {
	s.manager.InvalidateAll(ctx)
	return nil
}
