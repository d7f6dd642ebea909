package scope

import "context"

// Built-in scope names.
const (
	Singleton = "singleton"
	Prototype = "prototype"
	Request   = "request"
	Session   = "session"
)

// ObjectFactory creates the instance a scope stores for a name.
type ObjectFactory func(ctx context.Context) (any, error)

// DestructionCallback releases one stored instance.
type DestructionCallback func(ctx context.Context) error

// Scope stores managed instances within one lifecycle boundary.
type Scope interface {
	// Get returns the stored instance for name, creating it with factory if
	// absent. The factory runs at most once per name for the scope's lifetime.
	Get(ctx context.Context, name string, factory ObjectFactory) (any, error)

	// Remove evicts and returns the stored instance without running its
	// destruction callback. A nil result means nothing was stored.
	Remove(ctx context.Context, name string) (any, error)

	// RegisterDestructionCallback registers cb to run when the scope itself
	// tears name down. It is discarded if name is removed explicitly.
	RegisterDestructionCallback(ctx context.Context, name string, cb DestructionCallback) error

	// ResolveContextualObject exposes an environment-bound object such as the
	// active request or session.
	ResolveContextualObject(ctx context.Context, key string) (any, bool)

	// ConversationID identifies the current storage context, "" if none.
	ConversationID(ctx context.Context) string
}

var (
	_ Scope = (*PrototypeScope)(nil)
	_ Scope = (*RequestScope)(nil)
	_ Scope = (*SessionScope)(nil)
)
