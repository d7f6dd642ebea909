package scope

import (
	"context"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/logger"
)

// PrototypeScope creates a fresh instance on every Get and stores nothing.
type PrototypeScope struct {
	log *logger.Logger
}

// NewPrototype creates the transient scope.
func NewPrototype() *PrototypeScope {
	return &PrototypeScope{log: logger.WithComponent("scope.prototype")}
}

// Get always invokes factory.
func (p *PrototypeScope) Get(ctx context.Context, name string, factory ObjectFactory) (any, error) {
	return factory(ctx)
}

// Remove is unsupported: a prototype scope never holds an instance.
func (p *PrototypeScope) Remove(_ context.Context, _ string) (any, error) {
	return nil, errors.UnsupportedScopeOperation(Prototype, "remove")
}

// RegisterDestructionCallback ignores cb; the caller owns prototype instances.
func (p *PrototypeScope) RegisterDestructionCallback(_ context.Context, name string, _ DestructionCallback) error {
	p.log.Debug("Ignoring destruction callback for prototype instance", logger.BeanFields(name, Prototype))
	return nil
}

// ResolveContextualObject has nothing to expose.
func (p *PrototypeScope) ResolveContextualObject(_ context.Context, _ string) (any, bool) {
	return nil, false
}

// ConversationID returns "".
func (p *PrototypeScope) ConversationID(_ context.Context) string {
	return ""
}
