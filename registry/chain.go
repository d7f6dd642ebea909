package registry

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
)

var nextOwner atomic.Uint64

type chainKey struct{}

// Chain is the path of names one logical resolution is building, outermost
// first. Chains are immutable; Push returns a new one.
type Chain struct {
	owner uint64
	names []string
}

// NewChain starts a chain for a new logical resolution.
func NewChain() *Chain {
	return &Chain{owner: nextOwner.Add(1)}
}

// Owner identifies the logical resolution.
func (c *Chain) Owner() uint64 { return c.owner }

// Names returns a copy of the names on the chain.
func (c *Chain) Names() []string { return slices.Clone(c.names) }

// Len returns the chain depth.
func (c *Chain) Len() int { return len(c.names) }

// Contains reports whether name is being built by this resolution.
func (c *Chain) Contains(name string) bool { return slices.Contains(c.names, name) }

// Push returns a chain with name appended.
func (c *Chain) Push(name string) *Chain {
	names := make([]string, len(c.names), len(c.names)+1)
	copy(names, c.names)
	return &Chain{owner: c.owner, names: append(names, name)}
}

// With returns the chain names followed by name, the form used in
// circular-dependency diagnostics.
func (c *Chain) With(name string) []string {
	return append(c.Names(), name)
}

func (c *Chain) String() string { return strings.Join(c.names, " -> ") }

// ChainFrom returns the chain carried by ctx, or nil.
func ChainFrom(ctx context.Context) *Chain {
	c, _ := ctx.Value(chainKey{}).(*Chain)
	return c
}

// WithChain returns a context carrying c.
func WithChain(ctx context.Context, c *Chain) context.Context {
	return context.WithValue(ctx, chainKey{}, c)
}

// EnsureChain returns ctx and its chain, starting a new resolution if ctx
// carries none.
func EnsureChain(ctx context.Context) (context.Context, *Chain) {
	if c := ChainFrom(ctx); c != nil {
		return ctx, c
	}
	c := NewChain()
	return WithChain(ctx, c), c
}
