package di

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/hook"
	"github.com/kbukum/iockit/registry"
)

// generation is one refresh-to-close epoch: the definitions it was built
// from and every instance it created.
type generation struct {
	id         string
	defs       *definition.Table
	registry   *registry.Registry
	lifecycles *component.Registry
	hooks      atomic.Pointer[hook.Pipeline]
	started    atomic.Bool
	startedAt  time.Time
}

func newGeneration(defs *definition.Table, hooks []any, stopTimeout time.Duration) *generation {
	g := &generation{
		id:         uuid.NewString(),
		defs:       defs,
		registry:   registry.New(),
		lifecycles: component.NewRegistry(stopTimeout),
		startedAt:  time.Now(),
	}
	g.hooks.Store(hook.NewPipeline(hooks...))
	return g
}

func (g *generation) pipeline() *hook.Pipeline {
	return g.hooks.Load()
}

type generationKey struct{}

// withGeneration binds resolutions made with ctx to g, so instances built
// during a refresh see the generation under construction.
func withGeneration(ctx context.Context, g *generation) context.Context {
	return context.WithValue(ctx, generationKey{}, g)
}

func generationFrom(ctx context.Context) *generation {
	g, _ := ctx.Value(generationKey{}).(*generation)
	return g
}
