package hook

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/order"
)

// Pipeline dispatches the creation stages to the hooks that implement them.
// It is immutable once built.
type Pipeline struct {
	hooks []any

	beforeInstantiation  []BeforeInstantiation
	afterInstantiation   []AfterInstantiation
	properties           []PropertiesProcessor
	beforeInitialization []BeforeInitialization
	afterInitialization  []AfterInitialization
	earlyReference       []EarlyReference
}

// NewPipeline sorts hooks with order.Sort and indexes them by stage.
// Hooks wrapped in order.Value or order.Priority are unwrapped for dispatch.
func NewPipeline(hooks ...any) *Pipeline {
	sorted := order.Sorted(hooks)
	p := &Pipeline{hooks: make([]any, 0, len(sorted))}
	for _, h := range sorted {
		h = order.Unwrap(h)
		if h == nil {
			continue
		}
		p.hooks = append(p.hooks, h)
		if s, ok := h.(BeforeInstantiation); ok {
			p.beforeInstantiation = append(p.beforeInstantiation, s)
		}
		if s, ok := h.(AfterInstantiation); ok {
			p.afterInstantiation = append(p.afterInstantiation, s)
		}
		if s, ok := h.(PropertiesProcessor); ok {
			p.properties = append(p.properties, s)
		}
		if s, ok := h.(BeforeInitialization); ok {
			p.beforeInitialization = append(p.beforeInitialization, s)
		}
		if s, ok := h.(AfterInitialization); ok {
			p.afterInitialization = append(p.afterInitialization, s)
		}
		if s, ok := h.(EarlyReference); ok {
			p.earlyReference = append(p.earlyReference, s)
		}
	}
	return p
}

// Hooks returns the hooks in invocation order.
func (p *Pipeline) Hooks() []any {
	return append([]any(nil), p.hooks...)
}

// Len returns the number of hooks.
func (p *Pipeline) Len() int { return len(p.hooks) }

// ApplyBeforeInstantiation returns the first non-nil instance a hook supplies.
func (p *Pipeline) ApplyBeforeInstantiation(ctx context.Context, t reflect.Type, name string) (any, error) {
	for _, h := range p.beforeInstantiation {
		instance, err := h.BeforeInstantiation(ctx, t, name)
		if err != nil {
			return nil, stageError("before-instantiation", h, err)
		}
		if instance != nil {
			return instance, nil
		}
	}
	return nil, nil
}

// ApplyAfterInstantiation reports whether population should proceed. The
// first hook returning false ends the stage.
func (p *Pipeline) ApplyAfterInstantiation(ctx context.Context, instance any, name string) (bool, error) {
	for _, h := range p.afterInstantiation {
		proceed, err := h.AfterInstantiation(ctx, instance, name)
		if err != nil {
			return false, stageError("after-instantiation", h, err)
		}
		if !proceed {
			return false, nil
		}
	}
	return true, nil
}

// ApplyPostProcessProperties threads props through every properties hook.
func (p *Pipeline) ApplyPostProcessProperties(ctx context.Context, props definition.Properties, instance any, name string) (definition.Properties, error) {
	for _, h := range p.properties {
		result, err := h.PostProcessProperties(ctx, props, instance, name)
		if err != nil {
			return nil, stageError("post-process-properties", h, err)
		}
		if result != nil {
			props = result
		}
	}
	return props, nil
}

// ApplyBeforeInitialization threads instance through the before-init hooks.
func (p *Pipeline) ApplyBeforeInitialization(ctx context.Context, instance any, name string) (any, error) {
	current := instance
	for _, h := range p.beforeInitialization {
		result, err := h.BeforeInitialization(ctx, current, name)
		if err != nil {
			return nil, stageError("before-initialization", h, err)
		}
		if result == nil {
			return current, nil
		}
		current = result
	}
	return current, nil
}

// ApplyAfterInitialization threads instance through the after-init hooks.
func (p *Pipeline) ApplyAfterInitialization(ctx context.Context, instance any, name string) (any, error) {
	current := instance
	for _, h := range p.afterInitialization {
		result, err := h.AfterInitialization(ctx, current, name)
		if err != nil {
			return nil, stageError("after-initialization", h, err)
		}
		if result == nil {
			return current, nil
		}
		current = result
	}
	return current, nil
}

// ApplyEarlyReference returns the reference to expose for a partially built
// instance.
func (p *Pipeline) ApplyEarlyReference(ctx context.Context, instance any, name string) (any, error) {
	current := instance
	for _, h := range p.earlyReference {
		result, err := h.EarlyReference(ctx, current, name)
		if err != nil {
			return nil, stageError("early-reference", h, err)
		}
		if result != nil {
			current = result
		}
	}
	return current, nil
}

func stageError(stage string, h any, err error) error {
	return fmt.Errorf("%s hook %T: %w", stage, h, err)
}
