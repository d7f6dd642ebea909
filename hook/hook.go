package hook

import (
	"context"
	"reflect"

	"github.com/kbukum/iockit/definition"
)

// BeforeInstantiation runs before the factory. Returning a non-nil instance
// skips the factory, population and init; only AfterInitialization still runs.
type BeforeInstantiation interface {
	BeforeInstantiation(ctx context.Context, t reflect.Type, name string) (any, error)
}

// AfterInstantiation runs once the raw instance exists. Returning false skips
// property population.
type AfterInstantiation interface {
	AfterInstantiation(ctx context.Context, instance any, name string) (bool, error)
}

// PropertiesProcessor rewrites the properties about to be applied. A nil
// result keeps the current set.
type PropertiesProcessor interface {
	PostProcessProperties(ctx context.Context, props definition.Properties, instance any, name string) (definition.Properties, error)
}

// BeforeInitialization runs after population and before init callbacks.
// A nil result keeps the current instance and ends the stage.
type BeforeInitialization interface {
	BeforeInitialization(ctx context.Context, instance any, name string) (any, error)
}

// AfterInitialization runs after init callbacks. A nil result keeps the
// current instance and ends the stage.
type AfterInitialization interface {
	AfterInitialization(ctx context.Context, instance any, name string) (any, error)
}

// EarlyReference produces the reference handed to a resolution that needs
// instance before its initialization finished. It must return what
// AfterInitialization would eventually expose for the same instance.
type EarlyReference interface {
	EarlyReference(ctx context.Context, instance any, name string) (any, error)
}

// BeforeInstantiationFunc adapts a function to BeforeInstantiation.
type BeforeInstantiationFunc func(ctx context.Context, t reflect.Type, name string) (any, error)

func (f BeforeInstantiationFunc) BeforeInstantiation(ctx context.Context, t reflect.Type, name string) (any, error) {
	return f(ctx, t, name)
}

// AfterInstantiationFunc adapts a function to AfterInstantiation.
type AfterInstantiationFunc func(ctx context.Context, instance any, name string) (bool, error)

func (f AfterInstantiationFunc) AfterInstantiation(ctx context.Context, instance any, name string) (bool, error) {
	return f(ctx, instance, name)
}

// PropertiesFunc adapts a function to PropertiesProcessor.
type PropertiesFunc func(ctx context.Context, props definition.Properties, instance any, name string) (definition.Properties, error)

func (f PropertiesFunc) PostProcessProperties(ctx context.Context, props definition.Properties, instance any, name string) (definition.Properties, error) {
	return f(ctx, props, instance, name)
}

// BeforeInitializationFunc adapts a function to BeforeInitialization.
type BeforeInitializationFunc func(ctx context.Context, instance any, name string) (any, error)

func (f BeforeInitializationFunc) BeforeInitialization(ctx context.Context, instance any, name string) (any, error) {
	return f(ctx, instance, name)
}

// AfterInitializationFunc adapts a function to AfterInitialization.
type AfterInitializationFunc func(ctx context.Context, instance any, name string) (any, error)

func (f AfterInitializationFunc) AfterInitialization(ctx context.Context, instance any, name string) (any, error) {
	return f(ctx, instance, name)
}

// EarlyReferenceFunc adapts a function to EarlyReference.
type EarlyReferenceFunc func(ctx context.Context, instance any, name string) (any, error)

func (f EarlyReferenceFunc) EarlyReference(ctx context.Context, instance any, name string) (any, error) {
	return f(ctx, instance, name)
}
