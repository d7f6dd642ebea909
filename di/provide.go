package di

import (
	"reflect"

	"github.com/kbukum/iockit/definition"
)

// DefinitionOption adjusts a definition built by Provide or ProvideInstance.
type DefinitionOption func(*definition.Definition)

// InScope sets the definition's scope.
func InScope(name string) DefinitionOption {
	return func(d *definition.Definition) { d.Scope = name }
}

// Lazy defers a singleton's creation to its first resolution.
func Lazy() DefinitionOption {
	return func(d *definition.Definition) { d.Lazy = true }
}

// Primary marks the definition as the preferred candidate for its type.
func Primary() DefinitionOption {
	return func(d *definition.Definition) { d.Primary = true }
}

// AsHook makes the instance a lifecycle hook built at the start of refresh.
func AsHook(orderValue int) DefinitionOption {
	return func(d *definition.Definition) {
		d.Hook = true
		d.Order = orderValue
	}
}

// DependsOn lists names built before and destroyed after this one.
func DependsOn(names ...string) DefinitionOption {
	return func(d *definition.Definition) { d.DependsOn = append(d.DependsOn, names...) }
}

// WithProperty injects value, or the instance named by a definition.Ref,
// into the property name.
func WithProperty(name string, value any) DefinitionOption {
	return func(d *definition.Definition) { d.Properties = d.Properties.With(name, value) }
}

// WithAliases adds alternative names.
func WithAliases(aliases ...string) DefinitionOption {
	return func(d *definition.Definition) { d.Aliases = append(d.Aliases, aliases...) }
}

// WithInitMethod runs fn after Init(ctx).
func WithInitMethod(fn definition.LifecycleFunc) DefinitionOption {
	return func(d *definition.Definition) { d.InitMethod = fn }
}

// WithDestroyMethod runs fn when the instance is destroyed.
func WithDestroyMethod(fn definition.LifecycleFunc) DefinitionOption {
	return func(d *definition.Definition) { d.DestroyMethod = fn }
}

// Provide registers a constructor under name. constructor takes any of the
// shapes definition.Constructor accepts; its result type becomes the
// definition's Type.
//
//	c.Provide("repository", NewRepository)
//	c.Provide("service", NewService, di.WithProperty("Repo", definition.Ref("repository")))
func (c *Container) Provide(name string, constructor any, opts ...DefinitionOption) error {
	def := definition.Definition{
		Name:    name,
		Type:    definition.ResultType(constructor),
		Factory: definition.Constructor(constructor),
	}
	for _, opt := range opts {
		opt(&def)
	}
	return c.Register(def)
}

// ProvideInstance registers an already built object under name.
func (c *Container) ProvideInstance(name string, instance any, opts ...DefinitionOption) error {
	def := definition.Definition{
		Name:    name,
		Type:    reflect.TypeOf(instance),
		Factory: definition.Instance(instance),
	}
	for _, opt := range opts {
		opt(&def)
	}
	return c.Register(def)
}
