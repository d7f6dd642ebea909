package definition

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/scope"
	"github.com/kbukum/iockit/validation"
)

// Resolver looks managed instances up by name. The container passes itself
// to factories as a Resolver.
type Resolver interface {
	Resolve(ctx context.Context, name string) (any, error)
}

// Factory builds the raw instance for a definition.
type Factory func(ctx context.Context, r Resolver) (any, error)

// LifecycleFunc is a per-definition init or destroy callback.
type LifecycleFunc func(ctx context.Context, instance any) error

// Definition is the blueprint of one managed instance.
type Definition struct {
	// Name is the logical name the instance is resolved by.
	Name string `validate:"required,managedname"`
	// Type is the concrete type the factory produces, if known up front.
	// It is handed to before-instantiation hooks.
	Type reflect.Type
	// Factory builds the raw instance.
	Factory Factory `validate:"required"`
	// Scope names the storage policy. Defaults to scope.Singleton.
	Scope string `validate:"omitempty,managedname"`
	// Primary marks the preferred candidate among definitions of one type.
	Primary bool
	// Order is the order hint used when instances of this definition are
	// sorted, e.g. hook definitions.
	Order int
	// Lazy singletons are built on first demand instead of during refresh.
	Lazy bool
	// DependsOn lists names that must be built before, and destroyed after,
	// this one even without a property reference between them.
	DependsOn []string `validate:"dive,required"`
	// Properties are injected after instantiation.
	Properties Properties
	// InitMethod runs after properties are applied and after Init(ctx).
	InitMethod LifecycleFunc
	// DestroyMethod runs when the instance is destroyed, after Destroy(ctx).
	DestroyMethod LifecycleFunc
	// Aliases are alternative names for this definition.
	Aliases []string `validate:"dive,required,managedname"`
	// Hook marks a definition whose instance joins the lifecycle hook
	// pipeline. Hook definitions are built first on every refresh.
	Hook bool
}

// ApplyDefaults fills unset fields.
func (d *Definition) ApplyDefaults() {
	if d.Scope == "" {
		d.Scope = scope.Singleton
	}
}

// Validate checks the definition for structural problems.
func (d *Definition) Validate() error {
	if err := validation.Validate(d); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			appErr.WithDetail("name", d.Name)
		}
		return err
	}
	if slices.Contains(d.DependsOn, d.Name) {
		return errors.InvalidDefinition(d.Name, "depends on itself")
	}
	if slices.Contains(d.Aliases, d.Name) {
		return errors.InvalidDefinition(d.Name, "alias equals the definition name")
	}
	if d.Hook && d.Scope != scope.Singleton {
		return errors.InvalidDefinition(d.Name, fmt.Sprintf("hook definitions must be singletons, got scope '%s'", d.Scope))
	}
	return nil
}

// IsSingleton reports whether the definition lives in the process-wide scope.
func (d *Definition) IsSingleton() bool {
	return d.Scope == "" || d.Scope == scope.Singleton
}

// IsPrototype reports whether every resolution builds a new instance.
func (d *Definition) IsPrototype() bool {
	return d.Scope == scope.Prototype
}

// Clone returns a copy that shares no slices with d.
func (d Definition) Clone() Definition {
	d.DependsOn = slices.Clone(d.DependsOn)
	d.Aliases = slices.Clone(d.Aliases)
	d.Properties = d.Properties.Clone()
	return d
}
