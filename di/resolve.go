package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/iockit/definition"
	"github.com/kbukum/iockit/errors"
)

// Resolve resolves name with type safety, returns error on failure.
//
// Example:
//
//	repo, err := di.Resolve[*Repository](ctx, c, "repository")
//	if err != nil {
//	    return fmt.Errorf("failed to get repository: %w", err)
//	}
func Resolve[T any](ctx context.Context, r definition.Resolver, name string) (T, error) {
	var zero T
	instance, err := r.Resolve(ctx, name)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: '%s' is %T, expected %T", name, instance, zero)
	}
	return result, nil
}

// MustResolve resolves name with type safety, panics on error.
// Use it in setup code where a missing dependency is a programming error.
func MustResolve[T any](ctx context.Context, r definition.Resolver, name string) T {
	result, err := Resolve[T](ctx, r, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return result
}

// TryResolve resolves name, returns zero value and false on any failure.
// Use this when a dependency is optional.
//
//	if m, ok := di.TryResolve[*Metrics](ctx, c, "metrics"); ok {
//	    m.RecordEvent(...)
//	}
func TryResolve[T any](ctx context.Context, r definition.Resolver, name string) (T, bool) {
	result, err := Resolve[T](ctx, r, name)
	return result, err == nil
}

// ResolveType resolves the single definition whose declared Type is
// assignable to T. Among several candidates the one marked Primary wins.
func ResolveType[T any](ctx context.Context, c *Container) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	candidates := c.NamesForType(t)

	var name string
	switch len(candidates) {
	case 0:
		return zero, errors.UnresolvableName(t.String())
	case 1:
		name = candidates[0]
	default:
		for _, n := range candidates {
			def, _ := c.Definition(n)
			if !def.Primary {
				continue
			}
			if name != "" {
				return zero, errors.UnresolvableName(t.String()).
					WithDetail("candidates", candidates).
					WithDetail("reason", "more than one primary candidate")
			}
			name = n
		}
		if name == "" {
			return zero, errors.UnresolvableName(t.String()).
				WithDetail("candidates", candidates).
				WithDetail("reason", "no primary candidate")
		}
	}
	return Resolve[T](ctx, c, name)
}
