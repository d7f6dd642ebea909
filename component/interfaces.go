package component

import (
	"context"

	"github.com/kbukum/iockit/definition"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Initializer is called after properties are applied and before-initialization
// hooks ran.
type Initializer interface {
	Init(ctx context.Context) error
}

// Disposable is called when the instance is destroyed.
type Disposable interface {
	Destroy(ctx context.Context) error
}

// Lifecycle is implemented by singletons that run work between a successful
// refresh and close.
type Lifecycle interface {
	// Start begins the component's work. Called after every eager singleton
	// of the generation is built.
	Start(ctx context.Context) error

	// Stop ends the component's work. Called before any singleton is destroyed.
	Stop(ctx context.Context) error
}

// Phased orders Lifecycle instances. Lower phases start first and stop last.
type Phased interface {
	Phase() int
}

// HealthChecker reports the component's health.
type HealthChecker interface {
	Health(ctx context.Context) Health
}

// NameAware receives the managed name before initialization.
type NameAware interface {
	SetManagedName(name string)
}

// ResolverAware receives the resolver that built the instance.
type ResolverAware interface {
	SetResolver(r definition.Resolver)
}

// PropertySetter applies one injected property. Instances implementing it
// are populated through SetProperty instead of reflection.
type PropertySetter interface {
	SetProperty(name string, value any) error
}

// Description holds summary information for the bootstrap display.
type Description struct {
	// Name is the human-readable display name. Defaults to the managed name.
	Name string
	// Type categorizes the component: "repository", "client", "server", etc.
	Type string
	// Details is a human-readable one-liner shown in the startup summary.
	Details string
}

// Describable is optionally implemented by managed instances to appear in
// the startup summary with a description.
type Describable interface {
	Describe() Description
}
