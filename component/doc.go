// Package component defines the optional capabilities a managed instance can
// implement to take part in the container lifecycle.
//
// # Interfaces
//
//   - Initializer: Init(ctx) after properties are applied
//   - Disposable: Destroy(ctx) when the instance's scope tears it down
//   - Lifecycle: Start/Stop once the whole generation is built
//   - Phased: start order for Lifecycle instances
//   - HealthChecker: health reporting for the startup summary and probes
//   - NameAware, ResolverAware: receive the managed name or the container
//   - PropertySetter: apply injected properties without reflection
//   - Describable: self-description for the bootstrap summary
//
// Registry starts Lifecycle instances by phase and stops them in reverse.
package component
