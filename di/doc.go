// Package di provides the container that builds, wires and destroys managed
// instances.
//
// A Container holds definitions, lifecycle hooks and scopes. Refresh builds
// a generation: hook definitions first, then every non-lazy singleton in
// registration order, then Start on Lifecycle singletons. Close tears the
// generation down, dependents before their dependencies.
//
// # Registration
//
//	c := di.New(di.WithConfig(cfg.Container))
//	_ = c.Provide("repository", NewRepository)
//	_ = c.Provide("service", NewService,
//	    di.WithProperty("Repo", definition.Ref("repository")))
//
// # Resolution
//
//	if err := c.Refresh(ctx); err != nil {
//	    return err
//	}
//	svc := di.MustResolve[*Service](ctx, c, "service")
//
// Singletons that reference each other are wired through early references
// when AllowCircularReferences is set. Cycles through prototype or custom
// scopes fail with CIRCULAR_DEPENDENCY carrying the full chain.
package di
