// Package bootstrap runs an iockit container as an application.
//
// NewApp builds the logger, the telemetry exporters and the container from a
// typed configuration and registers them as managed instances. Run then
// registers the application's definitions, refreshes the container, waits
// for a shutdown signal and closes it again.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    return a.Container.Provide("repository", NewRepository)
//	})
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
