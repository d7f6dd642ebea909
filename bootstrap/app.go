package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
)

// App runs a container with uniform startup and shutdown.
// The type parameter C is the config type, which must satisfy the Config interface.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig, fully typed
//	    return a.Container.Provide("service", NewService)
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name            string
	Version         string
	Cfg             C
	Container       *di.Container
	Instrumentation *observability.Instrumentation
	Logger          *logger.Logger
	Summary         *Summary

	providers       *observability.Providers
	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and the
// telemetry exporters, and registers the config, logger and instrumentation
// in the container under di.Builtin.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: base.Container.ShutdownTimeout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Instrumentation = o.instrumentation
	if app.Instrumentation == nil {
		inst, err := app.setupObservability(base.Environment)
		if err != nil {
			return nil, err
		}
		app.Instrumentation = inst
	}

	app.Container = o.container
	if app.Container == nil {
		app.Container = di.New(
			di.WithConfig(base.Container),
			di.WithLogger(app.Logger.WithComponent("container")),
			di.WithInstrumentation(app.Instrumentation),
		)
	}
	if err := app.registerBuiltins(); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

func (a *App[C]) setupObservability(environment string) (*observability.Instrumentation, error) {
	base := a.Cfg.GetConfig()
	providers, err := observability.Setup(context.Background(), observability.Resource{
		Service:     base.Name,
		Version:     base.Version,
		Environment: environment,
	}, base.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}
	a.providers = providers
	inst, err := providers.Instrumentation()
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("observability setup: %w", err)
	}
	return inst, nil
}

func (a *App[C]) registerBuiltins() error {
	builtins := []struct {
		name  string
		value any
	}{
		{di.Builtin.Config, a.Cfg},
		{di.Builtin.Logger, a.Logger},
		{di.Builtin.Instrumentation, a.Instrumentation},
	}
	for _, b := range builtins {
		if err := a.Container.ProvideInstance(b.name, b.value); err != nil {
			return fmt.Errorf("register %s: %w", b.name, err)
		}
	}
	return nil
}

// OnConfigure registers a callback that registers the application's
// definitions, hooks and scopes before the container is refreshed.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that every lifecycle instance reporting health is healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Container.Health(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Health summarizes the container's lifecycle instances as service health.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(a.Name, a.Version)
	sh.Generation = a.Container.Generation()
	if !a.Container.IsActive() {
		sh.MarkDown()
	}
	for _, h := range a.Container.Health(ctx) {
		sh.AddComponent(h)
	}
	return sh
}

// Run executes the full application lifecycle for long-running services:
// Configure → Refresh → OnStart hooks → ReadyCheck → OnReady hooks →
// block on signal or container close → OnStop hooks → Close.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run, it does not block on shutdown signals: it runs task and shuts
// down when the task completes or the context is canceled (e.g. via
// SIGINT/SIGTERM).
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    svc := di.MustResolve[*Service](ctx, app.Container, "service")
//	    return svc.Process(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup performs the initialization sequence shared by Run and RunTask.
// A failure after configuration releases everything already built.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.configure(ctx); err != nil {
		a.release()
		return fmt.Errorf("configuration failed: %w", err)
	}

	a.Logger.Info("Refreshing container")
	if err := a.Container.Refresh(ctx); err != nil {
		a.release()
		return fmt.Errorf("container refresh failed: %w", err)
	}
	if a.Cfg.GetConfig().Container.RegisterShutdownHook {
		a.Container.RegisterShutdownHook()
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		_ = a.stop()
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.stop()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(ctx)
	return nil
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary prints the startup summary built from the live container.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.DisplaySummary(ctx, a.Container)
}

// WaitForSignal blocks until an OS interrupt/term signal, context
// cancellation, or the container being closed elsewhere.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	case <-a.Container.Done():
		a.Logger.Info("Container closed, shutting down")
	}
	return nil
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs the OnStop hooks, closes the container and flushes telemetry,
// all within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx := context.Background()
	if a.gracefulTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.gracefulTimeout)
		defer cancel()
	}

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.MergeWithError(nil, err))
		errs = append(errs, err)
	}
	if err := a.Container.Close(ctx); err != nil {
		a.Logger.Error("Container close error", logger.MergeWithError(nil, err))
		errs = append(errs, err)
	}
	if a.providers != nil {
		if err := a.providers.Shutdown(ctx); err != nil {
			a.Logger.Warn("Telemetry shutdown error", logger.MergeWithError(nil, err))
		}
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}

// release drops what NewApp built when startup fails before the container
// went live.
func (a *App[C]) release() {
	_ = a.Container.Close(context.Background())
	if a.providers != nil {
		_ = a.providers.Shutdown(context.Background())
	}
}
