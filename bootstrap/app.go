package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/observability"
)

// App owns the process lifecycle: telemetry, the dispatcher and shutdown.
//
// Example:
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    res := app.Dispatcher.Dispatch(ctx, req)
//	    return res.Err()
//	})
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Logger     *logger.Logger
	Metrics    *observability.Metrics
	Dispatcher *generation.Dispatcher
	Summary    *Summary

	gracefulTimeout time.Duration
	telemetry       observability.ShutdownFunc

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a loaded config. It applies defaults,
// validates the config and initializes the logger. The dispatcher is built
// during startup.
func NewApp(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
		// Package-level logging in config and observability follows the app.
		logger.SetGlobalLogger(o.logger)
	} else {
		logger.Init(&cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(app.Name, app.Version, o.summaryOut)
	return app, nil
}

// Run starts the application and blocks until a shutdown signal or context
// cancellation, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask starts the application, runs one finite task and shuts down. The
// task context is cancelled on SIGINT or SIGTERM.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
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
			a.Logger.Info("Received signal, cancelling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup performs the initialization shared by Run and RunTask.
func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Debug("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(ctx, a.Dispatcher)
	return nil
}

// initialize installs telemetry and builds the dispatcher.
func (a *App) initialize(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, a.Name, a.Version, a.Cfg.Environment, a.Cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	a.telemetry = shutdown

	metrics, err := observability.NewMetrics(observability.Meter(a.Name))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	a.Metrics = metrics

	d, err := NewDispatcher(a.Cfg, a.Logger, metrics)
	if err != nil {
		return err
	}
	a.Dispatcher = d

	a.Logger.Debug("Dispatcher ready", logger.Fields("providers", len(d.Providers(ctx))))
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or context cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// stop runs the stop hooks and flushes telemetry within the graceful timeout.
func (a *App) stop() error {
	a.Logger.Debug("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("stop", err))
		shutdownErr = err
	}
	if a.telemetry != nil {
		if err := a.telemetry(ctx); err != nil {
			a.Logger.Error("Telemetry shutdown error", logger.ErrorFields("telemetry", err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	a.Logger.Debug("Application shutdown complete")
	return shutdownErr
}
