// Package bootstrap is the composition root of the mediagen service.
//
// It loads the read-only Config, installs telemetry, builds the artifact
// writer and every provider backend, and registers them on a single
// generation.Dispatcher. App drives the lifecycle for both long-running
// servers (Run) and one-shot CLI tasks (RunTask).
//
// # Quick Start
//
//	cfg, err := bootstrap.Load(config.WithConfigFile("config.yml"))
//	app, err := bootstrap.NewApp(cfg)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return app.Dispatcher.Dispatch(ctx, req).Err()
//	})
package bootstrap
