package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fxgurv/ALONE/api"
	"github.com/fxgurv/ALONE/bootstrap"
	"github.com/fxgurv/ALONE/server"
)

func newServeCmd(g *globalOptions, errOut io.Writer) *cobra.Command {
	var (
		addr            string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the generation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.newApp(errOut, errOut, bootstrap.WithGracefulTimeout(shutdownTimeout))
			if err != nil {
				return err
			}
			applyServeConfig(app.Cfg, addr)

			var srv *server.Server
			app.OnStart(func(ctx context.Context) error {
				h := api.NewHandler(app.Dispatcher, app.Logger)
				srv = server.New(app.Cfg.Server, app.Logger)
				srv.ApplyDefaults(app.Name, h.Availability)
				h.Register(srv.GinEngine())
				for _, r := range srv.GinEngine().Routes() {
					app.Summary.TrackRoute(r.Method, r.Path, r.Handler)
				}
				return nil
			})
			app.OnReady(func(ctx context.Context) error {
				return srv.Start(ctx)
			})
			app.OnStop(func(ctx context.Context) error {
				if srv == nil {
					return nil
				}
				return srv.Stop(ctx)
			})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "time allowed for in-flight requests to drain on shutdown")
	return cmd
}

// applyServeConfig adjusts the loaded config for network use. Remote callers
// choose destination paths, so writes are confined to the output directory.
func applyServeConfig(cfg *bootstrap.Config, addr string) {
	if addr != "" {
		cfg.Server.Addr = addr
	}
	cfg.Output.Confine = true
}
