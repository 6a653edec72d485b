package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

type providersOptions struct {
	maxColWidth uint
}

func newProvidersCmd(g *globalOptions, out, errOut io.Writer) *cobra.Command {
	o := &providersOptions{}

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "list providers with their kind and models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.newApp(errOut, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.RunTask(ctx, func(ctx context.Context) error {
				table := uitable.New()
				table.MaxColWidth = o.maxColWidth
				table.Wrap = true
				table.AddRow("PROVIDER", "KIND", "READY", "MODELS")
				for _, p := range app.Dispatcher.Providers(ctx) {
					ready := "yes"
					if !p.Available {
						ready = "no key"
					}
					table.AddRow(p.ID, p.Kind, ready, strings.Join(p.Models, ", "))
				}
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().UintVar(&o.maxColWidth, "max-col-width", 60, "maximum column width for output table")
	return cmd
}
