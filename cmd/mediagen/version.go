package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fxgurv/ALONE/version"
)

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(out, version.Get())
			return err
		},
	}
}
