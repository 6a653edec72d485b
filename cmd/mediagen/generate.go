package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fxgurv/ALONE/generation"
)

const generateDesc = `
Generate one artifact and print the path it was written to.

On failure the reason (AuthError, UpstreamError, Timeout, InvalidResponse
or IOError) and the provider's detail are printed to stderr and the command
exits with status 1.
`

// errGenerationFailed marks a failure that was already reported to the user.
var errGenerationFailed = errors.New("generation failed")

type generateOptions struct {
	provider   string
	model      string
	prompt     string
	promptFile string
	out        string
}

func newGenerateCmd(g *globalOptions, out, errOut io.Writer) *cobra.Command {
	o := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate an image or speech file from a prompt",
		Long:  generateDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), g, out, errOut)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.provider, "provider", "p", "", "provider id (see 'mediagen providers')")
	f.StringVarP(&o.model, "model", "m", "", "model, voice or language; the provider default when empty")
	f.StringVar(&o.prompt, "prompt", "", "prompt or text to speak")
	f.StringVar(&o.promptFile, "prompt-file", "", "read the prompt from a file")
	f.StringVarP(&o.out, "out", "o", "", "destination file path")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (o *generateOptions) request() (generation.Request, error) {
	if (o.prompt == "") == (o.promptFile == "") {
		return generation.Request{}, errors.New("exactly one of --prompt or --prompt-file is required")
	}
	prompt := o.prompt
	if o.promptFile != "" {
		b, err := os.ReadFile(o.promptFile)
		if err != nil {
			return generation.Request{}, fmt.Errorf("read prompt file: %w", err)
		}
		prompt = strings.TrimSpace(string(b))
	}
	return generation.Request{
		ProviderID:      o.provider,
		ModelOrVoice:    o.model,
		Payload:         prompt,
		DestinationPath: o.out,
	}, nil
}

func (o *generateOptions) run(ctx context.Context, g *globalOptions, out, errOut io.Writer) error {
	req, err := o.request()
	if err != nil {
		return err
	}
	app, err := g.newApp(errOut, nil)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		res := app.Dispatcher.Dispatch(ctx, req)
		if !res.OK() {
			fmt.Fprintf(errOut, "%s: %s\n", res.Reason(), res.Failure.Message)
			return errGenerationFailed
		}
		fmt.Fprintln(out, res.FilePath)
		return nil
	})
}
