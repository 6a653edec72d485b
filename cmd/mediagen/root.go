package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fxgurv/ALONE/bootstrap"
	"github.com/fxgurv/ALONE/config"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/util"
)

const rootDesc = `
mediagen turns a text prompt into an image or speech file using one of
several hosted providers. Synchronous providers answer in one call; job
providers are polled until they finish or the poll deadline passes.

Credentials are read from the config file, a .env file or the environment
(OPENAI_API_KEY, STABILITY_API_KEY, LEONARDO_API_KEY, ELEVENLABS_API_KEY).
`

type globalOptions struct {
	configFile string
	envFile    string
	debug      bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "mediagen",
		Short:         "generate images and speech from text prompts",
		Long:          rootDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.configFile, "config", "", "path to the config file (default: ./cmd/mediagen/config.yml or ./config.yml)")
	f.StringVar(&g.envFile, "env-file", "", "path to a .env file loaded before reading the environment")
	f.BoolVar(&g.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newGenerateCmd(g, out, errOut),
		newProvidersCmd(g, out, errOut),
		newServeCmd(g, errOut),
		newVersionCmd(out),
	)
	return cmd
}

// load reads the configuration, honouring the global flags.
func (g *globalOptions) load() (*bootstrap.Config, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}
	cfg, err := bootstrap.Load(opts...)
	if err != nil {
		return nil, err
	}
	if g.debug {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newApp loads the config and creates an app that logs to errOut. The
// startup summary goes to summaryOut when it is non-nil.
func (g *globalOptions) newApp(errOut, summaryOut io.Writer, opts ...bootstrap.Option) (*bootstrap.App, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, errOut)
	log.Debug("Credentials loaded", logger.Fields(
		"openai", util.MaskKey(cfg.Credentials.OpenAI),
		"stability", util.MaskKey(cfg.Credentials.Stability),
		"leonardo", util.MaskKey(cfg.Credentials.Leonardo),
		"elevenlabs", util.MaskKey(cfg.Credentials.ElevenLabs),
	))
	opts = append([]bootstrap.Option{bootstrap.WithLogger(log), bootstrap.WithSummaryOutput(summaryOut)}, opts...)
	return bootstrap.NewApp(cfg, opts...)
}
