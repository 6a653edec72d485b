package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/generation/elevenlabs"
	"github.com/fxgurv/ALONE/generation/gtts"
	"github.com/fxgurv/ALONE/generation/hercai"
	"github.com/fxgurv/ALONE/generation/leonardo"
	"github.com/fxgurv/ALONE/generation/openai"
	"github.com/fxgurv/ALONE/generation/pollinations"
	"github.com/fxgurv/ALONE/generation/prodia"
	"github.com/fxgurv/ALONE/generation/stability"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/observability"
)

// NewDispatcher builds the artifact writer, the shared downloader and every
// provider backend, and registers them on a new dispatcher.
func NewDispatcher(cfg *Config, log *logger.Logger, metrics *observability.Metrics) (*generation.Dispatcher, error) {
	writer, err := artifact.NewLocal(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("artifact writer: %w", err)
	}

	dlCfg := httpclient.Config{Service: "download", Timeout: cfg.HTTP.Timeout}
	if cfg.HTTP.RateLimit.Rate > 0 {
		rl := cfg.HTTP.RateLimit
		dlCfg.RateLimiter = &rl
	}
	downloader, err := httpclient.New(dlCfg)
	if err != nil {
		return nil, fmt.Errorf("downloader: %w", err)
	}

	opts := []generation.Option{
		generation.WithDownloader(downloader),
		generation.WithLogger(log.WithComponent("generation")),
		generation.WithMetrics(metrics),
	}
	d := generation.NewDispatcher(
		generation.WithServiceName(cfg.Name),
		generation.WithDispatchLogger(log.WithComponent("dispatcher")),
		generation.WithDispatchMetrics(metrics),
	)

	syncs, err := syncBackends(cfg)
	if err != nil {
		return nil, err
	}
	for _, b := range syncs {
		d.Register(generation.NewSync(b, writer, opts...))
	}

	jobs, err := jobBackends(cfg)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		d.Register(generation.NewAsyncJob(j.backend, writer, j.policy, opts...))
	}
	return d, nil
}

func syncBackends(cfg *Config) ([]generation.SyncBackend, error) {
	var (
		backends []generation.SyncBackend
		errs     []error
	)
	add := func(b generation.SyncBackend, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		backends = append(backends, b)
	}

	p := cfg.Provider(openai.ImageProviderName)
	add(asSync(openai.NewImage(openai.Config{APIKey: cfg.Credentials.OpenAI, BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(openai.SpeechProviderName)
	add(asSync(openai.NewSpeech(openai.Config{APIKey: cfg.Credentials.OpenAI, BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(openai.LocalSpeechProviderName)
	add(asSync(openai.NewLocalSpeech(openai.Config{BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(stability.ProviderName)
	add(asSync(stability.NewProvider(stability.Config{APIKey: cfg.Credentials.Stability, BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(hercai.ProviderName)
	add(asSync(hercai.NewProvider(hercai.Config{BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(pollinations.ProviderName)
	add(asSync(pollinations.NewProvider(pollinations.Config{BaseURL: p.BaseURL, Timeout: p.Timeout})))

	p = cfg.Provider(elevenlabs.ProviderName)
	add(asSync(elevenlabs.NewProvider(elevenlabs.Config{APIKey: cfg.Credentials.ElevenLabs, BaseURL: p.BaseURL, Voice: p.Model, Timeout: p.Timeout})))

	p = cfg.Provider(gtts.ProviderName)
	add(asSync(gtts.NewProvider(gtts.Config{BaseURL: p.BaseURL, Language: p.Model, Timeout: p.Timeout})))

	if len(errs) > 0 {
		return nil, fmt.Errorf("sync backends: %w", errors.Join(errs...))
	}
	return backends, nil
}

type jobBackend struct {
	backend generation.JobBackend
	policy  generation.PollPolicy
}

func jobBackends(cfg *Config) ([]jobBackend, error) {
	p := cfg.Provider(leonardo.ProviderName)
	leo, err := leonardo.NewProvider(leonardo.Config{APIKey: cfg.Credentials.Leonardo, BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})
	if err != nil {
		return nil, fmt.Errorf("leonardo: %w", err)
	}
	leoPolicy := pollPolicy(p.Poll, leonardo.PollInterval)

	p = cfg.Provider(prodia.ProviderName)
	pro, err := prodia.NewProvider(prodia.Config{BaseURL: p.BaseURL, Model: p.Model, Timeout: p.Timeout})
	if err != nil {
		return nil, fmt.Errorf("prodia: %w", err)
	}
	proPolicy := pollPolicy(p.Poll, prodia.PollInterval)

	return []jobBackend{
		{backend: leo, policy: leoPolicy},
		{backend: pro, policy: proPolicy},
	}, nil
}

// pollPolicy applies the provider's own cadence when the config sets none.
func pollPolicy(p generation.PollPolicy, interval time.Duration) generation.PollPolicy {
	if p.Interval <= 0 {
		p.Interval = interval
	}
	return p.WithDefaults()
}

// asSync adapts a typed constructor result to the SyncBackend interface
// without turning a nil pointer into a non-nil interface.
func asSync[B generation.SyncBackend](b B, err error) (generation.SyncBackend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
