// Package prodia is the Prodia backend. A job is queued with a GET, polled
// at /job/{id} until it succeeds, and the image is then downloaded from the
// Prodia image host. Every request carries a browser User-Agent.
package prodia

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "prodia"
	// DefaultBaseURL is the Prodia API root.
	DefaultBaseURL = "https://api.prodia.com"
	// DefaultImageURL hosts finished images.
	DefaultImageURL = "https://images.prodia.xyz"
	// DefaultModel is used when the request names none.
	DefaultModel = "dreamshaper_6BakedVae.safetensors [114c8abb]"
	// PollInterval is the status check cadence.
	PollInterval = 5 * time.Second

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko)"
	negativePrompt = "verybadimagenegative_v1.3"
)

var models = []string{
	"blazing_drive_v10g.safetensors [ca1c1eab]",
	"dreamshaper_6BakedVae.safetensors [114c8abb]",
	"dreamlike-anime-1.0.safetensors [4520e090]",
}

// Config configures the backend.
type Config struct {
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	ImageURL string        `yaml:"image_url" mapstructure:"image_url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider queues Prodia jobs. It needs no key.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	seed   func() int
}

// NewProvider creates the Prodia backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageURL == "" {
		cfg.ImageURL = DefaultImageURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": userAgent},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client, seed: func() int { return rand.IntN(10000) + 1 }}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return true }
func (p *Provider) Models() []string                   { return models }

type submitResponse struct {
	Job string `json:"job"`
}

type jobResponse struct {
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl"`
}

// Submit queues a job.
func (p *Provider) Submit(ctx context.Context, req generation.Request) (generation.JobHandle, error) {
	model := util.Coalesce(req.ModelOrVoice, p.cfg.Model)
	params := map[string]string{
		"new":             "true",
		"prompt":          req.Payload,
		"model":           model,
		"negative_prompt": negativePrompt,
		"steps":           "20",
		"cfg":             "7",
		"seed":            strconv.Itoa(p.seed()),
		// The public endpoint reads "sample"; "sampler" is silently ignored.
		"sample":       "DPM++ 2M Karras",
		"aspect_ratio": "square",
	}
	opts := make([]httpclient.RequestOption, 0, len(params))
	for k, v := range params {
		opts = append(opts, httpclient.WithQueryParam(k, v))
	}

	resp, err := httpclient.Get[submitResponse](p.client, ctx, "/generate", opts...)
	if err != nil {
		return generation.JobHandle{}, fmt.Errorf("prodia: submit: %w", err)
	}
	if resp.Data.Job == "" {
		return generation.JobHandle{}, errors.MissingField(ProviderName, "job")
	}
	return generation.NewJobHandle(resp.Data.Job), nil
}

// Check reads the job status once.
func (p *Provider) Check(ctx context.Context, job generation.JobHandle) (generation.JobStatus, error) {
	resp, err := httpclient.Get[jobResponse](p.client, ctx, "/job/"+url.PathEscape(job.ID),
		httpclient.WithHeader("Accept", "application/json"))
	if err != nil {
		return generation.JobStatus{}, fmt.Errorf("prodia: check %s: %w", job.ID, err)
	}
	switch resp.Data.Status {
	case "":
		return generation.JobStatus{}, errors.MissingField(ProviderName, "status")
	case "succeeded":
		ref := util.Coalesce(resp.Data.ImageURL, p.imageURL(job.ID))
		return generation.JobStatus{State: generation.StateSucceeded, ArtifactRef: ref}, nil
	case "failed":
		return generation.JobStatus{State: generation.StateFailed, Detail: "job failed"}, nil
	case "queued":
		return generation.JobStatus{State: generation.StatePending}, nil
	default:
		return generation.JobStatus{State: generation.StateRunning}, nil
	}
}

// Fetch downloads the finished image. The image host expects the same
// browser User-Agent as the API, so the download goes through the
// provider's own client rather than the shared downloader.
func (p *Provider) Fetch(ctx context.Context, status generation.JobStatus) (generation.Artifact, error) {
	if status.ArtifactRef == "" {
		return generation.Artifact{}, errors.MissingField(ProviderName, "imageUrl")
	}
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: status.ArtifactRef})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("prodia: download: %w", err)
	}
	return generation.Artifact{Data: resp.Body, ContentType: resp.ContentType()}, nil
}

func (p *Provider) imageURL(id string) string {
	return fmt.Sprintf("%s/%s.png?download=1", strings.TrimRight(p.cfg.ImageURL, "/"), id)
}

var (
	_ generation.JobBackend = (*Provider)(nil)
	_ generation.Cataloger  = (*Provider)(nil)
)
