// Package stability is the Stability AI text-to-image backend. The image is
// returned inline as base64 in the submission response.
package stability

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "stability"
	// DefaultBaseURL is the Stability REST API root.
	DefaultBaseURL = "https://api.stability.ai"
	// DefaultModel is the engine used when the request names none.
	DefaultModel = "stable-diffusion-xl-1024-v1-0"
)

var models = []string{
	"stable-diffusion-xl-1024-v1-0",
	"stable-diffusion-v1-6",
	"stable-diffusion-512-v2-1",
}

// Config configures the backend.
type Config struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type textPrompt struct {
	Text string `json:"text"`
}

type generateRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Samples     int          `json:"samples"`
}

type generateResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// Provider generates 1024x1024 images.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates the Stability backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return p.cfg.APIKey != "" }
func (p *Provider) Models() []string                   { return models }

// CheckCredentials reports a missing STABILITY_API_KEY.
func (p *Provider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return errors.MissingCredential(ProviderName, "STABILITY_API_KEY")
	}
	return nil
}

// Generate submits the prompt and decodes the first returned artifact.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	model := util.Coalesce(req.ModelOrVoice, p.cfg.Model)
	resp, err := httpclient.Post[generateResponse](p.client, ctx,
		"/v1/generation/" + url.PathEscape(model) + "/text-to-image",
		generateRequest{
			TextPrompts: []textPrompt{{Text: req.Payload}},
			CfgScale:    7,
			Height:      1024,
			Width:       1024,
			Samples:     1,
		},
	)
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("stability: generate: %w", err)
	}
	if len(resp.Data.Artifacts) == 0 || resp.Data.Artifacts[0].Base64 == "" {
		return generation.Artifact{}, errors.MissingField(ProviderName, "artifacts[0].base64")
	}
	a := resp.Data.Artifacts[0]
	if a.FinishReason == "ERROR" {
		return generation.Artifact{}, errors.Upstream(ProviderName, 0, "generation finished with ERROR")
	}
	data, err := base64.StdEncoding.DecodeString(a.Base64)
	if err != nil {
		return generation.Artifact{}, errors.InvalidResponse("stability: artifact is not valid base64").WithCause(err)
	}
	return generation.Artifact{Data: data, ContentType: "image/png"}, nil
}

var (
	_ generation.SyncBackend       = (*Provider)(nil)
	_ generation.CredentialChecker = (*Provider)(nil)
	_ generation.Cataloger         = (*Provider)(nil)
)
