// Package pollinations is the Pollinations image backend. The image bytes
// are the body of the submission response.
package pollinations

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "pollinations"
	// DefaultBaseURL is the Pollinations image host.
	DefaultBaseURL = "https://image.pollinations.ai"
)

// Config configures the backend.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider fetches a generated image for a prompt. It needs no key and has
// no model choice.
type Provider struct {
	client *httpclient.Client
	seed   func() int
}

// NewProvider creates the Pollinations backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client, err := httpclient.New(httpclient.Config{Service: ProviderName, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, seed: func() int { return rand.IntN(10000) + 1 }}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// Generate fetches the image. A random suffix on the prompt defeats the
// upstream cache so repeated prompts yield new images.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	path := "/prompt/" + url.PathEscape(req.Payload+fmt.Sprint(p.seed()))
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("pollinations: fetch image: %w", err)
	}
	ct := resp.ContentType()
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return generation.Artifact{}, errors.InvalidResponse("pollinations: unexpected content type " + ct)
	}
	return generation.Artifact{Data: resp.Body, ContentType: ct}, nil
}

var _ generation.SyncBackend = (*Provider)(nil)
