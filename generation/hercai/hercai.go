// Package hercai is the Hercai text2image backend. The submission response
// carries a URL that the sync adapter downloads.
package hercai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "hercai"
	// DefaultBaseURL is the Hercai API root.
	DefaultBaseURL = "https://hercai.onrender.com"
	// DefaultModel is used when the request names none.
	DefaultModel = "v3"
)

var models = []string{"v1", "v2", "v3", "lexica", "prodia", "simurg", "animefy", "raava", "shonin"}

// Config configures the backend.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider generates images with the Hercai models. It needs no key.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates the Hercai backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := httpclient.New(httpclient.Config{Service: ProviderName, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return true }
func (p *Provider) Models() []string                   { return models }

// Generate requests an image and returns its URL.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	model := util.Coalesce(req.ModelOrVoice, p.cfg.Model)
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/" + url.PathEscape(model) + "/text2image",
		Query:  map[string]string{"prompt": req.Payload},
	})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("hercai: text2image: %w", err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return generation.Artifact{}, errors.InvalidResponse("hercai: response is not JSON")
	}
	ref := gjson.GetBytes(resp.Body, "url").String()
	if ref == "" {
		return generation.Artifact{}, errors.MissingField(ProviderName, "url")
	}
	return generation.Artifact{URL: ref}, nil
}

var (
	_ generation.SyncBackend = (*Provider)(nil)
	_ generation.Cataloger   = (*Provider)(nil)
)
