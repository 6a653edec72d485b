// Package leonardo is the Leonardo AI backend. Generations are asynchronous:
// a submission returns a generation id whose status is polled until
// COMPLETE, after which the first image URL is downloaded.
package leonardo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
	"github.com/fxgurv/ALONE/validation"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "leonardo"
	// DefaultBaseURL is the Leonardo REST API root.
	DefaultBaseURL = "https://cloud.leonardo.ai/api/rest/v1"
	// DefaultModel is used when the request names none.
	DefaultModel = "sd-1.5"
	// PollInterval is the status check cadence Leonardo tolerates.
	PollInterval = time.Second
)

// modelIDs maps the public model names onto Leonardo model ids.
var modelIDs = map[string]string{
	"sd-1.5":   "6bef9f1b-29cb-40c7-b9df-32b51c1f67d3",
	"sd-2.1":   "ac614f96-1082-45bf-be9d-757f2d31c174",
	"creative": "cd2b2a15-9760-4174-a5ff-4d2925057376",
}

var models = []string{"sd-1.5", "sd-2.1", "creative"}

// gjson paths, newest response shape first.
var (
	generationIDPaths = []string{"sdGenerationJob.generationId", "generationId"}
	statusPaths       = []string{"generations_by_pk.status", "status"}
	imageURLPaths     = []string{"generations_by_pk.generated_images.0.url", "generations.0.imageUrl"}
)

// Config configures the backend.
type Config struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type generationRequest struct {
	Prompt    string `json:"prompt"`
	ModelID   string `json:"modelId"`
	NumImages int    `json:"num_images"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Provider submits 1024x1024 generations and reports their status.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates the Leonardo backend.
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

// CheckCredentials reports a missing LEONARDO_API_KEY.
func (p *Provider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return errors.MissingCredential(ProviderName, "LEONARDO_API_KEY")
	}
	return nil
}

// ResolveModel maps a model name onto its id. Raw model ids pass through.
func ResolveModel(name string) (string, error) {
	if id, ok := modelIDs[name]; ok {
		return id, nil
	}
	_, err := uuid.Parse(name)
	if verr := validation.New().Custom(err == nil, "model", fmt.Sprintf("unknown leonardo model %q", name)).Validate(); verr != nil {
		return "", verr
	}
	return name, nil
}

// Submit starts a generation and returns its id.
func (p *Provider) Submit(ctx context.Context, req generation.Request) (generation.JobHandle, error) {
	name := util.Coalesce(req.ModelOrVoice, p.cfg.Model)
	modelID, err := ResolveModel(name)
	if err != nil {
		return generation.JobHandle{}, err
	}
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/generations",
		Body: generationRequest{
			Prompt:    req.Payload,
			ModelID:   modelID,
			NumImages: 1,
			Width:     1024,
			Height:    1024,
		},
	})
	if err != nil {
		return generation.JobHandle{}, fmt.Errorf("leonardo: submit: %w", err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return generation.JobHandle{}, errors.InvalidResponse("leonardo: submit response is not JSON")
	}
	id := firstString(resp.Body, generationIDPaths)
	if id == "" {
		return generation.JobHandle{}, errors.MissingField(ProviderName, "sdGenerationJob.generationId")
	}
	return generation.NewJobHandle(id), nil
}

// Check reads the generation status once.
func (p *Provider) Check(ctx context.Context, job generation.JobHandle) (generation.JobStatus, error) {
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/generations/" + job.ID})
	if err != nil {
		return generation.JobStatus{}, fmt.Errorf("leonardo: check %s: %w", job.ID, err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return generation.JobStatus{}, errors.InvalidResponse("leonardo: status response is not JSON")
	}
	switch status := firstString(resp.Body, statusPaths); status {
	case "":
		return generation.JobStatus{}, errors.MissingField(ProviderName, "generations_by_pk.status")
	case "COMPLETE":
		return generation.JobStatus{
			State:       generation.StateSucceeded,
			ArtifactRef: firstString(resp.Body, imageURLPaths),
		}, nil
	case "FAILED":
		return generation.JobStatus{State: generation.StateFailed, Detail: "generation FAILED"}, nil
	case "PENDING":
		return generation.JobStatus{State: generation.StatePending}, nil
	default:
		return generation.JobStatus{State: generation.StateRunning}, nil
	}
}

// Fetch hands the image URL to the adapter for download.
func (p *Provider) Fetch(_ context.Context, status generation.JobStatus) (generation.Artifact, error) {
	if status.ArtifactRef == "" {
		return generation.Artifact{}, errors.MissingField(ProviderName, "generated_images[0].url")
	}
	return generation.Artifact{URL: status.ArtifactRef}, nil
}

func firstString(body []byte, paths []string) string {
	for _, r := range gjson.GetManyBytes(body, paths...) {
		if s := r.String(); s != "" {
			return s
		}
	}
	return ""
}

var (
	_ generation.JobBackend        = (*Provider)(nil)
	_ generation.CredentialChecker = (*Provider)(nil)
	_ generation.Cataloger         = (*Provider)(nil)
)
