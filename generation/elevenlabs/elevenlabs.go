// Package elevenlabs is the ElevenLabs text-to-speech backend.
package elevenlabs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "elevenlabs"
	// DefaultBaseURL is the ElevenLabs API root.
	DefaultBaseURL = "https://api.elevenlabs.io"
	// DefaultVoice is used when the request names none.
	DefaultVoice = "Rachel"
	// DefaultModel is the synthesis model.
	DefaultModel = "eleven_monolingual_v1"
)

var voiceIDs = map[string]string{
	"Rachel": "21m00Tcm4TlvDq8ikWAM",
	"Domi":   "AZnzlk1XvdvUeBnXmlld",
	"Bella":  "EXAVITQu4vr4xnSDxMaL",
	"Antoni": "ErXwobaYiN019PkySvjV",
	"Elli":   "MF3mGyEYCl7XYWbV9V6O",
	"Josh":   "TxGEqnHWrfWFTfGW9XjX",
	"Arnold": "VR6AewLTigWG4xSOukaG",
	"Adam":   "pNInz6obpgDQGcFmaJgB",
	"Sam":    "yoZ06aMxZJJ28mfd3POQ",
}

var voices = []string{"Rachel", "Domi", "Bella", "Antoni", "Elli", "Josh", "Arnold", "Adam", "Sam"}

// Config configures the backend.
type Config struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Voice   string        `yaml:"voice" mapstructure:"voice"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Provider synthesizes mp3 speech.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates the ElevenLabs backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyAuthHeader(cfg.APIKey, "xi-api-key"),
		Headers: map[string]string{"Accept": "audio/mpeg"},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return p.cfg.APIKey != "" }
func (p *Provider) Models() []string                   { return voices }

// CheckCredentials reports a missing ELEVENLABS_API_KEY.
func (p *Provider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return errors.MissingCredential(ProviderName, "ELEVENLABS_API_KEY")
	}
	return nil
}

// ResolveVoice maps a voice name onto its id. Unknown names are treated as
// raw voice ids so custom voices work.
func ResolveVoice(name string) string {
	if id, ok := voiceIDs[name]; ok {
		return id
	}
	return name
}

// Generate synthesizes the text and returns the mp3 bytes.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	voice := util.Coalesce(req.ModelOrVoice, p.cfg.Voice)
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/text-to-speech/" + url.PathEscape(ResolveVoice(voice)),
		Body: speechRequest{
			Text:          req.Payload,
			ModelID:       p.cfg.Model,
			VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
		},
	})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("elevenlabs: text-to-speech: %w", err)
	}
	return generation.Artifact{Data: resp.Body, ContentType: resp.ContentType()}, nil
}

var (
	_ generation.SyncBackend       = (*Provider)(nil)
	_ generation.CredentialChecker = (*Provider)(nil)
	_ generation.Cataloger         = (*Provider)(nil)
)
