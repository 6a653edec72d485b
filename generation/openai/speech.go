package openai

import (
	"context"
	"fmt"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/util"
	"github.com/fxgurv/ALONE/validation"
)

const (
	// SpeechProviderName is the dispatch id of OpenAI text-to-speech.
	SpeechProviderName = "openai-tts"
	// LocalSpeechProviderName is the dispatch id of the keyless
	// OpenAI-compatible speech endpoint.
	LocalSpeechProviderName = "localai-tts"
)

var voices = []string{
	string(goopenai.VoiceAlloy),
	string(goopenai.VoiceEcho),
	string(goopenai.VoiceFable),
	string(goopenai.VoiceOnyx),
	string(goopenai.VoiceNova),
	string(goopenai.VoiceShimmer),
}

// MaxSpeechInput is the longest text the speech endpoint accepts.
const MaxSpeechInput = 4096

// Speech synthesizes mp3 audio through the /audio/speech endpoint.
type Speech struct {
	name        string
	cfg         Config
	client      *goopenai.Client
	requiresKey bool
}

// NewSpeech creates the OpenAI tts-1 backend.
func NewSpeech(cfg Config) (*Speech, error) {
	cfg.applyDefaults(DefaultBaseURL, string(goopenai.TTSModel1))
	return newSpeech(SpeechProviderName, cfg, true)
}

// NewLocalSpeech creates a backend for an OpenAI-compatible speech server
// that needs no key.
func NewLocalSpeech(cfg Config) (*Speech, error) {
	cfg.applyDefaults(DefaultLocalSpeechURL, string(goopenai.TTSModel1))
	return newSpeech(LocalSpeechProviderName, cfg, false)
}

func newSpeech(name string, cfg Config, requiresKey bool) (*Speech, error) {
	client, err := newClient(name, cfg)
	if err != nil {
		return nil, err
	}
	return &Speech{name: name, cfg: cfg, client: client, requiresKey: requiresKey}, nil
}

func (s *Speech) Name() string                       { return s.name }
func (s *Speech) IsAvailable(_ context.Context) bool { return s.CheckCredentials() == nil }
func (s *Speech) Models() []string                   { return voices }

// CheckCredentials reports a missing OPENAI_API_KEY for the hosted backend.
func (s *Speech) CheckCredentials() error {
	if s.requiresKey && s.cfg.APIKey == "" {
		return errors.MissingCredential(s.name, "OPENAI_API_KEY")
	}
	return nil
}

// Generate synthesizes req.Payload with the voice in req.ModelOrVoice.
func (s *Speech) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	voice := util.Coalesce(req.ModelOrVoice, string(goopenai.VoiceAlloy))
	if err := validation.New().
		OneOf("model", voice, voices).
		MaxLength("prompt", req.Payload, MaxSpeechInput).
		Validate(); err != nil {
		return generation.Artifact{}, err
	}
	resp, err := s.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(s.cfg.Model),
		Input:          req.Payload,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
		Speed:          1,
	})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("%s: create speech: %w", s.name, classify(s.name, err))
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return generation.Artifact{}, errors.Upstream(s.name, 0, "read audio: "+err.Error()).WithCause(err)
	}
	return generation.Artifact{Data: data, ContentType: "audio/mpeg"}, nil
}

var (
	_ generation.SyncBackend       = (*Speech)(nil)
	_ generation.CredentialChecker = (*Speech)(nil)
)
