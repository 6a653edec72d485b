// Package gtts is the Google Translate text-to-speech backend. The endpoint
// accepts at most MaxChunk characters per request, so text is split on word
// boundaries and the mp3 segments are concatenated.
package gtts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/httpclient"
	"github.com/fxgurv/ALONE/util"
	"github.com/fxgurv/ALONE/validation"
)

const (
	// ProviderName is the dispatch id.
	ProviderName = "gtts"
	// DefaultBaseURL is the Translate host.
	DefaultBaseURL = "https://translate.google.com"
	// DefaultLanguage is used when the request names none.
	DefaultLanguage = "English"
	// MaxChunk is the longest text accepted per request, in characters.
	MaxChunk = 100
)

var languageCodes = map[string]string{
	"English":    "en",
	"Spanish":    "es",
	"French":     "fr",
	"German":     "de",
	"Italian":    "it",
	"Portuguese": "pt",
	"Russian":    "ru",
	"Japanese":   "ja",
	"Korean":     "ko",
	"Chinese":    "zh-CN",
	"Hindi":      "hi",
}

var languages = []string{
	"English", "Spanish", "French", "German", "Italian", "Portuguese",
	"Russian", "Japanese", "Korean", "Chinese", "Hindi",
}

// supported lists every accepted language name and code.
var supported = func() []string {
	out := append([]string(nil), languages...)
	for _, name := range languages {
		out = append(out, languageCodes[name])
	}
	return out
}()

// Config configures the backend.
type Config struct {
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider synthesizes speech with the unauthenticated Translate endpoint.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates the gTTS backend.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	client, err := httpclient.New(httpclient.Config{
		Service: ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"Referer": "http://translate.google.com/"},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func (p *Provider) Name() string                       { return ProviderName }
func (p *Provider) IsAvailable(_ context.Context) bool { return true }
func (p *Provider) Models() []string                   { return languages }

// ResolveLanguage maps a language name onto its code. Supported codes pass
// through; anything else is a validation failure.
func ResolveLanguage(name string) (string, error) {
	if code, ok := languageCodes[name]; ok {
		return code, nil
	}
	if err := validation.New().OneOf("model", name, supported).Validate(); err != nil {
		return "", err
	}
	return name, nil
}

// Generate synthesizes every chunk in order and concatenates the audio.
func (p *Provider) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	if err := validation.New().Required("prompt", req.Payload).Validate(); err != nil {
		return generation.Artifact{}, err
	}
	lang, err := ResolveLanguage(util.Coalesce(req.ModelOrVoice, p.cfg.Language))
	if err != nil {
		return generation.Artifact{}, err
	}

	chunks := Chunk(req.Payload, MaxChunk)
	var buf bytes.Buffer
	for i, chunk := range chunks {
		resp, err := p.client.Do(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/translate_tts",
			Query: map[string]string{
				"ie":      "UTF-8",
				"q":       chunk,
				"tl":      lang,
				"client":  "tw-ob",
				"total":   strconv.Itoa(len(chunks)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(utf8.RuneCountInString(chunk)),
			},
		})
		if err != nil {
			return generation.Artifact{}, fmt.Errorf("gtts: chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if len(resp.Body) == 0 {
			return generation.Artifact{}, errors.InvalidResponse(fmt.Sprintf("gtts: chunk %d returned no audio", i+1))
		}
		buf.Write(resp.Body)
	}
	return generation.Artifact{Data: buf.Bytes(), ContentType: "audio/mpeg"}, nil
}

// Chunk splits text into pieces of at most max runes, breaking on
// whitespace. Words longer than max are split mid-word.
func Chunk(text string, max int) []string {
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if n > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > max {
			flush()
			r := []rune(word)
			chunks = append(chunks, string(r[:max]))
			word = string(r[max:])
		}
		wn := utf8.RuneCountInString(word)
		if n > 0 && n+1+wn > max {
			flush()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(word)
		n += wn
	}
	flush()
	return chunks
}

var (
	_ generation.SyncBackend = (*Provider)(nil)
	_ generation.Cataloger   = (*Provider)(nil)
)
