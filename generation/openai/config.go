package openai

import (
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/fxgurv/ALONE/httpclient"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultLocalSpeechURL is the keyless OpenAI-compatible speech endpoint.
	DefaultLocalSpeechURL = "https://imseldrith-tts-openai-free.hf.space/v1"

	defaultTimeout = 120 * time.Second
)

// Config configures one OpenAI-compatible backend.
type Config struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

func (c *Config) applyDefaults(baseURL, model string) {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	// Accept a full speech endpoint as well as an API root.
	c.BaseURL = strings.TrimSuffix(strings.TrimRight(c.BaseURL, "/"), "/audio/speech")
	if c.Model == "" {
		c.Model = model
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

func newClient(name string, cfg Config) (*goopenai.Client, error) {
	hc, err := httpclient.New(httpclient.Config{Service: name, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = hc.Unwrap()
	return goopenai.NewClientWithConfig(oc), nil
}
