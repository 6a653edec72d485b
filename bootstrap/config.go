package bootstrap

import (
	"fmt"
	"time"

	"github.com/fxgurv/ALONE/artifact"
	"github.com/fxgurv/ALONE/config"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/observability"
	"github.com/fxgurv/ALONE/resilience"
	"github.com/fxgurv/ALONE/server"
)

// ServiceName is the default service name and config search key.
const ServiceName = "mediagen"

// Config is the application configuration. It is loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Credentials   Credentials               `yaml:"credentials" mapstructure:"credentials"`
	Output        artifact.Config           `yaml:"output" mapstructure:"output"`
	HTTP          HTTPConfig                `yaml:"http" mapstructure:"http"`
	Providers     map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Server        server.Config             `yaml:"server" mapstructure:"server"`
	Observability observability.Config      `yaml:"observability" mapstructure:"observability"`
}

// Credentials holds provider API keys. An empty key disables the providers
// that need it; requests to them fail with AUTH_ERROR.
type Credentials struct {
	OpenAI     string `yaml:"openai" mapstructure:"openai"`
	Stability  string `yaml:"stability" mapstructure:"stability"`
	Leonardo   string `yaml:"leonardo" mapstructure:"leonardo"`
	ElevenLabs string `yaml:"elevenlabs" mapstructure:"elevenlabs"`
}

// HTTPConfig holds settings shared by every outbound client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RateLimit throttles artifact downloads. A zero rate disables it.
	RateLimit resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ProviderConfig overrides one provider's endpoint, default model or voice,
// and poll policy.
type ProviderConfig struct {
	BaseURL string                `yaml:"base_url" mapstructure:"base_url"`
	Model   string                `yaml:"model" mapstructure:"model"`
	Timeout time.Duration         `yaml:"timeout" mapstructure:"timeout"`
	Poll    generation.PollPolicy `yaml:"poll" mapstructure:"poll"`
}

// envBindings maps config keys onto their conventional environment names.
var envBindings = map[string]string{
	"credentials.openai":             "OPENAI_API_KEY",
	"credentials.stability":          "STABILITY_API_KEY",
	"credentials.leonardo":           "LEONARDO_API_KEY",
	"credentials.elevenlabs":         "ELEVENLABS_API_KEY",
	"providers.localai-tts.base_url": "LOCAL_AI_URL",
	"output.dir":                     "MEDIAGEN_OUTPUT_DIR",
	"observability.endpoint":         "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// Load reads the config file, .env and environment, then applies defaults
// and validates.
func Load(opts ...config.LoaderOption) (*Config, error) {
	all := []config.LoaderOption{
		config.WithDefaults(map[string]any{"name": ServiceName}),
	}
	for key, env := range envBindings {
		all = append(all, config.WithEnvBinding(key, env))
	}
	all = append(all, opts...)

	var cfg Config
	if err := config.LoadConfig(ServiceName, &cfg, all...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Output.ApplyDefaults()
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 60 * time.Second
	}
	if c.HTTP.RateLimit.Name == "" {
		c.HTTP.RateLimit.Name = "download"
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("config.output: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.HTTP.RateLimit.Rate < 0 {
		return fmt.Errorf("config.http.rate_limit.rate must not be negative")
	}
	for id, p := range c.Providers {
		if p.Poll.Interval < 0 || p.Poll.Deadline < 0 {
			return fmt.Errorf("config.providers.%s.poll: durations must not be negative", id)
		}
	}
	return nil
}

// Provider returns the overrides for id, with the shared HTTP timeout
// applied when the provider sets none.
func (c *Config) Provider(id string) ProviderConfig {
	p := c.Providers[id]
	if p.Timeout <= 0 {
		p.Timeout = c.HTTP.Timeout
	}
	return p
}
