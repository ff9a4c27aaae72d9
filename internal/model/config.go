package model

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that round-trips through YAML in the
// human form ("30s", "2m") instead of a nanosecond integer.
type Duration time.Duration

// Std returns the wrapped standard duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("parse duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("duration must be a string like %q or a nanosecond count", "30s")
	}
	*d = Duration(n)
	return nil
}

// Config is the full runtime configuration, loaded by the CLI layer
// and passed to the pipeline as typed construction parameters.
type Config struct {
	Endpoints []EndpointConfig `yaml:"endpoints" json:"endpoints"`
	Processor ProcessorConfig  `yaml:"processor" json:"processor"`
	HTTP      HTTPConfig       `yaml:"http" json:"http"`
	LLM       LLMConfig        `yaml:"llm" json:"llm"`
	Output    OutputConfig     `yaml:"output" json:"output"`
}

// EndpointConfig describes one query endpoint to register
type EndpointConfig struct {
	Name      string   `yaml:"name" json:"name"`
	Type      string   `yaml:"type" json:"type"` // "http" or "mock"
	URL       string   `yaml:"url" json:"url"`
	IsDefault bool     `yaml:"is_default" json:"is_default"`
	Timeout   Duration `yaml:"timeout" json:"timeout"`
}

// ProcessorConfig holds per-stage thresholds and options
type ProcessorConfig struct {
	TextSearchLimit        int     `yaml:"text_search_limit" json:"text_search_limit"`
	ResultLimit            int     `yaml:"result_limit" json:"result_limit"`
	EnableCaching          bool    `yaml:"enable_caching" json:"enable_caching"`
	TemplateMatchThreshold float64 `yaml:"template_match_threshold" json:"template_match_threshold"`

	// ConfidenceCombine selects how extraction confidence and endpoint
	// certainty are merged: "product" (weighted geometric blend) or "min".
	ConfidenceCombine string  `yaml:"confidence_combine" json:"confidence_combine"`
	ExtractionWeight  float64 `yaml:"extraction_weight" json:"extraction_weight"`

	// SummaryThreshold is the confidence above which the response uses a
	// single definite sentence instead of a hedged multi-candidate summary.
	SummaryThreshold float64 `yaml:"summary_threshold" json:"summary_threshold"`
}

// HTTPConfig holds shared HTTP concerns for live endpoints
type HTTPConfig struct {
	Timeout      Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string   `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64    `yaml:"max_body_bytes" json:"max_body_bytes"`
	HTTPProxy    string   `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy   string   `yaml:"https_proxy" json:"https_proxy"`
	NoProxy      string   `yaml:"no_proxy" json:"no_proxy"`
}

// LLMConfig configures the optional answer narrative provider
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai", "ollama", "" disables
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose     bool `yaml:"verbose" json:"verbose"`
	MaxDetailed int  `yaml:"max_detailed" json:"max_detailed"` // Cap on detailed result lines shown
}

// DefaultConfig returns the configuration used when no file or flags
// override it: the public nanopub network endpoint plus conservative
// processor thresholds.
func DefaultConfig() *Config {
	return &Config{
		Endpoints: []EndpointConfig{
			{
				Name:      "nanopub-network",
				Type:      "http",
				URL:       "https://query.np.trustyuri.net/sparql",
				IsDefault: true,
				Timeout:   Duration(30 * time.Second),
			},
		},
		Processor: ProcessorConfig{
			TextSearchLimit:        20,
			ResultLimit:            50,
			EnableCaching:          true,
			TemplateMatchThreshold: 0.3,
			ConfidenceCombine:      "product",
			ExtractionWeight:       0.6,
			SummaryThreshold:       0.8,
		},
		HTTP: HTTPConfig{
			Timeout:      Duration(30 * time.Second),
			UserAgent:    "ScienceLive/0.1 (+https://github.com/ScienceLiveHub/science-live-pipeline)",
			MaxBodyBytes: 2_000_000,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			MaxDetailed: 10,
		},
	}
}
