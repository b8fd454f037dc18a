package model

import "time"

// Config is the complete evitrend configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Classifier   ClassifierConfig   `yaml:"classifier" mapstructure:"classifier"`
	Story        StoryConfig        `yaml:"story" mapstructure:"story"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
}

// LLMConfig selects and reaches the language model provider
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ClassifierConfig tunes the per-evidence correctness check
type ClassifierConfig struct {
	Model       string  `yaml:"model,omitempty" mapstructure:"model"` // Overrides llm.model
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoryConfig tunes narrative generation
type StoryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Model       string  `yaml:"model,omitempty" mapstructure:"model"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig controls the verdict cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig bounds the request rate against the LLM provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Per-provider overrides keyed by provider name (openai, anthropic, ollama)
	Providers map[string]ProviderRate `yaml:"providers,omitempty" mapstructure:"providers"`
}

// ProviderRate overrides the default rate for one provider. A non-positive
// rate means unlimited.
type ProviderRate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls exported artifacts
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	Verbose   bool   `yaml:"verbose" mapstructure:"verbose"`
	WriteTSV  bool   `yaml:"write_tsv" mapstructure:"write_tsv"`
	WriteXLSX bool   `yaml:"write_xlsx" mapstructure:"write_xlsx"`
	WriteHTML bool   `yaml:"write_html" mapstructure:"write_html"`
}

// AnalysisConfig controls the trend report
type AnalysisConfig struct {
	Mode              string `yaml:"mode" mapstructure:"mode"` // pooled or target
	ShiftDisplayLimit int    `yaml:"shift_display_limit" mapstructure:"shift_display_limit"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  30,
		},
		Classifier: ClassifierConfig{
			Temperature: 0.0,
			MaxTokens:   5,
		},
		Story: StoryConfig{
			Enabled:     true,
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".evitrend-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
			Providers: map[string]ProviderRate{
				"ollama": {RequestsPerSecond: 0}, // local model, no quota
			},
		},
		Output: OutputConfig{
			Dir:      "./results",
			WriteTSV: true,
		},
		Analysis: AnalysisConfig{
			Mode:              "pooled",
			ShiftDisplayLimit: 5,
		},
	}
}
