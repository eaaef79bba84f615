package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"gopkg.in/yaml.v3"
)

// Provider selects the completion backend
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter" // OpenAI-compatible routing API
	ProviderAnthropic  Provider = "anthropic"  // Direct Anthropic Messages API
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible endpoint of the routing API
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Environment variables holding secrets and deployment overrides
const (
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvBackendKey    = "DASHAI_BACKEND_KEY"
	EnvBackendURL    = "DASHAI_BACKEND_URL"
	EnvUserID        = "DASHAI_USER_ID"
)

// LLMConfig holds completion endpoint configuration
type LLMConfig struct {
	Provider    Provider      `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	TopP        float64       `yaml:"top_p"`
	Stream      bool          `yaml:"stream"`
	AppName     string        `yaml:"app_name"` // Sent as X-Title to OpenRouter
	Referer     string        `yaml:"referer"`  // Sent as HTTP-Referer to OpenRouter
	Timeout     time.Duration `yaml:"timeout"`

	APIKey string `yaml:"-"` // From environment only
}

// BackendConfig holds backend-as-a-service configuration
type BackendConfig struct {
	URL            string        `yaml:"url"`
	RestPath       string        `yaml:"rest_path"`
	FunctionsPath  string        `yaml:"functions_path"`
	SearchFunction string        `yaml:"search_function"`
	IngestFunction string        `yaml:"ingest_function"`
	UserID         string        `yaml:"user_id"`
	Timeout        time.Duration `yaml:"timeout"`

	APIKey string `yaml:"-"` // From environment only
}

// RetrievalConfig holds semantic search configuration
type RetrievalConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   int           `yaml:"limit"`   // Result-count ceiling (default: 3)
	Timeout time.Duration `yaml:"timeout"` // Per-search timeout (default: 10s)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxRetries         int           `yaml:"max_retries"`          // Maximum retries on retryable errors
	BaseDelay          time.Duration `yaml:"base_delay"`           // Base delay for exponential backoff
	MaxDelay           time.Duration `yaml:"max_delay"`            // Maximum delay between retries
	TokensPerMinute    int           `yaml:"tokens_per_minute"`    // Rate limit (tokens/minute)
	EnableRateLimiting bool          `yaml:"enable_rate_limiting"` // Enable proactive rate limiting
}

// ChatConfig holds conversation behaviour
type ChatConfig struct {
	HistoryLimit    int    `yaml:"history_limit"`    // Transcript messages sent per turn (default: 20)
	DefaultSession  string `yaml:"default_session"`  // Name of the protected default session
	DocumentTitle   string `yaml:"document_title"`   // Title used when addRagDocument omits one
	DocumentSource  string `yaml:"document_source"`  // metadata.source for assistant-created documents
	SampleDocuments int    `yaml:"sample_documents"` // Documents embedded on the /rag page (default: 5)
}

// StoreConfig holds local persistence configuration
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file for chat sessions
}

// Config holds the application configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Backend   BackendConfig   `yaml:"backend"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Chat      ChatConfig      `yaml:"chat"`
	Store     StoreConfig     `yaml:"store"`

	// Internal: where config was loaded from
	configPath string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenRouter,
			BaseURL:     DefaultOpenRouterBaseURL,
			Model:       "openai/gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2048,
			TopP:        1,
			AppName:     "dashai",
			Timeout:     90 * time.Second,
		},
		Backend: BackendConfig{
			RestPath:       "/rest/v1",
			FunctionsPath:  "/functions/v1",
			SearchFunction: "semantic-search",
			IngestFunction: "add-rag-document",
			Timeout:        30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			Enabled: true,
			Limit:   3,
			Timeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:         3,
			BaseDelay:          1 * time.Second,
			MaxDelay:           30 * time.Second,
			TokensPerMinute:    60000,
			EnableRateLimiting: true,
		},
		Chat: ChatConfig{
			HistoryLimit:    20,
			DefaultSession:  "General",
			DocumentTitle:   "Note from assistant",
			DocumentSource:  "ai-assistant",
			SampleDocuments: 5,
		},
		Store: StoreConfig{
			Path: ".dashai/sessions.db",
		},
	}
}

// LoadOptions configures config loading behavior
type LoadOptions struct {
	// Path forces a specific config file instead of the search list
	Path string
	// APIKeyOverride takes precedence over the provider's environment variable
	APIKeyOverride string
	// SkipCreate disables writing a default config when none is found
	SkipCreate bool
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration with explicit overrides
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	cfg := DefaultConfig()

	paths := getConfigPaths()
	if opts.Path != "" {
		paths = []string{opts.Path}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, dasherr.ConfigLoadFailed(path, err)
			}
			cfg.configPath = path
			break
		}
	}

	// If no config found, create default
	if cfg.configPath == "" && !opts.SkipCreate && opts.Path == "" {
		if err := cfg.createDefault(); err != nil {
			// Non-fatal: just use defaults
			fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
		}
	}

	cfg.applyEnv()
	if opts.APIKeyOverride != "" {
		cfg.LLM.APIKey = opts.APIKeyOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, dasherr.ConfigLoadFailed(cfg.configPath, err)
	}

	// A missing LLM key is reported by the completion client, not here.
	return cfg, nil
}

// LoadFile reads a single config file on top of defaults and environment.
func LoadFile(path string) (*Config, error) {
	return LoadWithOptions(LoadOptions{Path: path, SkipCreate: true})
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"dashai.yaml",
		".dashai/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dashai", "config.yaml"))
	}

	return paths
}

// loadFromFile loads config from a YAML file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv pulls secrets and deployment overrides from the environment
func (c *Config) applyEnv() {
	c.LLM.APIKey = os.Getenv(c.APIKeyEnv())
	c.Backend.APIKey = os.Getenv(EnvBackendKey)

	if url := os.Getenv(EnvBackendURL); url != "" {
		c.Backend.URL = url
	}
	if user := os.Getenv(EnvUserID); user != "" {
		c.Backend.UserID = user
	}
}

// APIKeyEnv returns the environment variable holding the key for the configured provider
func (c *Config) APIKeyEnv() string {
	if c.LLM.Provider == ProviderAnthropic {
		return EnvAnthropicKey
	}
	return EnvOpenRouterKey
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		return fmt.Errorf("llm.top_p must be within [0, 1], got %v", c.LLM.TopP)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Retrieval.Limit <= 0 {
		return fmt.Errorf("retrieval.limit must be positive, got %d", c.Retrieval.Limit)
	}
	if c.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat.history_limit must be positive, got %d", c.Chat.HistoryLimit)
	}
	return nil
}

// createDefault creates a default config file
func (c *Config) createDefault() error {
	dir := ".dashai"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	c.configPath = path

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# dashai configuration\n# Secrets are read from OPENROUTER_API_KEY / ANTHROPIC_API_KEY / DASHAI_BACKEND_KEY\n\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}
