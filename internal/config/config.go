package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	// PlaceholderMaxLength is substituted with the title length budget in
	// both prompt templates.
	PlaceholderMaxLength = "{max_length}"
	// PlaceholderTitle is substituted with the current title in the
	// refinement prompt template.
	PlaceholderTitle = "{title}"
)

// DefaultModelCacheTTL is how long a cached model catalogue stays fresh.
var DefaultModelCacheTTL = time.Hour

// Config is the top-level application configuration. Server settings come
// from environment variables (optionally via .env); the backend table,
// prompt templates, and duplicate detection tuning come from a YAML file.
type Config struct {
	Port    string `yaml:"-"`
	GinMode string `yaml:"-"`

	// Logging
	LogLevel  string `yaml:"-"`
	LogFormat string `yaml:"-"`

	// Server
	ServerShutdownTimeoutSeconds int `yaml:"-"`

	// Documents root for the retitle pipeline.
	DocumentsRoot string `yaml:"-"`

	// Model catalogue cache
	ModelCacheTTL          time.Duration `yaml:"-"`
	CatalogTimeoutSeconds  int           `yaml:"-"`
	CatalogRefreshSchedule string        `yaml:"-"` // cron spec; empty disables

	Generation GenerationConfig `yaml:"generation"`
	Duplicates DuplicateConfig  `yaml:"duplicates"`
}

// BackendSettings holds the per-backend endpoint, credential, and selected
// model. Credentials are resolved from the environment variable named by
// APIKeyEnv so the YAML file never contains secrets.
type BackendSettings struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
}

// GenerationConfig is an immutable snapshot of everything the title
// generator needs for one call. It is passed by value; changing settings
// means replacing the whole snapshot, never mutating a shared one.
type GenerationConfig struct {
	// Backend is the id of the active backend in Backends.
	Backend  string                     `yaml:"backend"`
	Backends map[string]BackendSettings `yaml:"backends"`

	Temperature      float64 `yaml:"temperature"`
	MaxTitleLength   int     `yaml:"max_title_length"`
	MaxContentLength int     `yaml:"max_content_length"`

	InitialPrompt string `yaml:"initial_prompt"`
	RefinePrompt  string `yaml:"refine_prompt"`

	LowercaseTitles     bool `yaml:"lowercase_titles"`
	StripForbiddenChars bool `yaml:"strip_forbidden_chars"`
}

// Active returns the settings of the currently selected backend.
func (g GenerationConfig) Active() (BackendSettings, bool) {
	settings, ok := g.Backends[g.Backend]
	return settings, ok
}

// WithBackend returns a copy of the snapshot with a different active backend.
func (g GenerationConfig) WithBackend(id string) GenerationConfig {
	g.Backend = id
	return g
}

// WithModel returns a copy of the snapshot with the active backend's model
// replaced. The backends map is copied so the original snapshot is untouched.
func (g GenerationConfig) WithModel(model string) GenerationConfig {
	backends := make(map[string]BackendSettings, len(g.Backends))
	for id, settings := range g.Backends {
		backends[id] = settings
	}

	settings := backends[g.Backend]
	settings.Model = model
	backends[g.Backend] = settings

	g.Backends = backends
	return g
}

// WithMaxTitleLength returns a copy of the snapshot with a different title
// length budget.
func (g GenerationConfig) WithMaxTitleLength(n int) GenerationConfig {
	g.MaxTitleLength = n
	return g
}

// DuplicateConfig tunes the duplicate title detector. The thresholds and the
// plain-text window are empirically chosen and deliberately configurable.
type DuplicateConfig struct {
	StrictThreshold      float64 `yaml:"strict_threshold"`
	NormalThreshold      float64 `yaml:"normal_threshold"`
	LooseThreshold       float64 `yaml:"loose_threshold"`
	ExactMatchThreshold  float64 `yaml:"exact_match_threshold"`
	PlainTextWindow      int     `yaml:"plain_text_window"`
	MaxLeadingBlankLines int     `yaml:"max_leading_blank_lines"`
}

// Load reads configuration from the environment (and .env if present) plus
// the YAML config file named by CONFIG_FILE (default config.yaml).
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "debug"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),

		ServerShutdownTimeoutSeconds: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30),

		DocumentsRoot: getEnvOrDefault("DOCUMENTS_ROOT", "."),

		ModelCacheTTL:          getEnvAsDuration("MODEL_CACHE_TTL", DefaultModelCacheTTL),
		CatalogTimeoutSeconds:  getEnvAsInt("CATALOG_TIMEOUT_SECONDS", 10),
		CatalogRefreshSchedule: getEnvOrDefault("CATALOG_REFRESH_SCHEDULE", ""),

		Generation: DefaultGenerationConfig(),
		Duplicates: DefaultDuplicateConfig(),
	}

	configFilePath := getEnvOrDefault("CONFIG_FILE", "config.yaml")

	configFile, err := os.Open(configFilePath)
	if err != nil {
		log.Printf("Config file %s not found, using defaults", configFilePath)
	} else {
		defer configFile.Close()
		if err := LoadConfigFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFilePath, err)
		}
	}

	resolveCredentials(&cfg.Generation)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFile decodes YAML configuration from reader into config.
func LoadConfigFile(reader io.Reader, config *Config) error {
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(config); err != nil {
		return err
	}

	return nil
}

// resolveCredentials fills in APIKey for every backend from the environment
// variable named by its APIKeyEnv.
func resolveCredentials(g *GenerationConfig) {
	for id, settings := range g.Backends {
		if settings.APIKeyEnv != "" {
			settings.APIKey = strings.TrimSpace(os.Getenv(settings.APIKeyEnv))
			g.Backends[id] = settings
		}
	}
}

// Validate checks load-time invariants. Prompt templates missing their
// placeholders only produce warnings: substitution simply passes the template
// through literally at call time, which is degraded but not an error.
func (c *Config) Validate() error {
	g := c.Generation

	if g.MaxTitleLength <= 0 {
		return fmt.Errorf("generation.max_title_length must be positive, got %d", g.MaxTitleLength)
	}

	if g.MaxContentLength <= 0 {
		return fmt.Errorf("generation.max_content_length must be positive, got %d", g.MaxContentLength)
	}

	if g.Temperature < 0 || g.Temperature > 1 {
		return fmt.Errorf("generation.temperature must be in [0,1], got %v", g.Temperature)
	}

	if g.Backend == "" {
		return fmt.Errorf("generation.backend is required")
	}

	if !strings.Contains(g.InitialPrompt, PlaceholderMaxLength) {
		log.Printf("Warning: initial prompt template is missing %s; it will be sent as-is", PlaceholderMaxLength)
	}

	if !strings.Contains(g.RefinePrompt, PlaceholderMaxLength) || !strings.Contains(g.RefinePrompt, PlaceholderTitle) {
		log.Printf("Warning: refinement prompt template is missing %s or %s; it will be sent as-is", PlaceholderMaxLength, PlaceholderTitle)
	}

	d := c.Duplicates
	for name, threshold := range map[string]float64{
		"strict_threshold":      d.StrictThreshold,
		"normal_threshold":      d.NormalThreshold,
		"loose_threshold":       d.LooseThreshold,
		"exact_match_threshold": d.ExactMatchThreshold,
	} {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("duplicates.%s must be in [0,1], got %v", name, threshold)
		}
	}

	if d.PlainTextWindow < 0 {
		return fmt.Errorf("duplicates.plain_text_window must not be negative, got %d", d.PlainTextWindow)
	}

	return nil
}

// DefaultGenerationConfig returns the built-in generation settings used when
// no config file overrides them.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Backend: "ollama",
		Backends: map[string]BackendSettings{
			"openai": {
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o-mini",
			},
			"openrouter": {
				BaseURL:   "https://openrouter.ai/api/v1",
				APIKeyEnv: "OPENROUTER_API_KEY",
				Model:     "meta-llama/llama-3.1-8b-instruct",
			},
			"anthropic": {
				BaseURL:   "https://api.anthropic.com",
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Model:     "claude-3-5-haiku-latest",
			},
			"ollama": {
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			"lmstudio": {
				BaseURL: "http://localhost:1234",
				Model:   "",
			},
		},
		Temperature:      0.3,
		MaxTitleLength:   80,
		MaxContentLength: 4000,
		InitialPrompt: "Generate a concise title of at most {max_length} characters for the following note. " +
			"Respond with the title only, no quotes and no explanation.",
		RefinePrompt: "The title \"{title}\" is too long. Shorten it to at most {max_length} characters " +
			"while keeping its meaning. Respond with the shortened title only.",
		LowercaseTitles:     false,
		StripForbiddenChars: true,
	}
}

// DefaultDuplicateConfig returns the built-in duplicate detector tuning.
func DefaultDuplicateConfig() DuplicateConfig {
	return DuplicateConfig{
		StrictThreshold:      0.95,
		NormalThreshold:      0.85,
		LooseThreshold:       0.70,
		ExactMatchThreshold:  0.95,
		PlainTextWindow:      5,
		MaxLeadingBlankLines: 2,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: Failed to parse environment variable %s='%s' as time.Duration, using default %v: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		} else {
			log.Printf("Warning: Failed to parse environment variable %s='%s' as int, using default %d: %v", key, value, defaultValue, err)
		}
	}
	return defaultValue
}
