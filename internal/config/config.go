package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey             string
	CORSAllowedOrigins []string

	// Language model
	LLMProvider     string
	LLMModel        string
	LLMTimeout      time.Duration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// Hosted parse fallback
	LlamaParseAPIKey       string
	LlamaParseBaseURL      string
	LlamaParsePollInterval time.Duration
	LlamaParseMaxPolls     int

	// Token counting
	TokenizerModel string

	// Upload limits
	MaxUploadBytes int64

	// Session state
	SessionTTL     time.Duration
	HistoryDisplay int

	// PDF
	PDFFallbackPdftotext bool

	// Archive
	ArchiveBucket   string
	ArchiveEndpoint string
	AWSRegion       string
	AWSAccessKey    string
	AWSSecretKey    string

	StatsWindow time.Duration
}

// Load reads configuration from the environment. Values from a .env file
// in the working directory fill in variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:             os.Getenv("SMARTEXTRACT_API_KEY"),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LLMProvider:     strings.ToLower(envOr("LLM_PROVIDER", "openai")),
		LLMModel:        os.Getenv("LLM_MODEL"),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 120*time.Second),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),

		LlamaParseAPIKey:       os.Getenv("LLAMA_API_PARSE"),
		LlamaParseBaseURL:      os.Getenv("LLAMAPARSE_BASE_URL"),
		LlamaParsePollInterval: envDuration("LLAMAPARSE_POLL_INTERVAL", 5*time.Second),
		LlamaParseMaxPolls:     envInt("LLAMAPARSE_MAX_POLLS", 60),

		TokenizerModel: envOr("TOKENIZER_MODEL", "gpt-4-turbo"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		SessionTTL:     envDuration("SESSION_TTL", 1*time.Hour),
		HistoryDisplay: envInt("HISTORY_DISPLAY", 5),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ArchiveBucket:   os.Getenv("ARCHIVE_BUCKET"),
		ArchiveEndpoint: os.Getenv("ARCHIVE_ENDPOINT"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		AWSAccessKey:    os.Getenv("AWS_ACCESS_KEY"),
		AWSSecretKey:    os.Getenv("AWS_SECRET_KEY"),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.LlamaParsePollInterval <= 0 {
		cfg.LlamaParsePollInterval = 5 * time.Second
	}
	if cfg.LlamaParseMaxPolls <= 0 {
		cfg.LlamaParseMaxPolls = 60
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.HistoryDisplay <= 0 {
		cfg.HistoryDisplay = 5
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks settings that make the service unable to start. Missing
// hosted-service credentials are not errors; see MissingCredentials.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, anthropic or gemini, got %q", c.LLMProvider)
	}
	if c.ArchiveBucket != "" && c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required when ARCHIVE_BUCKET is set")
	}
	if (c.AWSAccessKey == "") != (c.AWSSecretKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY and AWS_SECRET_KEY must be set together")
	}
	return nil
}

// LLMAPIKey returns the key for the selected provider.
func (c Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// MissingCredentials lists the environment variables of hosted services
// that have no key. Calls to those services fail until the key is set.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.LLMAPIKey() == "" {
		switch c.LLMProvider {
		case "anthropic":
			missing = append(missing, "ANTHROPIC_API_KEY")
		case "gemini":
			missing = append(missing, "GEMINI_API_KEY")
		default:
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	if c.LlamaParseAPIKey == "" {
		missing = append(missing, "LLAMA_API_PARSE")
	}
	return missing
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
