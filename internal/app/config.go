package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/notebook-buddy/backend/internal/platform/envutil"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type Config struct {
	JWTSecret string
	AccessTTL time.Duration

	OpenAIAPIKey   string
	OpenAIModel    string
	EmbedModel     string
	EmbedDimension int

	AnthropicAPIKey string
	AnthropicModel  string

	PineconeAPIKey  string
	PineconeBaseURL string

	RedisAddr       string
	RateLimit       int
	RateLimitWindow time.Duration

	UploadDir      string
	AllowedOrigins []string
	Port           string
}

// fileConfig carries the optional YAML overrides for settings that are
// awkward as environment variables. Environment values always win.
type fileConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	OpenAIModel    string   `yaml:"openai_model"`
	AnthropicModel string   `yaml:"anthropic_model"`
	EmbedModel     string   `yaml:"embed_model"`
	EmbedDimension int      `yaml:"embed_dimension"`
}

func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}

	var fc fileConfig
	if path := envutil.Str("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Config file unreadable; continuing with env only", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &fc); err != nil {
			log.Warn("Config file invalid; continuing with env only", "path", path, "error", err)
		}
	}

	cfg := Config{
		JWTSecret: envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		AccessTTL: time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 86400)) * time.Second,

		OpenAIAPIKey:   envutil.Str("OPENAI_API_KEY", ""),
		OpenAIModel:    envutil.Str("OPENAI_MODEL", firstNonEmpty(fc.OpenAIModel, "gpt-4o")),
		EmbedModel:     envutil.Str("OPENAI_EMBED_MODEL", firstNonEmpty(fc.EmbedModel, "text-embedding-3-large")),
		EmbedDimension: envutil.Int("EMBED_DIMENSION", nonZero(fc.EmbedDimension, 3072)),

		AnthropicAPIKey: envutil.Str("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envutil.Str("ANTHROPIC_MODEL", firstNonEmpty(fc.AnthropicModel, "")),

		PineconeAPIKey:  envutil.Str("PINECONE_API_KEY", ""),
		PineconeBaseURL: envutil.Str("PINECONE_BASE_URL", ""),

		RedisAddr:       envutil.Str("REDIS_ADDR", ""),
		RateLimit:       envutil.Int("DEMO_USER_RATE_LIMIT", 10),
		RateLimitWindow: time.Duration(envutil.Int("DEMO_USER_RATE_WINDOW", 60)) * time.Second,

		UploadDir: envutil.Str("UPLOAD_DIR", "uploads"),
		Port:      envutil.Str("PORT", "8000"),
	}

	cfg.AllowedOrigins = fc.AllowedOrigins
	if origins := envutil.Str("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}

	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonZero(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
