package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/NadavGB86/event-pragmetizer-oss/core/db"
)

type Config struct {
	OTel         OTelConfig
	Redis        RedisConfig
	AnalystLLM   LLMConfig
	GeneratorLLM LLMConfig
	AdvisorLLM   LLMConfig
	Planning     PlanningConfig
	Env          string
	Port         string
	NodeID       int64
	DB           db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string
	SampleRatio    float64 // share of new traces kept; outside (0, 1] keeps all
}

type RedisConfig struct {
	URL         string
	KeyPrefix   string
	AdvisoryTTL time.Duration
}

type LLMConfig struct {
	Provider  string // only "openai" (or an OpenAI-compatible endpoint)
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type PlanningConfig struct {
	Origin        string
	GuidanceMode  string
	AdvisoryCache int
	LLMTimeout    time.Duration
}

// Load reads configuration from the environment. In development a .env file
// is loaded first when present.
func Load() (Config, error) {
	if getEnv("PLANNER_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:    getEnv("PLANNER_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		NodeID: int64(getEnvInt("NODE_ID", 1)),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "event-planner"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("PLANNER_ENV", "development"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		Redis: RedisConfig{
			URL:         getEnv("REDIS_URL", ""),
			KeyPrefix:   getEnv("REDIS_KEY_PREFIX", "planner"),
			AdvisoryTTL: getEnvDuration("ADVISORY_TTL", 24*time.Hour),
		},
		AnalystLLM: LLMConfig{
			Provider:  getEnv("ANALYST_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("ANALYST_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:   getEnv("ANALYST_LLM_BASE_URL", ""),
			Model:     getEnv("ANALYST_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("ANALYST_LLM_MAX_TOKENS", 2048),
		},
		GeneratorLLM: LLMConfig{
			Provider:  getEnv("GENERATOR_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("GENERATOR_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:   getEnv("GENERATOR_LLM_BASE_URL", ""),
			Model:     getEnv("GENERATOR_LLM_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("GENERATOR_LLM_MAX_TOKENS", 8192),
		},
		AdvisorLLM: LLMConfig{
			Provider:  getEnv("ADVISOR_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("ADVISOR_LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:   getEnv("ADVISOR_LLM_BASE_URL", ""),
			Model:     getEnv("ADVISOR_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("ADVISOR_LLM_MAX_TOKENS", 2048),
		},
		Planning: PlanningConfig{
			Origin:        getEnv("PLANNING_ORIGIN", "TLV"),
			GuidanceMode:  getEnv("PLANNING_GUIDANCE_MODE", "guided"),
			AdvisoryCache: getEnvInt("ADVISORY_CACHE_SIZE", 512),
			LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 90*time.Second),
		},
	}

	if !cfg.GeneratorLLM.Enabled() {
		return Config{}, fmt.Errorf("GENERATOR_LLM_API_KEY (or OPENAI_API_KEY) is required")
	}

	switch cfg.Planning.GuidanceMode {
	case "quick", "guided", "deep":
	default:
		return Config{}, fmt.Errorf("PLANNING_GUIDANCE_MODE must be quick, guided or deep, got %q", cfg.Planning.GuidanceMode)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Provider == "openai"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
