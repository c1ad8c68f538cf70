package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	CORSAllowOrigin    []string
	LLMProvider        string
	LLMModel           string
	LLMTimeout         time.Duration
	LLMTemperature     float64
	LLMMaxOutputTokens int
	GeminiAPIKey       string
	GeminiAPIBase      string
	OpenAIAPIKey       string
	HFToken            string
	HFAPIBase          string
	TranslateTimeout   time.Duration
	TranslateRetryBase time.Duration
	TranslateRPS       float64
	MaxUploadBytes     int64
	MaxDocumentChars   int
	SourceLanguage     string
	DefaultLanguage    string
	SessionIdleTTL     time.Duration
	AnalyzeRatePerMin  float64
	AnalyzeBurst       int
	LogFormat          string
	LogLevel           string
}

// Credentials are the secrets the analysis and translation clients need.
// They are resolved once at startup and handed to the pipeline explicitly.
type Credentials struct {
	AnalysisKey      string
	TranslationToken string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LLMProvider:        provider,
		LLMModel:           getEnv("LLM_MODEL", defaultModel(provider)),
		LLMTimeout:         getSeconds("LLM_TIMEOUT_SECONDS", 120),
		LLMTemperature:     getFloat("LLM_TEMPERATURE", 0.3),
		LLMMaxOutputTokens: getInt("LLM_MAX_OUTPUT_TOKENS", 4096),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiAPIBase:      getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta/models"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		HFToken:            os.Getenv("HF_TOKEN"),
		HFAPIBase:          getEnv("HF_API_BASE", "https://api-inference.huggingface.co/models/"),
		TranslateTimeout:   getSeconds("TRANSLATE_TIMEOUT_SECONDS", 30),
		TranslateRetryBase: time.Duration(getInt("TRANSLATE_RETRY_BASE_MS", 1500)) * time.Millisecond,
		TranslateRPS:       getFloat("TRANSLATE_RPS", 5),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxDocumentChars:   getInt("MAX_DOCUMENT_CHARS", 120000),
		SourceLanguage:     getEnv("SOURCE_LANGUAGE", "English"),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "English"),
		SessionIdleTTL:     getDuration("SESSION_IDLE_TTL", 2*time.Hour),
		AnalyzeRatePerMin:  getFloat("ANALYZE_RATE_PER_MIN", 6),
		AnalyzeBurst:       getInt("ANALYZE_BURST", 3),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if env == "production" && strings.TrimSpace(cfg.Credentials().AnalysisKey) == "" {
		log.Printf("%s is not set; analysis requests will be rejected", keyEnvName(provider))
	}
	return cfg
}

// Credentials returns the secrets for the configured providers.
func (c Config) Credentials() Credentials {
	key := c.GeminiAPIKey
	if c.LLMProvider == "openai" {
		key = c.OpenAIAPIKey
	}
	return Credentials{
		AnalysisKey:      strings.TrimSpace(key),
		TranslationToken: strings.TrimSpace(c.HFToken),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func getSeconds(key string, def int) time.Duration {
	return time.Duration(getInt(key, def)) * time.Second
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-1.5-flash"
}

func keyEnvName(provider string) string {
	if provider == "openai" {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
