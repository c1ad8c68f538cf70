package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("HF_TOKEN", " hf-token ")
	t.Setenv("TRANSLATE_RETRY_BASE_MS", "")
	t.Setenv("SESSION_IDLE_TTL", "")

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected default model %q", cfg.LLMModel)
	}
	if cfg.TranslateRetryBase != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s retry base, got %s", cfg.TranslateRetryBase)
	}
	if cfg.SessionIdleTTL != 2*time.Hour {
		t.Fatalf("expected 2h idle ttl, got %s", cfg.SessionIdleTTL)
	}
	creds := cfg.Credentials()
	if creds.AnalysisKey != "g-key" || creds.TranslationToken != "hf-token" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestCredentialsFollowProvider(t *testing.T) {
	cfg := Config{LLMProvider: "openai", GeminiAPIKey: "g", OpenAIAPIKey: "o"}
	if got := cfg.Credentials().AnalysisKey; got != "o" {
		t.Fatalf("expected openai key, got %q", got)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_DOCUMENT_CHARS", "lots")
	t.Setenv("LLM_TEMPERATURE", "-1")
	t.Setenv("SESSION_IDLE_TTL", "soon")

	cfg := Load()
	if cfg.MaxDocumentChars != 120000 {
		t.Fatalf("expected default char cap, got %d", cfg.MaxDocumentChars)
	}
	if cfg.LLMTemperature != 0.3 {
		t.Fatalf("expected default temperature, got %v", cfg.LLMTemperature)
	}
	if cfg.SessionIdleTTL != 2*time.Hour {
		t.Fatalf("expected default ttl, got %s", cfg.SessionIdleTTL)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := map[string]string{
		"prod":        "production",
		" Production": "production",
		"staging":     "staging",
		"local":       "local",
		"":            "dev",
		"whatever":    "dev",
	}
	for in, want := range tests {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}
