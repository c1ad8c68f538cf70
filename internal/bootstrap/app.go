package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"demystifier-backend/internal/events"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/llm/gemini"
	"demystifier-backend/internal/llm/openai"
	"demystifier-backend/internal/localize"
	"demystifier-backend/internal/pipeline"
	"demystifier-backend/internal/render"
	"demystifier-backend/internal/services/health"
	"demystifier-backend/internal/sessions"
	"demystifier-backend/internal/shared/config"
	"demystifier-backend/internal/shared/server"
	"demystifier-backend/internal/shared/server/middleware"
	"demystifier-backend/internal/shared/telemetry"
	"demystifier-backend/internal/translate"
)

const sweepInterval = time.Minute

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	Analyzer     llm.Analyzer
	Translator   *translate.Client
	Localizer    *localize.Localizer
	Sessions     *sessions.Store
	Hub          *events.Hub
	Orchestrator *pipeline.Orchestrator
	Health       *health.Service
	Limiter      *middleware.RateLimiter
}

// Build prepares dependencies and the router. Missing credentials are not an
// error: analyze requests fail with a precondition error instead.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	analyzer, err := BuildAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	source := sourceLanguage(cfg)
	translator := BuildTranslator(cfg, source)
	diagrams := render.Mermaid{}

	app := &App{
		Config:     cfg,
		Analyzer:   analyzer,
		Translator: translator,
		Localizer:  localize.New(translator),
		Sessions:   sessions.NewStore(cfg.SessionIdleTTL, diagrams),
		Hub:        events.NewHub(),
		Limiter:    middleware.NewRateLimiter(nil),
	}
	app.Sessions.OnEvict(func(id string) {
		app.Hub.Close(id)
		app.Limiter.Forget(id)
	})
	app.Orchestrator = pipeline.New(analyzer, translator, app.Hub, pipeline.Options{
		Credentials:      cfg.Credentials(),
		Source:           source,
		MaxDocumentChars: cfg.MaxDocumentChars,
		Diagrams:         diagrams,
	})
	app.Health = health.NewService(cfg, app.Sessions)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Pipeline: &pipeline.Handler{
			Orch:            app.Orchestrator,
			Sessions:        app.Sessions,
			Localizer:       app.Localizer,
			Hub:             app.Hub,
			MaxUploadBytes:  cfg.MaxUploadBytes,
			DefaultLanguage: cfg.DefaultLanguage,
		},
		Health:  app.Health,
		Limiter: app.Limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":                 cfg.Env,
		"provider":            cfg.LLMProvider,
		"model":               cfg.LLMModel,
		"analysis_configured": cfg.Credentials().AnalysisKey != "",
		"translation_enabled": cfg.Credentials().TranslationToken != "",
		"source_language":     source.Name,
	})
	return app, nil
}

// Start runs background maintenance until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Sessions.Run(ctx, sweepInterval)
	go a.Limiter.Run(ctx, sweepInterval)
}

// BuildAnalyzer returns the analysis client for the configured provider.
func BuildAnalyzer(cfg config.Config) (llm.Analyzer, error) {
	creds := cfg.Credentials()
	switch cfg.LLMProvider {
	case "gemini", "":
		return gemini.NewClient(gemini.Config{
			APIKey:          creds.AnalysisKey,
			Model:           cfg.LLMModel,
			BaseURL:         cfg.GeminiAPIBase,
			Timeout:         cfg.LLMTimeout,
			Temperature:     cfg.LLMTemperature,
			MaxOutputTokens: cfg.LLMMaxOutputTokens,
		}), nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:          creds.AnalysisKey,
			Model:           cfg.LLMModel,
			Timeout:         cfg.LLMTimeout,
			Temperature:     cfg.LLMTemperature,
			MaxOutputTokens: cfg.LLMMaxOutputTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// BuildTranslator returns the translation client.
func BuildTranslator(cfg config.Config, source i18n.Language) *translate.Client {
	return translate.NewClient(translate.Config{
		Token:             cfg.Credentials().TranslationToken,
		BaseURL:           cfg.HFAPIBase,
		Timeout:           cfg.TranslateTimeout,
		RetryBase:         cfg.TranslateRetryBase,
		RequestsPerSecond: cfg.TranslateRPS,
		Source:            source,
	})
}

func sourceLanguage(cfg config.Config) i18n.Language {
	lang, ok := i18n.Resolve(cfg.SourceLanguage)
	if !ok {
		telemetry.Warn("bootstrap.unknown_source_language", map[string]any{"language": cfg.SourceLanguage})
		return i18n.English
	}
	return lang
}
