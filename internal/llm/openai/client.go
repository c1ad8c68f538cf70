package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/shared/telemetry"
)

// Config configures a Client.
type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
	HTTPClient      *http.Client
}

// Client implements llm.Analyzer using the OpenAI Responses API with a strict
// JSON schema output format.
type Client struct {
	client          openai.Client
	hasKey          bool
	model           string
	temperature     float64
	maxOutputTokens int
}

// NewClient constructs an OpenAI client. An empty API key is accepted; Analyze
// then fails with llm.ErrMissingCredential.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	key := strings.TrimSpace(cfg.APIKey)
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Client{
		client:          openai.NewClient(opts...),
		hasKey:          key != "",
		model:           model,
		temperature:     cfg.Temperature,
		maxOutputTokens: maxTokens,
	}
}

// Analyze sends one Responses request and parses the structured output.
func (c *Client) Analyze(ctx context.Context, req llm.Request) (analysis.Analysis, error) {
	if !c.hasKey {
		return analysis.Analysis{}, llm.ErrMissingCredential
	}
	prompt, err := llm.BuildPrompt(req.Persona, req.Language)
	if err != nil {
		return analysis.Analysis{}, err
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(int64(c.maxOutputTokens)),
		Temperature:     openai.Float(c.temperature),
		Instructions:    openai.String(prompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage("DOCUMENT:\n"+req.Text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "LegalDocumentAnalysis",
					Schema:      analysis.StrictSchema(),
					Strict:      openai.Bool(true),
					Description: openai.String("Plain-language analysis of a legal document"),
					Type:        "json_schema",
				},
			},
		},
	}

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return analysis.Analysis{}, &llm.ServiceError{Provider: "openai", Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return analysis.Analysis{}, fmt.Errorf("openai request: %w", err)
	}
	telemetry.Info("llm.response", map[string]any{
		"provider":      "openai",
		"model":         c.model,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	})

	raw := resp.OutputText()
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	parsed, err := analysis.Parse(raw)
	if err != nil {
		return analysis.Analysis{}, err
	}
	return parsed.Analysis, nil
}

var _ llm.Analyzer = (*Client)(nil)
