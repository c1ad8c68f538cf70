package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-1.5-flash"
	maxErrorBody   = 64 << 10
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

// Client implements llm.Analyzer using the Gemini generateContent endpoint.
type Client struct {
	apiKey          string
	model           string
	baseURL         string
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client
}

// NewClient constructs a Gemini client. An empty API key is accepted; Analyze
// then fails with llm.ErrMissingCredential.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
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
	return &Client{
		apiKey:          strings.TrimSpace(cfg.APIKey),
		model:           model,
		baseURL:         base,
		temperature:     cfg.Temperature,
		maxOutputTokens: maxTokens,
		httpClient:      httpClient,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// Analyze sends exactly one generateContent request and parses the returned payload.
func (c *Client) Analyze(ctx context.Context, req llm.Request) (analysis.Analysis, error) {
	if c.apiKey == "" {
		return analysis.Analysis{}, llm.ErrMissingCredential
	}
	prompt, err := llm.BuildPrompt(req.Persona, req.Language)
	if err != nil {
		return analysis.Analysis{}, err
	}

	raw, err := c.generate(ctx, llm.DocumentMessage(prompt, req.Text))
	if err != nil {
		return analysis.Analysis{}, err
	}

	parsed, err := analysis.Parse(raw)
	if err != nil {
		return analysis.Analysis{}, err
	}
	if parsed.Strategy != analysis.StrategyStrict || len(parsed.Adjusted) > 0 {
		telemetry.Warn("llm.response.recovered", map[string]any{
			"provider": "gemini",
			"model":    c.model,
			"strategy": string(parsed.Strategy),
			"adjusted": parsed.Adjusted,
		})
	}
	return parsed.Analysis, nil
}

func (c *Client) generate(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: message}}}},
		GenerationConfig: generationConfig{
			Temperature:      c.temperature,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", redact(err, c.apiKey))
		}
		return "", fmt.Errorf("gemini request: %w", redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &llm.ServiceError{Provider: "gemini", Status: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &analysis.MalformedResponseError{Raw: string(body), Cause: fmt.Errorf("gemini envelope: %w", err)}
	}

	fields := map[string]any{
		"provider":    "gemini",
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
		"candidates":  len(parsed.Candidates),
	}
	if u := parsed.UsageMetadata; u != nil {
		fields["prompt_tokens"] = u.PromptTokenCount
		fields["output_tokens"] = u.CandidatesTokenCount
		fields["total_tokens"] = u.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "{}", nil
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "{}", nil
	}
	return text, nil
}

// redact removes the API key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	escaped := url.QueryEscape(key)
	if !strings.Contains(msg, key) && !strings.Contains(msg, escaped) {
		return err
	}
	msg = strings.ReplaceAll(msg, escaped, "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

var _ llm.Analyzer = (*Client)(nil)
