package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/shared/metrics"
	"demystifier-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL    = "https://api-inference.huggingface.co/models/"
	defaultRetryBase  = 1500 * time.Millisecond
	defaultMaxRetries = 3
	maxErrorBody      = 4 << 10
)

var models = map[string]string{
	"es": "Helsinki-NLP/opus-mt-en-es",
	"fr": "Helsinki-NLP/opus-mt-en-fr",
	"de": "Helsinki-NLP/opus-mt-en-de",
	"it": "Helsinki-NLP/opus-mt-en-it",
	"pt": "Helsinki-NLP/opus-mt-en-pt",
	"hi": "Helsinki-NLP/opus-mt-en-hi",
	"bn": "Helsinki-NLP/opus-mt-en-bn",
	"ja": "Helsinki-NLP/opus-mt-en-ja",
	"ar": "Helsinki-NLP/opus-mt-en-ar",
}

// ModelFor returns the English->target model for a language.
func ModelFor(l i18n.Language) (string, bool) {
	m, ok := models[l.Code]
	return m, ok
}

// Config configures a Client.
type Config struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	RetryBase  time.Duration
	MaxRetries int
	// RequestsPerSecond paces outgoing calls; zero disables pacing.
	RequestsPerSecond float64
	Source            i18n.Language
	HTTPClient        *http.Client
}

// Client translates English text through the Hugging Face inference API.
type Client struct {
	baseURL    string
	hasToken   bool
	retryBase  time.Duration
	maxRetries int
	source     i18n.Language
	httpClient *http.Client
	limiter    *rate.Limiter
	wait       func(ctx context.Context, d time.Duration) error
}

// Error is a translation call that failed after its retry budget.
type Error struct {
	Model  string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("translate model=%s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("translate model=%s: status=%d body=%s", e.Model, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// NewClient constructs a translation client. Without a token every call is a
// pass-through.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	source := cfg.Source
	if source.Name == "" {
		source = i18n.English
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	token := strings.TrimSpace(cfg.Token)
	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: timeout}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	httpClient.Timeout = baseClient.Timeout

	return &Client{
		baseURL:    base,
		hasToken:   token != "",
		retryBase:  retryBase,
		maxRetries: maxRetries,
		source:     source,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		wait:       sleep,
	}
}

// Enabled reports whether text in l would actually be sent for translation.
func (c *Client) Enabled(l i18n.Language) bool {
	if l.IsSource(c.source) || !c.hasToken {
		return false
	}
	_, ok := ModelFor(l)
	return ok
}

// Source returns the language analysis output is produced in.
func (c *Client) Source() i18n.Language {
	return c.source
}

type translateRequest struct {
	Inputs string `json:"inputs"`
}

type translation struct {
	TranslationText string `json:"translation_text"`
}

// Text translates one English string into l. Empty text, the source language,
// a missing token and unmapped languages return text unchanged. A 503 ("model
// loading") is retried with linearly increasing delays; any other non-success
// status fails immediately.
func (c *Client) Text(ctx context.Context, text string, l i18n.Language) (string, error) {
	if text == "" || !c.Enabled(l) {
		return text, nil
	}
	model, _ := ModelFor(l)
	payload, err := json.Marshal(translateRequest{Inputs: text})
	if err != nil {
		return "", err
	}

	var (
		status int
		body   []byte
	)
	for attempt := 0; ; attempt++ {
		status, body, err = c.post(ctx, model, payload)
		if err != nil {
			metrics.IncTranslate("error")
			return "", &Error{Model: model, Err: err}
		}
		if status != http.StatusServiceUnavailable || attempt >= c.maxRetries {
			break
		}
		delay := c.retryBase * time.Duration(attempt+1)
		metrics.IncTranslate("retry")
		telemetry.Info("translate.retry", map[string]any{
			"model":    model,
			"attempt":  attempt + 1,
			"delay_ms": delay.Milliseconds(),
		})
		if err := c.wait(ctx, delay); err != nil {
			return "", &Error{Model: model, Err: err}
		}
	}

	if status < 200 || status > 299 {
		metrics.IncTranslate("error")
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &Error{Model: model, Status: status, Body: string(body)}
	}
	metrics.IncTranslate("ok")
	return decodeTranslation(body, text), nil
}

func (c *Client) post(ctx context.Context, model string, payload []byte) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+model, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// decodeTranslation accepts either [{"translation_text": ...}] or a bare
// object and returns fallback on any other shape.
func decodeTranslation(body []byte, fallback string) string {
	trimmed := bytes.TrimSpace(body)
	var first translation
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var list []translation
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) == 0 {
			return fallback
		}
		first = list[0]
	case bytes.HasPrefix(trimmed, []byte("{")):
		if err := json.Unmarshal(trimmed, &first); err != nil {
			return fallback
		}
	default:
		return fallback
	}
	if first.TranslationText == "" {
		return fallback
	}
	return first.TranslationText
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
