package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesPipelineMetrics(t *testing.T) {
	Register()
	Register()

	RunsStarted.Inc()
	IncRunFailed("MALFORMED_RESPONSE")
	ObserveStage("analyzing", 250*time.Millisecond)
	IncTranslate("ok")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		"demystifier_pipeline_runs_started_total",
		`demystifier_pipeline_runs_failed_total{code="MALFORMED_RESPONSE"}`,
		`demystifier_pipeline_stage_duration_seconds_bucket{stage="analyzing"`,
		`demystifier_translate_requests_total{outcome="ok"}`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in scrape output", want)
		}
	}
}
