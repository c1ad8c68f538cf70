package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/events"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/sessions"
	"demystifier-backend/internal/shared/config"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []llm.Request
	result  analysis.Analysis
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req llm.Request) (analysis.Analysis, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	block, started := f.block, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return analysis.Analysis{}, ctx.Err()
		}
	}
	return f.result, f.err
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, llm.Request) (analysis.Analysis, error) {
	panic("nil clause list")
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTranslator struct {
	calls int
	ok    bool
}

func (f *fakeTranslator) TranslateAnalysis(ctx context.Context, a analysis.Analysis, l i18n.Language) (analysis.Analysis, bool) {
	f.calls++
	if !f.ok {
		return a, false
	}
	out := a.Clone()
	out.Summary = "[" + l.Code + "] " + a.Summary
	return out, true
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(topic string, ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.State)
	}
	return out
}

func leaseFile() extract.File {
	return extract.File{Name: "lease.txt", ContentType: "text/plain", Data: []byte("Tenant shall pay $500/month.")}
}

func sampleAnalysis() analysis.Analysis {
	return analysis.Analysis{
		Summary: "Monthly rent of $500.",
		RiskAnalysis: []analysis.RiskItem{
			{Text: "Tenant shall pay $500/month.", RiskLevel: analysis.RiskLow, Explanation: "Standard rent clause."},
		},
	}
}

func newTestOrchestrator(a llm.Analyzer, tr AnalysisTranslator, pub Publisher) *Orchestrator {
	return New(a, tr, pub, Options{
		Credentials:      config.Credentials{AnalysisKey: "test-key"},
		MaxDocumentChars: 1000,
	})
}

func TestRunHappyPathEnglish(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}
	tr := &fakeTranslator{ok: true}
	rec := &recorder{}
	o := newTestOrchestrator(an, tr, rec)
	store := sessions.NewStore(0, nil)
	sess := store.Create()

	require.NoError(t, o.SelectFile(sess, leaseFile()))
	require.NoError(t, o.Run(context.Background(), sess))

	snap := sess.Snapshot()
	assert.Equal(t, sessions.StateDone, snap.State)
	assert.Equal(t, StatusDone, snap.Status)
	assert.True(t, snap.CanAnalyze)
	require.NotNil(t, snap.Analysis)
	require.NotNil(t, snap.View)
	assert.Equal(t, "Monthly rent of $500.", snap.Analysis.Summary)
	for _, item := range snap.Analysis.RiskAnalysis {
		assert.Contains(t, []analysis.RiskLevel{analysis.RiskHigh, analysis.RiskMedium, analysis.RiskLow}, item.RiskLevel)
	}
	assert.Equal(t, 0, tr.calls, "source language is not translated")
	assert.Equal(t, "Tenant shall pay $500/month.", an.calls[0].Text)
	assert.Equal(t, llm.PersonaStudent, an.calls[0].Persona)

	assert.Equal(t, []string{"file_selected", "extracting", "analyzing", "rendering", "done"}, rec.states())
}

func TestRunTranslatesForOtherLanguages(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}
	tr := &fakeTranslator{ok: true}
	rec := &recorder{}
	o := newTestOrchestrator(an, tr, rec)
	sess := sessions.NewStore(0, nil).Create()
	es, _ := i18n.Static(i18n.Language{Name: "Spanish"})
	sess.ApplyLabels(i18n.Language{Name: "Spanish", Code: "es"}, es)

	require.NoError(t, o.SelectFile(sess, leaseFile()))
	require.NoError(t, o.Run(context.Background(), sess))

	snap := sess.Snapshot()
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, "[es] Monthly rent of $500.", snap.Analysis.Summary)
	assert.Equal(t, "Spanish", an.calls[0].Language)
	assert.Equal(t, es.Get(i18n.KeyDocumentSummary), snap.View.Summary.Title)
	assert.Contains(t, rec.states(), "translating")
}

func TestRunTranslationFailureStillCompletes(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}
	tr := &fakeTranslator{ok: false}
	o := newTestOrchestrator(an, tr, nil)
	sess := sessions.NewStore(0, nil).Create()
	sess.ApplyLabels(i18n.Language{Name: "German", Code: "de"}, i18n.EnglishLabels())

	require.NoError(t, o.SelectFile(sess, leaseFile()))
	require.NoError(t, o.Run(context.Background(), sess))
	assert.Equal(t, "Monthly rent of $500.", sess.Snapshot().Analysis.Summary)
}

func TestSelectFileRejectsUnsupportedFormat(t *testing.T) {
	an := &fakeAnalyzer{}
	o := newTestOrchestrator(an, nil, nil)
	sess := sessions.NewStore(0, nil).Create()

	err := o.SelectFile(sess, extract.File{Name: "photo.png", ContentType: "image/png", Data: []byte{0x89}})
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
	assert.Equal(t, CodeUnsupportedFormat, Classify(err))

	snap := sess.Snapshot()
	assert.Equal(t, sessions.StateIdle, snap.State)
	assert.Nil(t, snap.File)
	assert.Equal(t, 0, an.callCount())
}

func TestPreflightFailures(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}

	noKey := New(an, nil, nil, Options{})
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, noKey.SelectFile(sess, leaseFile()))
	err := noKey.Run(context.Background(), sess)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Equal(t, sessions.StateFileSelected, sess.Snapshot().State)

	o := newTestOrchestrator(an, nil, nil)
	empty := sessions.NewStore(0, nil).Create()
	_, err = o.Start(context.Background(), empty)
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, 0, an.callCount())
}

func TestRunFailureKeepsPreviousResults(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}
	rec := &recorder{}
	o := newTestOrchestrator(an, nil, rec)
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, leaseFile()))
	require.NoError(t, o.Run(context.Background(), sess))

	an.err = &llm.ServiceError{Provider: "gemini", Status: 500, Body: "internal"}
	err := o.Run(context.Background(), sess)
	require.Error(t, err)
	assert.Equal(t, CodeAnalysisServiceError, Classify(err))

	snap := sess.Snapshot()
	assert.Equal(t, sessions.StateFileSelected, snap.State)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.True(t, snap.CanAnalyze)
	assert.Equal(t, "Monthly rent of $500.", snap.Analysis.Summary)

	states := rec.states()
	assert.Equal(t, "failed", states[len(states)-1])
}

func TestRunRecoversFromAnalyzerPanic(t *testing.T) {
	rec := &recorder{}
	o := newTestOrchestrator(panickingAnalyzer{}, nil, rec)
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, leaseFile()))

	var err error
	require.NotPanics(t, func() { err = o.Run(context.Background(), sess) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil clause list")
	assert.Equal(t, CodeInternal, Classify(err))

	snap := sess.Snapshot()
	assert.Equal(t, sessions.StateFileSelected, snap.State)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.True(t, snap.CanAnalyze)
	states := rec.states()
	assert.Equal(t, "failed", states[len(states)-1])
}

func TestStartRecoversFromAnalyzerPanic(t *testing.T) {
	o := newTestOrchestrator(panickingAnalyzer{}, nil, nil)
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, leaseFile()))

	_, err := o.Start(context.Background(), sess)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap := sess.Snapshot()
		return snap.State == sessions.StateFileSelected && snap.CanAnalyze && snap.Status == StatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunRejectsEmptyAndOversizedDocuments(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis()}
	o := newTestOrchestrator(an, nil, nil)

	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, extract.File{Name: "blank.txt", Data: []byte("  \n ")}))
	err := o.Run(context.Background(), sess)
	assert.ErrorIs(t, err, extract.ErrEmptyDocument)
	assert.Equal(t, CodeExtractionFailure, Classify(err))

	big := make([]byte, 1001)
	for i := range big {
		big[i] = 'a'
	}
	require.NoError(t, o.SelectFile(sess, extract.File{Name: "big.txt", Data: big}))
	err = o.Run(context.Background(), sess)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.Equal(t, CodeDocumentTooLarge, Classify(err))
	assert.Equal(t, 0, an.callCount())
}

func TestNewerRunSupersedesOlder(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis(), block: make(chan struct{}), started: make(chan struct{}, 2)}
	o := newTestOrchestrator(an, nil, nil)
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, leaseFile()))

	first := make(chan error, 1)
	go func() { first <- o.Run(context.Background(), sess) }()
	<-an.started

	run, err := o.Start(context.Background(), sess)
	require.NoError(t, err)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not stop")
	}

	<-an.started
	close(an.block)
	require.Eventually(t, func() bool {
		return sess.Snapshot().State == sessions.StateDone
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, run.Generation, sess.Snapshot().Generation)
}

func TestClearFileDuringRunDiscardsResults(t *testing.T) {
	an := &fakeAnalyzer{result: sampleAnalysis(), block: make(chan struct{}), started: make(chan struct{}, 1)}
	o := newTestOrchestrator(an, nil, nil)
	sess := sessions.NewStore(0, nil).Create()
	require.NoError(t, o.SelectFile(sess, leaseFile()))

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), sess) }()
	<-an.started
	o.ClearFile(sess)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	snap := sess.Snapshot()
	assert.Equal(t, sessions.StateIdle, snap.State)
	assert.Nil(t, snap.Analysis)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{extract.ErrUnsupportedFormat, CodeUnsupportedFormat},
		{llm.ErrMissingCredential, CodeMissingCredential},
		{&extract.Error{Name: "a.pdf", Format: extract.FormatPDF, Err: errors.New("bad xref")}, CodeExtractionFailure},
		{&analysis.MalformedResponseError{Raw: "nope"}, CodeMalformedResponse},
		{&StageError{Stage: sessions.StateAnalyzing, Err: errors.New("dial tcp: refused")}, CodeAnalysisServiceError},
		{context.Canceled, CodeCancelled},
		{errors.New("boom"), CodeInternal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.err), "%v", tc.err)
	}
}
