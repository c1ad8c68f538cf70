package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/events"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/render"
	"demystifier-backend/internal/sessions"
	"demystifier-backend/internal/shared/config"
	"demystifier-backend/internal/shared/metrics"
	"demystifier-backend/internal/shared/telemetry"
	"demystifier-backend/internal/shared/util"
)

// Status texts shown to the user.
const (
	StatusExtracting  = "Extracting text..."
	StatusAnalyzing   = "Analyzing..."
	StatusTranslating = "Translating results..."
	StatusRendering   = "Rendering results..."
	StatusDone        = "Done"
	StatusFailed      = "Something went wrong. Please try again."
)

// AnalysisTranslator translates a finished analysis. It never fails: on error
// the original analysis is returned with ok=false.
type AnalysisTranslator interface {
	TranslateAnalysis(ctx context.Context, a analysis.Analysis, l i18n.Language) (analysis.Analysis, bool)
}

// Publisher receives status transitions.
type Publisher interface {
	Publish(topic string, ev events.Event)
}

// Options configure an Orchestrator.
type Options struct {
	Credentials      config.Credentials
	Source           i18n.Language
	MaxDocumentChars int
	Diagrams         render.DiagramRenderer
}

// Orchestrator runs Extract, Analyze, Translate and Render for a session.
// Stages of one run are strictly sequential. Starting a run cancels the
// session's previous run, whose later results are discarded.
type Orchestrator struct {
	analyzer   llm.Analyzer
	translator AnalysisTranslator
	publisher  Publisher
	creds      config.Credentials
	source     i18n.Language
	maxChars   int
	diagrams   render.DiagramRenderer
	extract    func(ctx context.Context, f extract.File) (string, error)
}

// New constructs an Orchestrator. translator and publisher may be nil.
func New(analyzer llm.Analyzer, translator AnalysisTranslator, publisher Publisher, opts Options) *Orchestrator {
	source := opts.Source
	if source.Name == "" {
		source = i18n.English
	}
	diagrams := opts.Diagrams
	if diagrams == nil {
		diagrams = render.Mermaid{}
	}
	return &Orchestrator{
		analyzer:   analyzer,
		translator: translator,
		publisher:  publisher,
		creds:      opts.Credentials,
		source:     source,
		maxChars:   opts.MaxDocumentChars,
		diagrams:   diagrams,
		extract:    extract.Extract,
	}
}

// Diagrams returns the diagram renderer used for views.
func (o *Orchestrator) Diagrams() render.DiagramRenderer {
	return o.diagrams
}

// SelectFile validates f and stores it on the session. An unsupported file
// leaves the session untouched.
func (o *Orchestrator) SelectFile(sess *sessions.Session, f extract.File) error {
	format, err := extract.Detect(f.Name, f.ContentType)
	if err != nil {
		telemetry.Warn("pipeline.file_rejected", map[string]any{
			"sessionId":   sess.ID(),
			"name":        f.Name,
			"contentType": f.ContentType,
		})
		return err
	}
	sess.SelectFile(f)
	telemetry.Info("pipeline.file_selected", map[string]any{
		"sessionId": sess.ID(),
		"format":    string(format),
		"bytes":     len(f.Data),
		"sha256":    util.Fingerprint(f.Data),
	})
	o.publish(sess)
	return nil
}

// ClearFile resets the session to idle.
func (o *Orchestrator) ClearFile(sess *sessions.Session) {
	sess.ClearFile()
	o.publish(sess)
}

func (o *Orchestrator) preflight(sess *sessions.Session) (extract.File, error) {
	if strings.TrimSpace(o.creds.AnalysisKey) == "" {
		return extract.File{}, llm.ErrMissingCredential
	}
	f, ok := sess.File()
	if !ok {
		return extract.File{}, ErrNoFile
	}
	return f, nil
}

// Start begins a run in the background and returns once it is registered.
// The run outlives ctx's cancellation but keeps its values.
func (o *Orchestrator) Start(ctx context.Context, sess *sessions.Session) (sessions.Run, error) {
	f, err := o.preflight(sess)
	if err != nil {
		return sessions.Run{}, err
	}
	run := sess.Begin(context.WithoutCancel(ctx))
	metrics.RunsStarted.Inc()
	go func() {
		_ = o.execute(run, sess, f)
	}()
	return run, nil
}

// Run executes a run synchronously. It returns ErrSuperseded when a newer
// run replaced it before it finished.
func (o *Orchestrator) Run(ctx context.Context, sess *sessions.Session) error {
	f, err := o.preflight(sess)
	if err != nil {
		return err
	}
	run := sess.Begin(ctx)
	metrics.RunsStarted.Inc()
	return o.execute(run, sess, f)
}

// execute runs the stages. A panic in any stage fails the run like any other
// internal error so the session can be analyzed again.
func (o *Orchestrator) execute(run sessions.Run, sess *sessions.Session, f extract.File) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("pipeline.panic", map[string]any{
				"sessionId":  sess.ID(),
				"generation": run.Generation,
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			err = o.fail(run, sess, fmt.Errorf("panic: %v", rec))
		}
	}()
	return o.runStages(run, sess, f)
}

func (o *Orchestrator) runStages(run sessions.Run, sess *sessions.Session, f extract.File) error {
	persona := sess.Persona()
	lang, labels := sess.Language()

	var text string
	err := o.stage(run, sess, sessions.StateExtracting, StatusExtracting, func(ctx context.Context) error {
		var err error
		text, err = o.extract(ctx, f)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return extract.ErrEmptyDocument
		}
		if n := utf8.RuneCountInString(text); o.maxChars > 0 && n > o.maxChars {
			return fmt.Errorf("%w: %d characters, limit %d", ErrDocumentTooLarge, n, o.maxChars)
		}
		sess.SetText(run.Generation, text)
		return nil
	})
	if err != nil {
		return o.fail(run, sess, err)
	}

	var result analysis.Analysis
	err = o.stage(run, sess, sessions.StateAnalyzing, StatusAnalyzing, func(ctx context.Context) error {
		var err error
		result, err = o.analyzer.Analyze(ctx, llm.Request{Text: text, Persona: persona, Language: lang.Name})
		return err
	})
	if err != nil {
		return o.fail(run, sess, err)
	}

	if o.translator != nil && !lang.IsSource(o.source) {
		err = o.stage(run, sess, sessions.StateTranslating, StatusTranslating, func(ctx context.Context) error {
			translated, ok := o.translator.TranslateAnalysis(ctx, result, lang)
			if !ok {
				telemetry.Warn("pipeline.translation_skipped", map[string]any{
					"sessionId": sess.ID(),
					"language":  lang.Name,
				})
			}
			result = translated
			return ctx.Err()
		})
		if err != nil {
			return o.fail(run, sess, err)
		}
	}

	var view render.View
	err = o.stage(run, sess, sessions.StateRendering, StatusRendering, func(context.Context) error {
		view = render.Render(result, labels, o.diagrams)
		return nil
	})
	if err != nil {
		return o.fail(run, sess, err)
	}

	if !sess.Commit(run.Generation, result, view, StatusDone) {
		return o.superseded(run, sess)
	}
	metrics.RunsCompleted.Inc()
	telemetry.Info("pipeline.status", map[string]any{
		"sessionId":  sess.ID(),
		"generation": run.Generation,
		"state":      string(sessions.StateDone),
		"status":     StatusDone,
	})
	o.publish(sess)
	return nil
}

// stage moves the session into state, runs fn and records its duration.
func (o *Orchestrator) stage(run sessions.Run, sess *sessions.Session, state sessions.State, status string, fn func(context.Context) error) error {
	if err := run.Ctx.Err(); err != nil {
		return err
	}
	if !sess.Transition(run.Generation, state, status) {
		return ErrSuperseded
	}
	telemetry.Info("pipeline.status", map[string]any{
		"sessionId":  sess.ID(),
		"generation": run.Generation,
		"state":      string(state),
		"status":     status,
	})
	o.publish(sess)

	start := time.Now()
	err := fn(run.Ctx)
	metrics.ObserveStage(string(state), time.Since(start))
	if err != nil {
		return &StageError{Stage: state, Err: err}
	}
	return nil
}

func (o *Orchestrator) fail(run sessions.Run, sess *sessions.Session, err error) error {
	if errors.Is(err, ErrSuperseded) || !sess.Current(run.Generation) {
		return o.superseded(run, sess)
	}
	code := Classify(err)
	if !sess.Fail(run.Generation, StatusFailed, code) {
		return o.superseded(run, sess)
	}
	metrics.IncRunFailed(code)
	telemetry.Error("pipeline.failed", map[string]any{
		"sessionId":  sess.ID(),
		"generation": run.Generation,
		"code":       code,
		"error":      err,
	})
	if o.publisher != nil {
		ev := EventFor(sess.Snapshot(), code)
		ev.State = string(sessions.StateFailed)
		o.publisher.Publish(sess.ID(), ev)
	}
	return err
}

func (o *Orchestrator) superseded(run sessions.Run, sess *sessions.Session) error {
	metrics.RunsSuperseded.Inc()
	telemetry.Info("pipeline.superseded", map[string]any{
		"sessionId":  sess.ID(),
		"generation": run.Generation,
	})
	return ErrSuperseded
}

func (o *Orchestrator) publish(sess *sessions.Session) {
	if o.publisher == nil {
		return
	}
	o.publisher.Publish(sess.ID(), EventFor(sess.Snapshot(), ""))
}

// EventFor builds the status event for a snapshot.
func EventFor(snap sessions.Snapshot, code string) events.Event {
	return events.Event{
		SessionID:  snap.ID,
		Generation: snap.Generation,
		State:      string(snap.State),
		Status:     snap.Status,
		CanAnalyze: snap.CanAnalyze,
		Code:       code,
	}
}
