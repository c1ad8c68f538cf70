package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"demystifier-backend/internal/bootstrap"
	"demystifier-backend/internal/events"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/localize"
	"demystifier-backend/internal/pipeline"
	"demystifier-backend/internal/render"
	"demystifier-backend/internal/sessions"
	"demystifier-backend/internal/shared/config"
	"demystifier-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to the document (pdf or txt)")
	persona := flag.String("persona", string(llm.PersonaStudent), "Persona: student, business_owner or lawyer")
	languageName := flag.String("language", cfg.DefaultLanguage, "Output language")
	outPath := flag.String("out", "", "Path to write the analysis JSON (optional)")
	xlsxPath := flag.String("xlsx", "", "Path to write the risk register workbook (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	telemetry.SetOutput(os.Stderr, "text", cfg.LogLevel)

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}
	p, ok := llm.ParsePersona(*persona)
	if !ok {
		exitErr(fmt.Sprintf("unsupported persona: %s", *persona))
	}
	data, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read document: %v", err))
	}

	cfg.LLMProvider = *provider
	cfg.LLMModel = *model
	analyzer, err := bootstrap.BuildAnalyzer(cfg)
	if err != nil {
		exitErr(err.Error())
	}
	source, ok := i18n.Resolve(cfg.SourceLanguage)
	if !ok {
		source = i18n.English
	}
	translator := bootstrap.BuildTranslator(cfg, source)

	hub := events.NewHub()
	orch := pipeline.New(analyzer, translator, hub, pipeline.Options{
		Credentials:      cfg.Credentials(),
		Source:           source,
		MaxDocumentChars: cfg.MaxDocumentChars,
		Diagrams:         render.Mermaid{},
	})
	sess := sessions.NewStore(0, nil).Create()
	sess.SetPersona(p)

	ctx := context.Background()
	lang := localize.New(translator).SetLanguage(ctx, sess, *languageName)

	file := extract.File{Name: filepath.Base(*filePath), Data: data}
	if err := orch.SelectFile(sess, file); err != nil {
		exitErr(fmt.Sprintf("select file: %v", err))
	}

	updates, cancel := hub.Subscribe(sess.ID())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range updates {
			var ev events.Event
			if json.Unmarshal(msg, &ev) == nil && ev.Status != "" {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.State, ev.Status)
			}
		}
	}()

	runErr := orch.Run(ctx, sess)
	cancel()
	<-done
	if runErr != nil {
		exitErr(fmt.Sprintf("analyze (%s): %v", pipeline.Classify(runErr), runErr))
	}

	snap := sess.Snapshot()
	pretty, err := json.MarshalIndent(snap.Analysis, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if *xlsxPath != "" {
		book, err := render.RiskRegister(*snap.Analysis, snap.Labels)
		if err != nil {
			exitErr(fmt.Sprintf("build risk register: %v", err))
		}
		if err := os.WriteFile(*xlsxPath, book, 0o644); err != nil {
			exitErr(fmt.Sprintf("write risk register: %v", err))
		}
	}

	telemetry.Info("analyzedoc.done", map[string]any{"language": lang.Name, "persona": string(p)})
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
