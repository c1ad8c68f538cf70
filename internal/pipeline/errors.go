package pipeline

import (
	"context"
	"errors"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/sessions"
)

var (
	ErrNoFile           = errors.New("no file selected")
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size")
	// ErrSuperseded is returned by a run whose results were discarded because
	// a newer run started or the file was cleared.
	ErrSuperseded = errors.New("run superseded")
)

const (
	CodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	CodeMissingCredential    = "MISSING_CREDENTIAL"
	CodeNoFile               = "NO_FILE"
	CodeExtractionFailure    = "EXTRACTION_FAILURE"
	CodeAnalysisServiceError = "ANALYSIS_SERVICE_ERROR"
	CodeMalformedResponse    = "MALFORMED_RESPONSE"
	CodeDocumentTooLarge     = "DOCUMENT_TOO_LARGE"
	CodeCancelled            = "CANCELLED"
	CodeInternal             = "INTERNAL_ERROR"
)

// StageError records the stage a run failed in.
type StageError struct {
	Stage sessions.State
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Classify maps a pipeline error to a stable code.
func Classify(err error) string {
	var (
		extractErr   *extract.Error
		malformedErr *analysis.MalformedResponseError
		serviceErr   *llm.ServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, llm.ErrMissingCredential):
		return CodeMissingCredential
	case errors.Is(err, ErrNoFile):
		return CodeNoFile
	case errors.Is(err, ErrDocumentTooLarge):
		return CodeDocumentTooLarge
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, extract.ErrEmptyDocument), errors.As(err, &extractErr):
		return CodeExtractionFailure
	case errors.As(err, &malformedErr):
		return CodeMalformedResponse
	case errors.As(err, &serviceErr), errors.Is(err, context.DeadlineExceeded):
		return CodeAnalysisServiceError
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case sessions.StateExtracting:
			return CodeExtractionFailure
		case sessions.StateAnalyzing:
			return CodeAnalysisServiceError
		}
	}
	return CodeInternal
}
