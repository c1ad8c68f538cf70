package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"demystifier-backend/internal/analysis"
)

// Persona selects the tone and focus of an analysis.
type Persona string

const (
	PersonaStudent       Persona = "student"
	PersonaBusinessOwner Persona = "business_owner"
	PersonaLawyer        Persona = "lawyer"
)

// ParsePersona validates a persona value.
func ParsePersona(raw string) (Persona, bool) {
	switch Persona(strings.ToLower(strings.TrimSpace(raw))) {
	case PersonaStudent:
		return PersonaStudent, true
	case PersonaBusinessOwner:
		return PersonaBusinessOwner, true
	case PersonaLawyer:
		return PersonaLawyer, true
	default:
		return "", false
	}
}

// Request is one analysis call.
type Request struct {
	Text     string
	Persona  Persona
	Language string
}

// Analyzer produces a structured analysis of a legal document.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (analysis.Analysis, error)
}

// ErrMissingCredential is returned before any network call when no API key is configured.
var ErrMissingCredential = errors.New("analysis service credential is not configured")

// ServiceError is a non-success response from the analysis provider.
type ServiceError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s api error: status=%d body=%s", e.Provider, e.Status, truncate(e.Body, 500))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
