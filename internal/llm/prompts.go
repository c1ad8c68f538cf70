package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"demystifier-backend/internal/analysis"
)

var (
	//go:embed prompts/analysis_v1.txt
	promptAnalysisV1 string
	//go:embed prompts/persona_student.txt
	personaStudent string
	//go:embed prompts/persona_business_owner.txt
	personaBusinessOwner string
	//go:embed prompts/persona_lawyer.txt
	personaLawyer string
	//go:embed prompts/persona_general.txt
	personaGeneral string
)

var analysisTemplate = template.Must(template.New("analysis_v1").Parse(promptAnalysisV1))

// PersonaGuidance returns the instruction block for a persona. Unknown personas
// get the general-audience block.
func PersonaGuidance(p Persona) string {
	switch p {
	case PersonaStudent:
		return strings.TrimSpace(personaStudent)
	case PersonaBusinessOwner:
		return strings.TrimSpace(personaBusinessOwner)
	case PersonaLawyer:
		return strings.TrimSpace(personaLawyer)
	default:
		return strings.TrimSpace(personaGeneral)
	}
}

// BuildPrompt renders the instruction text sent ahead of the document.
func BuildPrompt(persona Persona, language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	var b strings.Builder
	err := analysisTemplate.Execute(&b, struct {
		Language        string
		Schema          string
		PersonaGuidance string
	}{
		Language:        language,
		Schema:          analysis.SchemaJSON(),
		PersonaGuidance: PersonaGuidance(persona),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// DocumentMessage joins the instructions and the document into the single user
// message both providers receive.
func DocumentMessage(prompt, text string) string {
	return prompt + "\n\nDOCUMENT:\n" + text
}
