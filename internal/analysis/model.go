package analysis

import (
	"math"
	"strings"
)

// RiskLevel classifies a clause.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// ParseRiskLevel maps free-form model output onto the three known levels.
// Anything unrecognised is treated as low.
func ParseRiskLevel(raw string) RiskLevel {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case RiskHigh:
		return RiskHigh
	case RiskMedium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Analysis is the structured result of one document analysis. Every field is
// optional; use the *OrDefault accessors when rendering.
type Analysis struct {
	Summary            string                `json:"summary,omitempty" jsonschema:"description=Plain-language overview of the whole document"`
	RiskAnalysis       []RiskItem            `json:"risk_analysis,omitempty" jsonschema:"description=Clauses with their risk classification"`
	Demystification    []DemystificationItem `json:"demystification,omitempty" jsonschema:"description=Section by section plain-language explanations"`
	Balance            *Balance              `json:"balance,omitempty" jsonschema:"description=Who the obligations favour"`
	ProactiveQuestions []string              `json:"proactive_questions,omitempty" jsonschema:"description=Questions to ask before signing"`
	PersonaAdvice      []string              `json:"persona_advice,omitempty" jsonschema:"description=Concrete next steps for the reader"`
	Mermaid            string                `json:"mermaid,omitempty" jsonschema:"description=Mermaid flowchart describing the document process"`
}

// RiskItem is one clause tagged with a risk level.
type RiskItem struct {
	Text        string    `json:"text,omitempty" jsonschema:"description=Clause text quoted or paraphrased from the document"`
	RiskLevel   RiskLevel `json:"risk_level,omitempty" jsonschema:"enum=high,enum=medium,enum=low"`
	Explanation string    `json:"explanation,omitempty"`
}

// DemystificationItem pairs a document section with a plain-language summary.
type DemystificationItem struct {
	Section string `json:"section,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Balance is the giver/receiver split of obligations. Nil percentages mean the
// model did not provide them.
type Balance struct {
	GiverPercent    *float64 `json:"giver_percent,omitempty"`
	ReceiverPercent *float64 `json:"receiver_percent,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
}

// DefaultPercent is used for a missing balance percentage.
const DefaultPercent = 50.0

// BalanceOrDefault returns the giver and receiver percentages, substituting
// DefaultPercent for missing, non-positive or non-finite values.
func (a Analysis) BalanceOrDefault() (giver, receiver float64) {
	giver, receiver = DefaultPercent, DefaultPercent
	if a.Balance == nil {
		return giver, receiver
	}
	if p := a.Balance.GiverPercent; p != nil && usablePercent(*p) {
		giver = *p
	}
	if p := a.Balance.ReceiverPercent; p != nil && usablePercent(*p) {
		receiver = *p
	}
	return giver, receiver
}

func usablePercent(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// BalanceExplanation returns the balance note or "".
func (a Analysis) BalanceExplanation() string {
	if a.Balance == nil {
		return ""
	}
	return a.Balance.Explanation
}

// DiagramOrDefault returns the mermaid source, or DefaultDiagram when empty.
func (a Analysis) DiagramOrDefault() string {
	if strings.TrimSpace(a.Mermaid) == "" {
		return DefaultDiagram
	}
	return a.Mermaid
}

// Clone returns a deep copy of a.
func (a Analysis) Clone() Analysis {
	out := a
	if a.RiskAnalysis != nil {
		out.RiskAnalysis = append([]RiskItem(nil), a.RiskAnalysis...)
	}
	if a.Demystification != nil {
		out.Demystification = append([]DemystificationItem(nil), a.Demystification...)
	}
	if a.ProactiveQuestions != nil {
		out.ProactiveQuestions = append([]string(nil), a.ProactiveQuestions...)
	}
	if a.PersonaAdvice != nil {
		out.PersonaAdvice = append([]string(nil), a.PersonaAdvice...)
	}
	if a.Balance != nil {
		b := *a.Balance
		if b.GiverPercent != nil {
			v := *b.GiverPercent
			b.GiverPercent = &v
		}
		if b.ReceiverPercent != nil {
			v := *b.ReceiverPercent
			b.ReceiverPercent = &v
		}
		out.Balance = &b
	}
	return out
}

// DefaultDiagram is shown when the model returns no diagram.
const DefaultDiagram = `flowchart TD
    A["Document Upload"] --> B["Text Extraction"]
    B --> C["AI Analysis"]
    C --> D["Risk Assessment"]
    D --> E{"Risk Level?"}
    E -->|"High Risk"| F["Immediate Review"]
    E -->|"Medium Risk"| G["Careful Review"]
    E -->|"Low Risk"| H["Standard Review"]
    F --> I["Mitigation Plan"]
    G --> J["Additional Checks"]
    H --> K["Final Review"]
    I --> L["Document Decision"]
    J --> L
    K --> L
    L --> M["Sign & Execute"]

    style A fill:#e1f5fe
    style F fill:#ffebee
    style G fill:#fff3e0
    style H fill:#e8f5e8
    style M fill:#f3e5f5`
