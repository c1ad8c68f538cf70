package analysis

import (
	"errors"
	"reflect"
	"testing"
)

const wellFormed = `{
  "summary": "A residential lease between Landlord and Tenant.",
  "risk_analysis": [
    {"text": "Tenant shall pay $500/month.", "risk_level": "low", "explanation": "Standard rent clause."},
    {"text": "Tenant shall indemnify Landlord for all claims.", "risk_level": "high", "explanation": "You pay for damages even if not at fault."}
  ],
  "demystification": [{"section": "Rent", "summary": "You pay 500 each month."}],
  "balance": {"giver_percent": 60, "receiver_percent": 40, "explanation": "Slightly favours the landlord."},
  "proactive_questions": ["Can the rent increase?"],
  "persona_advice": ["Ask for a copy of the inspection report."],
  "mermaid": "flowchart TD\n A-->B"
}`

func TestParseStrict(t *testing.T) {
	got, err := Parse(wellFormed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Strategy != StrategyStrict {
		t.Fatalf("expected strict strategy, got %s", got.Strategy)
	}
	giver, receiver := 60.0, 40.0
	want := Analysis{
		Summary: "A residential lease between Landlord and Tenant.",
		RiskAnalysis: []RiskItem{
			{Text: "Tenant shall pay $500/month.", RiskLevel: RiskLow, Explanation: "Standard rent clause."},
			{Text: "Tenant shall indemnify Landlord for all claims.", RiskLevel: RiskHigh, Explanation: "You pay for damages even if not at fault."},
		},
		Demystification:    []DemystificationItem{{Section: "Rent", Summary: "You pay 500 each month."}},
		Balance:            &Balance{GiverPercent: &giver, ReceiverPercent: &receiver, Explanation: "Slightly favours the landlord."},
		ProactiveQuestions: []string{"Can the rent increase?"},
		PersonaAdvice:      []string{"Ask for a copy of the inspection report."},
		Mermaid:            "flowchart TD\n A-->B",
	}
	if !reflect.DeepEqual(got.Analysis, want) {
		t.Fatalf("parsed analysis mismatch:\n got %#v\nwant %#v", got.Analysis, want)
	}
	if len(got.Adjusted) != 0 {
		t.Fatalf("expected no adjustments, got %v", got.Adjusted)
	}
}

func TestParseProseWrapped(t *testing.T) {
	raw := "Sure! Here is the analysis you asked for:\n```json\n" + wellFormed + "\n```\nLet me know if you need more."
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Strategy != StrategyOuterBraces {
		t.Fatalf("expected outer_braces strategy, got %s", got.Strategy)
	}
	strict, _ := Parse(wellFormed)
	if !reflect.DeepEqual(got.Analysis, strict.Analysis) {
		t.Fatalf("expected recovered payload to equal strict parse")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "I could not analyze this document."},
		{name: "empty", raw: ""},
		{name: "broken braces", raw: "result: {summary: nope}"},
		{name: "wrong types", raw: `{"summary": 42}`},
		{name: "list of strings expected", raw: `{"risk_analysis": "none"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResponseError, got %v", err)
			}
			if malformed.Raw != tt.raw {
				t.Fatalf("expected raw payload kept on error")
			}
		})
	}
}

func TestParseEmptyObject(t *testing.T) {
	got, err := Parse("{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Analysis, Analysis{}) {
		t.Fatalf("expected zero analysis, got %#v", got.Analysis)
	}
}

func TestParseSanitizesOptionalFields(t *testing.T) {
	raw := `{
	  "summary": null,
	  "risk_analysis": [{"text": "x", "risk_level": " HIGH "}, {"text": "y", "risk_level": "critical"}],
	  "balance": {"giver_percent": "70%", "receiver_percent": null},
	  "persona_advice": "Read it twice."
	}`
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := got.Analysis
	if a.RiskAnalysis[0].RiskLevel != RiskHigh || a.RiskAnalysis[1].RiskLevel != RiskLow {
		t.Fatalf("unexpected risk levels %+v", a.RiskAnalysis)
	}
	if a.Balance == nil || a.Balance.GiverPercent == nil || *a.Balance.GiverPercent != 70 {
		t.Fatalf("expected giver percent 70, got %+v", a.Balance)
	}
	if a.Balance.ReceiverPercent != nil {
		t.Fatalf("expected receiver percent dropped")
	}
	if len(a.PersonaAdvice) != 1 || a.PersonaAdvice[0] != "Read it twice." {
		t.Fatalf("expected single advice item, got %v", a.PersonaAdvice)
	}
	if len(got.Adjusted) == 0 {
		t.Fatalf("expected adjustments to be reported")
	}
}
