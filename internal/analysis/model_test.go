package analysis

import (
	"math"
	"reflect"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestBalanceOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		balance      *Balance
		giver, recvr float64
	}{
		{name: "missing", balance: nil, giver: 50, recvr: 50},
		{name: "empty", balance: &Balance{}, giver: 50, recvr: 50},
		{name: "zero falls back", balance: &Balance{GiverPercent: ptr(0), ReceiverPercent: ptr(100)}, giver: 50, recvr: 100},
		{name: "provided", balance: &Balance{GiverPercent: ptr(65), ReceiverPercent: ptr(35)}, giver: 65, recvr: 35},
		{name: "tiny kept", balance: &Balance{GiverPercent: ptr(0.04), ReceiverPercent: ptr(0.01)}, giver: 0.04, recvr: 0.01},
		{name: "infinite falls back", balance: &Balance{GiverPercent: ptr(math.Inf(1)), ReceiverPercent: ptr(math.NaN())}, giver: 50, recvr: 50},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			g, r := Analysis{Balance: tt.balance}.BalanceOrDefault()
			if g != tt.giver || r != tt.recvr {
				t.Fatalf("got %v/%v, want %v/%v", g, r, tt.giver, tt.recvr)
			}
		})
	}
}

func TestDiagramOrDefault(t *testing.T) {
	if got := (Analysis{Mermaid: "  \n"}).DiagramOrDefault(); got != DefaultDiagram {
		t.Fatalf("expected default diagram for blank source")
	}
	if got := (Analysis{Mermaid: "graph LR\nA-->B"}).DiagramOrDefault(); got != "graph LR\nA-->B" {
		t.Fatalf("expected source diagram, got %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Analysis{
		Summary:            "s",
		RiskAnalysis:       []RiskItem{{Text: "t", RiskLevel: RiskHigh, Explanation: "e"}},
		Demystification:    []DemystificationItem{{Section: "a", Summary: "b"}},
		Balance:            &Balance{GiverPercent: ptr(60), ReceiverPercent: ptr(40), Explanation: "x"},
		ProactiveQuestions: []string{"q"},
		PersonaAdvice:      []string{"p"},
	}
	snapshot := Analysis{
		Summary:            "s",
		RiskAnalysis:       []RiskItem{{Text: "t", RiskLevel: RiskHigh, Explanation: "e"}},
		Demystification:    []DemystificationItem{{Section: "a", Summary: "b"}},
		Balance:            &Balance{GiverPercent: ptr(60), ReceiverPercent: ptr(40), Explanation: "x"},
		ProactiveQuestions: []string{"q"},
		PersonaAdvice:      []string{"p"},
	}

	c := orig.Clone()
	c.RiskAnalysis[0].Explanation = "changed"
	c.Demystification[0].Summary = "changed"
	*c.Balance.GiverPercent = 1
	c.Balance.Explanation = "changed"
	c.ProactiveQuestions[0] = "changed"
	c.PersonaAdvice[0] = "changed"

	if !reflect.DeepEqual(orig, snapshot) {
		t.Fatalf("mutating the clone leaked into the original: %#v", orig)
	}
}

func TestParseRiskLevel(t *testing.T) {
	for in, want := range map[string]RiskLevel{"high": RiskHigh, " Medium": RiskMedium, "LOW": RiskLow, "severe": RiskLow, "": RiskLow} {
		if got := ParseRiskLevel(in); got != want {
			t.Fatalf("ParseRiskLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStrictSchemaRequiresEveryProperty(t *testing.T) {
	s := StrictSchema()
	props, ok := s["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties in schema")
	}
	required, ok := s["required"].([]string)
	if !ok || len(required) != len(props) {
		t.Fatalf("expected every property required, got %v", s["required"])
	}
	if s["additionalProperties"] != false {
		t.Fatalf("expected additionalProperties=false")
	}
}
