package analysis

import (
	"encoding/json"
	"strconv"
	"strings"
)

var listFields = []string{"risk_analysis", "demystification", "proactive_questions", "persona_advice"}

// sanitize normalizes optional values models commonly get slightly wrong so the
// document can still validate. It mutates doc and returns the touched paths.
func sanitize(doc map[string]any) []string {
	var changed []string

	for _, k := range append([]string{"summary", "mermaid", "balance"}, listFields...) {
		if v, ok := doc[k]; ok && v == nil {
			delete(doc, k)
			changed = append(changed, k)
		}
	}

	if items, ok := doc["risk_analysis"].([]any); ok {
		for i, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			raw, present := m["risk_level"]
			if !present || raw == nil {
				if present {
					delete(m, "risk_level")
				}
				continue
			}
			s, isString := raw.(string)
			if !isString {
				continue
			}
			level := string(ParseRiskLevel(s))
			if level != s {
				m["risk_level"] = level
				changed = append(changed, "risk_analysis["+strconv.Itoa(i)+"].risk_level")
			}
		}
	}

	if b, ok := doc["balance"].(map[string]any); ok {
		for _, k := range []string{"giver_percent", "receiver_percent"} {
			v, present := b[k]
			if !present {
				continue
			}
			switch t := v.(type) {
			case nil:
				delete(b, k)
				changed = append(changed, "balance."+k)
			case string:
				s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					b[k] = json.Number(strconv.FormatFloat(f, 'f', -1, 64))
				} else {
					delete(b, k)
				}
				changed = append(changed, "balance."+k)
			}
		}
	}

	for _, k := range []string{"proactive_questions", "persona_advice"} {
		if s, ok := doc[k].(string); ok {
			doc[k] = []any{s}
			changed = append(changed, k)
		}
	}
	return changed
}
