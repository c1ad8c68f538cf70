package render

import (
	"html/template"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
)

// View is the presentation model for one analysis. Every widget is always
// populated; missing analysis fields produce notices or defaults instead.
type View struct {
	Summary       SummaryView   `json:"summary"`
	Risks         RiskListView  `json:"risks"`
	Heatmap       []HeatmapCell `json:"heatmap"`
	Chart         ChartView     `json:"chart"`
	Accordion     AccordionView `json:"accordion"`
	Diagram       DiagramView   `json:"diagram"`
	Questions     ListView      `json:"proactiveQuestions"`
	PersonaAdvice ListView      `json:"personaAdvice"`
}

// ListView is a titled list of plain strings.
type ListView struct {
	Title  string   `json:"title"`
	Items  []string `json:"items"`
	Notice string   `json:"notice,omitempty"`
}

// Render builds the full view for a. It never fails: a zero Analysis renders
// as notices, a 50/50 chart and the default diagram. A nil diagrams renderer
// uses Mermaid.
func Render(a analysis.Analysis, labels i18n.LabelSet, diagrams DiagramRenderer) View {
	if labels == nil {
		labels = i18n.EnglishLabels()
	}
	if diagrams == nil {
		diagrams = Mermaid{}
	}
	risks := RiskList(a.RiskAnalysis, labels)
	return View{
		Summary:       Summary(a.Summary, labels),
		Risks:         risks,
		Heatmap:       Heatmap(risks.Items, labels),
		Chart:         Chart(a, labels),
		Accordion:     Accordion(a.Demystification, labels),
		Diagram:       Diagram(a.DiagramOrDefault(), labels, diagrams),
		Questions:     list(labels.Get(i18n.KeyProactiveQuestions), a.ProactiveQuestions, labels),
		PersonaAdvice: list(labels.Get(i18n.KeyPersonaAdvice), a.PersonaAdvice, labels),
	}
}

func list(title string, items []string, labels i18n.LabelSet) ListView {
	out := ListView{Title: title, Items: make([]string, 0, len(items))}
	for _, it := range items {
		if s := trim(it); s != "" {
			out.Items = append(out.Items, s)
		}
	}
	if len(out.Items) == 0 {
		out.Notice = labels.Get(i18n.KeyNoItems)
	}
	return out
}

// safeHTML marks markup produced by this package as trusted for templates.
func safeHTML(s string) template.HTML {
	return template.HTML(s) // #nosec G203 -- generated from escaped input
}
