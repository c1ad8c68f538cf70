package render

import (
	"fmt"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
)

// AccordionItem is one collapsible section of the demystification board.
type AccordionItem struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Summary string `json:"summary"`
}

// AccordionView is the demystification board.
type AccordionView struct {
	Title  string          `json:"title"`
	Items  []AccordionItem `json:"items"`
	Notice string          `json:"notice,omitempty"`
}

// Accordion fills untitled sections with "Section N" and empty summaries with
// the no-summary notice.
func Accordion(items []analysis.DemystificationItem, labels i18n.LabelSet) AccordionView {
	v := AccordionView{Title: labels.Get(i18n.KeyDemystificationBoard), Items: make([]AccordionItem, 0, len(items))}
	for i, it := range items {
		section := trim(it.Section)
		if section == "" {
			section = fmt.Sprintf("%s %d", labels.Get(i18n.KeySection), i+1)
		}
		summary := trim(it.Summary)
		if summary == "" {
			summary = labels.Get(i18n.KeyNoSectionSummary)
		}
		v.Items = append(v.Items, AccordionItem{
			ID:      fmt.Sprintf("section-%d", i+1),
			Section: section,
			Summary: summary,
		})
	}
	if len(v.Items) == 0 {
		v.Notice = labels.Get(i18n.KeyNoSections)
	}
	return v
}
