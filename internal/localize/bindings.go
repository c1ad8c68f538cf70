package localize

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"

	"demystifier-backend/internal/i18n"
)

// Binding ties a page element id to a label key.
type Binding struct {
	ID  string
	Key string
}

// Bindings is the complete list of localized page elements.
var Bindings = []Binding{
	{ID: "brand-title", Key: i18n.KeyTitle},
	{ID: "upload-title", Key: i18n.KeyUploadTitle},
	{ID: "label-language", Key: i18n.KeyLanguage},
	{ID: "label-persona", Key: i18n.KeyPersona},
	{ID: "persona-student", Key: i18n.KeyStudent},
	{ID: "persona-business-owner", Key: i18n.KeyBusinessOwner},
	{ID: "persona-lawyer", Key: i18n.KeyLawyer},
	{ID: "drop-hint", Key: i18n.KeyDragDrop},
	{ID: "analyzeBtn", Key: i18n.KeyAnalyzeBtn},
	{ID: "summary-title", Key: i18n.KeyDocumentSummary},
	{ID: "persona-advice-title", Key: i18n.KeyPersonaAdvice},
	{ID: "legend-high", Key: i18n.KeyHighRisk},
	{ID: "legend-medium", Key: i18n.KeyMediumRisk},
	{ID: "legend-low", Key: i18n.KeyLowRisk},
	{ID: "proactive-title", Key: i18n.KeyProactiveQuestions},
	{ID: "balance-title", Key: i18n.KeyBalanceChart},
	{ID: "legend-giver", Key: i18n.KeyGiver},
	{ID: "legend-receiver", Key: i18n.KeyReceiver},
	{ID: "heatmap-title", Key: i18n.KeyRiskHeatmap},
	{ID: "demystification-title", Key: i18n.KeyDemystificationBoard},
	{ID: "roadmap-title", Key: i18n.KeyDocumentRoadmap},
	{ID: "risk-analysis-title", Key: i18n.KeyRiskAnalysis},
	{ID: "showRiskyBtn", Key: i18n.KeyShowRiskyClauses},
	{ID: "showMediumBtn", Key: i18n.KeyShowMediumRisk},
	{ID: "showHelpfulBtn", Key: i18n.KeyShowHelpfulClauses},
	{ID: "footer-built-with", Key: i18n.KeyBuiltWith},
}

var bindingByID = func() map[string]string {
	m := make(map[string]string, len(Bindings))
	for _, b := range Bindings {
		m[b.ID] = b.Key
	}
	return m
}()

// Apply rewrites the text of every bound element in page using set. The page
// is parsed once, all bindings are applied to the parsed tree, and only then
// is it serialized, so a partially localized page is never produced. It
// returns the rewritten page and the number of elements updated.
func Apply(page []byte, set i18n.LabelSet) ([]byte, int, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, 0, fmt.Errorf("parse page: %w", err)
	}

	applied := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := bindingByID[attr(n, "id")]; ok {
				setText(n, set.Get(key))
				applied++
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, 0, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), applied, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
