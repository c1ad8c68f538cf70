package render

import (
	"fmt"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
)

// RiskView is one clause in the risk list.
type RiskView struct {
	Index       int                `json:"index"`
	Level       analysis.RiskLevel `json:"level"`
	Class       string             `json:"class"`
	Label       string             `json:"label"`
	Text        string             `json:"text"`
	Explanation string             `json:"explanation,omitempty"`
}

// RiskListView is the risk analysis panel.
type RiskListView struct {
	Title  string     `json:"title"`
	Items  []RiskView `json:"items"`
	Notice string     `json:"notice,omitempty"`
}

// HeatmapCell counts clauses at one risk level.
type HeatmapCell struct {
	Level analysis.RiskLevel `json:"level"`
	Label string             `json:"label"`
	Count int                `json:"count"`
	Class string             `json:"class"`
}

var levelOrder = []analysis.RiskLevel{analysis.RiskHigh, analysis.RiskMedium, analysis.RiskLow}

var levelLabelKey = map[analysis.RiskLevel]string{
	analysis.RiskHigh:   i18n.KeyHighRisk,
	analysis.RiskMedium: i18n.KeyMediumRisk,
	analysis.RiskLow:    i18n.KeyLowRisk,
}

// RiskList numbers the clauses from 1 in model order. Unknown levels are
// shown as low.
func RiskList(items []analysis.RiskItem, labels i18n.LabelSet) RiskListView {
	v := RiskListView{Title: labels.Get(i18n.KeyRiskAnalysis), Items: make([]RiskView, 0, len(items))}
	clause := labels.Get(i18n.KeyClause)
	for i, it := range items {
		level := analysis.ParseRiskLevel(string(it.RiskLevel))
		v.Items = append(v.Items, RiskView{
			Index:       i + 1,
			Level:       level,
			Class:       riskClass(level),
			Label:       fmt.Sprintf("%s %d", clause, i+1),
			Text:        trim(it.Text),
			Explanation: trim(it.Explanation),
		})
	}
	if len(v.Items) == 0 {
		v.Notice = labels.Get(i18n.KeyNoRisks)
	}
	return v
}

// FilterRisks returns the items at level, keeping their original numbering.
// An empty level returns every item.
func FilterRisks(items []RiskView, level string) []RiskView {
	if trim(level) == "" {
		return append([]RiskView(nil), items...)
	}
	want := analysis.ParseRiskLevel(level)
	out := make([]RiskView, 0, len(items))
	for _, it := range items {
		if it.Level == want {
			out = append(out, it)
		}
	}
	return out
}

// Heatmap counts risks per level, highest first.
func Heatmap(items []RiskView, labels i18n.LabelSet) []HeatmapCell {
	counts := make(map[analysis.RiskLevel]int, len(levelOrder))
	for _, it := range items {
		counts[it.Level]++
	}
	cells := make([]HeatmapCell, 0, len(levelOrder))
	for _, level := range levelOrder {
		cells = append(cells, HeatmapCell{
			Level: level,
			Label: labels.Get(levelLabelKey[level]),
			Count: counts[level],
			Class: riskClass(level),
		})
	}
	return cells
}

func riskClass(level analysis.RiskLevel) string {
	return "risk-" + string(level)
}
