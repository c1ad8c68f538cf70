package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
)

const (
	riskSheet    = "Risks"
	sectionSheet = "Sections"
	balanceSheet = "Balance"
)

var levelFill = map[analysis.RiskLevel]string{
	analysis.RiskHigh:   "FFE8EA",
	analysis.RiskMedium: "FFF4D6",
	analysis.RiskLow:    "E6F7EE",
}

// RiskRegister exports the risk list, the demystification board and the
// balance split as an XLSX workbook. Headers use labels.
func RiskRegister(a analysis.Analysis, labels i18n.LabelSet) ([]byte, error) {
	if labels == nil {
		labels = i18n.EnglishLabels()
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", riskSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sectionSheet, balanceSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	fills := make(map[analysis.RiskLevel]int, len(levelFill))
	for level, color := range levelFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return nil, fmt.Errorf("create style: %w", err)
		}
		fills[level] = id
	}

	risks := RiskList(a.RiskAnalysis, labels)
	writeRow(f, riskSheet, 1, "#", labels.Get(i18n.KeyClause), labels.Get(i18n.KeySeverity), labels.Get(i18n.KeyExcerpt), labels.Get(i18n.KeyWhy))
	_ = f.SetRowStyle(riskSheet, 1, 1, bold)
	for i, r := range risks.Items {
		row := i + 2
		writeRow(f, riskSheet, row, r.Index, r.Label, labels.Get(levelLabelKey[r.Level]), r.Text, r.Explanation)
		_ = f.SetCellStyle(riskSheet, cellName(1, row), cellName(5, row), fills[r.Level])
	}
	_ = f.SetColWidth(riskSheet, "A", "A", 6)
	_ = f.SetColWidth(riskSheet, "B", "C", 16)
	_ = f.SetColWidth(riskSheet, "D", "E", 60)
	if len(risks.Items) > 0 {
		_ = f.AutoFilter(riskSheet, fmt.Sprintf("A1:E%d", len(risks.Items)+1), nil)
	}

	board := Accordion(a.Demystification, labels)
	writeRow(f, sectionSheet, 1, labels.Get(i18n.KeySection), labels.Get(i18n.KeyDocumentSummary))
	_ = f.SetRowStyle(sectionSheet, 1, 1, bold)
	for i, it := range board.Items {
		writeRow(f, sectionSheet, i+2, it.Section, it.Summary)
	}
	_ = f.SetColWidth(sectionSheet, "A", "A", 30)
	_ = f.SetColWidth(sectionSheet, "B", "B", 90)

	chart := Chart(a, labels)
	writeRow(f, balanceSheet, 1, labels.Get(i18n.KeyBalanceChart), "%", "Share %")
	_ = f.SetRowStyle(balanceSheet, 1, 1, bold)
	for i, s := range chart.Slices {
		writeRow(f, balanceSheet, i+2, s.Label, s.Value, s.Share)
	}
	if chart.Explanation != "" {
		writeRow(f, balanceSheet, len(chart.Slices)+3, chart.Explanation)
	}
	_ = f.SetColWidth(balanceSheet, "A", "A", 24)

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		_ = f.SetCellValue(sheet, cellName(i+1, row), v)
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
