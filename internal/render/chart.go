package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
)

const (
	GiverColor    = "#4f8cff"
	ReceiverColor = "#48d597"
)

// Slice is one segment of the balance chart.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
	Color string  `json:"color"`
}

// ChartView is the giver/receiver doughnut.
type ChartView struct {
	Title       string        `json:"title"`
	Slices      []Slice       `json:"slices"`
	Explanation string        `json:"explanation,omitempty"`
	SVG         template.HTML `json:"svg"`
}

// Chart builds the balance doughnut. Values are the model's percentages with
// 50 substituted for missing ones, rounded for display; shares are normalised
// over the unrounded sum since the two values need not add up to 100.
func Chart(a analysis.Analysis, labels i18n.LabelSet) ChartView {
	giver, receiver := a.BalanceOrDefault()
	rawG := decimal.NewFromFloat(giver)
	rawR := decimal.NewFromFloat(receiver)
	g, r := rawG.Round(1), rawR.Round(1)

	hundred := decimal.NewFromInt(100)
	gShare := decimal.NewFromInt(50)
	if total := rawG.Add(rawR); total.IsPositive() {
		gShare = rawG.Mul(hundred).Div(total).Round(2)
	}
	rShare := hundred.Sub(gShare)

	v := ChartView{
		Title: labels.Get(i18n.KeyBalanceChart),
		Slices: []Slice{
			{Label: labels.Get(i18n.KeyGiver), Value: g.InexactFloat64(), Share: gShare.InexactFloat64(), Color: GiverColor},
			{Label: labels.Get(i18n.KeyReceiver), Value: r.InexactFloat64(), Share: rShare.InexactFloat64(), Color: ReceiverColor},
		},
		Explanation: a.BalanceExplanation(),
	}
	v.SVG = safeHTML(doughnut(v.Slices))
	return v
}

// doughnut draws each slice as a stroked circle. The circle's circumference is
// 100 so a slice's dash length equals its share.
func doughnut(slices []Slice) string {
	const radius = "15.91549430918954"
	var b strings.Builder
	b.WriteString(`<svg class="balance-chart" viewBox="0 0 42 42" role="img">`)
	offset := decimal.NewFromInt(25)
	for _, s := range slices {
		share := decimal.NewFromFloat(s.Share)
		fmt.Fprintf(&b,
			`<circle cx="21" cy="21" r="%s" fill="transparent" stroke="%s" stroke-width="6" stroke-dasharray="%s %s" stroke-dashoffset="%s"><title>%s: %s%%</title></circle>`,
			radius, s.Color, share.String(), decimal.NewFromInt(100).Sub(share).String(), offset.String(),
			html.EscapeString(s.Label), decimal.NewFromFloat(s.Value).String())
		offset = offset.Sub(share)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
