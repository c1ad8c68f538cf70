package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"demystifier-backend/internal/i18n"
)

// SummaryView is the document summary panel.
type SummaryView struct {
	Title  string        `json:"title"`
	Text   string        `json:"text,omitempty"`
	HTML   template.HTML `json:"html"`
	Empty  bool          `json:"empty"`
	Notice string        `json:"notice,omitempty"`
}

// Raw HTML in model output is dropped by goldmark unless WithUnsafe is set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Summary renders the summary text as Markdown.
func Summary(text string, labels i18n.LabelSet) SummaryView {
	v := SummaryView{Title: labels.Get(i18n.KeyDocumentSummary)}
	text = strings.TrimSpace(text)
	if text == "" {
		v.Empty = true
		v.Notice = labels.Get(i18n.KeyNoSummary)
		v.HTML = safeHTML("<p class=\"notice\">" + html.EscapeString(v.Notice) + "</p>")
		return v
	}
	v.Text = text
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		v.HTML = safeHTML("<p>" + html.EscapeString(text) + "</p>")
		return v
	}
	v.HTML = safeHTML(strings.TrimSpace(buf.String()))
	return v
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
