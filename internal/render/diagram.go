package render

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	"demystifier-backend/internal/i18n"
)

// DiagramRenderer turns diagram source into markup.
type DiagramRenderer interface {
	RenderDiagram(source string) (string, error)
}

// ErrInvalidDiagram is returned when the source does not start with a known
// Mermaid diagram type.
var ErrInvalidDiagram = errors.New("invalid diagram source")

// DiagramView is the document roadmap panel. When Fallback is set, HTML shows
// the escaped source text instead of a diagram.
type DiagramView struct {
	Title    string        `json:"title"`
	Source   string        `json:"source"`
	HTML     template.HTML `json:"html"`
	Fallback bool          `json:"fallback"`
	Notice   string        `json:"notice,omitempty"`
	Error    string        `json:"error,omitempty"`
}

var mermaidTypes = []string{
	"graph", "flowchart", "sequenceDiagram", "classDiagram", "stateDiagram",
	"stateDiagram-v2", "erDiagram", "gantt", "journey", "pie", "mindmap",
	"timeline", "gitGraph", "quadrantChart",
}

// Mermaid emits a <pre class="mermaid"> block for client-side rendering after
// checking the diagram header.
type Mermaid struct{}

func (Mermaid) RenderDiagram(source string) (string, error) {
	header := firstLine(source)
	if header == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDiagram)
	}
	kind := strings.Fields(header)[0]
	for _, t := range mermaidTypes {
		if kind == t {
			return `<pre class="mermaid">` + html.EscapeString(source) + `</pre>`, nil
		}
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidDiagram, kind)
}

// Diagram renders source with r. A render error is not propagated: the view
// falls back to showing the source text.
func Diagram(source string, labels i18n.LabelSet, r DiagramRenderer) DiagramView {
	v := DiagramView{Title: labels.Get(i18n.KeyDocumentRoadmap), Source: source}
	out, err := r.RenderDiagram(source)
	if err != nil {
		v.Fallback = true
		v.Notice = labels.Get(i18n.KeyDiagramFallback)
		v.Error = err.Error()
		v.HTML = safeHTML(`<pre class="diagram-source">` + html.EscapeString(source) + `</pre>`)
		return v
	}
	v.HTML = safeHTML(out)
	return v
}

func firstLine(source string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		return line
	}
	return ""
}
