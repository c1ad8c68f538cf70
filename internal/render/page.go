package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"demystifier-backend/internal/i18n"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageData is everything the page template needs. View is nil until the
// first successful run.
type PageData struct {
	SessionID  string
	Language   i18n.Language
	Persona    string
	Status     string
	CanAnalyze bool
	View       *View
	Labels     i18n.LabelSet
}

// Label returns the chrome label for key.
func (d PageData) Label(key string) string {
	if d.Labels == nil {
		return i18n.EnglishLabels().Get(key)
	}
	return d.Labels.Get(key)
}

// Lang is the value of the html lang attribute.
func (d PageData) Lang() string {
	if d.Language.Code == "" {
		return i18n.English.Code
	}
	return d.Language.Code
}

// LanguageName is the selected option in the language picker.
func (d PageData) LanguageName() string {
	if d.Language.Name == "" {
		return i18n.English.Name
	}
	return d.Language.Name
}

// Languages lists the picker options.
func (d PageData) Languages() []i18n.Language {
	return i18n.Known()
}

// Page renders the full HTML page.
func Page(d PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
