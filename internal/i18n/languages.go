package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is an interface language the service knows about.
type Language struct {
	Name string       `json:"name"`
	Tag  language.Tag `json:"-"`
	// Code is the BCP 47 base code, also used to pick a translation model.
	Code string `json:"code"`
}

// Native returns the language's name in the language itself, e.g. "español".
func (l Language) Native() string {
	return display.Self.Name(l.Tag)
}

// English is the source language of analysis output and of the base label set.
var English = Language{Name: "English", Tag: language.English, Code: "en"}

var known = []Language{
	English,
	{Name: "Spanish", Tag: language.Spanish, Code: "es"},
	{Name: "French", Tag: language.French, Code: "fr"},
	{Name: "German", Tag: language.German, Code: "de"},
	{Name: "Italian", Tag: language.Italian, Code: "it"},
	{Name: "Portuguese", Tag: language.Portuguese, Code: "pt"},
	{Name: "Hindi", Tag: language.Hindi, Code: "hi"},
	{Name: "Bengali", Tag: language.Bengali, Code: "bn"},
	{Name: "Japanese", Tag: language.Japanese, Code: "ja"},
	{Name: "Arabic", Tag: language.Arabic, Code: "ar"},
}

var matcher = language.NewMatcher(tags())

func tags() []language.Tag {
	out := make([]language.Tag, len(known))
	for i, l := range known {
		out[i] = l.Tag
	}
	return out
}

// Known returns the supported languages, English first.
func Known() []Language {
	return append([]Language(nil), known...)
}

// Resolve matches free-form input against the known languages. It accepts
// English names ("spanish"), native names ("Deutsch") and BCP 47 tags
// ("pt-BR"). Unknown input is returned as an ad-hoc Language with ok=false so
// callers can still pass it through untranslated.
func Resolve(raw string) (Language, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return English, true
	}
	for _, l := range known {
		if strings.EqualFold(s, l.Name) || strings.EqualFold(s, l.Native()) {
			return l, true
		}
	}
	if tag, err := language.Parse(s); err == nil {
		_, idx, conf := matcher.Match(tag)
		if conf >= language.High {
			return known[idx], true
		}
	}
	return Language{Name: s, Tag: language.Und}, false
}

// IsSource reports whether l is the language analysis output is produced in.
func (l Language) IsSource(source Language) bool {
	return strings.EqualFold(l.Name, source.Name)
}
