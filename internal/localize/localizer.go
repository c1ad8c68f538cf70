package localize

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/translate"
)

// resolveTimeout bounds a shared resolution, which outlives the caller that
// started it.
const resolveTimeout = 2 * time.Minute

// Translator resolves a label set for a language.
type Translator interface {
	TranslateLabelSet(ctx context.Context, base i18n.LabelSet, l i18n.Language) (i18n.LabelSet, translate.LabelSource)
}

// Target receives a fully resolved label set.
type Target interface {
	ApplyLabels(lang i18n.Language, set i18n.LabelSet)
}

// Localizer resolves interface labels per language. Fully translated and
// static sets are cached; concurrent requests for the same language share one
// resolution.
type Localizer struct {
	tr    Translator
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]i18n.LabelSet
}

// New returns a Localizer backed by tr.
func New(tr Translator) *Localizer {
	return &Localizer{tr: tr, cache: make(map[string]i18n.LabelSet)}
}

type resolved struct {
	lang i18n.Language
	set  i18n.LabelSet
}

// Resolve returns the language matched from raw and its complete label set.
// The returned set is a private copy.
func (l *Localizer) Resolve(ctx context.Context, raw string) (i18n.Language, i18n.LabelSet) {
	lang, _ := i18n.Resolve(raw)

	l.mu.RLock()
	cached, ok := l.cache[lang.Name]
	l.mu.RUnlock()
	if ok {
		return lang, cached.Clone()
	}

	v, _, _ := l.group.Do(lang.Name, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		set, src := l.tr.TranslateLabelSet(sctx, i18n.EnglishLabels(), lang)
		if src == translate.LabelsStatic || src == translate.LabelsTranslated {
			l.mu.Lock()
			l.cache[lang.Name] = set
			l.mu.Unlock()
		}
		return resolved{lang: lang, set: set}, nil
	})
	r := v.(resolved)
	return r.lang, r.set.Clone()
}

// SetLanguage resolves the label set for raw and hands it to target in one call.
func (l *Localizer) SetLanguage(ctx context.Context, target Target, raw string) i18n.Language {
	lang, set := l.Resolve(ctx, raw)
	target.ApplyLabels(lang, set)
	return lang
}
