package translate

import (
	"context"
	"sort"

	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/shared/metrics"
	"demystifier-backend/internal/shared/telemetry"
)

// LabelSource records where a resolved label set came from.
type LabelSource string

const (
	LabelsStatic      LabelSource = "static"
	LabelsTranslated  LabelSource = "translated"
	LabelsPassthrough LabelSource = "passthrough"
	LabelsFallback    LabelSource = "fallback"
)

// TranslateLabelSet returns base translated into l. A static table wins when
// one exists. Otherwise every value is translated one by one; if any call
// fails the whole set falls back to base, so the result never mixes sources.
// The returned set always has exactly base's keys.
func (c *Client) TranslateLabelSet(ctx context.Context, base i18n.LabelSet, l i18n.Language) (i18n.LabelSet, LabelSource) {
	if static, ok := i18n.Static(l); ok {
		return restrict(static, base), LabelsStatic
	}
	if !c.Enabled(l) {
		return base.Clone(), LabelsPassthrough
	}

	keys := make([]string, 0, len(base))
	for k := range base {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(i18n.LabelSet, len(base))
	for _, k := range keys {
		translated, err := c.Text(ctx, base[k], l)
		if err != nil {
			metrics.LabelFallbacks.Inc()
			telemetry.Warn("labels.fallback", map[string]any{
				"language": l.Name,
				"key":      k,
				"error":    err,
			})
			return base.Clone(), LabelsFallback
		}
		out[k] = translated
	}
	return out, LabelsTranslated
}

// restrict projects set onto base's key set, filling gaps from base.
func restrict(set, base i18n.LabelSet) i18n.LabelSet {
	out := make(i18n.LabelSet, len(base))
	for k, v := range base {
		if s, ok := set[k]; ok && s != "" {
			out[k] = s
			continue
		}
		out[k] = v
	}
	return out
}
