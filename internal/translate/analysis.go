package translate

import (
	"context"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/shared/telemetry"
)

// TranslateAnalysis translates the human-readable fields of a into l, one call
// per field in a fixed order. It is the identity for the source language. If
// any call fails the original a is returned unchanged; list lengths and order
// are always preserved.
func (c *Client) TranslateAnalysis(ctx context.Context, a analysis.Analysis, l i18n.Language) (analysis.Analysis, bool) {
	if !c.Enabled(l) {
		return a, false
	}
	out := a.Clone()
	if err := c.translateFields(ctx, &out, l); err != nil {
		telemetry.Warn("translate.failed", map[string]any{
			"language": l.Name,
			"error":    err,
		})
		return a, false
	}
	return out, true
}

func (c *Client) translateFields(ctx context.Context, a *analysis.Analysis, l i18n.Language) error {
	tr := func(s *string) error {
		if *s == "" {
			return nil
		}
		v, err := c.Text(ctx, *s, l)
		if err != nil {
			return err
		}
		*s = v
		return nil
	}

	if err := tr(&a.Summary); err != nil {
		return err
	}
	for i := range a.RiskAnalysis {
		if err := tr(&a.RiskAnalysis[i].Explanation); err != nil {
			return err
		}
	}
	for i := range a.Demystification {
		if err := tr(&a.Demystification[i].Section); err != nil {
			return err
		}
		if err := tr(&a.Demystification[i].Summary); err != nil {
			return err
		}
	}
	if a.Balance != nil {
		if err := tr(&a.Balance.Explanation); err != nil {
			return err
		}
	}
	for i := range a.ProactiveQuestions {
		if err := tr(&a.ProactiveQuestions[i]); err != nil {
			return err
		}
	}
	for i := range a.PersonaAdvice {
		if err := tr(&a.PersonaAdvice[i]); err != nil {
			return err
		}
	}
	return nil
}
