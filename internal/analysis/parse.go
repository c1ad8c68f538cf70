package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Strategy names the parse step that recovered the payload.
type Strategy string

const (
	StrategyStrict      Strategy = "strict"
	StrategyOuterBraces Strategy = "outer_braces"
)

// Parsed is a successfully decoded model payload.
type Parsed struct {
	Analysis Analysis
	Strategy Strategy
	// Adjusted lists optional fields the sanitizer had to normalize.
	Adjusted []string
}

// MalformedResponseError is returned when no parse strategy yields a valid Analysis.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed analysis response: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

var errNoObject = errors.New("no JSON object found")

// Parse decodes a model text payload. It first parses the whole payload and,
// if that fails, the substring between the first '{' and the last '}'.
func Parse(raw string) (Parsed, error) {
	trimmed := strings.TrimSpace(raw)

	doc, strictErr := decodeObject([]byte(trimmed))
	strategy := StrategyStrict
	if strictErr != nil {
		inner, ok := outerBraces(trimmed)
		if !ok {
			return Parsed{}, &MalformedResponseError{Raw: raw, Cause: fmt.Errorf("%w: %v", errNoObject, strictErr)}
		}
		var err error
		doc, err = decodeObject([]byte(inner))
		if err != nil {
			return Parsed{}, &MalformedResponseError{Raw: raw, Cause: err}
		}
		strategy = StrategyOuterBraces
	}

	adjusted := sanitize(doc)
	if err := Validate(doc); err != nil {
		return Parsed{}, &MalformedResponseError{Raw: raw, Cause: err}
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return Parsed{}, &MalformedResponseError{Raw: raw, Cause: err}
	}
	var out Analysis
	if err := json.Unmarshal(b, &out); err != nil {
		return Parsed{}, &MalformedResponseError{Raw: raw, Cause: err}
	}
	return Parsed{Analysis: out, Strategy: strategy, Adjusted: adjusted}, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNoObject
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return m, nil
}

func outerBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
