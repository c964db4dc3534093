package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies configured field transformations to shaped records.
// Only text values are transformed; numbers and dates pass through.
type Transformer struct {
	rules    []config.TransformationRule
	patterns map[string]*regexp.Regexp
}

// NewTransformer compiles the rules for one dataset.
//
// RETURNS:
//   - The transformer.
//   - An error if a regex_replace pattern does not compile.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: rules, patterns: make(map[string]*regexp.Regexp)}
	for _, rule := range rules {
		for _, a := range rule.Actions {
			if a.Type != "regex_replace" || a.Find == "" {
				continue
			}
			if _, ok := t.patterns[a.Find]; ok {
				continue
			}
			re, err := regexp.Compile(a.Find)
			if err != nil {
				return nil, fmt.Errorf("field %q: invalid regex pattern: %w", rule.Field, err)
			}
			t.patterns[a.Find] = re
		}
	}
	return t, nil
}

// Apply transforms records in place.
func (t *Transformer) Apply(records []types.Record) {
	if t == nil || len(t.rules) == 0 {
		return
	}
	for _, rec := range records {
		for _, rule := range t.rules {
			f := types.CanonicalField(rule.Field)
			v, ok := rec[f]
			if !ok || (v.Kind() != types.KindString && !v.IsNull()) {
				continue
			}
			s := v.Str()
			for _, a := range rule.Actions {
				s = t.apply(s, a)
			}
			if v.IsNull() && s == "" {
				continue
			}
			rec[f] = types.String(s)
		}
	}
}

// apply runs a single action.
func (t *Transformer) apply(value string, action config.TransformationAction) string {
	switch action.Type {
	case "prepend_string":
		return action.Value + value
	case "append_string":
		return value + action.Value
	case "trim":
		return strings.TrimSpace(value)
	case "uppercase":
		return strings.ToUpper(value)
	case "lowercase":
		return strings.ToLower(value)
	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)
	case "regex_replace":
		re, ok := t.patterns[action.Find]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)
	case "lookup":
		key := strings.ToLower(strings.TrimSpace(value))
		for k, mapped := range action.LookupTable {
			if strings.ToLower(strings.TrimSpace(k)) == key {
				return mapped
			}
		}
		return value
	case "default":
		if strings.TrimSpace(value) == "" {
			return action.Value
		}
		return value
	}
	return value
}
