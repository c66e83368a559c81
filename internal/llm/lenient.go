package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a surrounding markdown fence such as ```json ... ```.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop an info string like "json" on the opening line
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeEnvelope parses a model reply into RawOutput. Only a top-level parse
// failure is an error; a wrongly shaped section becomes an empty map and is
// reported in warnings.
func DecodeEnvelope(content string) (RawOutput, []string, error) {
	var top map[string]any
	if err := json.Unmarshal([]byte(content), &top); err != nil {
		return EmptyOutput(), nil, fmt.Errorf("decode envelope: %w", err)
	}

	out := EmptyOutput()
	var warnings []string
	section := func(name string) map[string]any {
		v, ok := top[name]
		if !ok || v == nil {
			return map[string]any{}
		}
		m, ok := v.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s is %T, not an object", name, v))
			return map[string]any{}
		}
		return m
	}
	out.Allergens = section("allergens")
	out.Nutrients = section("nutrients")
	return out, warnings, nil
}
