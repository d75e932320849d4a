package extract

import "strings"

// Sanitize normalizes model output in place before schema validation:
// strings are trimmed, technical levels lower-cased and service lists
// deduplicated.
func Sanitize(doc map[string]any) {
	if s, ok := doc["summary"].(string); ok {
		doc["summary"] = strings.TrimSpace(s)
	}
	if topics, ok := doc["key_topics"].([]any); ok {
		doc["key_topics"] = dedupeStrings(topics)
	}

	items, ok := doc["questions_answers"].([]any)
	if !ok {
		return
	}
	for _, item := range items {
		qa, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range []string{"question", "answer", "category"} {
			if s, ok := qa[field].(string); ok {
				qa[field] = strings.TrimSpace(s)
			}
		}
		if s, ok := qa["technical_level"].(string); ok {
			qa["technical_level"] = strings.ToLower(strings.TrimSpace(s))
		}
		if services, ok := qa["aws_services_mentioned"].([]any); ok {
			qa["aws_services_mentioned"] = dedupeStrings(services)
		}
	}
}

// dedupeStrings trims string entries and drops blanks and repeats. Non-string
// entries are kept so validation can reject them.
func dedupeStrings(in []any) []any {
	out := make([]any, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		s, ok := v.(string)
		if !ok {
			out = append(out, v)
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
