package extraction

import "strings"

// ParseNarrative turns the "key: value" lines of a reconciled analysis answer
// into a map. Model output is never perfectly clean, so each line is stripped
// of markdown bold markers, leading list bullets and stray quotes before the
// split on the first colon. Lines without a colon are skipped.
func ParseNarrative(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "**", "")
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'`)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}
