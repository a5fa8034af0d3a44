package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// ParseResponse maps a raw model answer onto the expected cue indices. The
// answer may be wrapped in prose or code fences, but the translations inside
// must cover every expected index exactly once with non-blank text. Any
// mismatch is reported as a *ResponseError.
func ParseResponse(text string, indices []int) (map[int]string, error) {
	cleaned := cleanJSONResponse(text)
	if cleaned == "" {
		return nil, &ResponseError{Reason: "empty response"}
	}

	results, err := extractTranslationResults(cleaned)
	if err != nil {
		return nil, &ResponseError{
			Reason:  err.Error(),
			Snippet: truncateString(cleaned, 200),
		}
	}

	expected := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		expected[idx] = struct{}{}
	}

	out := make(map[int]string, len(indices))
	var unknown, duplicate, empty []int
	for _, r := range results {
		if _, ok := expected[r.Index]; !ok {
			unknown = append(unknown, r.Index)
			continue
		}
		if _, ok := out[r.Index]; ok {
			duplicate = append(duplicate, r.Index)
			continue
		}
		if strings.TrimSpace(r.Text) == "" {
			empty = append(empty, r.Index)
			continue
		}
		out[r.Index] = r.Text
	}

	var missing []int
	for _, idx := range indices {
		if _, ok := out[idx]; !ok && !containsInt(empty, idx) {
			missing = append(missing, idx)
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, fmt.Sprintf("missing indices %v", missing))
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		problems = append(problems, fmt.Sprintf("unknown indices %v", unknown))
	}
	if len(duplicate) > 0 {
		sort.Ints(duplicate)
		problems = append(problems, fmt.Sprintf("duplicate indices %v", duplicate))
	}
	if len(empty) > 0 {
		problems = append(problems, fmt.Sprintf("empty text for indices %v", empty))
	}
	if len(problems) > 0 {
		return nil, &ResponseError{
			Reason: fmt.Sprintf(
				"expected %d translations, got %d: %s",
				len(indices),
				len(results),
				strings.Join(problems, "; "),
			),
			Snippet: truncateString(cleaned, 200),
		}
	}

	return out, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// doubles backslashes that do not start a valid JSON escape (\N from ASS
// subtitles, \h, ...) so they survive decoding as literal text
func fixInvalidEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var out strings.Builder
	out.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			out.WriteByte(c)
			continue
		}
		i++
		if !strings.ContainsRune(validEscapes, rune(s[i])) {
			out.WriteByte('\\')
		}
		out.WriteByte('\\')
		out.WriteByte(s[i])
	}
	return out.String()
}

const validEscapes = `"\/bfnrtu`

// scans for the first JSON value that decodes into translation results
func extractTranslationResults(text string) ([]TranslationResult, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok && len(results) > 0 {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

// accepts a bare array or an object wrapping the array under a known key
func tryExtractResults(raw json.RawMessage) ([]TranslationResult, bool) {
	candidates := []json.RawMessage{raw}

	var wrapper map[string]json.RawMessage
	if json.Unmarshal(raw, &wrapper) == nil {
		for _, key := range resultKeys {
			if field, ok := wrapper[key]; ok {
				candidates = append(candidates, field)
			}
		}
	}

	for _, candidate := range candidates {
		var results []TranslationResult
		if json.Unmarshal(candidate, &results) == nil && validateResults(results) {
			return results, true
		}
	}
	return nil, false
}

// object keys models use for the result array
var resultKeys = []string{"translations", "results", "data", "items"}

// at least one result carries text
func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// cuts s to at most maxLen bytes without splitting a rune
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
