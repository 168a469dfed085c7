package generation

import (
	"encoding/json"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// SourceURLLimit caps the number of research sources carried into the
// draft and conversion stages.
const SourceURLLimit = 5

var httpURLPattern = regexp.MustCompile(`https?://[^\s<>"'\x60()\[\]{}]+`)

// ExtractURLs returns the http(s) URLs found in text, in order of
// appearance, without duplicates. Trailing sentence punctuation is dropped.
func ExtractURLs(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, match := range httpURLPattern.FindAllString(text, -1) {
		u := strings.TrimRight(match, ".,;:!?*")
		if !isHTTPURL(u) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// CollectURLs walks raw JSON and returns every http(s) URL found in its
// string values, in document order. Object keys are visited in sorted
// order. Invalid JSON yields nil.
func CollectURLs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var texts []string
	collectStrings(v, &texts)
	return ExtractURLs(strings.Join(texts, "\n"))
}

func collectStrings(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		*out = append(*out, t)
	case []any:
		for _, item := range t {
			collectStrings(item, out)
		}
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(t)) {
			collectStrings(t[key], out)
		}
	}
}

// SourceURLs merges URLs from the research text and then the provider
// metadata, deduplicated and capped at SourceURLLimit.
func SourceURLs(text string, metadata json.RawMessage) []string {
	merged := make([]string, 0, SourceURLLimit)
	seen := make(map[string]struct{})
	for _, list := range [][]string{ExtractURLs(text), CollectURLs(metadata)} {
		for _, u := range list {
			if len(merged) == SourceURLLimit {
				return merged
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}
	return merged
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
