// Package modeltext extracts structured data from free-form generative-model
// answers. Models asked for "a single JSON array of strings" routinely wrap the
// array in markdown fences or surrounding prose, so parsing is best-effort:
// a run of fallback strategies, with an empty result rather than an error when
// none of them match.
package modeltext

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// ParseStringList attempts to read a JSON array of strings out of a model
// answer. Strategies, first hit wins:
//
//  1. the whole trimmed answer is the array
//  2. the contents of the first fenced code block
//  3. the substring between the first '[' and the last ']'
//
// An unusable answer yields an empty slice, never an error: zero suggestions
// is a valid model outcome and callers surface it as such.
func ParseStringList(answer string) []string {
	trimmed := strings.TrimSpace(answer)

	if values := tryParse(trimmed); len(values) > 0 {
		return values
	}

	if match := fencedBlock.FindStringSubmatch(trimmed); len(match) == 2 {
		if values := tryParse(strings.TrimSpace(match[1])); len(values) > 0 {
			return values
		}
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start != -1 && end > start {
		if values := tryParse(trimmed[start : end+1]); len(values) > 0 {
			return values
		}
	}

	return []string{}
}

func tryParse(value string) []string {
	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return nil
	}
	return parsed
}
