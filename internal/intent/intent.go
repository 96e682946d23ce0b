// Package intent classifies free-text chat input to decide how a submission should be
// handled: whether the answer needs live web-search augmentation, and whether the visitor
// is asking for an SEO audit of a specific page.
package intent

import (
	"regexp"
	"strings"
)

var (
	yearPattern         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	datePattern         = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`)
	relativeTimePattern = regexp.MustCompile(`\b(last|next|this)\s+(week|month|year|quarter|season)\b`)
	urlPattern          = regexp.MustCompile(`https?://\S+`)
)

// DetectSearchIntent reports whether the given input should be answered with web-search
// augmentation. The checks deliberately favor recall over precision: an unnecessary
// search costs little compared to answering a time-sensitive question from stale model
// knowledge.
func DetectSearchIntent(text string) bool {
	q := strings.ToLower(text)
	tokens := tokenize(q)

	switch {
	case matchesAny(q, tokens, explicitSearchPhrases):
		return true
	case hasDatePattern(q, tokens):
		return true
	case startsWithAny(tokens, questionWords) && matchesAny(q, tokens, timeWords):
		return true
	case matchesAny(q, tokens, currentTopics):
		return true
	case matchesAny(q, tokens, comparisonWords):
		return true
	case startsWithAny(tokens, entityQuestionStarts):
		return true
	case matchesAny(q, tokens, recommendationWords):
		return true
	case matchesAny(q, tokens, problemWords):
		return true
	case matchesAny(q, tokens, implementationWords):
		return true
	}
	return false
}

// DetectSEOAuditIntent reports whether the input asks for an audit of a page. Unlike the
// search classifier this requires both an action verb and a page/site word, because the
// audit branch skips the language model entirely and calls a dedicated endpoint.
func DetectSEOAuditIntent(text string) bool {
	q := strings.ToLower(text)
	tokens := tokenize(q)
	return matchesAny(q, tokens, auditVerbs) && matchesAny(q, tokens, auditTargets)
}

// ExtractURL returns the first http(s) URL found in the input, if any.
func ExtractURL(text string) (string, bool) {
	u := urlPattern.FindString(text)
	if u == "" {
		return "", false
	}
	return strings.TrimRight(u, ".,;:!?)\"'"), true
}

func hasDatePattern(q string, tokens []string) bool {
	return yearPattern.MatchString(q) ||
		datePattern.MatchString(q) ||
		matchesAny(q, tokens, monthNames) ||
		relativeTimePattern.MatchString(q)
}

// tokenize splits the lower-cased input into words, trimming punctuation from token
// edges so "trends?" matches "trends".
func tokenize(q string) []string {
	fields := strings.Fields(q)
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// matchesAny reports whether any vocabulary entry occurs in the input. Entries containing
// a space or dot are matched as substrings of the raw text; single words are matched
// against whole tokens only, so short entries like "ctr" cannot fire inside longer words.
func matchesAny(q string, tokens []string, vocab []string) bool {
	for _, term := range vocab {
		if strings.ContainsAny(term, " .") {
			if strings.Contains(q, term) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == term {
				return true
			}
		}
	}
	return false
}

func startsWithAny(tokens []string, vocab []string) bool {
	if len(tokens) == 0 {
		return false
	}
	first := tokens[0]
	// "what's" should count as starting with "what".
	if i := strings.IndexByte(first, '\''); i > 0 {
		first = first[:i]
	}
	for _, term := range vocab {
		if first == term {
			return true
		}
	}
	return false
}
