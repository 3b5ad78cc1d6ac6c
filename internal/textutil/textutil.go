// Package textutil holds the pure string transforms shared by the copy
// generator, the renderer, and the catalog: slugs, whitespace cleanup, and
// card-subtitle truncation.
package textutil

import (
	"regexp"
	"strings"
)

// CardSubLimit is the maximum length of a listing card subtitle, ellipsis
// included.
const CardSubLimit = 50

var (
	apostropheRegex  = regexp.MustCompile(`[’']`)
	nonAlnumRegex    = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRegex   = regexp.MustCompile(`-{2,}`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	sentenceEndRegex = regexp.MustCompile(`([.!?])\s+`)
)

// Slugify derives a URL-safe identifier from a title: lowercase ASCII letters,
// digits, and single hyphens, with no leading or trailing hyphen. An input
// that yields nothing slugs to "product". Idempotent.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = apostropheRegex.ReplaceAllString(s, "")
	s = nonAlnumRegex.ReplaceAllString(s, "-")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "product"
	}
	return s
}

// CleanSingleLine collapses all whitespace runs, newlines included, to single
// spaces and trims the result.
func CleanSingleLine(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// TruncateLine cuts text to at most limit characters, appending "..." when a
// cut happens and the limit leaves room for it. The result never exceeds
// limit.
func TruncateLine(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	if limit <= 3 {
		return text[:limit]
	}
	return strings.TrimRight(text[:limit-3], " \t") + "..."
}

// FirstSentence cleans text to a single line and returns everything up to the
// first sentence-ending punctuation followed by whitespace, or the whole
// cleaned string when no boundary exists.
func FirstSentence(text string) string {
	cleaned := CleanSingleLine(text)
	if loc := sentenceEndRegex.FindStringIndex(cleaned); loc != nil {
		return cleaned[:loc[0]+1]
	}
	return cleaned
}

// FallbackCardSub derives a card subtitle from an intro paragraph: its first
// sentence, truncated to the card limit.
func FallbackCardSub(intro string) string {
	return TruncateLine(FirstSentence(intro), CardSubLimit)
}
