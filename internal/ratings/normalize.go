package ratings

import (
	"regexp"
	"slices"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	bracketedRe     = regexp.MustCompile(`\s*\[[^\]]*\]`)
	nonWordRe       = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// cleanupRules progressively strip edition and version noise from album
// titles. Order matters: each rule is applied to the already-cleaned current
// name, so the output runs from most-specific to most-generic.
var cleanupRules = []*regexp.Regexp{
	parentheticalRe,
	bracketedRe,

	regexp.MustCompile(`(?i)\s*-\s*(Deluxe|Expanded|Remastered|Anniversary|Special|Limited|Collector's?).*$`),
	regexp.MustCompile(`(?i)\s*(Deluxe|Expanded|Remastered|Anniversary|Special|Limited|Collector's?)\s*(Edition|Version|Release).*$`),

	regexp.MustCompile(`(?i)\s*-\s*(Live|Acoustic|Unplugged|MTV).*$`),
	regexp.MustCompile(`(?i)\s*(Live|Acoustic|Unplugged|MTV)\s*(at|from|in|on).*$`),

	regexp.MustCompile(`\s*-?\s*\d{4}.*$`),
	regexp.MustCompile(`\s*\(\d{4}\).*$`),

	regexp.MustCompile(`(?i)^The\s+`),
}

// Normalize canonicalizes free-form text for equality and containment
// comparisons: lowercase, parenthesized and bracketed substrings removed,
// punctuation stripped, whitespace collapsed.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = parentheticalRe.ReplaceAllString(s, "")
	s = bracketedRe.ReplaceAllString(s, "")
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripEnclosed removes only parenthesized and bracketed substrings, keeping
// case and punctuation. This is the "light clean" used for the first direct
// search pass.
func StripEnclosed(text string) string {
	s := parentheticalRe.ReplaceAllString(text, "")
	s = bracketedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// TitleVariants returns progressively simplified forms of an album title,
// starting with the original. Each cleanup rule is applied to the current
// (already-cleaned) name; a variant is kept only when the cleaned form is
// non-empty, differs from the current name, and has not been seen before.
func TitleVariants(albumName string) []string {
	variants := []string{albumName}
	current := albumName

	for _, rule := range cleanupRules {
		cleaned := strings.TrimSpace(rule.ReplaceAllString(current, ""))
		if cleaned != "" && cleaned != current && !slices.Contains(variants, cleaned) {
			variants = append(variants, cleaned)
			current = cleaned
		}
	}

	result := variants[:0]
	for _, v := range variants {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
