package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matches returns the keywords found in text as case-insensitive substrings,
// in the order they appear in keywords. There is no word boundary check:
// "Go" matches "Google". Text is compared as written, without Unicode
// normalization.
func Matches(text string, keywords []string) []string {
	found := []string{}
	if text == "" || len(keywords) == 0 {
		return found
	}

	lower := cases.Lower(language.Und)
	haystack := lower.String(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(haystack, lower.String(k)) {
			found = append(found, k)
		}
	}
	return found
}

// CombineParagraphs joins the trimmed, non-empty paragraph texts the way the
// description pane is read before matching.
func CombineParagraphs(paragraphs []string) string {
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
