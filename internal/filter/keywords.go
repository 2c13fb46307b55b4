package filter

import "strings"

// DefaultKeywords is used whenever the user has not saved a keyword list.
var DefaultKeywords = []string{"JavaScript", "Python", "Go", "Remote"}

// ParseKeywords turns the comma separated text typed by the user into a keyword list.
// Entries are trimmed and empty entries are dropped; duplicates are kept.
func ParseKeywords(raw string) []string {
	return CleanKeywords(strings.Split(raw, ","))
}

// CleanKeywords trims every keyword and drops the empty ones.
func CleanKeywords(keywords []string) []string {
	out := []string{}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Resolve returns stored when it has at least one keyword, otherwise a copy of defaults.
func Resolve(stored, defaults []string) []string {
	if len(stored) > 0 {
		return stored
	}
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}
