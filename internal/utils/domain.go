package utils

import "strings"

// ExtractDomain reduces free-form user input (URL with or without scheme,
// bare domain, domain plus path) to a bare hostname. Unparseable input
// degrades to the text before the first slash rather than failing.
func ExtractDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// StripWWW returns the canonical non-www form of a domain.
func StripWWW(domain string) string {
	return strings.TrimPrefix(domain, "www.")
}

// ParentDomain strips the leftmost label, e.g. "a.b.example.com" ->
// "b.example.com". Returns the input unchanged when no label can be
// stripped.
func ParentDomain(domain string) string {
	if i := strings.Index(domain, "."); i >= 0 && strings.Contains(domain[i+1:], ".") {
		return domain[i+1:]
	}
	return domain
}

// LabelCount returns the number of dot-separated labels in a domain.
func LabelCount(domain string) int {
	if domain == "" {
		return 0
	}
	return strings.Count(domain, ".") + 1
}
