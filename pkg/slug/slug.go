package slug

import (
	"regexp"
	"strings"
)

var separatorRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases name and joins its alphanumeric runs with single hyphens.
//
//	"Acme Corp"           -> "acme-corp"
//	"Joe's  Pizza & Subs" -> "joe-s-pizza-subs"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = separatorRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix appends suffix to the slug of name. An empty slug yields just the
// suffix so the result never starts with a hyphen.
func WithSuffix(name, suffix string) string {
	s := Generate(name)
	if s == "" {
		return suffix
	}
	if suffix == "" {
		return s
	}
	return s + "-" + suffix
}
