package schema

import "strings"

// Matches applies an ignore/filter pattern to a name, ignoring case. A
// pattern is "*", an exact name, "prefix*", "*suffix" or "*infix*".
func Matches(pattern, name string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case p == "*":
		return true
	case p == "":
		return false
	case len(p) > 1 && strings.HasPrefix(p, "*") && strings.HasSuffix(p, "*"):
		return strings.Contains(n, p[1:len(p)-1])
	case strings.HasPrefix(p, "*"):
		return strings.HasSuffix(n, p[1:])
	case strings.HasSuffix(p, "*"):
		return strings.HasPrefix(n, p[:len(p)-1])
	default:
		return p == n
	}
}

// MatchesAny reports whether any pattern matches name.
func MatchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if Matches(p, name) {
			return true
		}
	}
	return false
}

// MatchesColumn applies a column pattern. Patterns of the form
// "table.column" only apply to tables matching the table part.
func MatchesColumn(pattern, table, column string) bool {
	if i := strings.IndexByte(pattern, '.'); i >= 0 {
		return Matches(pattern[:i], table) && Matches(pattern[i+1:], column)
	}
	return Matches(pattern, column)
}
