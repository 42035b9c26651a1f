package schema

import "strings"

// keyAbbreviations are column-name fragments that denote an identifier.
var keyAbbreviations = map[string]bool{
	"id": true, "pk": true, "key": true, "fk": true,
	"uid": true, "pid": true, "mid": true, "uuid": true, "guid": true,
}

// KeyShaped reports whether a column name looks like it holds a reference
// to another row: "id", "userId", "parent_key", "groupPK" and so on.
func KeyShaped(column string) bool {
	for _, part := range splitName(column) {
		if keyAbbreviations[part] {
			return true
		}
	}
	return false
}

// splitName breaks snake_case and camelCase names into lower-case words.
func splitName(name string) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
			continue
		case r >= 'A' && r <= 'Z' && i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z':
			flush()
		}
		cur.WriteRune(r)
	}
	flush()
	return parts
}
