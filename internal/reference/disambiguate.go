package reference

import (
	"strings"

	"db-refcheck/internal/schema"
)

const minCommonPrefix = 2

// disambiguate narrows the destinations of one origin query. Mapped
// destinations are preferred; among them, those sharing the longest common
// name prefix with the origin table win.
func disambiguate(orig *schema.Table, cands []candidate) []candidate {
	tables := make(map[string]bool)
	for _, c := range cands {
		tables[c.dest.Table.Key()] = true
	}
	if len(tables) <= 1 {
		return cands
	}

	pool := cands
	var mapped []candidate
	for _, c := range cands {
		if c.dest.Table.ClassName != "" {
			mapped = append(mapped, c)
		}
	}
	if len(mapped) > 0 {
		pool = mapped
	}

	best := 0
	for _, c := range pool {
		if n := commonPrefix(orig.Name, c.dest.Table.Name); n > best {
			best = n
		}
	}
	if best < minCommonPrefix {
		return pool
	}
	var out []candidate
	for _, c := range pool {
		if commonPrefix(orig.Name, c.dest.Table.Name) == best {
			out = append(out, c)
		}
	}
	return out
}

func commonPrefix(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
