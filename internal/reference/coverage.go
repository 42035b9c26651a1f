package reference

import (
	"strings"

	"db-refcheck/internal/schema"
)

// UncheckedColumns lists "Table.column" for every key-shaped, non-ignored,
// non-primary-key column that no Reference in set reads from.
func UncheckedColumns(cat *schema.Catalog, set *Set) []string {
	covered := make(map[string]bool)
	for _, r := range set.Items() {
		if r.Raw {
			continue
		}
		for _, c := range r.Origin.ValueColumns() {
			covered[r.Origin.Table.Key()+"."+strings.ToLower(c)] = true
		}
	}

	var out []string
	for _, t := range cat.Tables("") {
		for _, c := range t.Columns {
			if t.IsPrimaryKey(c.Name) || !schema.KeyShaped(c.Name) || cat.IgnoreColumn(t.Name, c.Name) {
				continue
			}
			if !covered[t.Key()+"."+strings.ToLower(c.Name)] {
				out = append(out, t.Name+"."+c.Name)
			}
		}
	}
	return out
}
