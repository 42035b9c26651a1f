package schema

import (
	"regexp"
	"strings"
	"sync"

	"db-refcheck/internal/dialect"
)

type Column struct {
	Name     string
	TypeName string
	Class    dialect.ValueClass
	Size     int
	Nullable bool
}

// Table is an introspected table. Column lookups are case-insensitive and
// memoised on the instance, so a Table must not be copied after use.
type Table struct {
	Name string
	// PrimaryKey holds the key column when the key is a single column.
	// CompoundPK is set instead when the key spans several columns.
	PrimaryKey string
	CompoundPK bool
	Columns    []*Column

	// ClassName is the bound domain entity. HasClassName distinguishes an
	// explicitly blank mapping from an absent one.
	ClassName    string
	HasClassName bool
	ClassNameID  int64
	Rank         int

	// Raw marks a placeholder for a table that is referenced but not
	// materialised, such as "ANY". Raw tables are only displayed.
	Raw bool

	key       string
	positions sync.Map // lower-case column name -> int
	patterns  *patternCache
}

// NewTable builds a Table from introspected columns and primary key columns.
func NewTable(name string, columns []*Column, pkColumns []string) *Table {
	t := &Table{Name: name, Columns: columns, key: strings.ToLower(name), patterns: &patternCache{}}
	switch len(pkColumns) {
	case 0:
	case 1:
		t.PrimaryKey = pkColumns[0]
	default:
		t.CompoundPK = true
	}
	return t
}

// NewRawTable builds a display-only placeholder table.
func NewRawTable(name string) *Table {
	return &Table{Name: name, Raw: true, key: strings.ToLower(name), patterns: &patternCache{}}
}

// Key is the lower-case table name used for lookups and equality.
func (t *Table) Key() string {
	if t.key == "" {
		t.key = strings.ToLower(t.Name)
	}
	return t.key
}

func (t *Table) String() string {
	return t.Name
}

// ColumnPosition returns the declared index of the column, or -1.
func (t *Table) ColumnPosition(name string) int {
	k := strings.ToLower(strings.TrimSpace(name))
	if v, ok := t.positions.Load(k); ok {
		return v.(int)
	}
	pos := -1
	for i, c := range t.Columns {
		if strings.ToLower(c.Name) == k {
			pos = i
			break
		}
	}
	t.positions.Store(k, pos)
	return pos
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	if pos := t.ColumnPosition(name); pos >= 0 {
		return t.Columns[pos]
	}
	return nil
}

// HasColumns reports whether every name is a column of t. String
// constants are always present.
func (t *Table) HasColumns(names []string) bool {
	for _, n := range names {
		if IsConstant(n) {
			continue
		}
		if t.ColumnPosition(n) < 0 {
			return false
		}
	}
	return true
}

// IsPrimaryKey reports whether column is the single-column primary key.
func (t *Table) IsPrimaryKey(column string) bool {
	return t.PrimaryKey != "" && strings.EqualFold(t.PrimaryKey, column)
}

// ColumnNames resolves a column pattern. "*" or blank returns every column,
// an existing column name returns itself, anything else is matched as a
// case-insensitive expression ("*" standing for any run of characters).
func (t *Table) ColumnNames(pattern string) []string {
	p := strings.TrimSpace(pattern)
	if p == "" || p == "*" {
		names := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			names[i] = c.Name
		}
		return names
	}
	if c := t.Column(p); c != nil {
		return []string{c.Name}
	}
	re := t.patternCache().compile(p)
	if re == nil {
		return nil
	}
	var names []string
	for _, c := range t.Columns {
		if re.MatchString(strings.ToLower(c.Name)) {
			names = append(names, c.Name)
		}
	}
	return names
}

func (t *Table) patternCache() *patternCache {
	if t.patterns == nil {
		t.patterns = &patternCache{}
	}
	return t.patterns
}

// clone copies the descriptive fields into a fresh Table with empty caches.
func (t *Table) clone() *Table {
	return &Table{
		Name:         t.Name,
		PrimaryKey:   t.PrimaryKey,
		CompoundPK:   t.CompoundPK,
		Columns:      t.Columns,
		ClassName:    t.ClassName,
		HasClassName: t.HasClassName,
		ClassNameID:  t.ClassNameID,
		Rank:         t.Rank,
		Raw:          t.Raw,
		key:          t.Key(),
		patterns:     t.patterns,
	}
}

var numericLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// IsConstant reports whether s is a literal rather than a column: a quoted
// string such as 'foo' or a number such as 20087.
func IsConstant(s string) bool {
	s = strings.TrimSpace(s)
	return IsStringLiteral(s) || numericLiteral.MatchString(s)
}

// IsStringLiteral reports whether s is a quoted string literal.
func IsStringLiteral(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

// patternCache compiles column patterns once. Concurrent misses may compile
// the same pattern twice; the results are identical.
type patternCache struct {
	m sync.Map // pattern -> *regexp.Regexp (nil when invalid)
}

func (c *patternCache) compile(pattern string) *regexp.Regexp {
	if v, ok := c.m.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)^(?:" + wildcardToRegexp(strings.ToLower(pattern)) + ")$")
	if err != nil {
		re = nil
	}
	c.m.Store(pattern, re)
	return re
}

// wildcardToRegexp turns each "*" that is not already a quantified "." into ".*".
func wildcardToRegexp(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] == '*' && (i == 0 || p[i-1] != '.') {
			b.WriteString(".*")
			continue
		}
		b.WriteByte(p[i])
	}
	return b.String()
}
