package reference

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"db-refcheck/internal/dialect"
	"db-refcheck/internal/schema"
)

const maxAliasPrefix = 20

// Query is one side of a Reference: a table, resolved columns, optional
// cast overrides and an optional row filter.
type Query struct {
	Table     *schema.Table
	Columns   []string
	Casts     []string
	Condition string

	alias string
	key   string
}

// NewQuery binds columns to a table. String literal columns are normalised
// to single quotes. The alias is generated here and never changes.
func NewQuery(t *schema.Table, columns, casts []string, condition string) *Query {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = normalizeConstant(c)
	}
	q := &Query{
		Table:     t,
		Columns:   cols,
		Casts:     trimAll(casts),
		Condition: strings.TrimSpace(condition),
		alias:     newAlias(t.Name),
	}
	q.key = strings.ToLower(fmt.Sprintf("%s[%s]#%s[%s]",
		t.Name, q.Condition, strings.Join(q.Columns, ","), strings.Join(q.Casts, ",")))
	return q
}

// Key is the canonical form used for equality: table[condition]#columns[casts].
func (q *Query) Key() string {
	return q.key
}

func (q *Query) Alias() string {
	return q.alias
}

func (q *Query) String() string {
	var b strings.Builder
	b.WriteString(q.Table.Name)
	b.WriteByte('.')
	if len(q.Columns) == 1 {
		b.WriteString(q.Columns[0])
	} else {
		b.WriteString("(" + strings.Join(q.Columns, ", ") + ")")
	}
	if q.Condition != "" {
		b.WriteString(" [" + q.Condition + "]")
	}
	return b.String()
}

// Cast returns the cast override for column i, or "".
func (q *Query) Cast(i int) string {
	if i < len(q.Casts) {
		return q.Casts[i]
	}
	return ""
}

// ValueColumns are the non-constant columns, in order. Their values form
// the tuples reported by a check.
func (q *Query) ValueColumns() []string {
	var out []string
	for _, c := range q.Columns {
		if !schema.IsConstant(c) {
			out = append(out, c)
		}
	}
	return out
}

// Operand renders column i qualified with the alias.
func (q *Query) Operand(d dialect.Dialect, i int) dialect.Operand {
	c := q.Columns[i]
	if schema.IsConstant(c) {
		class := dialect.ClassNumber
		if schema.IsStringLiteral(c) {
			class = dialect.ClassText
		}
		return dialect.Operand{Expr: c, Class: class}
	}
	op := dialect.Operand{Expr: dialect.Column(d, q.alias, c), Class: dialect.ClassOpaque}
	if col := q.Table.Column(c); col != nil {
		op.Expr = dialect.Column(d, q.alias, col.Name)
		op.Class = col.Class
	}
	return op
}

// SQL renders the query as a SELECT DISTINCT over its value columns.
func (q *Query) SQL(d dialect.Dialect) string {
	cols := make([]string, len(q.Columns))
	for i := range q.Columns {
		cols[i] = q.Operand(d, i).Expr
	}
	return dialect.Select(d, true, cols, q.Table.Name, q.alias, q.Condition)
}

func (q *Query) sameTarget(o *Query) bool {
	if q.Table.Key() != o.Table.Key() || len(q.Columns) != len(o.Columns) {
		return false
	}
	for i := range q.Columns {
		if !strings.EqualFold(q.Columns[i], o.Columns[i]) {
			return false
		}
	}
	return true
}

func normalizeConstant(c string) string {
	c = strings.TrimSpace(c)
	if len(c) >= 2 && c[0] == '"' && c[len(c)-1] == '"' {
		return "'" + strings.ReplaceAll(c[1:len(c)-1], "'", "''") + "'"
	}
	return c
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// newAlias derives an identifier-safe alias from the table name plus a
// random suffix. The result stays under 30 characters.
func newAlias(table string) string {
	var b strings.Builder
	for _, r := range table {
		if b.Len() >= maxAliasPrefix {
			break
		}
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	prefix := b.String()
	if prefix == "" || !isLetter(prefix[0]) {
		prefix = "t" + prefix
		if len(prefix) > maxAliasPrefix {
			prefix = prefix[:maxAliasPrefix]
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "_" + suffix
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
