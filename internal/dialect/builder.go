package dialect

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxInListSize is the largest value list a single IN predicate may
	// carry; Oracle rejects more than 1000 expressions.
	MaxInListSize = 1000
	// MaxStatementTuples bounds the tuples embedded in one generated
	// cleanup or inspection statement.
	MaxStatementTuples = 2000
)

// Cast override keywords accepted in rule templates. Anything else is a SQL
// template in which {col} is replaced with the column expression.
const (
	CastAuto = "auto"
	CastNone = "none"
	CastText = "text"
)

// Operand is a column expression taking part in a comparison.
type Operand struct {
	Expr  string
	Class ValueClass
}

// Assignment is one SET target of an UPDATE.
type Assignment struct {
	Column string
	Class  ValueClass
}

// CastOperands returns the origin and destination expressions to compare.
// Columns sharing a class are compared as-is, and so is a textual destination
// unless the origin is opaque; otherwise every non-text side is cast to text.
func CastOperands(d Dialect, origin, dest Operand) (string, string) {
	if origin.Class == dest.Class {
		return origin.Expr, dest.Expr
	}
	if dest.Class == ClassText && origin.Class != ClassOpaque {
		return origin.Expr, dest.Expr
	}
	o, de := origin.Expr, dest.Expr
	if origin.Class != ClassText {
		o = d.CastText(o)
	}
	if dest.Class != ClassText {
		de = d.CastText(de)
	}
	return o, de
}

// ApplyCast applies an explicit cast override to expr. The boolean result is
// false when the override asks for the automatic rule.
func ApplyCast(d Dialect, expr, override string) (string, bool) {
	o := strings.TrimSpace(override)
	switch strings.ToLower(o) {
	case "", CastAuto:
		return expr, false
	case CastNone:
		return expr, true
	case CastText:
		return d.CastText(expr), true
	}
	if strings.Contains(o, "{col}") {
		return strings.ReplaceAll(o, "{col}", expr), true
	}
	return fmt.Sprintf("CAST(%s AS %s)", expr, o), true
}

// Column renders alias.column with the column quoted. An empty alias yields
// the bare quoted column.
func Column(d Dialect, alias, column string) string {
	if alias == "" {
		return d.Quote(column)
	}
	return alias + "." + d.Quote(column)
}

// From renders "table alias".
func From(d Dialect, table, alias string) string {
	if alias == "" {
		return d.Quote(table)
	}
	return d.Quote(table) + " " + alias
}

// Where joins the non-empty predicates with AND, parenthesising each.
func Where(preds ...string) string {
	var parts []string
	for _, p := range preds {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, "("+p+")")
		}
	}
	if len(parts) == 1 {
		return strings.TrimSuffix(strings.TrimPrefix(parts[0], "("), ")")
	}
	return strings.Join(parts, " AND ")
}

func whereClause(where string) string {
	if strings.TrimSpace(where) == "" {
		return ""
	}
	return " WHERE " + where
}

// Select renders SELECT [DISTINCT] cols FROM table alias [WHERE where].
func Select(d Dialect, distinct bool, cols []string, table, alias, where string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(From(d, table, alias))
	b.WriteString(whereClause(where))
	return b.String()
}

// Count renders a distinct count of cols. Engines without multi-column
// COUNT(DISTINCT ...) count a DISTINCT subquery instead.
func Count(d Dialect, cols []string, table, alias, where string) string {
	if len(cols) == 1 || d.MultiColumnCountDistinct() {
		return fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s%s", strings.Join(cols, ", "), From(d, table, alias), whereClause(where))
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM (%s) cnt", Select(d, true, cols, table, alias, where))
}

// CountRows renders SELECT COUNT(*) FROM table alias [WHERE where].
func CountRows(d Dialect, table, alias, where string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", From(d, table, alias), whereClause(where))
}

// Delete renders DELETE FROM table [alias] WHERE where. The alias is dropped
// on engines that reject it, so where must use unqualified columns.
func Delete(d Dialect, table, alias, where string) string {
	if !d.AliasInDML() {
		alias = ""
	}
	return "DELETE FROM " + From(d, table, alias) + whereClause(where)
}

// Update renders UPDATE table [alias] SET col = <empty value>, ... WHERE where.
func Update(d Dialect, table, alias string, sets []Assignment, where string) string {
	if !d.AliasInDML() {
		alias = ""
	}
	assigns := make([]string, len(sets))
	for i, s := range sets {
		assigns[i] = d.Quote(s.Column) + " = " + EmptyValue(s.Class)
	}
	return "UPDATE " + From(d, table, alias) + " SET " + strings.Join(assigns, ", ") + whereClause(where)
}

// EmptyValue is the value an orphaned column is reset to.
func EmptyValue(class ValueClass) string {
	switch class {
	case ClassText:
		return "''"
	case ClassNumber:
		return "0"
	default:
		return "NULL"
	}
}

// MissingPredicate renders "the origin tuple has no match in the destination".
// Engines preferring NOT EXISTS, and multi-column comparisons on engines
// without row values, get a correlated subquery; all others get NOT IN over a
// null-free destination projection.
func MissingPredicate(d Dialect, origin, dest []string, destTable, destAlias, destCond string) string {
	if d.PrefersNotExists() || (len(origin) > 1 && !d.SupportsRowValues()) {
		preds := []string{destCond}
		for i := range origin {
			preds = append(preds, dest[i]+" = "+origin[i])
		}
		return "NOT EXISTS (" + Select(d, false, []string{"1"}, destTable, destAlias, Where(preds...)) + ")"
	}
	preds := []string{destCond}
	for _, c := range dest {
		preds = append(preds, c+" IS NOT NULL")
	}
	return tuple(origin) + " NOT IN (" + Select(d, false, dest, destTable, destAlias, Where(preds...)) + ")"
}

func tuple(exprs []string) string {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return "(" + strings.Join(exprs, ", ") + ")"
}

// InPredicate renders "cols match one of tuples". Lists longer than
// MaxInListSize are split into several IN predicates joined by OR. Tuples
// holding a NULL are matched with IS NULL, which IN cannot express.
func InPredicate(d Dialect, cols []string, tuples [][]any) string {
	var plain, nullish [][]any
	for _, t := range tuples {
		if hasNil(t) {
			nullish = append(nullish, t)
		} else {
			plain = append(plain, t)
		}
	}

	var parts []string
	if len(cols) == 1 || d.SupportsRowValues() {
		for _, chunk := range Batches(plain, MaxInListSize) {
			values := make([]string, len(chunk))
			for i, t := range chunk {
				values[i] = tupleLiteral(d, t)
			}
			parts = append(parts, tuple(cols)+" IN ("+strings.Join(values, ", ")+")")
		}
	} else {
		for _, t := range plain {
			parts = append(parts, equalsTuple(d, cols, t))
		}
	}
	for _, t := range nullish {
		parts = append(parts, equalsTuple(d, cols, t))
	}

	switch len(parts) {
	case 0:
		return "1 = 0"
	case 1:
		return parts[0]
	}
	for i, p := range parts {
		parts[i] = "(" + p + ")"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func equalsTuple(d Dialect, cols []string, t []any) string {
	conds := make([]string, len(cols))
	for i, c := range cols {
		if t[i] == nil {
			conds[i] = c + " IS NULL"
		} else {
			conds[i] = c + " = " + Literal(d, t[i])
		}
	}
	return strings.Join(conds, " AND ")
}

func tupleLiteral(d Dialect, t []any) string {
	if len(t) == 1 {
		return Literal(d, t[0])
	}
	vals := make([]string, len(t))
	for i, v := range t {
		vals[i] = Literal(d, v)
	}
	return "(" + strings.Join(vals, ", ") + ")"
}

func hasNil(t []any) bool {
	for _, v := range t {
		if v == nil {
			return true
		}
	}
	return false
}

// Batches splits tuples into consecutive slices of at most size elements.
func Batches(tuples [][]any, size int) [][][]any {
	if size <= 0 {
		size = len(tuples)
	}
	var out [][][]any
	for start := 0; start < len(tuples); start += size {
		end := start + size
		if end > len(tuples) {
			end = len(tuples)
		}
		out = append(out, tuples[start:end])
	}
	return out
}

// Literal renders v as an inline SQL literal.
func Literal(d Dialect, v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(x)
	case []byte:
		return quoteString(string(x))
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if d.Name() == PostgreSQL {
			return strings.ToUpper(strconv.FormatBool(x))
		}
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return d.TimestampLiteral(x.Format("2006-01-02 15:04:05"))
	default:
		return quoteString(fmt.Sprint(x))
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
