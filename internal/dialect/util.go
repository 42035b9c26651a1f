package dialect

import (
	"strings"
)

// ValueClass is the semantic class of a column, independent of the engine.
type ValueClass int

const (
	ClassOpaque ValueClass = iota
	ClassText
	ClassNumber
	ClassBoolean
	ClassDate
	ClassBinary
)

func (c ValueClass) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassNumber:
		return "number"
	case ClassBoolean:
		return "boolean"
	case ClassDate:
		return "date"
	case ClassBinary:
		return "binary"
	default:
		return "opaque"
	}
}

// bindMetadata replaces the {schema} and {table} markers of a metadata query
// with the dialect's first and second bind placeholders.
func bindMetadata(d Dialect, query string) string {
	return strings.NewReplacer("{schema}", d.Placeholder(0), "{table}", d.Placeholder(1)).Replace(query)
}

// ClassifyType maps an engine type name to its ValueClass. Modifiers such as
// "(255)" or "unsigned" are ignored.
func ClassifyType(sqlType string) ValueClass {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch {
	case t == "", t == "interval", t == "point":
		return ClassOpaque
	case strings.Contains(t, "bool"), t == "bit":
		return ClassBoolean
	case strings.Contains(t, "blob"), strings.Contains(t, "binary"), t == "bytea",
		t == "image", t == "raw", t == "long raw":
		return ClassBinary
	case strings.Contains(t, "char"), strings.Contains(t, "text"), strings.Contains(t, "clob"),
		strings.Contains(t, "string"), t == "long", t == "enum", t == "set", t == "graphic", t == "vargraphic":
		return ClassText
	case strings.Contains(t, "date"), strings.Contains(t, "time"):
		return ClassDate
	case strings.Contains(t, "int"), strings.Contains(t, "serial"), strings.Contains(t, "number"),
		strings.Contains(t, "numeric"), strings.Contains(t, "decimal"), strings.Contains(t, "float"),
		strings.Contains(t, "double"), strings.Contains(t, "real"), strings.Contains(t, "money"),
		t == "year":
		return ClassNumber
	default:
		return ClassOpaque
	}
}

// IsNullableFlag interprets the nullability column of the metadata queries,
// which engines spell YES, Y or 1.
func IsNullableFlag(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "1", "TRUE":
		return true
	default:
		return false
	}
}
