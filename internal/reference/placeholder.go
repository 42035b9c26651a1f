package reference

import (
	"regexp"
	"strconv"
	"strings"

	"db-refcheck/internal/schema"
)

var placeholderRe = regexp.MustCompile(`\$\{(origTable|destTable)\.(className|classNameId|primaryKey|PrimaryKey|tableName)\}`)

// substitute replaces ${origTable.X} and ${destTable.X} in s. It fails when
// a placeholder refers to a missing table or a property the table lacks.
func substitute(s string, orig, dest *schema.Table) (string, bool) {
	ok := true
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := placeholderRe.FindStringSubmatch(m)
		t := orig
		if parts[1] == "destTable" {
			t = dest
		}
		if t == nil {
			ok = false
			return m
		}
		v := tableProperty(t, parts[2])
		if v == "" {
			ok = false
		}
		return v
	})
	return out, ok
}

func substituteAll(in []string, orig, dest *schema.Table) ([]string, bool) {
	if in == nil {
		return nil, true
	}
	out := make([]string, len(in))
	for i, s := range in {
		v, ok := substitute(s, orig, dest)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func tableProperty(t *schema.Table, prop string) string {
	switch prop {
	case "className":
		return t.ClassName
	case "classNameId":
		if t.ClassNameID == 0 {
			return ""
		}
		return strconv.FormatInt(t.ClassNameID, 10)
	case "primaryKey":
		return t.PrimaryKey
	case "PrimaryKey":
		if t.PrimaryKey == "" {
			return ""
		}
		return strings.ToUpper(t.PrimaryKey[:1]) + t.PrimaryKey[1:]
	case "tableName":
		return t.Name
	}
	return ""
}

func mentionsDest(tpl ...[]string) bool {
	for _, list := range tpl {
		for _, s := range list {
			if strings.Contains(s, "${destTable.") {
				return true
			}
		}
	}
	return false
}
