package reference

import "strings"

// auxSuffixes name relationship tables whose rows exist only to link others.
var auxSuffixes = []string{"Link", "Localization", "Mapping", "Rel", "Version"}

// detailSuffixes name tables holding details of a parent table, such as
// FooUsage for Foo.
var detailSuffixes = []string{"Attribute", "Instance", "InstanceToken", "Record", "Report", "Token", "Usage"}

// classifyFix picks the remediation for rows of origin pointing at a
// missing destination row.
func classifyFix(origin, dest *Query) FixAction {
	o, d := origin.Table, dest.Table
	if o.Key() == d.Key() {
		return FixUnknown
	}
	for _, c := range origin.Columns {
		if o.IsPrimaryKey(c) {
			return FixUnknown
		}
	}
	if d.Rank > 0 && d.Rank < o.Rank {
		return FixDelete
	}
	if o.Rank == 0 && (hasSuffixFold(o.Name, auxSuffixes) || isChildOf(o.Name, d.Name) || (o.HasClassName && o.ClassName == "")) {
		return FixDelete
	}
	if o.Rank == 0 || o.Rank == d.Rank {
		return FixUnknown
	}
	return FixUpdate
}

func hasSuffixFold(name string, suffixes []string) bool {
	n := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(n, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func isChildOf(origin, dest string) bool {
	o, d := strings.ToLower(origin), strings.ToLower(dest)
	return len(o) > len(d) && strings.HasPrefix(o, d) && hasSuffixFold(origin, detailSuffixes)
}
