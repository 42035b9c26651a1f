package config

import (
	"strings"
)

// SelfTable as a destination table means "the origin table".
const SelfTable = "SELF"

// QueryTemplate is the unresolved side of a rule.
type QueryTemplate struct {
	Table            string   `yaml:"table"`
	Columns          []string `yaml:"columns"`
	Condition        string   `yaml:"condition,omitempty"`
	ConditionColumns []string `yaml:"conditionColumns,omitempty"`
	Castings         []string `yaml:"castings,omitempty"`
}

// IsLiteral reports whether Table names exactly one table.
func (q *QueryTemplate) IsLiteral() bool {
	t := strings.TrimSpace(q.Table)
	return t != "" && !strings.Contains(t, "*") && !strings.EqualFold(t, SelfTable)
}

// ReferenceTemplate is one rule of the rules document. A nil Dest declares
// the origin as intentionally unchecked.
type ReferenceTemplate struct {
	Origin     QueryTemplate  `yaml:"origin"`
	Dest       *QueryTemplate `yaml:"dest,omitempty"`
	Hidden     bool           `yaml:"hidden,omitempty"`
	DisplayRaw bool           `yaml:"displayRaw,omitempty"`
	FixAction  string         `yaml:"fixAction,omitempty"`
}

func (r ReferenceTemplate) String() string {
	s := r.Origin.Table + "." + strings.Join(r.Origin.Columns, ",")
	if r.Dest == nil {
		return s + " => -"
	}
	return s + " => " + r.Dest.Table + "." + strings.Join(r.Dest.Columns, ",")
}

// Configuration is a parsed rules document.
type Configuration struct {
	TableToClassNameMapping map[string]string   `yaml:"tableToClassNameMapping"`
	IgnoreTables            []string            `yaml:"ignoreTables"`
	IgnoreColumns           []string            `yaml:"ignoreColumns"`
	TableRanks              map[string]int      `yaml:"tableRanks,omitempty"`
	References              []ReferenceTemplate `yaml:"references"`
}

// LiteralDependencies maps every literally named origin table to the
// literally named destination tables it references. Rules with patterns or
// SELF are left out.
func (c *Configuration) LiteralDependencies() map[string][]string {
	deps := make(map[string][]string)
	for _, r := range c.References {
		if r.Dest == nil || !r.Origin.IsLiteral() || !r.Dest.IsLiteral() {
			continue
		}
		from := strings.TrimSpace(r.Origin.Table)
		deps[from] = append(deps[from], strings.TrimSpace(r.Dest.Table))
	}
	return deps
}
